package config

import (
	"fmt"
	"path/filepath"
	"strings"

	internal "github.com/ZanzyTHEbar/tensorprep/tprep"

	"github.com/spf13/viper"
)

// Config stores all configuration of the application.
// The values are read by viper from a config file or environment variables.
type Config struct {
	Datasets DatasetsConfig `mapstructure:"datasets"`
	Text     TextConfig     `mapstructure:"text"`
	Scoring  ScoringConfig  `mapstructure:"scoring"`
	Results  ResultsConfig  `mapstructure:"results"`
	Runtime  RuntimeConfig  `mapstructure:"runtime"`
}

// DatasetsConfig stores the on-disk dataset locations.
type DatasetsConfig struct {
	DigitsDir  string `mapstructure:"digitsDir"`
	ReviewsDir string `mapstructure:"reviewsDir"`
	CacheDir   string `mapstructure:"cacheDir"`
}

// TextConfig stores the text vectorization knobs.
type TextConfig struct {
	VocabularyBound int    `mapstructure:"vocabularyBound"`
	MaxSeqLen       int    `mapstructure:"maxSeqLen"`
	WordPieceVocab  string `mapstructure:"wordPieceVocab"`
}

// ScoringConfig stores the external scorer selection.
type ScoringConfig struct {
	Scorer    string `mapstructure:"scorer"`
	ModelPath string `mapstructure:"modelPath"`
}

// ResultsConfig stores the run ledger database location.
type ResultsConfig struct {
	DBPath string `mapstructure:"dbPath"`
}

// RuntimeConfig stores execution knobs shared by every pipeline.
type RuntimeConfig struct {
	Seed       int64 `mapstructure:"seed"`
	MaxWorkers int   `mapstructure:"maxWorkers"`
}

var AppConfig Config

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(configPath string) (*Config, error) {
	if configPath != "" {
		viper.SetConfigFile(configPath)
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath(filepath.Join("etc", internal.DefaultAppName))
		viper.AddConfigPath(internal.DefaultConfigPath)
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	// Set default values
	viper.SetDefault("datasets.digitsDir", ".")
	viper.SetDefault("datasets.reviewsDir", ".")
	viper.SetDefault("datasets.cacheDir", internal.DefaultCacheDir)
	viper.SetDefault("text.vocabularyBound", internal.DefaultVocabularyBound)
	viper.SetDefault("text.maxSeqLen", internal.DefaultMaxSeqLen)
	viper.SetDefault("scoring.scorer", "hash")
	viper.SetDefault("results.dbPath", internal.DefaultResultsDBPath)
	viper.SetDefault("runtime.seed", internal.DefaultSeed)
	viper.SetDefault("runtime.maxWorkers", 0)

	viper.AutomaticEnv()                                   // Read in environment variables that match
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_")) // e.g. text.vocabularyBound becomes TEXT_VOCABULARYBOUND

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found; defaults will be used.
		} else {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	err := viper.Unmarshal(&AppConfig)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	return &AppConfig, nil
}
