package config

import (
	"os"
	"path/filepath"
	"testing"

	internal "github.com/ZanzyTHEbar/tensorprep/tprep"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// ConfigTestSuite tests the config package functionality
type ConfigTestSuite struct {
	suite.Suite
	tempDir string
	origDir string
}

func TestConfigSuite(t *testing.T) {
	suite.Run(t, new(ConfigTestSuite))
}

func (suite *ConfigTestSuite) SetupTest() {
	var err error
	suite.origDir, err = os.Getwd()
	require.NoError(suite.T(), err)

	tempDir, err := os.MkdirTemp("", "tensorprep-config-test-*")
	require.NoError(suite.T(), err)
	suite.tempDir = tempDir

	err = os.Chdir(tempDir)
	require.NoError(suite.T(), err)
}

func (suite *ConfigTestSuite) TearDownTest() {
	if suite.origDir != "" {
		os.Chdir(suite.origDir)
	}
	if suite.tempDir != "" {
		os.RemoveAll(suite.tempDir)
	}
}

func (suite *ConfigTestSuite) TestLoadConfigWithDefaults() {
	cfg, err := LoadConfig("")

	require.NoError(suite.T(), err)
	require.NotNil(suite.T(), cfg)

	assert.Equal(suite.T(), ".", cfg.Datasets.DigitsDir)
	assert.Equal(suite.T(), ".", cfg.Datasets.ReviewsDir)
	assert.Equal(suite.T(), internal.DefaultCacheDir, cfg.Datasets.CacheDir)
	assert.Equal(suite.T(), internal.DefaultVocabularyBound, cfg.Text.VocabularyBound)
	assert.Equal(suite.T(), internal.DefaultMaxSeqLen, cfg.Text.MaxSeqLen)
	assert.Equal(suite.T(), "hash", cfg.Scoring.Scorer)
	assert.Equal(suite.T(), internal.DefaultResultsDBPath, cfg.Results.DBPath)
	assert.Equal(suite.T(), int64(internal.DefaultSeed), cfg.Runtime.Seed)
}

func (suite *ConfigTestSuite) TestLoadConfigWithFile() {
	configContent := `
datasets:
  digitsDir: "./mnist"
  reviewsDir: "./aclImdb"
  cacheDir: "./cache"

text:
  vocabularyBound: 5000
  maxSeqLen: 200
  wordPieceVocab: "./vocab.txt"

scoring:
  scorer: "onnx"
  modelPath: "./classifier.onnx"

results:
  dbPath: "./runs.db"

runtime:
  seed: 1234
  maxWorkers: 8
`

	configFile := filepath.Join(suite.tempDir, "config.yaml")
	err := os.WriteFile(configFile, []byte(configContent), 0o644)
	require.NoError(suite.T(), err)

	cfg, err := LoadConfig(configFile)

	require.NoError(suite.T(), err)
	require.NotNil(suite.T(), cfg)

	assert.Equal(suite.T(), "./mnist", cfg.Datasets.DigitsDir)
	assert.Equal(suite.T(), "./aclImdb", cfg.Datasets.ReviewsDir)
	assert.Equal(suite.T(), "./cache", cfg.Datasets.CacheDir)
	assert.Equal(suite.T(), 5000, cfg.Text.VocabularyBound)
	assert.Equal(suite.T(), 200, cfg.Text.MaxSeqLen)
	assert.Equal(suite.T(), "./vocab.txt", cfg.Text.WordPieceVocab)
	assert.Equal(suite.T(), "onnx", cfg.Scoring.Scorer)
	assert.Equal(suite.T(), "./classifier.onnx", cfg.Scoring.ModelPath)
	assert.Equal(suite.T(), "./runs.db", cfg.Results.DBPath)
	assert.Equal(suite.T(), int64(1234), cfg.Runtime.Seed)
	assert.Equal(suite.T(), 8, cfg.Runtime.MaxWorkers)
}

func (suite *ConfigTestSuite) TestLoadConfigInvalidFile() {
	cfg, err := LoadConfig("/nonexistent/path/config.yaml")

	assert.Error(suite.T(), err)
	assert.Nil(suite.T(), cfg)
}

func (suite *ConfigTestSuite) TestLoadConfigMalformedFile() {
	malformedContent := `
datasets:
  digitsDir: "./mnist"
  invalid_yaml: [unclosed bracket
`

	configFile := filepath.Join(suite.tempDir, "malformed.yaml")
	err := os.WriteFile(configFile, []byte(malformedContent), 0o644)
	require.NoError(suite.T(), err)

	cfg, err := LoadConfig(configFile)

	assert.Error(suite.T(), err)
	assert.Nil(suite.T(), cfg)
}

func (suite *ConfigTestSuite) TestAppConfigGlobal() {
	cfg, err := LoadConfig("")
	require.NoError(suite.T(), err)

	assert.Equal(suite.T(), cfg.Text.VocabularyBound, AppConfig.Text.VocabularyBound)
	assert.Equal(suite.T(), cfg.Results.DBPath, AppConfig.Results.DBPath)
}

// TestConfigTypes tests the configuration type definitions
func TestConfigTypes(t *testing.T) {
	config := Config{}
	assert.IsType(t, DatasetsConfig{}, config.Datasets)
	assert.IsType(t, TextConfig{}, config.Text)
	assert.IsType(t, ScoringConfig{}, config.Scoring)
	assert.IsType(t, ResultsConfig{}, config.Results)
	assert.IsType(t, RuntimeConfig{}, config.Runtime)

	text := TextConfig{}
	assert.IsType(t, 0, text.VocabularyBound)
	assert.IsType(t, 0, text.MaxSeqLen)
	assert.IsType(t, "", text.WordPieceVocab)

	runtime := RuntimeConfig{}
	assert.IsType(t, int64(0), runtime.Seed)
	assert.IsType(t, 0, runtime.MaxWorkers)
}
