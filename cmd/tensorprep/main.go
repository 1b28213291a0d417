package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	internal "github.com/ZanzyTHEbar/tensorprep/tprep"
	"github.com/ZanzyTHEbar/tensorprep/tprep/config"
	"github.com/ZanzyTHEbar/tensorprep/tprep/ingest"
	"github.com/ZanzyTHEbar/tensorprep/tprep/model"
	"github.com/ZanzyTHEbar/tensorprep/tprep/pipeline"
	"github.com/ZanzyTHEbar/tensorprep/tprep/results"
	"github.com/ZanzyTHEbar/tensorprep/tprep/tokenizer"

	"github.com/spf13/cobra"
)

var cfg *config.Config

func rootCmd() *cobra.Command {
	var configPath *string

	root := cobra.Command{
		Use:   internal.DefaultAppName,
		Short: "prepare image and text datasets as model-ready tensors",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.LoadConfig(*configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			return nil
		},
		SilenceUsage: true,
	}

	configPath = root.PersistentFlags().String("config", "",
		"path to a config file (defaults are searched in the usual locations)")

	root.AddCommand(prepareDigitsCmd())
	root.AddCommand(prepareReviewsCmd())
	root.AddCommand(reportCmd())
	return &root
}

func prepareDigitsCmd() *cobra.Command {
	var layout *string
	var fromDirs *bool
	var score *bool

	cmd := cobra.Command{
		Use:   "prepare-digits",
		Short: "normalize a digit image dataset and one-hot encode its labels",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			dir := cfg.Datasets.DigitsDir

			var batch ingest.ClassImageSet
			if *fromDirs {
				set, err := ingest.ScanClassDirs(ctx, dir, cfg.Runtime.MaxWorkers)
				if err != nil {
					return err
				}
				batch = *set
			} else {
				images, err := ingest.ReadIDXImages(filepath.Join(dir, "train-images-idx3-ubyte"))
				if err != nil {
					return err
				}
				labels, err := ingest.ReadIDXLabels(filepath.Join(dir, "train-labels-idx1-ubyte"))
				if err != nil {
					return err
				}
				batch = ingest.ClassImageSet{Images: images, Labels: labels}
				for i := 0; i < 10; i++ {
					batch.Classes = append(batch.Classes, fmt.Sprintf("%d", i))
				}
			}

			numClasses := len(batch.Classes)
			prep := pipeline.NewPreparer(cfg.Runtime.MaxWorkers)
			res, err := prep.PrepareImages(ctx, batch.Images, batch.Labels, pipeline.ImageOptions{
				Layout:     pipeline.Layout(*layout),
				NumClasses: numClasses,
			})
			if err != nil {
				return err
			}

			arch := model.DenseDigits()
			if pipeline.Layout(*layout) == pipeline.LayoutChannel {
				arch = model.ConvDigits()
			}
			if err := arch.CheckBatch(res.SampleShape); err != nil {
				return fmt.Errorf("prepared batch does not fit %s: %w", arch.Name, err)
			}

			metrics := balanceMetrics(res.Labels)
			if *score && res.Flat != nil {
				scored, err := scoreSample(ctx, res.Flat, numClasses)
				if err != nil {
					return err
				}
				metrics = append(metrics, scored...)
			}

			return recordRun(results.Run{
				CaseStudy:   "digits",
				Mode:        *layout,
				SampleCount: batch.Images.Count(),
				SampleShape: fmt.Sprint(res.SampleShape),
				Seed:        cfg.Runtime.Seed,
			}, metrics)
		},
	}

	layout = cmd.Flags().String("layout", string(pipeline.LayoutFlat),
		"target sample layout: flat or channel")
	fromDirs = cmd.Flags().Bool("from-dirs", false,
		"load per-class image directories instead of idx files")
	score = cmd.Flags().Bool("score", false,
		"score the prepared rows with the configured scorer and record summary metrics")

	return &cmd
}

func prepareReviewsCmd() *cobra.Command {
	var mode *string
	var maxLen *int
	var vocabBound *int

	cmd := cobra.Command{
		Use:   "prepare-reviews",
		Short: "vectorize a labeled review corpus into fixed-width matrices",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			set, err := ingest.LoadReviewDirs(cfg.Datasets.ReviewsDir)
			if err != nil {
				return err
			}

			bound := *vocabBound
			if bound == 0 {
				bound = cfg.Text.VocabularyBound
			}
			seqLen := *maxLen
			if seqLen == 0 {
				seqLen = cfg.Text.MaxSeqLen
			}

			prep := pipeline.NewPreparer(cfg.Runtime.MaxWorkers)
			var res *pipeline.TextResult
			if cfg.Text.WordPieceVocab != "" && pipeline.TextMode(*mode) == pipeline.TextPadded {
				tok, err := tokenizer.NewSugarWordPiece(cfg.Text.WordPieceVocab)
				if err != nil {
					return err
				}
				res, err = prep.PrepareTokenized(ctx, set.Texts, set.Labels, tok, seqLen)
				if err != nil {
					return err
				}
			} else {
				var err error
				res, err = prep.PrepareText(ctx, set.Texts, set.Labels, pipeline.TextOptions{
					Mode:            pipeline.TextMode(*mode),
					VocabularyBound: bound,
					MaxLen:          seqLen,
				})
				if err != nil {
					return err
				}
			}

			arch := model.RecurrentSentiment(bound, seqLen)
			if pipeline.TextMode(*mode) == pipeline.TextMultiHot {
				arch = model.DenseSentiment(res.Vocab.Bound())
			}
			if err := arch.CheckBatch(res.SampleShape); err != nil {
				return fmt.Errorf("prepared batch does not fit %s: %w", arch.Name, err)
			}

			positive := 0.0
			for _, l := range res.Labels {
				positive += l
			}
			metrics := []results.Metric{
				{Name: "positive_fraction", Value: positive / float64(len(res.Labels))},
			}
			if res.Vocab != nil {
				metrics = append(metrics, results.Metric{
					Name: "vocabulary_tokens", Value: float64(res.Vocab.Len()),
				})
			}

			return recordRun(results.Run{
				CaseStudy:   "reviews",
				Mode:        *mode,
				SampleCount: len(set.Texts),
				SampleShape: fmt.Sprint(res.SampleShape),
				Seed:        cfg.Runtime.Seed,
			}, metrics)
		},
	}

	mode = cmd.Flags().String("mode", string(pipeline.TextMultiHot),
		"text representation: multihot or padded")
	maxLen = cmd.Flags().Int("max-len", 0,
		"sequence length for padded mode, 0 uses the configured default")
	vocabBound = cmd.Flags().Int("vocab-bound", 0,
		"vocabulary bound, 0 uses the configured default")

	return &cmd
}

func reportCmd() *cobra.Command {
	var caseStudy *string
	var metric *string

	cmd := cobra.Command{
		Use:   "report",
		Short: "list recorded preparation runs and summarize a metric",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := results.Open(cfg.Results.DBPath)
			if err != nil {
				return err
			}
			defer store.Close()

			runs, err := store.ListRuns(*caseStudy)
			if err != nil {
				return err
			}
			for _, run := range runs {
				fmt.Printf("%s  %-8s %-9s %8d samples  shape %-12s seed %d\n",
					run.CreatedAt.Format("2006-01-02 15:04:05"),
					run.CaseStudy, run.Mode, run.SampleCount, run.SampleShape, run.Seed)
			}

			if *metric != "" && *caseStudy != "" {
				values, err := store.MetricHistory(*caseStudy, *metric)
				if err != nil {
					return err
				}
				summary, err := results.Summarize(*metric, values)
				if err != nil {
					return err
				}
				fmt.Printf("\n%s over %d runs: mean %.4f stddev %.4f min %.4f max %.4f\n",
					summary.Name, summary.Count, summary.Mean, summary.StdDev, summary.Min, summary.Max)
			}
			return nil
		},
	}

	caseStudy = cmd.Flags().String("case-study", "", "filter runs by case study")
	metric = cmd.Flags().String("metric", "", "summarize one metric across the filtered runs")

	return &cmd
}

func balanceMetrics(labels [][]float64) []results.Metric {
	fractions := results.ClassBalance(labels)
	metrics := make([]results.Metric, 0, len(fractions))
	for class, f := range fractions {
		metrics = append(metrics, results.Metric{
			Name:  fmt.Sprintf("class_balance_%d", class),
			Value: f,
		})
	}
	return metrics
}

func scoreSample(ctx context.Context, rows [][]float64, classes int) ([]results.Metric, error) {
	scorer := model.NewScorer(cfg.Scoring.Scorer, classes, cfg.Runtime.Seed, cfg.Scoring.ModelPath)

	sample := rows
	if len(sample) > 512 {
		sample = sample[:512]
	}
	scores, err := scorer.Score(ctx, sample)
	if err != nil {
		return nil, fmt.Errorf("score sample: %w", err)
	}

	top := 0.0
	for _, row := range scores {
		best := 0.0
		for _, v := range row {
			if v > best {
				best = v
			}
		}
		top += best
	}
	return []results.Metric{
		{Name: "score_sample_rows", Value: float64(len(scores))},
		{Name: "score_mean_top", Value: top / float64(len(scores))},
	}, nil
}

func recordRun(run results.Run, metrics []results.Metric) error {
	store, err := results.Open(cfg.Results.DBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	stored, err := store.RecordRun(run, metrics)
	if err != nil {
		return err
	}
	slog.Info("Run recorded", "id", stored.ID, "case_study", stored.CaseStudy, "metrics", len(metrics))
	return nil
}

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
