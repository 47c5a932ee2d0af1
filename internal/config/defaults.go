package config

import (
	"os"
	"path/filepath"

	"longdoc-trainer/internal/domain"
)

// DefaultSettings returns baseline launcher configuration for first run.
func DefaultSettings() domain.Settings {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}

	return domain.Settings{
		TrainCommand:    "seq2seq-train",
		GenerateCommand: "seq2seq-generate",
		SaveDir:         filepath.Join(homeDir, ".longdoc-trainer", "checkpoints"),
	}
}

// DefaultJobConfig returns the hyperparameters used when a flag is not
// given. The values match the long-document fine-tuning recipe the engine
// ships with.
func DefaultJobConfig(task domain.TaskKind) domain.JobConfig {
	cfg := domain.JobConfig{
		Task: task,
		Arch: "seq2seq_large_16k",

		MaxSourcePositions: 16384,
		MaxTargetPositions: 1024,

		LearningRate:  1e-4,
		AdamBeta1:     0.9,
		AdamBeta2:     0.999,
		AdamEps:       1e-8,
		ClipNorm:      0.1,
		WarmupUpdates: 500,
		TotalUpdates:  20000,

		BatchSize:   2,
		UpdateFreq:  4,
		NumWorkers:  2,
		LogInterval: 10,
	}

	if task == domain.TaskGenerate {
		cfg.Beam = 4
		cfg.MinLen = 55
		cfg.MaxLenB = 140
		cfg.Subset = "test"
	}

	return cfg
}
