package launch

import (
	"fmt"
	"strings"

	"longdoc-trainer/internal/domain"
)

// ResolvedConfig is a JobConfig whose path fields have been expanded and
// verified against the filesystem. Only resolved configurations reach
// BuildInvocation.
type ResolvedConfig struct {
	domain.JobConfig
}

// ResolveConfig expands $VAR references in every path field and verifies
// the paths the engine will read: the data directory must exist, the
// restore file must exist when supplied (and is mandatory for generation),
// the dictionary must exist when supplied. The save directory is created
// if absent. Any failure aborts before a subprocess is considered.
func (l *Launcher) ResolveConfig(cfg domain.JobConfig) (ResolvedConfig, error) {
	cfg.DataDir = strings.TrimSpace(l.expandEnv(cfg.DataDir))
	cfg.RestoreFile = strings.TrimSpace(l.expandEnv(cfg.RestoreFile))
	cfg.DictPath = strings.TrimSpace(l.expandEnv(cfg.DictPath))
	cfg.SaveDir = strings.TrimSpace(l.expandEnv(cfg.SaveDir))

	if cfg.DataDir == "" {
		return ResolvedConfig{}, &InvalidConfigError{Field: "dataDir", Reason: "data directory is required"}
	}
	info, err := l.stat(cfg.DataDir)
	if err != nil {
		return ResolvedConfig{}, &MissingPathError{Field: "dataDir", Path: cfg.DataDir}
	}
	if !info.IsDir() {
		return ResolvedConfig{}, &InvalidConfigError{Field: "dataDir", Reason: fmt.Sprintf("not a directory: %s", cfg.DataDir)}
	}

	if cfg.Task == domain.TaskGenerate && cfg.RestoreFile == "" {
		return ResolvedConfig{}, &InvalidConfigError{Field: "restoreFile", Reason: "a checkpoint path is required for generation"}
	}
	if cfg.RestoreFile != "" {
		if _, err := l.stat(cfg.RestoreFile); err != nil {
			return ResolvedConfig{}, &MissingPathError{Field: "restoreFile", Path: cfg.RestoreFile}
		}
	}

	if cfg.DictPath != "" {
		if _, err := l.stat(cfg.DictPath); err != nil {
			return ResolvedConfig{}, &MissingPathError{Field: "dictPath", Path: cfg.DictPath}
		}
	}

	if cfg.SaveDir == "" {
		return ResolvedConfig{}, &InvalidConfigError{Field: "saveDir", Reason: "save directory is required"}
	}
	if err := l.mkdirAll(cfg.SaveDir, 0o755); err != nil {
		return ResolvedConfig{}, fmt.Errorf("create save directory %s: %w", cfg.SaveDir, err)
	}

	return ResolvedConfig{JobConfig: cfg}, nil
}
