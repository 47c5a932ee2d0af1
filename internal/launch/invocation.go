package launch

import (
	"fmt"
	"strconv"
	"strings"

	"longdoc-trainer/internal/domain"
)

// Invocation is a fully rendered engine command.
type Invocation struct {
	Command string   `json:"command"`
	Args    []string `json:"args"`
}

// String renders the invocation the way a user would type it. Values
// containing whitespace are quoted so the output can be pasted into a
// shell.
func (inv Invocation) String() string {
	parts := make([]string, 0, len(inv.Args)+1)
	parts = append(parts, inv.Command)
	for _, arg := range inv.Args {
		if strings.ContainsAny(arg, " \t\"") {
			parts = append(parts, strconv.Quote(arg))
		} else {
			parts = append(parts, arg)
		}
	}
	return strings.Join(parts, " ")
}

// flagSpec binds one engine flag to a JobConfig field. The schema drives
// both argument rendering and parsing, so the two cannot drift.
type flagSpec struct {
	flag   string
	train  bool
	gen    bool
	render func(cfg domain.JobConfig) (string, bool)
	parse  func(cfg *domain.JobConfig, value string) error
}

// intFlag builds a spec for an integer field, omitted when zero.
func intFlag(flag string, train, gen bool, field func(*domain.JobConfig) *int) flagSpec {
	return flagSpec{
		flag:  flag,
		train: train,
		gen:   gen,
		render: func(cfg domain.JobConfig) (string, bool) {
			v := *field(&cfg)
			if v == 0 {
				return "", false
			}
			return strconv.Itoa(v), true
		},
		parse: func(cfg *domain.JobConfig, value string) error {
			v, err := strconv.Atoi(value)
			if err != nil {
				return fmt.Errorf("%s: not an integer: %q", flag, value)
			}
			*field(cfg) = v
			return nil
		},
	}
}

// floatFlag builds a spec for a float field, omitted when zero.
func floatFlag(flag string, train, gen bool, field func(*domain.JobConfig) *float64) flagSpec {
	return flagSpec{
		flag:  flag,
		train: train,
		gen:   gen,
		render: func(cfg domain.JobConfig) (string, bool) {
			v := *field(&cfg)
			if v == 0 {
				return "", false
			}
			return strconv.FormatFloat(v, 'g', -1, 64), true
		},
		parse: func(cfg *domain.JobConfig, value string) error {
			v, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return fmt.Errorf("%s: not a number: %q", flag, value)
			}
			*field(cfg) = v
			return nil
		},
	}
}

// stringFlag builds a spec for a string field, omitted when empty.
func stringFlag(flag string, train, gen bool, field func(*domain.JobConfig) *string) flagSpec {
	return flagSpec{
		flag:  flag,
		train: train,
		gen:   gen,
		render: func(cfg domain.JobConfig) (string, bool) {
			v := *field(&cfg)
			return v, v != ""
		},
		parse: func(cfg *domain.JobConfig, value string) error {
			*field(cfg) = value
			return nil
		},
	}
}

// fixedFlag builds a spec that always emits a constant flag value.
func fixedFlag(flag, value string, train, gen bool) flagSpec {
	return flagSpec{
		flag:  flag,
		train: train,
		gen:   gen,
		render: func(domain.JobConfig) (string, bool) {
			return value, true
		},
		parse: func(cfg *domain.JobConfig, got string) error {
			if got != value {
				return fmt.Errorf("%s: unsupported value %q", flag, got)
			}
			return nil
		},
	}
}

// betasFlag renders both Adam betas as the engine's tuple syntax.
func betasFlag() flagSpec {
	return flagSpec{
		flag:  "--adam-betas",
		train: true,
		render: func(cfg domain.JobConfig) (string, bool) {
			if cfg.AdamBeta1 == 0 && cfg.AdamBeta2 == 0 {
				return "", false
			}
			return fmt.Sprintf("(%s, %s)",
				strconv.FormatFloat(cfg.AdamBeta1, 'g', -1, 64),
				strconv.FormatFloat(cfg.AdamBeta2, 'g', -1, 64)), true
		},
		parse: func(cfg *domain.JobConfig, value string) error {
			trimmed := strings.TrimSpace(value)
			trimmed = strings.TrimPrefix(trimmed, "(")
			trimmed = strings.TrimSuffix(trimmed, ")")
			parts := strings.Split(trimmed, ",")
			if len(parts) != 2 {
				return fmt.Errorf("--adam-betas: expected two values, got %q", value)
			}
			b1, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
			if err != nil {
				return fmt.Errorf("--adam-betas: %v", err)
			}
			b2, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
			if err != nil {
				return fmt.Errorf("--adam-betas: %v", err)
			}
			cfg.AdamBeta1 = b1
			cfg.AdamBeta2 = b2
			return nil
		},
	}
}

// flagSchema is the single declarative source for the engine's argument
// surface. Order here is the emission order, so identical configurations
// always render identical argument lists.
var flagSchema = []flagSpec{
	stringFlag("--arch", true, false, func(c *domain.JobConfig) *string { return &c.Arch }),
	intFlag("--max-source-positions", true, true, func(c *domain.JobConfig) *int { return &c.MaxSourcePositions }),
	intFlag("--max-target-positions", true, true, func(c *domain.JobConfig) *int { return &c.MaxTargetPositions }),
	floatFlag("--lr", true, false, func(c *domain.JobConfig) *float64 { return &c.LearningRate }),
	betasFlag(),
	floatFlag("--adam-eps", true, false, func(c *domain.JobConfig) *float64 { return &c.AdamEps }),
	floatFlag("--clip-norm", true, false, func(c *domain.JobConfig) *float64 { return &c.ClipNorm }),
	intFlag("--warmup-updates", true, false, func(c *domain.JobConfig) *int { return &c.WarmupUpdates }),
	intFlag("--total-num-update", true, false, func(c *domain.JobConfig) *int { return &c.TotalUpdates }),
	intFlag("--batch-size", true, true, func(c *domain.JobConfig) *int { return &c.BatchSize }),
	intFlag("--update-freq", true, false, func(c *domain.JobConfig) *int { return &c.UpdateFreq }),
	intFlag("--num-workers", true, true, func(c *domain.JobConfig) *int { return &c.NumWorkers }),
	stringFlag("--restore-file", true, false, func(c *domain.JobConfig) *string { return &c.RestoreFile }),
	stringFlag("--path", false, true, func(c *domain.JobConfig) *string { return &c.RestoreFile }),
	stringFlag("--custom-dict", true, true, func(c *domain.JobConfig) *string { return &c.DictPath }),
	stringFlag("--gen-subset", false, true, func(c *domain.JobConfig) *string { return &c.Subset }),
	intFlag("--beam", false, true, func(c *domain.JobConfig) *int { return &c.Beam }),
	intFlag("--min-len", false, true, func(c *domain.JobConfig) *int { return &c.MinLen }),
	intFlag("--max-len-b", false, true, func(c *domain.JobConfig) *int { return &c.MaxLenB }),
	stringFlag("--save-dir", true, false, func(c *domain.JobConfig) *string { return &c.SaveDir }),
	stringFlag("--results-path", false, true, func(c *domain.JobConfig) *string { return &c.SaveDir }),
	fixedFlag("--log-format", "json", true, true),
	intFlag("--log-interval", true, false, func(c *domain.JobConfig) *int { return &c.LogInterval }),
}

// appliesTo reports whether the spec is part of the task's surface.
func (s flagSpec) appliesTo(task domain.TaskKind) bool {
	switch task {
	case domain.TaskTrain:
		return s.train
	case domain.TaskGenerate:
		return s.gen
	default:
		return false
	}
}

// BuildInvocation renders a resolved configuration into the engine's
// argument list: the data directory first as a positional argument, then
// flag/value pairs in schema order. Identical configurations yield
// identical argument lists.
func BuildInvocation(resolved ResolvedConfig) ([]string, error) {
	cfg := resolved.JobConfig
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	args := []string{cfg.DataDir}
	for _, spec := range flagSchema {
		if !spec.appliesTo(cfg.Task) {
			continue
		}
		value, ok := spec.render(cfg)
		if !ok {
			continue
		}
		args = append(args, spec.flag, value)
	}
	return args, nil
}

// ParseInvocation inverts BuildInvocation for the given task kind. It is
// the round-trip counterpart used by tests and the dry-run inspector.
func ParseInvocation(task domain.TaskKind, args []string) (domain.JobConfig, error) {
	cfg := domain.JobConfig{Task: task}
	if len(args) == 0 {
		return cfg, &InvalidConfigError{Field: "dataDir", Reason: "argument list is empty"}
	}
	cfg.DataDir = args[0]

	byFlag := make(map[string]flagSpec, len(flagSchema))
	for _, spec := range flagSchema {
		if spec.appliesTo(task) {
			byFlag[spec.flag] = spec
		}
	}

	rest := args[1:]
	for i := 0; i < len(rest); i += 2 {
		spec, ok := byFlag[rest[i]]
		if !ok {
			return cfg, &InvalidConfigError{Field: rest[i], Reason: "unknown flag"}
		}
		if i+1 >= len(rest) {
			return cfg, &InvalidConfigError{Field: rest[i], Reason: "missing value"}
		}
		if err := spec.parse(&cfg, rest[i+1]); err != nil {
			return cfg, &InvalidConfigError{Field: rest[i], Reason: err.Error()}
		}
	}
	return cfg, nil
}

// validateConfig rejects out-of-domain values and field conflicts before
// any subprocess is considered.
func validateConfig(cfg domain.JobConfig) error {
	switch cfg.Task {
	case domain.TaskTrain, domain.TaskGenerate:
	default:
		return &InvalidConfigError{Field: "task", Reason: fmt.Sprintf("unknown task kind: %q", cfg.Task)}
	}

	if cfg.MaxSourcePositions <= 0 {
		return &InvalidConfigError{Field: "maxSourcePositions", Reason: "must be a positive integer"}
	}
	if cfg.MaxTargetPositions <= 0 {
		return &InvalidConfigError{Field: "maxTargetPositions", Reason: "must be a positive integer"}
	}
	if cfg.BatchSize <= 0 {
		return &InvalidConfigError{Field: "batchSize", Reason: "must be a positive integer"}
	}
	if cfg.NumWorkers <= 0 {
		return &InvalidConfigError{Field: "numWorkers", Reason: "must be a positive integer"}
	}

	// Architecture limits are declared by the catalog; the checkpoint
	// carries the architecture for generation, so the check only applies
	// when an architecture is named.
	if cfg.Task == domain.TaskTrain || cfg.Arch != "" {
		arch, ok := domain.ArchitectureByID(cfg.Arch)
		if !ok {
			return &InvalidConfigError{Field: "arch", Reason: fmt.Sprintf("unknown architecture: %q", cfg.Arch)}
		}
		if cfg.MaxSourcePositions > arch.MaxSourcePositions {
			return &InvalidConfigError{
				Field:  "maxSourcePositions",
				Reason: fmt.Sprintf("%d exceeds the %d-token limit of %s", cfg.MaxSourcePositions, arch.MaxSourcePositions, arch.ID),
			}
		}
		if cfg.MaxTargetPositions > arch.MaxTargetPositions {
			return &InvalidConfigError{
				Field:  "maxTargetPositions",
				Reason: fmt.Sprintf("%d exceeds the %d-token limit of %s", cfg.MaxTargetPositions, arch.MaxTargetPositions, arch.ID),
			}
		}
	}

	switch cfg.Task {
	case domain.TaskTrain:
		if cfg.LearningRate <= 0 {
			return &InvalidConfigError{Field: "learningRate", Reason: "must be positive"}
		}
		if cfg.ClipNorm < 0 {
			return &InvalidConfigError{Field: "clipNorm", Reason: "must not be negative"}
		}
		if cfg.WarmupUpdates < 0 {
			return &InvalidConfigError{Field: "warmupUpdates", Reason: "must not be negative"}
		}
		if cfg.TotalUpdates <= 0 {
			return &InvalidConfigError{Field: "totalUpdates", Reason: "must be a positive integer"}
		}
		if cfg.UpdateFreq <= 0 {
			return &InvalidConfigError{Field: "updateFreq", Reason: "must be a positive integer"}
		}
		if cfg.WarmupUpdates > cfg.TotalUpdates {
			return &InvalidConfigError{Field: "warmupUpdates", Reason: "warmup exceeds total updates"}
		}
	case domain.TaskGenerate:
		if cfg.Beam <= 0 {
			return &InvalidConfigError{Field: "beam", Reason: "must be a positive integer"}
		}
		if cfg.MinLen < 0 {
			return &InvalidConfigError{Field: "minLen", Reason: "must not be negative"}
		}
		if cfg.MaxLenB > 0 && cfg.MinLen > cfg.MaxLenB {
			return &InvalidConfigError{Field: "minLen", Reason: "minimum length exceeds maximum length"}
		}
	}

	return nil
}
