package launch

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"longdoc-trainer/internal/domain"
)

// trainConfig returns a valid resolved training configuration.
func trainConfig() ResolvedConfig {
	return ResolvedConfig{JobConfig: domain.JobConfig{
		Task:               domain.TaskTrain,
		Arch:               "seq2seq_large_16k",
		DataDir:            "/data/bin",
		RestoreFile:        "/ckpt/model.pt",
		DictPath:           "/data/dict.txt",
		SaveDir:            "/out/ckpt",
		MaxSourcePositions: 16384,
		MaxTargetPositions: 1024,
		LearningRate:       1e-4,
		AdamBeta1:          0.9,
		AdamBeta2:          0.999,
		AdamEps:            1e-8,
		ClipNorm:           0.1,
		WarmupUpdates:      500,
		TotalUpdates:       20000,
		BatchSize:          2,
		UpdateFreq:         4,
		NumWorkers:         2,
		LogInterval:        10,
	}}
}

// TestBuildInvocationDeterministic verifies identical configs render
// byte-identical argument lists.
func TestBuildInvocationDeterministic(t *testing.T) {
	first, err := BuildInvocation(trainConfig())
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	for i := 0; i < 5; i++ {
		again, err := BuildInvocation(trainConfig())
		if err != nil {
			t.Fatalf("build #%d: %v", i, err)
		}
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("argument lists differ:\n%v\n%v", first, again)
		}
	}
}

// TestBuildInvocationPositionFlags verifies both sequence-length limits
// appear as distinct flags, each exactly once.
func TestBuildInvocationPositionFlags(t *testing.T) {
	args, err := BuildInvocation(trainConfig())
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	if args[0] != "/data/bin" {
		t.Fatalf("args[0] = %q, want data directory first", args[0])
	}

	if got := flagValueCount(args, "--max-source-positions", "16384"); got != 1 {
		t.Fatalf("--max-source-positions 16384 appears %d times, want 1", got)
	}
	if got := flagValueCount(args, "--max-target-positions", "1024"); got != 1 {
		t.Fatalf("--max-target-positions 1024 appears %d times, want 1", got)
	}
}

// TestBuildInvocationAdamBetasTuple verifies the tuple rendering.
func TestBuildInvocationAdamBetasTuple(t *testing.T) {
	args, err := BuildInvocation(trainConfig())
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	value := flagValue(t, args, "--adam-betas")
	if value != "(0.9, 0.999)" {
		t.Fatalf("--adam-betas = %q, want (0.9, 0.999)", value)
	}
}

// TestBuildInvocationUnknownArch checks architecture catalog enforcement.
func TestBuildInvocationUnknownArch(t *testing.T) {
	cfg := trainConfig()
	cfg.Arch = "transformer_tiny"

	_, err := BuildInvocation(cfg)
	var invalidErr *InvalidConfigError
	if !errors.As(err, &invalidErr) {
		t.Fatalf("error = %v, want InvalidConfigError", err)
	}
	if invalidErr.Field != "arch" {
		t.Fatalf("field = %q, want arch", invalidErr.Field)
	}
}

// TestBuildInvocationSourceBeyondArchLimit checks the positional-limit
// conflict between sequence length and architecture.
func TestBuildInvocationSourceBeyondArchLimit(t *testing.T) {
	cfg := trainConfig()
	cfg.Arch = "seq2seq_large_8k"
	cfg.MaxSourcePositions = 16384

	_, err := BuildInvocation(cfg)
	var invalidErr *InvalidConfigError
	if !errors.As(err, &invalidErr) {
		t.Fatalf("error = %v, want InvalidConfigError", err)
	}
	if invalidErr.Field != "maxSourcePositions" {
		t.Fatalf("field = %q, want maxSourcePositions", invalidErr.Field)
	}
	if !strings.Contains(invalidErr.Reason, "8192") {
		t.Fatalf("reason %q does not name the architecture limit", invalidErr.Reason)
	}
}

// TestBuildInvocationNegativeBatchSize checks numeric domain validation.
func TestBuildInvocationNegativeBatchSize(t *testing.T) {
	cfg := trainConfig()
	cfg.BatchSize = -1

	_, err := BuildInvocation(cfg)
	var invalidErr *InvalidConfigError
	if !errors.As(err, &invalidErr) {
		t.Fatalf("error = %v, want InvalidConfigError", err)
	}
	if invalidErr.Field != "batchSize" {
		t.Fatalf("field = %q, want batchSize", invalidErr.Field)
	}
}

// TestInvocationRoundTrip verifies parsing a rendered argument list
// yields an equivalent configuration.
func TestInvocationRoundTrip(t *testing.T) {
	want := trainConfig().JobConfig

	args, err := BuildInvocation(ResolvedConfig{JobConfig: want})
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	got, err := ParseInvocation(domain.TaskTrain, args)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got != want {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", got, want)
	}
}

// TestInvocationRoundTripGenerate covers the generation surface.
func TestInvocationRoundTripGenerate(t *testing.T) {
	want := domain.JobConfig{
		Task:               domain.TaskGenerate,
		DataDir:            "/data/bin",
		RestoreFile:        "/ckpt/model.pt",
		DictPath:           "/data/dict.txt",
		SaveDir:            "/out/results",
		MaxSourcePositions: 16384,
		MaxTargetPositions: 1024,
		BatchSize:          2,
		NumWorkers:         2,
		Beam:               4,
		MinLen:             55,
		MaxLenB:            140,
		Subset:             "test",
	}

	args, err := BuildInvocation(ResolvedConfig{JobConfig: want})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if got := flagValue(t, args, "--path"); got != "/ckpt/model.pt" {
		t.Fatalf("--path = %q, want checkpoint path", got)
	}

	got, err := ParseInvocation(domain.TaskGenerate, args)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got != want {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", got, want)
	}
}

// TestParseInvocationRejectsUnknownFlag checks strict parsing.
func TestParseInvocationRejectsUnknownFlag(t *testing.T) {
	_, err := ParseInvocation(domain.TaskTrain, []string{"/data/bin", "--fp16", "true"})
	var invalidErr *InvalidConfigError
	if !errors.As(err, &invalidErr) {
		t.Fatalf("error = %v, want InvalidConfigError", err)
	}
}

// TestBuildInvocationGenerateMinLenConflict checks generation length
// conflict detection.
func TestBuildInvocationGenerateMinLenConflict(t *testing.T) {
	cfg := ResolvedConfig{JobConfig: domain.JobConfig{
		Task:               domain.TaskGenerate,
		DataDir:            "/data/bin",
		RestoreFile:        "/ckpt/model.pt",
		SaveDir:            "/out",
		MaxSourcePositions: 1024,
		MaxTargetPositions: 1024,
		BatchSize:          2,
		NumWorkers:         2,
		Beam:               4,
		MinLen:             200,
		MaxLenB:            140,
	}}

	_, err := BuildInvocation(cfg)
	var invalidErr *InvalidConfigError
	if !errors.As(err, &invalidErr) {
		t.Fatalf("error = %v, want InvalidConfigError", err)
	}
	if invalidErr.Field != "minLen" {
		t.Fatalf("field = %q, want minLen", invalidErr.Field)
	}
}

// flagValue returns the value following one flag occurrence.
func flagValue(t *testing.T, args []string, flag string) string {
	t.Helper()
	for i, arg := range args {
		if arg == flag {
			if i+1 >= len(args) {
				t.Fatalf("flag %s has no value", flag)
			}
			return args[i+1]
		}
	}
	t.Fatalf("flag %s not found in %v", flag, args)
	return ""
}

// flagValueCount counts occurrences of a flag with a specific value.
func flagValueCount(args []string, flag, value string) int {
	count := 0
	for i := 0; i+1 < len(args); i++ {
		if args[i] == flag && args[i+1] == value {
			count++
		}
	}
	return count
}
