package launch

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"longdoc-trainer/internal/domain"
)

// newFSLauncher builds a launcher against the real filesystem with a
// test-controlled environment expansion.
func newFSLauncher(expand func(string) string) *Launcher {
	if expand == nil {
		expand = func(s string) string { return s }
	}
	return NewLauncherForTests(
		"seq2seq-train",
		"seq2seq-generate",
		&fakeRunner{},
		os.Stat,
		os.MkdirAll,
		expand,
	)
}

// TestResolveConfigExpandsEnvReferences verifies $VAR expansion happens
// during resolution, not anywhere deeper.
func TestResolveConfigExpandsEnvReferences(t *testing.T) {
	root := t.TempDir()
	dataDir := filepath.Join(root, "bin")
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		t.Fatalf("mkdir data: %v", err)
	}

	l := newFSLauncher(func(s string) string {
		return strings.ReplaceAll(s, "$YOUR_DATA", root)
	})

	resolved, err := l.ResolveConfig(domain.JobConfig{
		Task:    domain.TaskTrain,
		DataDir: "$YOUR_DATA/bin",
		SaveDir: filepath.Join(root, "save"),
	})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if resolved.DataDir != dataDir {
		t.Fatalf("dataDir = %q, want %q", resolved.DataDir, dataDir)
	}
}

// TestResolveConfigMissingDataDir verifies the error names the exact
// field and path.
func TestResolveConfigMissingDataDir(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "no-such-dir")
	l := newFSLauncher(nil)

	_, err := l.ResolveConfig(domain.JobConfig{
		Task:    domain.TaskTrain,
		DataDir: missing,
		SaveDir: t.TempDir(),
	})

	var missingErr *MissingPathError
	if !errors.As(err, &missingErr) {
		t.Fatalf("error = %v, want MissingPathError", err)
	}
	if missingErr.Field != "dataDir" {
		t.Fatalf("field = %q, want dataDir", missingErr.Field)
	}
	if missingErr.Path != missing {
		t.Fatalf("path = %q, want %q", missingErr.Path, missing)
	}
}

// TestResolveConfigMissingRestoreFile checks that a supplied restore path
// must exist.
func TestResolveConfigMissingRestoreFile(t *testing.T) {
	root := t.TempDir()
	l := newFSLauncher(nil)

	_, err := l.ResolveConfig(domain.JobConfig{
		Task:        domain.TaskTrain,
		DataDir:     root,
		RestoreFile: filepath.Join(root, "model.pt"),
		SaveDir:     filepath.Join(root, "save"),
	})

	var missingErr *MissingPathError
	if !errors.As(err, &missingErr) {
		t.Fatalf("error = %v, want MissingPathError", err)
	}
	if missingErr.Field != "restoreFile" {
		t.Fatalf("field = %q, want restoreFile", missingErr.Field)
	}
}

// TestResolveConfigGenerateRequiresCheckpoint checks the generation-mode
// checkpoint requirement.
func TestResolveConfigGenerateRequiresCheckpoint(t *testing.T) {
	root := t.TempDir()
	l := newFSLauncher(nil)

	_, err := l.ResolveConfig(domain.JobConfig{
		Task:    domain.TaskGenerate,
		DataDir: root,
		SaveDir: filepath.Join(root, "results"),
	})

	var invalidErr *InvalidConfigError
	if !errors.As(err, &invalidErr) {
		t.Fatalf("error = %v, want InvalidConfigError", err)
	}
	if invalidErr.Field != "restoreFile" {
		t.Fatalf("field = %q, want restoreFile", invalidErr.Field)
	}
}

// TestResolveConfigCreatesSaveDir verifies the save directory is created
// when absent.
func TestResolveConfigCreatesSaveDir(t *testing.T) {
	root := t.TempDir()
	saveDir := filepath.Join(root, "nested", "checkpoints")
	l := newFSLauncher(nil)

	if _, err := l.ResolveConfig(domain.JobConfig{
		Task:    domain.TaskTrain,
		DataDir: root,
		SaveDir: saveDir,
	}); err != nil {
		t.Fatalf("resolve: %v", err)
	}

	info, err := os.Stat(saveDir)
	if err != nil || !info.IsDir() {
		t.Fatalf("save dir not created: %v", err)
	}
}

// TestResolveConfigMissingDictionary checks dictionary validation.
func TestResolveConfigMissingDictionary(t *testing.T) {
	root := t.TempDir()
	l := newFSLauncher(nil)

	_, err := l.ResolveConfig(domain.JobConfig{
		Task:     domain.TaskTrain,
		DataDir:  root,
		DictPath: filepath.Join(root, "dict.txt"),
		SaveDir:  filepath.Join(root, "save"),
	})

	var missingErr *MissingPathError
	if !errors.As(err, &missingErr) {
		t.Fatalf("error = %v, want MissingPathError", err)
	}
	if missingErr.Field != "dictPath" {
		t.Fatalf("field = %q, want dictPath", missingErr.Field)
	}
}
