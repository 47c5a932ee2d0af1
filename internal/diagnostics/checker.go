package diagnostics

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"strings"
	"time"

	"longdoc-trainer/internal/domain"
)

// Checker validates the engine binaries and required filesystem paths
// before any job is launched.
type Checker struct {
	lookPath   func(string) (string, error)
	stat       func(string) (os.FileInfo, error)
	readDir    func(string) ([]os.DirEntry, error)
	mkdirAll   func(string, os.FileMode) error
	createTemp func(string, string) (*os.File, error)
	remove     func(string) error
}

// NewChecker builds a checker using real OS dependencies.
func NewChecker() *Checker {
	return &Checker{
		lookPath:   exec.LookPath,
		stat:       os.Stat,
		readDir:    os.ReadDir,
		mkdirAll:   os.MkdirAll,
		createTemp: os.CreateTemp,
		remove:     os.Remove,
	}
}

// Run executes all pre-flight checks and returns a combined report.
func (c *Checker) Run(settings domain.Settings) domain.DiagnosticReport {
	items := []domain.DiagnosticItem{
		c.checkEngine("train_command", settings.TrainCommand),
		c.checkEngine("generate_command", settings.GenerateCommand),
		c.checkDataDir(settings.DataDir),
		c.checkDictionary(settings.DictPath),
		c.checkSaveDir(settings.SaveDir),
	}

	hasFailures := false
	for _, item := range items {
		if item.Status == domain.DiagnosticStatusFail {
			hasFailures = true
			break
		}
	}

	return domain.DiagnosticReport{
		GeneratedAt: time.Now().UTC(),
		HasFailures: hasFailures,
		Items:       items,
	}
}

// checkEngine verifies one engine binary is resolvable, either on PATH or
// as a configured absolute path.
func (c *Checker) checkEngine(id, command string) domain.DiagnosticItem {
	item := domain.DiagnosticItem{
		ID:   id,
		Name: command,
	}

	if strings.TrimSpace(command) == "" {
		item.Status = domain.DiagnosticStatusFail
		item.Message = "Engine command is empty."
		item.Hint = "Configure the engine binary name or path in settings."
		return item
	}

	if strings.ContainsRune(command, os.PathSeparator) {
		if _, err := c.stat(command); err != nil {
			item.Status = domain.DiagnosticStatusFail
			item.Message = fmt.Sprintf("Engine binary not found: %s", command)
			item.Hint = "Install the engine or point settings at the installed binary."
			return item
		}
		item.Status = domain.DiagnosticStatusPass
		item.Message = fmt.Sprintf("Found at %s", command)
		return item
	}

	path, err := c.lookPath(command)
	if err != nil {
		item.Status = domain.DiagnosticStatusFail
		item.Message = fmt.Sprintf("Command not found in PATH: %s", command)
		item.Hint = "Install the engine and ensure the binary is available on PATH before launching a job."
		return item
	}

	item.Status = domain.DiagnosticStatusPass
	item.Message = fmt.Sprintf("Found at %s", path)
	return item
}

// checkDataDir validates the configured default dataset directory. A
// binarized dataset carries split index files next to the dictionary.
func (c *Checker) checkDataDir(dataDir string) domain.DiagnosticItem {
	item := domain.DiagnosticItem{
		ID:   "data_dir",
		Name: "Data directory",
	}

	if strings.TrimSpace(dataDir) == "" {
		item.Status = domain.DiagnosticStatusFail
		item.Message = "Data directory is not configured."
		item.Hint = "Set a default data directory in settings or pass --data on each run."
		return item
	}

	info, err := c.stat(dataDir)
	if err != nil {
		item.Status = domain.DiagnosticStatusFail
		if IsNotExist(err) {
			item.Message = fmt.Sprintf("Data directory does not exist: %s", dataDir)
		} else {
			item.Message = fmt.Sprintf("Cannot access data directory: %s", dataDir)
		}
		item.Hint = "Prepare the dataset with the engine's preprocessing step first."
		return item
	}
	if !info.IsDir() {
		item.Status = domain.DiagnosticStatusFail
		item.Message = fmt.Sprintf("Data path is not a directory: %s", dataDir)
		return item
	}

	entries, err := c.readDir(dataDir)
	if err != nil {
		item.Status = domain.DiagnosticStatusFail
		item.Message = fmt.Sprintf("Cannot read data directory: %s", dataDir)
		item.Hint = "Check permissions for the data directory."
		return item
	}
	if len(entries) == 0 {
		item.Status = domain.DiagnosticStatusFail
		item.Message = fmt.Sprintf("Data directory is empty: %s", dataDir)
		item.Hint = "Prepare the dataset with the engine's preprocessing step first."
		return item
	}

	item.Status = domain.DiagnosticStatusPass
	item.Message = fmt.Sprintf("Data directory found: %s", dataDir)
	return item
}

// checkDictionary validates the optional vocabulary file.
func (c *Checker) checkDictionary(dictPath string) domain.DiagnosticItem {
	item := domain.DiagnosticItem{
		ID:   "dict_path",
		Name: "Dictionary",
	}

	if strings.TrimSpace(dictPath) == "" {
		item.Status = domain.DiagnosticStatusPass
		item.Message = "No custom dictionary configured; the engine uses the dataset's own vocabulary."
		return item
	}

	if _, err := c.stat(dictPath); err != nil {
		item.Status = domain.DiagnosticStatusFail
		if IsNotExist(err) {
			item.Message = fmt.Sprintf("Dictionary file does not exist: %s", dictPath)
		} else {
			item.Message = fmt.Sprintf("Cannot access dictionary file: %s", dictPath)
		}
		item.Hint = "Point settings at the vocabulary file the checkpoint was trained with."
		return item
	}

	item.Status = domain.DiagnosticStatusPass
	item.Message = fmt.Sprintf("Dictionary file found: %s", dictPath)
	return item
}

// checkSaveDir validates save directory existence and write access.
func (c *Checker) checkSaveDir(saveDir string) domain.DiagnosticItem {
	item := domain.DiagnosticItem{
		ID:   "save_dir",
		Name: "Save directory",
	}

	if strings.TrimSpace(saveDir) == "" {
		item.Status = domain.DiagnosticStatusFail
		item.Message = "Save directory is empty."
		item.Hint = "Set a save directory where checkpoints and results can be written."
		return item
	}

	if err := c.mkdirAll(saveDir, 0o755); err != nil {
		item.Status = domain.DiagnosticStatusFail
		item.Message = fmt.Sprintf("Cannot create save directory: %s", saveDir)
		item.Hint = "Choose a writable location or adjust filesystem permissions."
		return item
	}

	tmpFile, err := c.createTemp(saveDir, ".write-check-*")
	if err != nil {
		item.Status = domain.DiagnosticStatusFail
		item.Message = fmt.Sprintf("Save directory is not writable: %s", saveDir)
		item.Hint = "Checkpoints are large; pick a writable directory with enough space."
		return item
	}

	tmpPath := tmpFile.Name()
	_ = tmpFile.Close()
	_ = c.remove(tmpPath)

	item.Status = domain.DiagnosticStatusPass
	item.Message = fmt.Sprintf("Writable directory: %s", saveDir)
	return item
}

// NewCheckerForTests creates checker with injectable dependencies.
func NewCheckerForTests(
	lookPath func(string) (string, error),
	stat func(string) (os.FileInfo, error),
	readDir func(string) ([]os.DirEntry, error),
	mkdirAll func(string, os.FileMode) error,
	createTemp func(string, string) (*os.File, error),
	remove func(string) error,
) *Checker {
	return &Checker{
		lookPath:   lookPath,
		stat:       stat,
		readDir:    readDir,
		mkdirAll:   mkdirAll,
		createTemp: createTemp,
		remove:     remove,
	}
}

// IsNotExist reports whether error represents file-not-found.
func IsNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
