package launch

import "fmt"

// MissingPathError reports a required file or directory that does not
// exist. It is always raised before any subprocess starts.
type MissingPathError struct {
	Field string
	Path  string
}

// Error names the offending field and path.
func (e *MissingPathError) Error() string {
	return fmt.Sprintf("%s: path does not exist: %s", e.Field, e.Path)
}

// InvalidConfigError reports a field value outside its accepted domain or
// a conflict between two fields.
type InvalidConfigError struct {
	Field  string
	Reason string
}

// Error names the offending field.
func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// EngineError reports a non-zero exit from the external engine. The code
// is forwarded verbatim; the launcher attaches no interpretation.
type EngineError struct {
	Command  string
	ExitCode int
}

// Error formats the engine failure for logs.
func (e *EngineError) Error() string {
	return fmt.Sprintf("%s exited with code %d", e.Command, e.ExitCode)
}

// LaunchError is a stage-aware error wrapping any launch failure.
type LaunchError struct {
	Stage   string
	Message string
	Err     error
}

// Error formats launch failures for logs and CLI output.
func (e *LaunchError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Stage, e.Message)
	}
	return fmt.Sprintf("%s: %s: %v", e.Stage, e.Message, e.Err)
}

// Unwrap exposes the underlying error for errors.Is / errors.As.
func (e *LaunchError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
