package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/roach88/arq/internal/config"
	"github.com/roach88/arq/internal/engine"
	"github.com/roach88/arq/internal/prefix"
	"github.com/roach88/arq/internal/queryir"
	"github.com/roach88/arq/internal/results"
	"github.com/roach88/arq/internal/sparql"
	"github.com/roach88/arq/internal/syntax"
	"github.com/roach88/arq/internal/table"
	"github.com/roach88/arq/internal/turtle"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Evaluation or rendering failed on valid input
	ExitCommandError = 2 // Command error (bad flags, unreadable or invalid input files)
)

// Error code constants - unified across all CLI commands.
const (
	ErrCodeGeneric       = "E001" // Generic/unknown error
	ErrCodeReadFailed    = "E002" // Input file could not be read
	ErrCodeParseFailed   = "E003" // Turtle, SPARQL or results JSON syntax error
	ErrCodeUnsupported   = "E004" // Valid input outside the supported subset
	ErrCodeNotFound      = "E005" // Path not found
	ErrCodeStoreFailed   = "E006" // Database open, load or query failure
	ErrCodeInvalidConfig = "E007" // Settings file violates the schema
	ErrCodeInvalidQuery  = "E008" // Query cannot be evaluated
	ErrCodeRenderFailed  = "E009" // Result shape cannot be drawn
)

// ExitError represents an error with a specific exit code.
// Use this to return errors with meaningful exit codes from CLI commands.
type ExitError struct {
	Code    int    // Exit code (use ExitFailure or ExitCommandError)
	Message string // Error message
	Err     error  // Underlying error (optional)
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitSuccess for nil and ExitFailure if the error is not an ExitError.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // Separate writer for diagnostic output (defaults to Writer)
	Verbose   bool
}

// CLIResponse is the standard JSON response format for CLI output.
type CLIResponse struct {
	Status string    `json:"status"`          // "ok" or "error"
	Data   any       `json:"data,omitempty"`  // success payload
	Error  *CLIError `json:"error,omitempty"` // error details
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string `json:"code"`              // "E001", "E002", etc.
	Message string `json:"message"`           // human-readable message
	Details any    `json:"details,omitempty"` // additional context
}

// Success outputs a successful result in the configured format.
func (f *OutputFormatter) Success(data any) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "ok",
			Data:   data,
		})
	}

	// Human-readable text output
	fmt.Fprintln(f.Writer, data)
	return nil
}

// Lines writes text lines followed by newlines. It is a no-op in JSON mode;
// callers pass the structured form to Success instead.
func (f *OutputFormatter) Lines(lines []string) error {
	if f.Format == "json" {
		return nil
	}
	return table.Write(f.Writer, lines)
}

// Error outputs an error in the configured format. Text errors go to
// ErrWriter so table output on Writer stays clean.
func (f *OutputFormatter) Error(code, message string, details any) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "error",
			Error: &CLIError{
				Code:    code,
				Message: message,
				Details: details,
			},
		})
	}

	w := f.GetErrWriter()
	fmt.Fprintf(w, "Error [%s]: %s\n", code, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(w, "Details: %v\n", details)
	}
	return nil
}

// Fail reports err in the configured format and returns the ExitError the
// command should return.
func (f *OutputFormatter) Fail(message string, err error) error {
	code, exit := classify(err)
	_ = f.Error(code, fmt.Sprintf("%s: %v", message, err), errorDetails(err))
	return WrapExitError(exit, fmt.Sprintf("%s: %s", code, message), err)
}

// VerboseLog outputs a message only if verbose mode is enabled.
// Messages go to ErrWriter so they never mix with table or JSON output.
func (f *OutputFormatter) VerboseLog(format string, args ...any) {
	if !f.Verbose {
		return
	}
	fmt.Fprintf(f.GetErrWriter(), format+"\n", args...)
}

// GetErrWriter returns the appropriate writer for diagnostic output.
// Returns ErrWriter if set, otherwise Writer.
func (f *OutputFormatter) GetErrWriter() io.Writer {
	if f.ErrWriter != nil {
		return f.ErrWriter
	}
	return f.Writer
}

// classify maps an error to its CLI error code and exit code.
func classify(err error) (string, int) {
	var synErr *syntax.Error
	var fieldErr *config.FieldError
	switch {
	case errors.Is(err, os.ErrNotExist):
		return ErrCodeNotFound, ExitCommandError
	case errors.As(err, &fieldErr), errors.Is(err, config.ErrInvalid):
		return ErrCodeInvalidConfig, ExitCommandError
	case errors.Is(err, sparql.ErrUnsupported), errors.Is(err, engine.ErrUnsupportedFormat):
		return ErrCodeUnsupported, ExitCommandError
	case errors.As(err, &synErr), errors.Is(err, turtle.ErrSyntax), errors.Is(err, results.ErrMalformed):
		return ErrCodeParseFailed, ExitCommandError
	case errors.Is(err, queryir.ErrInvalidQuery):
		return ErrCodeInvalidQuery, ExitCommandError
	case errors.Is(err, prefix.ErrInvalidName), errors.Is(err, prefix.ErrInvalidNamespace):
		return ErrCodeInvalidConfig, ExitCommandError
	case errors.Is(err, table.ErrNoColumns), errors.Is(err, table.ErrRowShape),
		errors.Is(err, results.ErrNoColumns), errors.Is(err, results.ErrRowShape),
		errors.Is(err, results.ErrDuplicateColumn):
		return ErrCodeRenderFailed, ExitFailure
	case errors.Is(err, errStore), errors.Is(err, engine.ErrStore):
		return ErrCodeStoreFailed, ExitFailure
	case errors.Is(err, errRead):
		return ErrCodeReadFailed, ExitCommandError
	default:
		return ErrCodeGeneric, ExitCommandError
	}
}

// errorDetails returns structured context for JSON error output.
func errorDetails(err error) any {
	var synErr *syntax.Error
	if errors.As(err, &synErr) {
		return map[string]int{"line": synErr.Pos.Line, "column": synErr.Pos.Col}
	}
	return nil
}

var (
	errStore = errors.New("store failure")
	errRead  = errors.New("read failure")
)
