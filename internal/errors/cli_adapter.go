package errors

import (
	"fmt"
	"log/slog"
	"os"
)

// CLIErrorAdapter handles error presentation and exit code determination for
// the vncserve command line.
type CLIErrorAdapter struct {
	verbose bool
	logger  *slog.Logger
}

// NewCLIErrorAdapter creates a new CLI error adapter.
func NewCLIErrorAdapter(verbose bool, logger *slog.Logger) *CLIErrorAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CLIErrorAdapter{
		verbose: verbose,
		logger:  logger,
	}
}

// ExitCodeFor determines the appropriate exit code for an error.
func (a *CLIErrorAdapter) ExitCodeFor(err error) int {
	if err == nil {
		return 0
	}

	if se, ok := err.(*ServerError); ok {
		return a.exitCodeFromServerError(se)
	}

	return 1
}

// exitCodeFromServerError maps ServerError categories to exit codes.
func (a *CLIErrorAdapter) exitCodeFromServerError(err *ServerError) int {
	switch err.Category {
	case CategoryInvalidArgument:
		return 2 // Invalid usage
	case CategoryAlreadyRunning, CategoryNotRunning:
		return 3 // Lifecycle state error
	case CategoryUnsupported:
		return 4 // Engine does not implement the operation
	case CategoryEngine:
		return 8 // Engine-side failure
	case CategoryInternal:
		return 10 // Internal error
	default:
		return 1 // General error
	}
}

// FormatError formats an error for user-friendly display.
func (a *CLIErrorAdapter) FormatError(err error) string {
	if err == nil {
		return ""
	}

	if se, ok := err.(*ServerError); ok {
		if a.verbose {
			return se.Error()
		}
		switch se.Category {
		case CategoryInvalidArgument:
			return se.Message
		default:
			return fmt.Sprintf("%s: %s", se.Category, se.Message)
		}
	}

	return fmt.Sprintf("Error: %v", err)
}

// HandleError processes an error and exits the program with appropriate code.
func (a *CLIErrorAdapter) HandleError(err error) {
	if err == nil {
		return
	}

	exitCode := a.ExitCodeFor(err)
	message := a.FormatError(err)

	if a.shouldLog(err) {
		a.logError(err)
	}

	fmt.Fprintf(os.Stderr, "%s\n", message)
	os.Exit(exitCode)
}

// shouldLog determines if an error should be logged.
func (a *CLIErrorAdapter) shouldLog(err error) bool {
	if a.verbose {
		return true
	}

	if se, ok := err.(*ServerError); ok {
		return se.Category == CategoryInternal || se.Severity == SeverityFatal
	}

	return true
}

// logError logs an error with appropriate level and context.
func (a *CLIErrorAdapter) logError(err error) {
	if se, ok := err.(*ServerError); ok {
		level := slog.LevelError
		if se.Severity == SeverityWarning {
			level = slog.LevelWarn
		}
		a.logger.LogAttrs(nil, level, se.Message,
			slog.String("category", string(se.Category)))
		return
	}

	a.logger.Error("Unclassified error", "error", err)
}
