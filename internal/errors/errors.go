package errors

import (
	"errors"
	"fmt"
	"os"

	"github.com/TheVortexX/OncoTrack-sub000/internal/logger"
	"github.com/TheVortexX/OncoTrack-sub000/internal/models"
	"github.com/TheVortexX/OncoTrack-sub000/internal/scheduler"
	"github.com/TheVortexX/OncoTrack-sub000/internal/storage"
)

// Format formats an error message with a consistent "Error: " prefix
func Format(err error) string {
	if err == nil {
		return ""
	}
	if hint := Hint(err); hint != "" {
		return fmt.Sprintf("Error: %v (%s)", err, hint)
	}
	return fmt.Sprintf("Error: %v", err)
}

// Formatf formats an error message with a consistent "Error: " prefix using a format string
func Formatf(format string, args ...interface{}) string {
	return fmt.Sprintf("Error: "+format, args...)
}

// Hint suggests a next step for the errors a user can act on.
func Hint(err error) string {
	switch {
	case errors.Is(err, models.ErrInvalidRange):
		return "the end must not come before the start"
	case errors.Is(err, scheduler.ErrNoUpcomingOccurrence):
		return "the item has no upcoming dose; check its frequency and end date"
	case errors.Is(err, storage.ErrNotFound):
		return "use the list command to see valid ids"
	default:
		return ""
	}
}

// Fatal logs an error and exits the program with exit code 1
func Fatal(err error) {
	if err != nil {
		logger.Error("Command execution failed", "error", err)
		fmt.Fprintf(os.Stderr, "%s\n", Format(err))
		os.Exit(1)
	}
}

// Fatalf logs and formats an error message, then exits the program with exit code 1
func Fatalf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	logger.Error("Command execution failed", "error", msg)
	fmt.Fprintf(os.Stderr, "%s\n", Formatf(format, args...))
	os.Exit(1)
}
