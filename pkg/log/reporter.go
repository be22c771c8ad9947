package log

import (
	"errors"

	"github.com/rs/zerolog"
)

// moduleAttributed is implemented by errors that name the module they came from.
type moduleAttributed interface {
	ModuleName() string
}

// ErrorReporter logs recoverable failures reported during event dispatch.
type ErrorReporter struct {
	logger zerolog.Logger
}

// NewErrorReporter creates a reporter writing to logger.
func NewErrorReporter(logger zerolog.Logger) *ErrorReporter {
	return &ErrorReporter{logger: logger}
}

// Handle logs err at error level. It never panics.
func (r *ErrorReporter) Handle(err error) {
	if err == nil {
		return
	}
	entry := r.logger.Error().Err(err)
	var ma moduleAttributed
	if errors.As(err, &ma) && ma.ModuleName() != "" {
		entry = entry.Str("module", ma.ModuleName())
	}
	entry.Msg("recoverable failure during event dispatch")
}
