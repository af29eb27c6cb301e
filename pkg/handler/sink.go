package handler

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/savaki/christine-bot/pkg/models"
)

// LogSink writes one structured log entry per dispatch outcome
type LogSink struct {
	logger zerolog.Logger
}

// NewLogSink creates a sink logging to logger
func NewLogSink(logger zerolog.Logger) *LogSink {
	return &LogSink{logger: logger}
}

// Record logs the outcome. Failures are logged at error level.
func (s *LogSink) Record(_ context.Context, o models.Outcome) error {
	var e *zerolog.Event
	switch o.Status {
	case models.StatusFailed:
		e = s.logger.Error().Err(o.Err)
	case models.StatusSkipped:
		e = s.logger.Debug()
	default:
		e = s.logger.Info()
	}

	e.Str("dispatch_id", o.DispatchID).
		Str("event_id", o.Event.EventID).
		Str("kind", string(o.Event.Kind)).
		Str("channel", o.Event.ChannelID).
		Str("thread_ts", o.Event.ThreadAnchor()).
		Str("status", o.Status).
		Str("reason", o.Reason).
		Dur("duration", o.Duration).
		Msg("dispatch finished")

	return nil
}
