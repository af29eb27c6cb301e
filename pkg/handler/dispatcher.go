package handler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/savaki/christine-bot/pkg/models"
)

const (
	// DefaultCompletionTimeout bounds a completion call when no timeout is set
	DefaultCompletionTimeout = 30 * time.Second

	// DefaultPostTimeout bounds a Slack post when no timeout is set
	DefaultPostTimeout = 10 * time.Second
)

// Reasons an event is not answered
const (
	ReasonBotAuthor        = "bot_author"
	ReasonEmptyText        = "empty_text"
	ReasonNotDirectChannel = "not_direct_channel"
	ReasonUnsupportedKind  = "unsupported_kind"
)

// Completer produces the model reply for a system prompt and user text
type Completer interface {
	Reply(ctx context.Context, systemPrompt, userText string) (string, error)
}

// Poster posts text into a Slack thread
type Poster interface {
	PostReply(ctx context.Context, channelID, threadTS, text string) error
}

// DispatcherConfig holds the fixed inputs of every dispatch
type DispatcherConfig struct {
	Persona           string
	CompletionTimeout time.Duration
	PostTimeout       time.Duration

	// ApologyText is posted after a failed completion. Empty posts nothing.
	ApologyText string
}

// Dispatcher turns one inbound event into at most one reply
type Dispatcher struct {
	completer Completer
	poster    Poster
	cfg       DispatcherConfig
}

// NewDispatcher creates a new dispatcher
func NewDispatcher(completer Completer, poster Poster, cfg DispatcherConfig) *Dispatcher {
	if cfg.CompletionTimeout <= 0 {
		cfg.CompletionTimeout = DefaultCompletionTimeout
	}
	if cfg.PostTimeout <= 0 {
		cfg.PostTimeout = DefaultPostTimeout
	}
	return &Dispatcher{
		completer: completer,
		poster:    poster,
		cfg:       cfg,
	}
}

// Eligible reports whether the bot answers ev, and if not, why.
// Mentions are always answered. Direct messages need a one-to-one channel,
// a human author and some text.
func Eligible(ev models.InboundEvent) (bool, string) {
	switch ev.Kind {
	case models.KindMention:
		return true, ""
	case models.KindDirectMessage:
		if ev.ChannelType != models.ChannelTypeIM {
			return false, ReasonNotDirectChannel
		}
		if ev.AuthorIsBot() {
			return false, ReasonBotAuthor
		}
		if ev.Text == "" {
			return false, ReasonEmptyText
		}
		return true, ""
	default:
		return false, ReasonUnsupportedKind
	}
}

// Dispatch answers ev. Ineligible events make no outbound calls. Eligible
// events make one completion call and, on success, one post into the
// event's thread. Errors are returned in the outcome, never retried.
func (d *Dispatcher) Dispatch(ctx context.Context, ev models.InboundEvent) models.Outcome {
	outcome := models.Outcome{Event: ev}

	if ok, reason := Eligible(ev); !ok {
		outcome.Status = models.StatusSkipped
		outcome.Reason = reason
		return outcome
	}

	reply, err := d.complete(ctx, ev.Text)
	if err != nil {
		outcome.Status = models.StatusFailed
		outcome.Err = fmt.Errorf("completion: %w", err)
		if d.cfg.ApologyText != "" {
			if perr := d.post(ctx, ev, d.cfg.ApologyText); perr != nil {
				outcome.Err = errors.Join(outcome.Err, fmt.Errorf("post apology: %w", perr))
			}
		}
		return outcome
	}
	outcome.Reply = reply

	if err := d.post(ctx, ev, reply); err != nil {
		outcome.Status = models.StatusFailed
		outcome.Err = fmt.Errorf("post reply: %w", err)
		return outcome
	}

	outcome.Status = models.StatusReplied
	return outcome
}

func (d *Dispatcher) complete(ctx context.Context, text string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, d.cfg.CompletionTimeout)
	defer cancel()

	return d.completer.Reply(ctx, d.cfg.Persona, text)
}

func (d *Dispatcher) post(ctx context.Context, ev models.InboundEvent, text string) error {
	ctx, cancel := context.WithTimeout(ctx, d.cfg.PostTimeout)
	defer cancel()

	return d.poster.PostReply(ctx, ev.ChannelID, ev.ThreadAnchor(), text)
}
