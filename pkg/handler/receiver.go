package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/savaki/christine-bot/pkg/models"
	"github.com/slack-go/slack/slackevents"
)

// maxBodyBytes bounds an Events API payload
const maxBodyBytes = 1 << 20

// Submitter starts an asynchronous dispatch
type Submitter interface {
	Submit(ctx context.Context, ev models.InboundEvent) <-chan models.Outcome
}

// ReceiverConfig controls how deliveries are acknowledged
type ReceiverConfig struct {
	SigningSecret string

	// WaitForDispatch holds the ack until the dispatch finishes. Lambda
	// needs it because the runtime is frozen once the response is sent.
	WaitForDispatch bool

	// DropRetries acks and ignores Slack redeliveries. Set it when no
	// ledger can tell a redelivery from a first delivery.
	DropRetries bool
}

// Response is the reply sent back to Slack for one delivery
type Response struct {
	StatusCode int
	Body       string
}

// Receiver accepts Slack Events API deliveries and hands qualifying
// events to a Submitter
type Receiver struct {
	cfg    ReceiverConfig
	runner Submitter
	logger zerolog.Logger
}

// NewReceiver creates a new webhook receiver
func NewReceiver(cfg ReceiverConfig, runner Submitter, logger zerolog.Logger) *Receiver {
	return &Receiver{
		cfg:    cfg,
		runner: runner,
		logger: logger,
	}
}

// Handle verifies, parses and acknowledges one delivery. Dispatch failures
// never change the response; Slack always gets its ack.
func (r *Receiver) Handle(ctx context.Context, header http.Header, body []byte) Response {
	if err := VerifyRequest(header, body, r.cfg.SigningSecret); err != nil {
		r.logger.Warn().Err(err).Msg("rejected slack request")
		return jsonResponse(http.StatusUnauthorized, map[string]string{"error": "invalid signature"})
	}

	evt, err := slackevents.ParseEvent(json.RawMessage(body), slackevents.OptionNoVerifyToken())
	if err != nil {
		r.logger.Warn().Err(err).Msg("unable to parse slack event")
		return jsonResponse(http.StatusBadRequest, map[string]string{"error": "invalid event format"})
	}

	switch evt.Type {
	case slackevents.URLVerification:
		var challenge struct {
			Challenge string `json:"challenge"`
		}
		if err := json.Unmarshal(body, &challenge); err != nil {
			return jsonResponse(http.StatusBadRequest, map[string]string{"error": "invalid challenge"})
		}
		r.logger.Info().Msg("responding to slack url verification challenge")
		return jsonResponse(http.StatusOK, map[string]string{"challenge": challenge.Challenge})

	case slackevents.CallbackEvent:
		inbound, ok := toInboundEvent(evt)
		if !ok {
			r.logger.Debug().Str("event_type", evt.InnerEvent.Type).Msg("ignoring event type")
			return okResponse()
		}

		if retry := header.Get("X-Slack-Retry-Num"); retry != "" && r.cfg.DropRetries {
			r.logger.Info().
				Str("event_id", inbound.EventID).
				Str("retry_num", retry).
				Str("retry_reason", header.Get("X-Slack-Retry-Reason")).
				Msg("dropping slack redelivery")
			return okResponse()
		}

		result := r.runner.Submit(ctx, inbound)
		if r.cfg.WaitForDispatch {
			select {
			case <-result:
			case <-ctx.Done():
			}
		}
		return okResponse()

	default:
		r.logger.Debug().Str("type", evt.Type).Msg("ignoring slack payload")
		return okResponse()
	}
}

// ServeHTTP implements http.Handler
func (r *Receiver) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, req.Body, maxBodyBytes))
	if err != nil {
		status := http.StatusBadRequest
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		resp := jsonResponse(status, map[string]string{"error": "unreadable body"})
		writeResponse(w, resp)
		return
	}

	writeResponse(w, r.Handle(req.Context(), req.Header, body))
}

// toInboundEvent converts the events the bot answers. The second result is
// false for every other inner event type.
func toInboundEvent(evt slackevents.EventsAPIEvent) (models.InboundEvent, bool) {
	var eventID string
	if cb, ok := evt.Data.(*slackevents.EventsAPICallbackEvent); ok {
		eventID = cb.EventID
	}

	switch ev := evt.InnerEvent.Data.(type) {
	case *slackevents.AppMentionEvent:
		return models.InboundEvent{
			EventID:   eventID,
			Kind:      models.KindMention,
			ChannelID: ev.Channel,
			UserID:    ev.User,
			Text:      ev.Text,
			TS:        ev.TimeStamp,
			ThreadTS:  ev.ThreadTimeStamp,
		}, true

	case *slackevents.MessageEvent:
		return models.InboundEvent{
			EventID:     eventID,
			Kind:        models.KindDirectMessage,
			ChannelID:   ev.Channel,
			ChannelType: ev.ChannelType,
			UserID:      ev.User,
			BotID:       ev.BotID,
			Text:        ev.Text,
			TS:          ev.TimeStamp,
			ThreadTS:    ev.ThreadTimeStamp,
		}, true
	}

	return models.InboundEvent{}, false
}

func okResponse() Response {
	return jsonResponse(http.StatusOK, map[string]bool{"ok": true})
}

func jsonResponse(status int, body interface{}) Response {
	data, _ := json.Marshal(body)
	return Response{
		StatusCode: status,
		Body:       string(data),
	}
}

func writeResponse(w http.ResponseWriter, resp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.StatusCode)
	io.WriteString(w, resp.Body)
}
