package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/savaki/christine-bot/pkg/app"
	appconfig "github.com/savaki/christine-bot/pkg/config"
	"github.com/savaki/christine-bot/pkg/handler"
	"github.com/savaki/christine-bot/pkg/log"
	"github.com/savaki/christine-bot/pkg/server"
)

// Handler adapts API Gateway proxy requests to the webhook receiver
type Handler struct {
	cfg      *appconfig.Config
	receiver *handler.Receiver
}

// Handle is the Lambda handler for Slack events
func (h *Handler) Handle(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	switch {
	case request.HTTPMethod == http.MethodGet && request.Path == "/":
		return textResponse(http.StatusOK, server.RootBody), nil
	case request.HTTPMethod == http.MethodGet && request.Path == "/debug":
		data, _ := json.Marshal(server.NewDebugInfo(h.cfg))
		return jsonResponse(http.StatusOK, string(data)), nil
	case request.HTTPMethod == http.MethodGet:
		return textResponse(http.StatusOK, server.EventsBody), nil
	}

	resp := h.receiver.Handle(ctx, toHeader(request), []byte(request.Body))
	return jsonResponse(resp.StatusCode, resp.Body), nil
}

// toHeader canonicalizes API Gateway header names, which arrive in whatever
// case the client sent
func toHeader(request events.APIGatewayProxyRequest) http.Header {
	header := http.Header{}
	for k, values := range request.MultiValueHeaders {
		for _, v := range values {
			header.Add(k, v)
		}
	}
	for k, v := range request.Headers {
		if header.Get(k) == "" {
			header.Set(k, v)
		}
	}
	return header
}

func textResponse(status int, body string) events.APIGatewayProxyResponse {
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Body:       body,
		Headers:    map[string]string{"Content-Type": "text/plain; charset=utf-8"},
	}
}

func jsonResponse(status int, body string) events.APIGatewayProxyResponse {
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Body:       body,
		Headers:    map[string]string{"Content-Type": "application/json"},
	}
}

func main() {
	ctx := context.Background()

	cfg, err := appconfig.Load()
	if err != nil {
		bootLogger := log.New(os.Stderr, "info")
		bootLogger.Fatal().Err(err).Msg("failed to load config")
	}
	logger := log.NewLogger(cfg.LogLevel, "json").With().
		Str("env", cfg.Environment).
		Logger()

	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid config")
	}

	// the runtime freezes once a response is returned, so each ack waits
	// for its dispatch
	bot, err := app.Build(ctx, cfg, logger, app.Options{WaitForDispatch: true})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build bot")
	}
	if err := bot.CheckSlack(ctx, logger); err != nil {
		logger.Fatal().Err(err).Msg("slack token rejected")
	}

	h := &Handler{cfg: cfg, receiver: bot.Receiver}
	lambda.Start(h.Handle)
}
