package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/slack-go/slack"
)

// ErrInvalidSignature is returned when a request did not come from Slack
var ErrInvalidSignature = errors.New("invalid slack signature")

// VerifyRequest checks the X-Slack-Signature header against body using the
// app signing secret. Timestamps more than five minutes from now are
// rejected.
// See: https://api.slack.com/authentication/verifying-requests-from-slack
func VerifyRequest(header http.Header, body []byte, signingSecret string) error {
	sv, err := slack.NewSecretsVerifier(header, signingSecret)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	if _, err := sv.Write(body); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	if err := sv.Ensure(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	return nil
}
