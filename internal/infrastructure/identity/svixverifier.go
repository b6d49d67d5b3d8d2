// Package identity integrates the hosted identity provider's webhook channel.
package identity

import (
	"fmt"
	"net/http"

	svix "github.com/svix/svix-webhooks/go"
)

// SvixVerifier checks identity webhook signatures. The identity provider
// signs deliveries with the Svix scheme (svix-id, svix-timestamp,
// svix-signature headers).
type SvixVerifier struct {
	webhook *svix.Webhook
}

// NewSvixVerifier creates a verifier from the endpoint's signing secret.
func NewSvixVerifier(secret string) (*SvixVerifier, error) {
	if secret == "" {
		return nil, fmt.Errorf("identity webhook secret is required")
	}
	wh, err := svix.NewWebhook(secret)
	if err != nil {
		return nil, fmt.Errorf("failed to create webhook verifier: %w", err)
	}
	return &SvixVerifier{webhook: wh}, nil
}

// Verify returns an error when the payload does not match its signature.
func (v *SvixVerifier) Verify(payload []byte, headers http.Header) error {
	if err := v.webhook.Verify(payload, headers); err != nil {
		return fmt.Errorf("webhook signature verification failed: %w", err)
	}
	return nil
}
