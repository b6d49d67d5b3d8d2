package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/meterly-io/meterly/internal/application/identity/usecases"
	"github.com/meterly-io/meterly/internal/shared/logger"
	"github.com/meterly-io/meterly/internal/shared/utils"
)

// WebhookVerifier checks an inbound delivery against its signature headers.
type WebhookVerifier interface {
	Verify(payload []byte, headers http.Header) error
}

// IdentityWebhookHandler receives identity provider events. Once a signature
// checks out the response is always 200; the provider retries on anything
// else, and a malformed or unprocessable event will not get better with
// retries.
type IdentityWebhookHandler struct {
	verifier    WebhookVerifier
	userCreated *usecases.SyncUserCreatedUseCase
	userUpdated *usecases.SyncUserUpdatedUseCase
	userDeleted *usecases.SyncUserDeletedUseCase
	logger      logger.Interface
}

func NewIdentityWebhookHandler(
	verifier WebhookVerifier,
	userCreated *usecases.SyncUserCreatedUseCase,
	userUpdated *usecases.SyncUserUpdatedUseCase,
	userDeleted *usecases.SyncUserDeletedUseCase,
	logger logger.Interface,
) *IdentityWebhookHandler {
	return &IdentityWebhookHandler{
		verifier:    verifier,
		userCreated: userCreated,
		userUpdated: userUpdated,
		userDeleted: userDeleted,
		logger:      logger,
	}
}

type identityEvent struct {
	Type string `json:"type"`
	Data struct {
		ID             string `json:"id"`
		EmailAddresses []struct {
			EmailAddress string `json:"email_address"`
			Verification struct {
				Status string `json:"status"`
			} `json:"verification"`
		} `json:"email_addresses"`
	} `json:"data"`
}

// Handle handles POST /webhooks/identity
func (h *IdentityWebhookHandler) Handle(c *gin.Context) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "failed to read payload")
		return
	}

	if err := h.verifier.Verify(payload, c.Request.Header); err != nil {
		h.logger.Warnw("identity webhook signature rejected", "error", err)
		utils.ErrorResponse(c, http.StatusBadRequest, "signature verification failed")
		return
	}

	var event identityEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		h.logger.Errorw("identity webhook payload malformed", "error", err)
		utils.SuccessResponse(c, http.StatusOK, "ignored", nil)
		return
	}

	cmd := usecases.SyncUserCommand{UserID: event.Data.ID}
	for _, addr := range event.Data.EmailAddresses {
		cmd.Emails = append(cmd.Emails, usecases.EmailAddress{
			Address:  addr.EmailAddress,
			Verified: addr.Verification.Status == "verified",
		})
	}

	ctx := c.Request.Context()
	switch event.Type {
	case "user.created":
		err = h.userCreated.Execute(ctx, cmd)
	case "user.updated":
		err = h.userUpdated.Execute(ctx, cmd)
	case "user.deleted":
		err = h.userDeleted.Execute(ctx, event.Data.ID)
	default:
		h.logger.Infow("unhandled identity event type", "type", event.Type)
	}

	if err != nil {
		h.logger.Errorw("identity event processing failed",
			"type", event.Type, "user_id", event.Data.ID, "error", err)
	}

	utils.SuccessResponse(c, http.StatusOK, "processed", nil)
}
