package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bendigotelco/connecthub/internal/model"
	"bendigotelco/connecthub/internal/service"
	"bendigotelco/connecthub/pkg/apperr"
)

// HeaderWebhookSecret carries the shared-secret credential the ticketing
// system is configured to send with every webhook.
const HeaderWebhookSecret = "X-Webhook-Secret"

type WebhookHandler struct {
	invalidationService service.InvalidationService
}

func NewWebhookHandler(invalidationService service.InvalidationService) *WebhookHandler {
	return &WebhookHandler{invalidationService: invalidationService}
}

type webhookResponse struct {
	Received    bool   `json:"received"`
	EventType   string `json:"event_type"`
	Invalidated int    `json:"invalidated"`
}

func (h *WebhookHandler) Handle(c *gin.Context) {
	var event model.WebhookEvent
	if err := c.ShouldBindJSON(&event); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON payload"})
		return
	}

	count, err := h.invalidationService.Handle(c.Request.Context(), c.GetHeader(HeaderWebhookSecret), event)
	if err != nil {
		kind := apperr.KindOf(err)
		switch kind {
		case apperr.KindUnauthorized:
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid webhook credential"})
		case apperr.KindValidation:
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		}
		return
	}

	c.JSON(http.StatusOK, webhookResponse{
		Received:    true,
		EventType:   event.EventType,
		Invalidated: count,
	})
}
