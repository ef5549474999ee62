package handler

import (
	"net/url"

	"github.com/gin-gonic/gin"

	"bendigotelco/connecthub/pkg/response"
)

// ScreenPopHandler builds the agent-desktop URL for an incoming call.
// Stateless single-call pass-through; no caching, no retries.
type ScreenPopHandler struct {
	baseURL string
}

func NewScreenPopHandler(baseURL string) *ScreenPopHandler {
	return &ScreenPopHandler{baseURL: baseURL}
}

func (h *ScreenPopHandler) Get(c *gin.Context) {
	phone := c.Query("phone")
	if phone == "" {
		phone = "UNKNOWN"
	}
	response.Success(c, gin.H{
		"screenPopURL": h.baseURL + "?phone=" + url.QueryEscape(phone),
	})
}
