package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bendigotelco/connecthub/internal/model"
	"bendigotelco/connecthub/internal/service"
	"bendigotelco/connecthub/pkg/apperr"
)

type LookupHandler struct {
	lookupService service.LookupService
}

func NewLookupHandler(lookupService service.LookupService) *LookupHandler {
	return &LookupHandler{lookupService: lookupService}
}

// LookupResponse flattens the customer record so screen-pop consumers can
// read fields without nesting.
type LookupResponse struct {
	Found    bool   `json:"found"`
	ID       string `json:"id,omitempty"`
	Name     string `json:"name,omitempty"`
	Email    string `json:"email,omitempty"`
	Company  string `json:"company,omitempty"`
	Status   string `json:"status,omitempty"`
	Priority string `json:"priority,omitempty"`
	Error    string `json:"error,omitempty"`
}

func (h *LookupHandler) Lookup(c *gin.Context) {
	res, err := h.lookupService.Lookup(c.Request.Context(), c.Query("phone"))
	if err != nil {
		kind := apperr.KindOf(err)
		c.JSON(kind.HTTPStatus(), LookupResponse{Found: false, Error: publicMessage(kind, err)})
		return
	}

	if !res.Found {
		c.JSON(http.StatusNotFound, LookupResponse{Found: false, Error: "Customer not found"})
		return
	}
	c.JSON(http.StatusOK, foundResponse(res.Customer))
}

func foundResponse(customer *model.Customer) LookupResponse {
	return LookupResponse{
		Found:    true,
		ID:       customer.ID,
		Name:     customer.Name,
		Email:    customer.Email,
		Company:  customer.Company,
		Status:   string(customer.Status),
		Priority: string(customer.Priority),
	}
}

// publicMessage keeps internal detail out of responses; validation messages
// are safe to echo, everything else gets a fixed phrase per kind.
func publicMessage(kind apperr.Kind, err error) string {
	switch kind {
	case apperr.KindValidation:
		return err.Error()
	case apperr.KindSecrets, apperr.KindConfig:
		return "Configuration error"
	case apperr.KindAuthentication:
		return "Authentication failed"
	case apperr.KindTimeout:
		return "Request timed out"
	default:
		return "Internal server error"
	}
}
