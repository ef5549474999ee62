package handler

import (
	"github.com/gin-gonic/gin"

	"bendigotelco/connecthub/internal/model"
	"bendigotelco/connecthub/internal/service"
	"bendigotelco/connecthub/pkg/apperr"
	"bendigotelco/connecthub/pkg/response"
)

type CallLogHandler struct {
	callLogService service.CallLogService
}

func NewCallLogHandler(callLogService service.CallLogService) *CallLogHandler {
	return &CallLogHandler{callLogService: callLogService}
}

func (h *CallLogHandler) Create(c *gin.Context) {
	var data model.CallData
	if err := c.ShouldBindJSON(&data); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	ticket, err := h.callLogService.Record(c.Request.Context(), data)
	if err != nil {
		kind := apperr.KindOf(err)
		switch kind {
		case apperr.KindValidation:
			response.BadRequest(c, err.Error())
		case apperr.KindTimeout:
			response.GatewayTimeout(c, "ticketing system timed out")
		default:
			response.Error(c, kind.HTTPStatus(), kind.HTTPStatus(), "failed to log call")
		}
		return
	}

	response.Success(c, gin.H{"ticket_id": ticket.ID})
}
