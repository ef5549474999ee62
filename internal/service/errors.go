package service

import "bendigotelco/connecthub/pkg/apperr"

var (
	ErrEmptyPhone          = apperr.New(apperr.KindValidation, "no phone number provided")
	ErrWebhookUnauthorized = apperr.New(apperr.KindUnauthorized, "webhook credential mismatch")
	ErrEventMissingType    = apperr.New(apperr.KindValidation, "missing event_type")
	ErrEventMissingID      = apperr.New(apperr.KindValidation, "missing customer_id")
	ErrCallDataIncomplete  = apperr.New(apperr.KindValidation, "missing required call data")
)
