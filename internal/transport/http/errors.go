package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/BuidlZone-Labs/zicket-contract/internal/domain"
)

const (
	codeMethodNotAllowed        = "method_not_allowed"
	codeNotFound                = "not_found"
	codeInvalidRequestBody      = "invalid_request_body"
	codeInvalidInput            = "invalid_input"
	codeInvalidEventDate        = "invalid_event_date"
	codeInvalidTicketCount      = "invalid_ticket_count"
	codeInvalidPrice            = "invalid_price"
	codeInvalidAmount           = "invalid_amount"
	codeEventNotFound           = "event_not_found"
	codeEventAlreadyExists      = "event_already_exists"
	codeEventNotUpdatable       = "event_not_updatable"
	codeEventNotActive          = "event_not_active"
	codeInvalidStatusTransition = "invalid_status_transition"
	codeTierNotFound            = "tier_not_found"
	codeTierSoldOut             = "tier_sold_out"
	codeAlreadyRegistered       = "already_registered"
	codePaymentNotFound         = "payment_not_found"
	codeInsufficientFunds       = "insufficient_funds"
	codeNotInitialized          = "not_initialized"
	codeTicketNotFound          = "ticket_not_found"
	codeTicketNotTransferable   = "ticket_not_transferable"
	codeTransferToSelf          = "transfer_to_self"
	codeTicketAlreadyUsed       = "ticket_already_used"
	codeUnauthorized            = "unauthorized"
	codeForbidden               = "forbidden"
	codeInternalError           = "internal_error"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	payload, err := json.Marshal(errorResponse{
		Error: msg,
		Code:  code,
	})
	if err != nil {
		_, _ = w.Write([]byte(`{"error":"internal error","code":"internal_error"}`))
		return
	}
	_, _ = w.Write(payload)
}

// writeDomainError maps a service error onto a status and stable code.
// Unknown errors are reported as opaque internal errors.
func writeDomainError(w http.ResponseWriter, err error) {
	status, code := http.StatusInternalServerError, codeInternalError
	msg := "internal error"

	for mapped, sc := range domainErrorCodes {
		if errors.Is(err, mapped) {
			status, code = sc.status, sc.code
			msg = mapped.Error()
			break
		}
	}
	writeError(w, status, code, msg)
}

type statusCode struct {
	status int
	code   string
}

var domainErrorCodes = map[error]statusCode{
	domain.ErrInvalidInput:            {http.StatusBadRequest, codeInvalidInput},
	domain.ErrInvalidEventDate:        {http.StatusBadRequest, codeInvalidEventDate},
	domain.ErrInvalidTicketCount:      {http.StatusBadRequest, codeInvalidTicketCount},
	domain.ErrInvalidPrice:            {http.StatusBadRequest, codeInvalidPrice},
	domain.ErrInvalidAmount:           {http.StatusBadRequest, codeInvalidAmount},
	domain.ErrEventNotFound:           {http.StatusNotFound, codeEventNotFound},
	domain.ErrEventAlreadyExists:      {http.StatusConflict, codeEventAlreadyExists},
	domain.ErrEventNotUpdatable:       {http.StatusConflict, codeEventNotUpdatable},
	domain.ErrEventNotActive:          {http.StatusConflict, codeEventNotActive},
	domain.ErrInvalidStatusTransition: {http.StatusConflict, codeInvalidStatusTransition},
	domain.ErrTierNotFound:            {http.StatusNotFound, codeTierNotFound},
	domain.ErrTierSoldOut:             {http.StatusConflict, codeTierSoldOut},
	domain.ErrAlreadyRegistered:       {http.StatusConflict, codeAlreadyRegistered},
	domain.ErrPaymentNotFound:         {http.StatusNotFound, codePaymentNotFound},
	domain.ErrInsufficientFunds:       {http.StatusConflict, codeInsufficientFunds},
	domain.ErrNotInitialized:          {http.StatusConflict, codeNotInitialized},
	domain.ErrTicketNotFound:          {http.StatusNotFound, codeTicketNotFound},
	domain.ErrTicketNotTransferable:   {http.StatusConflict, codeTicketNotTransferable},
	domain.ErrTransferToSelf:          {http.StatusBadRequest, codeTransferToSelf},
	domain.ErrTicketAlreadyUsed:       {http.StatusConflict, codeTicketAlreadyUsed},
	domain.ErrUnauthorized:            {http.StatusUnauthorized, codeUnauthorized},
}
