package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/BuidlZone-Labs/zicket-contract/internal/app"
	"github.com/BuidlZone-Labs/zicket-contract/internal/domain"
)

// PaymentService is the minimal interface the payment endpoints need.
type PaymentService interface {
	Initialize(ctx context.Context, admin, token string) error
	PayForTicket(ctx context.Context, in app.PayInput) (int64, error)
	GetPayment(ctx context.Context, paymentID int64) (domain.PaymentRecord, error)
	GetEventRevenue(ctx context.Context, eventID string) (int64, error)
	EventPayments(ctx context.Context, eventID string) ([]int64, error)
}

// HandleInitializePayments handles POST /payments/initialize.
func HandleInitializePayments(svc PaymentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req initializeRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		if err := svc.Initialize(r.Context(), req.Admin, req.Token); err != nil {
			writeDomainError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// HandlePayForTicket handles POST /payments.
func HandlePayForTicket(svc PaymentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req payRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		paymentID, err := svc.PayForTicket(r.Context(), app.PayInput{
			Payer:   req.Payer,
			EventID: req.EventID,
			Amount:  req.Amount,
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, payResponse{PaymentID: paymentID})
	}
}

// HandleGetPayment handles GET /payments/{id}.
func HandleGetPayment(svc PaymentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		paymentID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidInput, "invalid payment id")
			return
		}

		payment, err := svc.GetPayment(r.Context(), paymentID)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toPaymentResponse(payment))
	}
}

// HandleEventRevenue handles GET /events/{id}/revenue.
func HandleEventRevenue(svc PaymentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		total, err := svc.GetEventRevenue(r.Context(), r.PathValue("id"))
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, revenueResponse{EventID: r.PathValue("id"), Total: total})
	}
}

// HandleEventPayments handles GET /events/{id}/payments.
func HandleEventPayments(svc PaymentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ids, err := svc.EventPayments(r.Context(), r.PathValue("id"))
		if err != nil {
			writeDomainError(w, err)
			return
		}
		if ids == nil {
			ids = []int64{}
		}
		writeJSON(w, http.StatusOK, int64ListResponse{IDs: ids})
	}
}

type initializeRequest struct {
	Admin string `json:"admin"`
	Token string `json:"token"`
}

type payRequest struct {
	Payer   string `json:"payer"`
	EventID string `json:"event_id"`
	Amount  int64  `json:"amount"`
}

type payResponse struct {
	PaymentID int64 `json:"payment_id"`
}

type paymentResponse struct {
	ID        int64  `json:"id"`
	EventID   string `json:"event_id"`
	Payer     string `json:"payer"`
	Amount    int64  `json:"amount"`
	Token     string `json:"token"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
}

type revenueResponse struct {
	EventID string `json:"event_id"`
	Total   int64  `json:"total"`
}

type int64ListResponse struct {
	IDs []int64 `json:"ids"`
}

func toPaymentResponse(p domain.PaymentRecord) paymentResponse {
	return paymentResponse{
		ID:        p.ID,
		EventID:   p.EventID,
		Payer:     p.Payer,
		Amount:    p.Amount,
		Token:     p.Token,
		Status:    string(p.Status),
		CreatedAt: p.CreatedAt.UTC().Format(time.RFC3339),
	}
}
