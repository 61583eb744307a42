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

// TicketService is the minimal interface the ticket endpoints need.
type TicketService interface {
	MintTicket(ctx context.Context, in app.MintInput) (domain.Ticket, error)
	TransferTicket(ctx context.Context, from, to string, ticketID int64) error
	UseTicket(ctx context.Context, organizer string, ticketID int64) error
	CancelTicket(ctx context.Context, caller string, ticketID int64) error
	GetTicket(ctx context.Context, ticketID int64) (domain.Ticket, error)
	OwnerTickets(ctx context.Context, owner string) ([]int64, error)
	EventTickets(ctx context.Context, eventID string) ([]int64, error)
}

// HandleMintTicket handles POST /tickets.
func HandleMintTicket(svc TicketService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req mintRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		ticket, err := svc.MintTicket(r.Context(), app.MintInput{
			Organizer: req.Organizer,
			EventID:   req.EventID,
			Owner:     req.Owner,
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toTicketResponse(ticket))
	}
}

// HandleGetTicket handles GET /tickets/{id}.
func HandleGetTicket(svc TicketService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ticketID, ok := parseTicketID(w, r)
		if !ok {
			return
		}
		ticket, err := svc.GetTicket(r.Context(), ticketID)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toTicketResponse(ticket))
	}
}

// HandleTransferTicket handles POST /tickets/{id}/transfer.
func HandleTransferTicket(svc TicketService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ticketID, ok := parseTicketID(w, r)
		if !ok {
			return
		}

		var req transferRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		if err := svc.TransferTicket(r.Context(), req.From, req.To, ticketID); err != nil {
			writeDomainError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// HandleUseTicket handles POST /tickets/{id}/use.
func HandleUseTicket(svc TicketService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ticketID, ok := parseTicketID(w, r)
		if !ok {
			return
		}

		var req organizerRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		if err := svc.UseTicket(r.Context(), req.Organizer, ticketID); err != nil {
			writeDomainError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// HandleCancelTicket handles POST /tickets/{id}/cancel.
func HandleCancelTicket(svc TicketService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ticketID, ok := parseTicketID(w, r)
		if !ok {
			return
		}

		var req callerRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		if err := svc.CancelTicket(r.Context(), req.Caller, ticketID); err != nil {
			writeDomainError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// HandleOwnerTickets handles GET /owners/{owner}/tickets.
func HandleOwnerTickets(svc TicketService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ids, err := svc.OwnerTickets(r.Context(), r.PathValue("owner"))
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

// HandleEventTickets handles GET /events/{id}/tickets.
func HandleEventTickets(svc TicketService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ids, err := svc.EventTickets(r.Context(), r.PathValue("id"))
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

func parseTicketID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	ticketID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidInput, "invalid ticket id")
		return 0, false
	}
	return ticketID, true
}

type mintRequest struct {
	Organizer string `json:"organizer"`
	EventID   string `json:"event_id"`
	Owner     string `json:"owner"`
}

type transferRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type callerRequest struct {
	Caller string `json:"caller"`
}

type ticketResponse struct {
	ID        int64  `json:"id"`
	EventID   string `json:"event_id"`
	Organizer string `json:"organizer"`
	Owner     string `json:"owner"`
	IssuedAt  string `json:"issued_at"`
	Status    string `json:"status"`
}

func toTicketResponse(t domain.Ticket) ticketResponse {
	return ticketResponse{
		ID:        t.ID,
		EventID:   t.EventID,
		Organizer: t.Organizer,
		Owner:     t.Owner,
		IssuedAt:  t.IssuedAt.UTC().Format(time.RFC3339),
		Status:    string(t.Status),
	}
}
