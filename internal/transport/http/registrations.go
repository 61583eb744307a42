package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/BuidlZone-Labs/zicket-contract/internal/app"
)

// InventoryService is the minimal interface the registration endpoints need.
type InventoryService interface {
	Register(ctx context.Context, in app.RegisterInput) error
	IsRegistered(ctx context.Context, eventID, attendee string) (bool, error)
	Attendees(ctx context.Context, eventID string) ([]string, error)
}

// HandleRegister handles POST /events/{id}/registrations.
func HandleRegister(svc InventoryService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req registerRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		err := svc.Register(r.Context(), app.RegisterInput{
			Attendee: req.Attendee,
			EventID:  r.PathValue("id"),
			TierID:   req.TierID,
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, registerResponse{Registered: true})
	}
}

// HandleAttendees handles GET /events/{id}/registrations.
func HandleAttendees(svc InventoryService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		attendees, err := svc.Attendees(r.Context(), r.PathValue("id"))
		if err != nil {
			writeDomainError(w, err)
			return
		}
		if attendees == nil {
			attendees = []string{}
		}
		writeJSON(w, http.StatusOK, attendeesResponse{Attendees: attendees})
	}
}

// HandleIsRegistered handles GET /events/{id}/registrations/{attendee}.
func HandleIsRegistered(svc InventoryService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		registered, err := svc.IsRegistered(r.Context(), r.PathValue("id"), r.PathValue("attendee"))
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, registerResponse{Registered: registered})
	}
}

type registerRequest struct {
	Attendee string `json:"attendee"`
	TierID   int    `json:"tier_id"`
}

type registerResponse struct {
	Registered bool `json:"registered"`
}

type attendeesResponse struct {
	Attendees []string `json:"attendees"`
}
