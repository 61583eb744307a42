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

// RegistryService is the minimal interface the event endpoints need.
type RegistryService interface {
	CreateEvent(ctx context.Context, in app.CreateEventInput) (domain.Event, error)
	UpdateEventDetails(ctx context.Context, in app.UpdateEventInput) (domain.Event, error)
	AddTicketTier(ctx context.Context, organizer, eventID string, params app.TierParams) (domain.Event, error)
	UpdateTier(ctx context.Context, in app.UpdateTierInput) (domain.Event, error)
	UpdateEventStatus(ctx context.Context, organizer, eventID string, newStatus domain.EventStatus) error
	CancelEvent(ctx context.Context, organizer, eventID string) error
	GetEvent(ctx context.Context, eventID string) (domain.Event, error)
	GetEventStatus(ctx context.Context, eventID string) (domain.EventStatus, error)
	ListEvents(ctx context.Context) ([]string, error)
	ListOrganizerEvents(ctx context.Context, organizer string) ([]string, error)
}

// HandleCreateEvent handles POST /events.
func HandleCreateEvent(svc RegistryService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createEventRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		tiers := make([]app.TierParams, 0, len(req.Tiers))
		for _, tier := range req.Tiers {
			tiers = append(tiers, app.TierParams{
				Name:     tier.Name,
				Price:    tier.Price,
				Capacity: tier.Capacity,
			})
		}

		event, err := svc.CreateEvent(r.Context(), app.CreateEventInput{
			Organizer:   req.Organizer,
			EventID:     req.EventID,
			Name:        req.Name,
			Description: req.Description,
			Venue:       req.Venue,
			StartsAt:    req.StartsAt,
			Tiers:       tiers,
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toEventResponse(event))
	}
}

// HandleGetEvent handles GET /events/{id}.
func HandleGetEvent(svc RegistryService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		event, err := svc.GetEvent(r.Context(), r.PathValue("id"))
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toEventResponse(event))
	}
}

// HandleUpdateEvent handles PATCH /events/{id}. Absent fields stay unchanged.
func HandleUpdateEvent(svc RegistryService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req updateEventRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		event, err := svc.UpdateEventDetails(r.Context(), app.UpdateEventInput{
			Organizer:   req.Organizer,
			EventID:     r.PathValue("id"),
			Name:        req.Name,
			Description: req.Description,
			Venue:       req.Venue,
			StartsAt:    req.StartsAt,
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toEventResponse(event))
	}
}

// HandleEventStatus handles GET and POST /events/{id}/status.
func HandleEventStatus(svc RegistryService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		eventID := r.PathValue("id")

		if r.Method == http.MethodGet {
			status, err := svc.GetEventStatus(r.Context(), eventID)
			if err != nil {
				writeDomainError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, statusResponse{Status: string(status)})
			return
		}

		var req updateStatusRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		err := svc.UpdateEventStatus(r.Context(), req.Organizer, eventID, domain.EventStatus(req.Status))
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, statusResponse{Status: req.Status})
	}
}

// HandleCancelEvent handles POST /events/{id}/cancel.
func HandleCancelEvent(svc RegistryService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req organizerRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		if err := svc.CancelEvent(r.Context(), req.Organizer, r.PathValue("id")); err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, statusResponse{Status: string(domain.EventStatusCancelled)})
	}
}

// HandleAddTier handles POST /events/{id}/tiers.
func HandleAddTier(svc RegistryService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req addTierRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		event, err := svc.AddTicketTier(r.Context(), req.Organizer, r.PathValue("id"), app.TierParams{
			Name:     req.Name,
			Price:    req.Price,
			Capacity: req.Capacity,
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toEventResponse(event))
	}
}

// HandleUpdateTier handles PATCH /events/{id}/tiers/{tier}.
func HandleUpdateTier(svc RegistryService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tierID, err := strconv.Atoi(r.PathValue("tier"))
		if err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidInput, "invalid tier id")
			return
		}

		var req updateTierRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		event, err := svc.UpdateTier(r.Context(), app.UpdateTierInput{
			Organizer: req.Organizer,
			EventID:   r.PathValue("id"),
			TierID:    tierID,
			Name:      req.Name,
			Price:     req.Price,
			Capacity:  req.Capacity,
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toEventResponse(event))
	}
}

// HandleListEvents handles GET /events.
func HandleListEvents(svc RegistryService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ids, err := svc.ListEvents(r.Context())
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, idListResponse{IDs: ids})
	}
}

// HandleOrganizerEvents handles GET /organizers/{organizer}/events.
func HandleOrganizerEvents(svc RegistryService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ids, err := svc.ListOrganizerEvents(r.Context(), r.PathValue("organizer"))
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, idListResponse{IDs: ids})
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

type tierParams struct {
	Name     string `json:"name"`
	Price    int64  `json:"price"`
	Capacity int    `json:"capacity"`
}

type createEventRequest struct {
	Organizer   string       `json:"organizer"`
	EventID     string       `json:"event_id"`
	Name        string       `json:"name"`
	Description string       `json:"description,omitempty"`
	Venue       string       `json:"venue"`
	StartsAt    time.Time    `json:"starts_at"`
	Tiers       []tierParams `json:"tiers"`
}

type updateEventRequest struct {
	Organizer   string     `json:"organizer"`
	Name        *string    `json:"name,omitempty"`
	Description *string    `json:"description,omitempty"`
	Venue       *string    `json:"venue,omitempty"`
	StartsAt    *time.Time `json:"starts_at,omitempty"`
}

type updateStatusRequest struct {
	Organizer string `json:"organizer"`
	Status    string `json:"status"`
}

type organizerRequest struct {
	Organizer string `json:"organizer"`
}

type addTierRequest struct {
	Organizer string `json:"organizer"`
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	Capacity  int    `json:"capacity"`
}

type updateTierRequest struct {
	Organizer string  `json:"organizer"`
	Name      *string `json:"name,omitempty"`
	Price     *int64  `json:"price,omitempty"`
	Capacity  *int    `json:"capacity,omitempty"`
}

type tierResponse struct {
	TierID   int    `json:"tier_id"`
	Name     string `json:"name"`
	Price    int64  `json:"price"`
	Capacity int    `json:"capacity"`
	Sold     int    `json:"sold"`
}

type eventResponse struct {
	ID          string         `json:"id"`
	Organizer   string         `json:"organizer"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Venue       string         `json:"venue"`
	StartsAt    time.Time      `json:"starts_at"`
	Status      string         `json:"status"`
	Tiers       []tierResponse `json:"tiers"`
}

type statusResponse struct {
	Status string `json:"status"`
}

type idListResponse struct {
	IDs []string `json:"ids"`
}

func toEventResponse(event domain.Event) eventResponse {
	tiers := make([]tierResponse, 0, len(event.Tiers))
	for _, tier := range event.Tiers {
		tiers = append(tiers, tierResponse{
			TierID:   tier.TierID,
			Name:     tier.Name,
			Price:    tier.Price,
			Capacity: tier.Capacity,
			Sold:     tier.Sold,
		})
	}
	return eventResponse{
		ID:          event.ID,
		Organizer:   event.Organizer,
		Name:        event.Name,
		Description: event.Description,
		Venue:       event.Venue,
		StartsAt:    event.StartsAt,
		Status:      string(event.Status),
		Tiers:       tiers,
	}
}
