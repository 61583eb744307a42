package http

import "net/http"

// NewMux wires every route to its handler. Method matching and path
// parameters come from the standard mux patterns.
func NewMux(registry RegistryService, inventory InventoryService, payments PaymentService, tickets TicketService) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", HealthHandler)

	mux.Handle("POST /events", HandleCreateEvent(registry))
	mux.Handle("GET /events", HandleListEvents(registry))
	mux.Handle("GET /events/{id}", HandleGetEvent(registry))
	mux.Handle("PATCH /events/{id}", HandleUpdateEvent(registry))
	mux.Handle("GET /events/{id}/status", HandleEventStatus(registry))
	mux.Handle("POST /events/{id}/status", HandleEventStatus(registry))
	mux.Handle("POST /events/{id}/cancel", HandleCancelEvent(registry))
	mux.Handle("POST /events/{id}/tiers", HandleAddTier(registry))
	mux.Handle("PATCH /events/{id}/tiers/{tier}", HandleUpdateTier(registry))
	mux.Handle("GET /organizers/{organizer}/events", HandleOrganizerEvents(registry))

	mux.Handle("POST /events/{id}/registrations", HandleRegister(inventory))
	mux.Handle("GET /events/{id}/registrations", HandleAttendees(inventory))
	mux.Handle("GET /events/{id}/registrations/{attendee}", HandleIsRegistered(inventory))

	mux.Handle("POST /payments/initialize", HandleInitializePayments(payments))
	mux.Handle("POST /payments", HandlePayForTicket(payments))
	mux.Handle("GET /payments/{id}", HandleGetPayment(payments))
	mux.Handle("GET /events/{id}/revenue", HandleEventRevenue(payments))
	mux.Handle("GET /events/{id}/payments", HandleEventPayments(payments))

	mux.Handle("POST /tickets", HandleMintTicket(tickets))
	mux.Handle("GET /tickets/{id}", HandleGetTicket(tickets))
	mux.Handle("POST /tickets/{id}/transfer", HandleTransferTicket(tickets))
	mux.Handle("POST /tickets/{id}/use", HandleUseTicket(tickets))
	mux.Handle("POST /tickets/{id}/cancel", HandleCancelTicket(tickets))
	mux.Handle("GET /owners/{owner}/tickets", HandleOwnerTickets(tickets))
	mux.Handle("GET /events/{id}/tickets", HandleEventTickets(tickets))

	mux.Handle("/", NotFoundHandler())

	return mux
}
