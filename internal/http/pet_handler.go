package http

import (
	"net/http"
	"time"

	"log/slog"

	"vetdesk/internal/clinic"
)

// PetHandler exposes pet CRUD endpoints.
type PetHandler struct {
	service *clinic.Service
	logger  *slog.Logger
}

// NewPetHandler creates a handler.
func NewPetHandler(service *clinic.Service, logger *slog.Logger) *PetHandler {
	return &PetHandler{service: service, logger: logger}
}

type petPayload struct {
	Name      string     `json:"name"`
	Species   string     `json:"species"`
	Breed     string     `json:"breed"`
	BirthDate *time.Time `json:"birthDate"`
	Notes     string     `json:"notes"`
}

func (p petPayload) toInput() clinic.PetInput {
	return clinic.PetInput{
		Name:      p.Name,
		Species:   p.Species,
		Breed:     p.Breed,
		BirthDate: p.BirthDate,
		Notes:     p.Notes,
	}
}

// ListByCustomer returns a customer's pets.
func (h *PetHandler) ListByCustomer(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	customerID, ok := parseUUIDParam(w, r, "id")
	if !ok {
		return
	}

	pets, err := h.service.ListPets(r.Context(), user.ID, customerID)
	if err != nil {
		handleClinicError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"pets": pets})
}

// Create registers a pet under a customer.
func (h *PetHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	customerID, ok := parseUUIDParam(w, r, "id")
	if !ok {
		return
	}

	var payload petPayload
	if err := decodeJSONBody(w, r, &payload); err != nil {
		writeJSONError(w, err)
		return
	}

	pet, err := h.service.CreatePet(r.Context(), user.ID, customerID, payload.toInput())
	if err != nil {
		handleClinicError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusCreated, pet)
}

// Get returns a single pet.
func (h *PetHandler) Get(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	id, ok := parseUUIDParam(w, r, "id")
	if !ok {
		return
	}

	pet, err := h.service.GetPet(r.Context(), user.ID, id)
	if err != nil {
		handleClinicError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, pet)
}

// Update replaces a pet's editable fields.
func (h *PetHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	id, ok := parseUUIDParam(w, r, "id")
	if !ok {
		return
	}

	var payload petPayload
	if err := decodeJSONBody(w, r, &payload); err != nil {
		writeJSONError(w, err)
		return
	}

	pet, err := h.service.UpdatePet(r.Context(), user.ID, id, payload.toInput())
	if err != nil {
		handleClinicError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, pet)
}

// Delete removes a pet and its treatment log.
func (h *PetHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	id, ok := parseUUIDParam(w, r, "id")
	if !ok {
		return
	}

	if err := h.service.DeletePet(r.Context(), user.ID, id); err != nil {
		handleClinicError(w, err, h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
