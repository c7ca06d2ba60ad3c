package http

import (
	"errors"
	"net/http"
	"time"

	"log/slog"

	"vetdesk/internal/clinic"
	"vetdesk/internal/notify"
)

// TreatmentHandler exposes the treatment log and reminder endpoints.
type TreatmentHandler struct {
	service  *clinic.Service
	whatsapp *notify.WhatsAppClient
	logger   *slog.Logger
}

// NewTreatmentHandler creates a handler.
func NewTreatmentHandler(service *clinic.Service, whatsapp *notify.WhatsAppClient, logger *slog.Logger) *TreatmentHandler {
	return &TreatmentHandler{service: service, whatsapp: whatsapp, logger: logger}
}

type treatmentPayload struct {
	PerformedAt *time.Time `json:"performedAt"`
	Description string     `json:"description"`
	Medication  string     `json:"medication"`
	PriceCents  *int       `json:"priceCents"`
	NextDueAt   *time.Time `json:"nextDueAt"`
}

// ListByPet returns a pet's treatment log.
func (h *TreatmentHandler) ListByPet(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	petID, ok := parseUUIDParam(w, r, "id")
	if !ok {
		return
	}

	treatments, err := h.service.ListTreatments(r.Context(), user.ID, petID)
	if err != nil {
		handleClinicError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"treatments": treatments})
}

// Create appends an entry to a pet's treatment log.
func (h *TreatmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	petID, ok := parseUUIDParam(w, r, "id")
	if !ok {
		return
	}

	var payload treatmentPayload
	if err := decodeJSONBody(w, r, &payload); err != nil {
		writeJSONError(w, err)
		return
	}

	input := clinic.TreatmentInput{
		Description: payload.Description,
		Medication:  payload.Medication,
		PriceCents:  payload.PriceCents,
		NextDueAt:   payload.NextDueAt,
	}
	if payload.PerformedAt != nil {
		input.PerformedAt = *payload.PerformedAt
	}

	treatment, err := h.service.CreateTreatment(r.Context(), user.ID, petID, input)
	if err != nil {
		handleClinicError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusCreated, treatment)
}

// Delete removes a treatment entry.
func (h *TreatmentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	id, ok := parseUUIDParam(w, r, "id")
	if !ok {
		return
	}

	if err := h.service.DeleteTreatment(r.Context(), user.ID, id); err != nil {
		handleClinicError(w, err, h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Remind sends a WhatsApp reminder for a treatment's next-due date to the
// owning customer's phone number.
func (h *TreatmentHandler) Remind(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	id, ok := parseUUIDParam(w, r, "id")
	if !ok {
		return
	}

	if !h.whatsapp.Configured() {
		writeError(w, http.StatusNotImplemented, "whatsapp notifications are not configured")
		return
	}

	record, err := h.service.GetTreatmentRecord(r.Context(), user.ID, id)
	if err != nil {
		handleClinicError(w, err, h.logger)
		return
	}
	if record.NextDueAt == nil {
		writeError(w, http.StatusBadRequest, "treatment has no due date")
		return
	}
	if record.CustomerPhone == "" {
		writeError(w, http.StatusBadRequest, "customer has no phone number")
		return
	}

	message := notify.ReminderMessage(record.CustomerName, record.PetName, record.Description, *record.NextDueAt)
	if err := h.whatsapp.Send(r.Context(), record.CustomerPhone, message); err != nil {
		if errors.Is(err, notify.ErrNotConfigured) {
			writeError(w, http.StatusNotImplemented, "whatsapp notifications are not configured")
			return
		}
		h.logger.Error("reminder send failed", "error", err, "treatment_id", record.ID)
		writeError(w, http.StatusBadGateway, "failed to send reminder")
		return
	}

	h.logger.Info("reminder sent", "treatment_id", record.ID, "customer", record.CustomerName)
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}
