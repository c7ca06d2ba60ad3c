package http

import (
	"fmt"
	"net/http"
	"time"

	"log/slog"

	"vetdesk/internal/clinic"
	"vetdesk/internal/exporter"
)

// CustomerHandler exposes customer CRUD and the treatment-history export.
type CustomerHandler struct {
	service  *clinic.Service
	exporter *exporter.CSVExporter
	logger   *slog.Logger
}

// NewCustomerHandler creates a handler.
func NewCustomerHandler(service *clinic.Service, csvExporter *exporter.CSVExporter, logger *slog.Logger) *CustomerHandler {
	return &CustomerHandler{service: service, exporter: csvExporter, logger: logger}
}

type customerPayload struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
	Notes string `json:"notes"`
}

func (p customerPayload) toInput() clinic.CustomerInput {
	return clinic.CustomerInput{
		Name:  p.Name,
		Phone: p.Phone,
		Email: p.Email,
		Notes: p.Notes,
	}
}

// List returns the caller's customers.
func (h *CustomerHandler) List(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	customers, err := h.service.ListCustomers(r.Context(), user.ID)
	if err != nil {
		h.logger.Error("list customers", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list customers")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"customers": customers})
}

// Create stores a new customer.
func (h *CustomerHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	var payload customerPayload
	if err := decodeJSONBody(w, r, &payload); err != nil {
		writeJSONError(w, err)
		return
	}

	customer, err := h.service.CreateCustomer(r.Context(), user.ID, payload.toInput())
	if err != nil {
		handleClinicError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusCreated, customer)
}

// Get returns a single customer.
func (h *CustomerHandler) Get(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	id, ok := parseUUIDParam(w, r, "id")
	if !ok {
		return
	}

	customer, err := h.service.GetCustomer(r.Context(), user.ID, id)
	if err != nil {
		handleClinicError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, customer)
}

// Update replaces a customer's editable fields.
func (h *CustomerHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	id, ok := parseUUIDParam(w, r, "id")
	if !ok {
		return
	}

	var payload customerPayload
	if err := decodeJSONBody(w, r, &payload); err != nil {
		writeJSONError(w, err)
		return
	}

	customer, err := h.service.UpdateCustomer(r.Context(), user.ID, id, payload.toInput())
	if err != nil {
		handleClinicError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, customer)
}

// Delete removes a customer and everything under it.
func (h *CustomerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	id, ok := parseUUIDParam(w, r, "id")
	if !ok {
		return
	}

	if err := h.service.DeleteCustomer(r.Context(), user.ID, id); err != nil {
		handleClinicError(w, err, h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ExportTreatments streams the customer's full treatment history as CSV.
func (h *CustomerHandler) ExportTreatments(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	id, ok := parseUUIDParam(w, r, "id")
	if !ok {
		return
	}

	records, err := h.service.ListTreatmentRecords(r.Context(), user.ID, id)
	if err != nil {
		handleClinicError(w, err, h.logger)
		return
	}

	filename := fmt.Sprintf("treatments-%s.csv", time.Now().UTC().Format("2006-01-02"))
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	if err := h.exporter.Export(w, records); err != nil {
		h.logger.Error("treatment export failed", "error", err)
	}
}
