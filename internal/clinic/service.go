package clinic

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	maxNameLength  = 200
	maxNotesLength = 4000
)

// Service orchestrates validation and persistence for clinic records.
type Service struct {
	repo Repository
}

// NewService wires a Service with the provided repository.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// CreateCustomer validates and persists a new customer for the owner.
func (s *Service) CreateCustomer(ctx context.Context, ownerID uuid.UUID, input CustomerInput) (Customer, error) {
	if err := validateCustomerInput(input); err != nil {
		return Customer{}, err
	}

	now := time.Now().UTC()
	customer := Customer{
		ID:        uuid.New(),
		UserID:    ownerID,
		Name:      strings.TrimSpace(input.Name),
		Phone:     strings.TrimSpace(input.Phone),
		Email:     strings.TrimSpace(input.Email),
		Notes:     strings.TrimSpace(input.Notes),
		CreatedAt: now,
		UpdatedAt: now,
	}

	return s.repo.CreateCustomer(ctx, customer)
}

// GetCustomer retrieves a customer owned by the user.
func (s *Service) GetCustomer(ctx context.Context, ownerID, id uuid.UUID) (Customer, error) {
	return s.repo.GetCustomer(ctx, ownerID, id)
}

// ListCustomers returns the owner's customers, newest first.
func (s *Service) ListCustomers(ctx context.Context, ownerID uuid.UUID) ([]Customer, error) {
	return s.repo.ListCustomers(ctx, ownerID)
}

// UpdateCustomer validates and replaces the editable customer fields.
func (s *Service) UpdateCustomer(ctx context.Context, ownerID, id uuid.UUID, input CustomerInput) (Customer, error) {
	if err := validateCustomerInput(input); err != nil {
		return Customer{}, err
	}

	existing, err := s.repo.GetCustomer(ctx, ownerID, id)
	if err != nil {
		return Customer{}, err
	}

	existing.Name = strings.TrimSpace(input.Name)
	existing.Phone = strings.TrimSpace(input.Phone)
	existing.Email = strings.TrimSpace(input.Email)
	existing.Notes = strings.TrimSpace(input.Notes)
	existing.UpdatedAt = time.Now().UTC()

	return s.repo.UpdateCustomer(ctx, existing)
}

// DeleteCustomer removes a customer and, through the schema's cascades, its
// pets and their treatments.
func (s *Service) DeleteCustomer(ctx context.Context, ownerID, id uuid.UUID) error {
	return s.repo.DeleteCustomer(ctx, ownerID, id)
}

// CreatePet validates and persists a new pet under one of the owner's
// customers.
func (s *Service) CreatePet(ctx context.Context, ownerID, customerID uuid.UUID, input PetInput) (Pet, error) {
	if err := validatePetInput(input); err != nil {
		return Pet{}, err
	}

	// The customer lookup doubles as the ownership check.
	if _, err := s.repo.GetCustomer(ctx, ownerID, customerID); err != nil {
		return Pet{}, err
	}

	now := time.Now().UTC()
	pet := Pet{
		ID:         uuid.New(),
		CustomerID: customerID,
		Name:       strings.TrimSpace(input.Name),
		Species:    strings.TrimSpace(input.Species),
		Breed:      strings.TrimSpace(input.Breed),
		BirthDate:  input.BirthDate,
		Notes:      strings.TrimSpace(input.Notes),
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	return s.repo.CreatePet(ctx, ownerID, pet)
}

// GetPet retrieves a pet reachable through the owner's customers.
func (s *Service) GetPet(ctx context.Context, ownerID, id uuid.UUID) (Pet, error) {
	return s.repo.GetPet(ctx, ownerID, id)
}

// ListPets returns a customer's pets.
func (s *Service) ListPets(ctx context.Context, ownerID, customerID uuid.UUID) ([]Pet, error) {
	if _, err := s.repo.GetCustomer(ctx, ownerID, customerID); err != nil {
		return nil, err
	}
	return s.repo.ListPets(ctx, ownerID, customerID)
}

// UpdatePet validates and replaces the editable pet fields.
func (s *Service) UpdatePet(ctx context.Context, ownerID, id uuid.UUID, input PetInput) (Pet, error) {
	if err := validatePetInput(input); err != nil {
		return Pet{}, err
	}

	existing, err := s.repo.GetPet(ctx, ownerID, id)
	if err != nil {
		return Pet{}, err
	}

	existing.Name = strings.TrimSpace(input.Name)
	existing.Species = strings.TrimSpace(input.Species)
	existing.Breed = strings.TrimSpace(input.Breed)
	existing.BirthDate = input.BirthDate
	existing.Notes = strings.TrimSpace(input.Notes)
	existing.UpdatedAt = time.Now().UTC()

	return s.repo.UpdatePet(ctx, ownerID, existing)
}

// DeletePet removes a pet and its treatment log.
func (s *Service) DeletePet(ctx context.Context, ownerID, id uuid.UUID) error {
	return s.repo.DeletePet(ctx, ownerID, id)
}

// CreateTreatment validates and appends an entry to a pet's medical log.
func (s *Service) CreateTreatment(ctx context.Context, ownerID, petID uuid.UUID, input TreatmentInput) (Treatment, error) {
	if err := validateTreatmentInput(input); err != nil {
		return Treatment{}, err
	}

	if _, err := s.repo.GetPet(ctx, ownerID, petID); err != nil {
		return Treatment{}, err
	}

	performedAt := input.PerformedAt
	if performedAt.IsZero() {
		performedAt = time.Now().UTC()
	}

	treatment := Treatment{
		ID:          uuid.New(),
		PetID:       petID,
		PerformedAt: performedAt,
		Description: strings.TrimSpace(input.Description),
		Medication:  strings.TrimSpace(input.Medication),
		PriceCents:  input.PriceCents,
		NextDueAt:   input.NextDueAt,
		CreatedAt:   time.Now().UTC(),
	}

	return s.repo.CreateTreatment(ctx, ownerID, treatment)
}

// ListTreatments returns a pet's medical log, newest first.
func (s *Service) ListTreatments(ctx context.Context, ownerID, petID uuid.UUID) ([]Treatment, error) {
	if _, err := s.repo.GetPet(ctx, ownerID, petID); err != nil {
		return nil, err
	}
	return s.repo.ListTreatments(ctx, ownerID, petID)
}

// GetTreatmentRecord returns a treatment joined with pet and customer data.
func (s *Service) GetTreatmentRecord(ctx context.Context, ownerID, id uuid.UUID) (TreatmentRecord, error) {
	return s.repo.GetTreatmentRecord(ctx, ownerID, id)
}

// ListTreatmentRecords returns every treatment across a customer's pets,
// joined with pet and customer data for export.
func (s *Service) ListTreatmentRecords(ctx context.Context, ownerID, customerID uuid.UUID) ([]TreatmentRecord, error) {
	if _, err := s.repo.GetCustomer(ctx, ownerID, customerID); err != nil {
		return nil, err
	}
	return s.repo.ListTreatmentRecords(ctx, ownerID, customerID)
}

// DeleteTreatment removes a single log entry.
func (s *Service) DeleteTreatment(ctx context.Context, ownerID, id uuid.UUID) error {
	return s.repo.DeleteTreatment(ctx, ownerID, id)
}

func validateCustomerInput(input CustomerInput) error {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return &ValidationError{Message: "name is required"}
	}
	if len(name) > maxNameLength {
		return &ValidationError{Message: fmt.Sprintf("name too long (max %d characters)", maxNameLength)}
	}
	if len(input.Notes) > maxNotesLength {
		return &ValidationError{Message: fmt.Sprintf("notes too long (max %d characters)", maxNotesLength)}
	}
	return nil
}

func validatePetInput(input PetInput) error {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return &ValidationError{Message: "name is required"}
	}
	if len(name) > maxNameLength {
		return &ValidationError{Message: fmt.Sprintf("name too long (max %d characters)", maxNameLength)}
	}
	if strings.TrimSpace(input.Species) == "" {
		return &ValidationError{Message: "species is required"}
	}
	if len(input.Notes) > maxNotesLength {
		return &ValidationError{Message: fmt.Sprintf("notes too long (max %d characters)", maxNotesLength)}
	}
	return nil
}

func validateTreatmentInput(input TreatmentInput) error {
	if strings.TrimSpace(input.Description) == "" {
		return &ValidationError{Message: "description is required"}
	}
	if input.PriceCents != nil && *input.PriceCents < 0 {
		return &ValidationError{Message: "price must not be negative"}
	}
	if input.NextDueAt != nil && !input.PerformedAt.IsZero() && input.NextDueAt.Before(input.PerformedAt) {
		return &ValidationError{Message: "next due date must not precede the treatment date"}
	}
	return nil
}
