package clinic

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a record cannot be located for the owner.
var ErrNotFound = errors.New("record not found")

// ErrValidation is returned when input validation fails.
var ErrValidation = errors.New("validation error")

// ValidationError wraps a validation message so callers can distinguish
// client errors from internal failures.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// Customer is a pet owner registered with the clinic. Every customer row is
// owned by the back-office user who created it.
type Customer struct {
	ID        uuid.UUID `db:"id" json:"id"`
	UserID    uuid.UUID `db:"user_id" json:"-"`
	Name      string    `db:"name" json:"name"`
	Phone     string    `db:"phone" json:"phone"`
	Email     string    `db:"email" json:"email"`
	Notes     string    `db:"notes" json:"notes"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// Pet belongs to a customer.
type Pet struct {
	ID         uuid.UUID  `db:"id" json:"id"`
	CustomerID uuid.UUID  `db:"customer_id" json:"customerId"`
	Name       string     `db:"name" json:"name"`
	Species    string     `db:"species" json:"species"`
	Breed      string     `db:"breed" json:"breed"`
	BirthDate  *time.Time `db:"birth_date" json:"birthDate,omitempty"`
	Notes      string     `db:"notes" json:"notes"`
	CreatedAt  time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt  time.Time  `db:"updated_at" json:"updatedAt"`
}

// Treatment is a single entry in a pet's medical log.
type Treatment struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	PetID       uuid.UUID  `db:"pet_id" json:"petId"`
	PerformedAt time.Time  `db:"performed_at" json:"performedAt"`
	Description string     `db:"description" json:"description"`
	Medication  string     `db:"medication" json:"medication"`
	PriceCents  *int       `db:"price_cents" json:"priceCents,omitempty"`
	NextDueAt   *time.Time `db:"next_due_at" json:"nextDueAt,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"createdAt"`
}

// TreatmentRecord is a treatment joined with its pet and owner, used for
// exports and reminders.
type TreatmentRecord struct {
	Treatment
	PetName       string `db:"pet_name" json:"petName"`
	CustomerName  string `db:"customer_name" json:"customerName"`
	CustomerPhone string `db:"customer_phone" json:"customerPhone"`
}

// CustomerInput captures the editable customer fields.
type CustomerInput struct {
	Name  string
	Phone string
	Email string
	Notes string
}

// PetInput captures the editable pet fields.
type PetInput struct {
	Name      string
	Species   string
	Breed     string
	BirthDate *time.Time
	Notes     string
}

// TreatmentInput captures the fields of a new treatment entry.
type TreatmentInput struct {
	PerformedAt time.Time
	Description string
	Medication  string
	PriceCents  *int
	NextDueAt   *time.Time
}

// Repository defines persistence for the clinic records. Every operation is
// scoped to the owning back-office user; a record owned by someone else is
// indistinguishable from a missing one.
type Repository interface {
	CreateCustomer(ctx context.Context, customer Customer) (Customer, error)
	GetCustomer(ctx context.Context, ownerID, id uuid.UUID) (Customer, error)
	ListCustomers(ctx context.Context, ownerID uuid.UUID) ([]Customer, error)
	UpdateCustomer(ctx context.Context, customer Customer) (Customer, error)
	DeleteCustomer(ctx context.Context, ownerID, id uuid.UUID) error

	CreatePet(ctx context.Context, ownerID uuid.UUID, pet Pet) (Pet, error)
	GetPet(ctx context.Context, ownerID, id uuid.UUID) (Pet, error)
	ListPets(ctx context.Context, ownerID, customerID uuid.UUID) ([]Pet, error)
	UpdatePet(ctx context.Context, ownerID uuid.UUID, pet Pet) (Pet, error)
	DeletePet(ctx context.Context, ownerID, id uuid.UUID) error

	CreateTreatment(ctx context.Context, ownerID uuid.UUID, treatment Treatment) (Treatment, error)
	ListTreatments(ctx context.Context, ownerID, petID uuid.UUID) ([]Treatment, error)
	GetTreatmentRecord(ctx context.Context, ownerID, id uuid.UUID) (TreatmentRecord, error)
	ListTreatmentRecords(ctx context.Context, ownerID, customerID uuid.UUID) ([]TreatmentRecord, error)
	DeleteTreatment(ctx context.Context, ownerID, id uuid.UUID) error
}
