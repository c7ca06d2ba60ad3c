package clinic

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// PostgresRepository implements Repository using PostgreSQL. Ownership is
// enforced in SQL: every query joins down from the customers.user_id column.
type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository creates a new PostgresRepository.
func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// CreateCustomer inserts a new customer row.
func (r *PostgresRepository) CreateCustomer(ctx context.Context, customer Customer) (Customer, error) {
	const query = `
		INSERT INTO customers (id, user_id, name, phone, email, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.ExecContext(ctx, query,
		customer.ID,
		customer.UserID,
		customer.Name,
		customer.Phone,
		customer.Email,
		customer.Notes,
		customer.CreatedAt,
		customer.UpdatedAt,
	)
	if err != nil {
		return Customer{}, err
	}
	return customer, nil
}

// GetCustomer returns a customer owned by the user.
func (r *PostgresRepository) GetCustomer(ctx context.Context, ownerID, id uuid.UUID) (Customer, error) {
	const query = `
		SELECT id, user_id, name, phone, email, notes, created_at, updated_at
		FROM customers
		WHERE id = $1 AND user_id = $2
	`

	var customer Customer
	if err := r.db.GetContext(ctx, &customer, query, id, ownerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Customer{}, ErrNotFound
		}
		return Customer{}, err
	}
	return customer, nil
}

// ListCustomers returns the owner's customers, newest first.
func (r *PostgresRepository) ListCustomers(ctx context.Context, ownerID uuid.UUID) ([]Customer, error) {
	const query = `
		SELECT id, user_id, name, phone, email, notes, created_at, updated_at
		FROM customers
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	customers := []Customer{}
	if err := r.db.SelectContext(ctx, &customers, query, ownerID); err != nil {
		return nil, err
	}
	return customers, nil
}

// UpdateCustomer replaces the editable fields of an owned customer.
func (r *PostgresRepository) UpdateCustomer(ctx context.Context, customer Customer) (Customer, error) {
	const query = `
		UPDATE customers
		SET name = $3, phone = $4, email = $5, notes = $6, updated_at = $7
		WHERE id = $1 AND user_id = $2
	`

	result, err := r.db.ExecContext(ctx, query,
		customer.ID,
		customer.UserID,
		customer.Name,
		customer.Phone,
		customer.Email,
		customer.Notes,
		customer.UpdatedAt,
	)
	if err != nil {
		return Customer{}, err
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return Customer{}, ErrNotFound
	}
	return customer, nil
}

// DeleteCustomer removes an owned customer; pets and treatments cascade.
func (r *PostgresRepository) DeleteCustomer(ctx context.Context, ownerID, id uuid.UUID) error {
	const query = `DELETE FROM customers WHERE id = $1 AND user_id = $2`

	result, err := r.db.ExecContext(ctx, query, id, ownerID)
	if err != nil {
		return err
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return ErrNotFound
	}
	return nil
}

// CreatePet inserts a pet under an owned customer.
func (r *PostgresRepository) CreatePet(ctx context.Context, ownerID uuid.UUID, pet Pet) (Pet, error) {
	const query = `
		INSERT INTO pets (id, customer_id, name, species, breed, birth_date, notes, created_at, updated_at)
		SELECT $1, c.id, $3, $4, $5, $6, $7, $8, $9
		FROM customers c
		WHERE c.id = $2 AND c.user_id = $10
	`

	result, err := r.db.ExecContext(ctx, query,
		pet.ID,
		pet.CustomerID,
		pet.Name,
		pet.Species,
		pet.Breed,
		pet.BirthDate,
		pet.Notes,
		pet.CreatedAt,
		pet.UpdatedAt,
		ownerID,
	)
	if err != nil {
		return Pet{}, err
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return Pet{}, ErrNotFound
	}
	return pet, nil
}

// GetPet returns a pet reachable through the owner's customers.
func (r *PostgresRepository) GetPet(ctx context.Context, ownerID, id uuid.UUID) (Pet, error) {
	const query = `
		SELECT p.id, p.customer_id, p.name, p.species, p.breed, p.birth_date, p.notes, p.created_at, p.updated_at
		FROM pets p
		JOIN customers c ON p.customer_id = c.id
		WHERE p.id = $1 AND c.user_id = $2
	`

	var pet Pet
	if err := r.db.GetContext(ctx, &pet, query, id, ownerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Pet{}, ErrNotFound
		}
		return Pet{}, err
	}
	return pet, nil
}

// ListPets returns the pets of an owned customer.
func (r *PostgresRepository) ListPets(ctx context.Context, ownerID, customerID uuid.UUID) ([]Pet, error) {
	const query = `
		SELECT p.id, p.customer_id, p.name, p.species, p.breed, p.birth_date, p.notes, p.created_at, p.updated_at
		FROM pets p
		JOIN customers c ON p.customer_id = c.id
		WHERE p.customer_id = $1 AND c.user_id = $2
		ORDER BY p.created_at DESC
	`

	pets := []Pet{}
	if err := r.db.SelectContext(ctx, &pets, query, customerID, ownerID); err != nil {
		return nil, err
	}
	return pets, nil
}

// UpdatePet replaces the editable fields of an owned pet.
func (r *PostgresRepository) UpdatePet(ctx context.Context, ownerID uuid.UUID, pet Pet) (Pet, error) {
	const query = `
		UPDATE pets p
		SET name = $2, species = $3, breed = $4, birth_date = $5, notes = $6, updated_at = $7
		FROM customers c
		WHERE p.id = $1 AND p.customer_id = c.id AND c.user_id = $8
	`

	result, err := r.db.ExecContext(ctx, query,
		pet.ID,
		pet.Name,
		pet.Species,
		pet.Breed,
		pet.BirthDate,
		pet.Notes,
		pet.UpdatedAt,
		ownerID,
	)
	if err != nil {
		return Pet{}, err
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return Pet{}, ErrNotFound
	}
	return pet, nil
}

// DeletePet removes an owned pet; its treatments cascade.
func (r *PostgresRepository) DeletePet(ctx context.Context, ownerID, id uuid.UUID) error {
	const query = `
		DELETE FROM pets p
		USING customers c
		WHERE p.id = $1 AND p.customer_id = c.id AND c.user_id = $2
	`

	result, err := r.db.ExecContext(ctx, query, id, ownerID)
	if err != nil {
		return err
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return ErrNotFound
	}
	return nil
}

// CreateTreatment appends a treatment to an owned pet's log.
func (r *PostgresRepository) CreateTreatment(ctx context.Context, ownerID uuid.UUID, treatment Treatment) (Treatment, error) {
	const query = `
		INSERT INTO treatments (id, pet_id, performed_at, description, medication, price_cents, next_due_at, created_at)
		SELECT $1, p.id, $3, $4, $5, $6, $7, $8
		FROM pets p
		JOIN customers c ON p.customer_id = c.id
		WHERE p.id = $2 AND c.user_id = $9
	`

	result, err := r.db.ExecContext(ctx, query,
		treatment.ID,
		treatment.PetID,
		treatment.PerformedAt,
		treatment.Description,
		treatment.Medication,
		treatment.PriceCents,
		treatment.NextDueAt,
		treatment.CreatedAt,
		ownerID,
	)
	if err != nil {
		return Treatment{}, err
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return Treatment{}, ErrNotFound
	}
	return treatment, nil
}

// ListTreatments returns an owned pet's treatment log, newest first.
func (r *PostgresRepository) ListTreatments(ctx context.Context, ownerID, petID uuid.UUID) ([]Treatment, error) {
	const query = `
		SELECT t.id, t.pet_id, t.performed_at, t.description, t.medication, t.price_cents, t.next_due_at, t.created_at
		FROM treatments t
		JOIN pets p ON t.pet_id = p.id
		JOIN customers c ON p.customer_id = c.id
		WHERE t.pet_id = $1 AND c.user_id = $2
		ORDER BY t.performed_at DESC
	`

	treatments := []Treatment{}
	if err := r.db.SelectContext(ctx, &treatments, query, petID, ownerID); err != nil {
		return nil, err
	}
	return treatments, nil
}

// GetTreatmentRecord returns a treatment joined with pet and customer data.
func (r *PostgresRepository) GetTreatmentRecord(ctx context.Context, ownerID, id uuid.UUID) (TreatmentRecord, error) {
	const query = `
		SELECT t.id, t.pet_id, t.performed_at, t.description, t.medication, t.price_cents, t.next_due_at, t.created_at,
			p.name AS pet_name, c.name AS customer_name, c.phone AS customer_phone
		FROM treatments t
		JOIN pets p ON t.pet_id = p.id
		JOIN customers c ON p.customer_id = c.id
		WHERE t.id = $1 AND c.user_id = $2
	`

	var record TreatmentRecord
	if err := r.db.GetContext(ctx, &record, query, id, ownerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return TreatmentRecord{}, ErrNotFound
		}
		return TreatmentRecord{}, err
	}
	return record, nil
}

// ListTreatmentRecords returns every treatment across a customer's pets.
func (r *PostgresRepository) ListTreatmentRecords(ctx context.Context, ownerID, customerID uuid.UUID) ([]TreatmentRecord, error) {
	const query = `
		SELECT t.id, t.pet_id, t.performed_at, t.description, t.medication, t.price_cents, t.next_due_at, t.created_at,
			p.name AS pet_name, c.name AS customer_name, c.phone AS customer_phone
		FROM treatments t
		JOIN pets p ON t.pet_id = p.id
		JOIN customers c ON p.customer_id = c.id
		WHERE c.id = $1 AND c.user_id = $2
		ORDER BY t.performed_at DESC
	`

	records := []TreatmentRecord{}
	if err := r.db.SelectContext(ctx, &records, query, customerID, ownerID); err != nil {
		return nil, err
	}
	return records, nil
}

// DeleteTreatment removes a single owned treatment entry.
func (r *PostgresRepository) DeleteTreatment(ctx context.Context, ownerID, id uuid.UUID) error {
	const query = `
		DELETE FROM treatments t
		USING pets p, customers c
		WHERE t.id = $1 AND t.pet_id = p.id AND p.customer_id = c.id AND c.user_id = $2
	`

	result, err := r.db.ExecContext(ctx, query, id, ownerID)
	if err != nil {
		return err
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return ErrNotFound
	}
	return nil
}
