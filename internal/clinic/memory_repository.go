package clinic

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// InMemoryRepository stores clinic records in in-process maps, for local
// development and tests.
type InMemoryRepository struct {
	mu         sync.RWMutex
	customers  map[uuid.UUID]Customer
	pets       map[uuid.UUID]Pet
	treatments map[uuid.UUID]Treatment
}

// NewInMemoryRepository constructs a repository seeded with optional initial
// customers.
func NewInMemoryRepository(initial []Customer) *InMemoryRepository {
	customers := make(map[uuid.UUID]Customer, len(initial))
	for _, customer := range initial {
		customers[customer.ID] = customer
	}
	return &InMemoryRepository{
		customers:  customers,
		pets:       make(map[uuid.UUID]Pet),
		treatments: make(map[uuid.UUID]Treatment),
	}
}

// CreateCustomer stores a new customer.
func (r *InMemoryRepository) CreateCustomer(_ context.Context, customer Customer) (Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.customers[customer.ID] = customer
	return customer, nil
}

// GetCustomer returns a customer owned by the user.
func (r *InMemoryRepository) GetCustomer(_ context.Context, ownerID, id uuid.UUID) (Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.getCustomerLocked(ownerID, id)
}

func (r *InMemoryRepository) getCustomerLocked(ownerID, id uuid.UUID) (Customer, error) {
	customer, ok := r.customers[id]
	if !ok || customer.UserID != ownerID {
		return Customer{}, ErrNotFound
	}
	return customer, nil
}

// ListCustomers returns the owner's customers, newest first.
func (r *InMemoryRepository) ListCustomers(_ context.Context, ownerID uuid.UUID) ([]Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	customers := []Customer{}
	for _, customer := range r.customers {
		if customer.UserID == ownerID {
			customers = append(customers, customer)
		}
	}
	sort.Slice(customers, func(i, j int) bool {
		return customers[i].CreatedAt.After(customers[j].CreatedAt)
	})
	return customers, nil
}

// UpdateCustomer replaces an existing owned customer.
func (r *InMemoryRepository) UpdateCustomer(_ context.Context, customer Customer) (Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := r.getCustomerLocked(customer.UserID, customer.ID); err != nil {
		return Customer{}, err
	}
	r.customers[customer.ID] = customer
	return customer, nil
}

// DeleteCustomer removes an owned customer and cascades to pets and
// treatments, mirroring the SQL schema.
func (r *InMemoryRepository) DeleteCustomer(_ context.Context, ownerID, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := r.getCustomerLocked(ownerID, id); err != nil {
		return err
	}
	delete(r.customers, id)

	for petID, pet := range r.pets {
		if pet.CustomerID == id {
			delete(r.pets, petID)
			for treatmentID, treatment := range r.treatments {
				if treatment.PetID == petID {
					delete(r.treatments, treatmentID)
				}
			}
		}
	}
	return nil
}

// CreatePet stores a pet under an owned customer.
func (r *InMemoryRepository) CreatePet(_ context.Context, ownerID uuid.UUID, pet Pet) (Pet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := r.getCustomerLocked(ownerID, pet.CustomerID); err != nil {
		return Pet{}, err
	}
	r.pets[pet.ID] = pet
	return pet, nil
}

// GetPet returns a pet reachable through the owner's customers.
func (r *InMemoryRepository) GetPet(_ context.Context, ownerID, id uuid.UUID) (Pet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.getPetLocked(ownerID, id)
}

func (r *InMemoryRepository) getPetLocked(ownerID, id uuid.UUID) (Pet, error) {
	pet, ok := r.pets[id]
	if !ok {
		return Pet{}, ErrNotFound
	}
	if _, err := r.getCustomerLocked(ownerID, pet.CustomerID); err != nil {
		return Pet{}, ErrNotFound
	}
	return pet, nil
}

// ListPets returns the pets of an owned customer.
func (r *InMemoryRepository) ListPets(_ context.Context, ownerID, customerID uuid.UUID) ([]Pet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, err := r.getCustomerLocked(ownerID, customerID); err != nil {
		return nil, err
	}

	pets := []Pet{}
	for _, pet := range r.pets {
		if pet.CustomerID == customerID {
			pets = append(pets, pet)
		}
	}
	sort.Slice(pets, func(i, j int) bool {
		return pets[i].CreatedAt.After(pets[j].CreatedAt)
	})
	return pets, nil
}

// UpdatePet replaces an existing owned pet.
func (r *InMemoryRepository) UpdatePet(_ context.Context, ownerID uuid.UUID, pet Pet) (Pet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := r.getPetLocked(ownerID, pet.ID); err != nil {
		return Pet{}, err
	}
	r.pets[pet.ID] = pet
	return pet, nil
}

// DeletePet removes an owned pet and its treatments.
func (r *InMemoryRepository) DeletePet(_ context.Context, ownerID, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := r.getPetLocked(ownerID, id); err != nil {
		return err
	}
	delete(r.pets, id)
	for treatmentID, treatment := range r.treatments {
		if treatment.PetID == id {
			delete(r.treatments, treatmentID)
		}
	}
	return nil
}

// CreateTreatment appends a treatment to an owned pet's log.
func (r *InMemoryRepository) CreateTreatment(_ context.Context, ownerID uuid.UUID, treatment Treatment) (Treatment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := r.getPetLocked(ownerID, treatment.PetID); err != nil {
		return Treatment{}, err
	}
	r.treatments[treatment.ID] = treatment
	return treatment, nil
}

// ListTreatments returns an owned pet's treatment log, newest first.
func (r *InMemoryRepository) ListTreatments(_ context.Context, ownerID, petID uuid.UUID) ([]Treatment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, err := r.getPetLocked(ownerID, petID); err != nil {
		return nil, err
	}

	treatments := []Treatment{}
	for _, treatment := range r.treatments {
		if treatment.PetID == petID {
			treatments = append(treatments, treatment)
		}
	}
	sort.Slice(treatments, func(i, j int) bool {
		return treatments[i].PerformedAt.After(treatments[j].PerformedAt)
	})
	return treatments, nil
}

// GetTreatmentRecord returns a treatment joined with its pet and customer.
func (r *InMemoryRepository) GetTreatmentRecord(_ context.Context, ownerID, id uuid.UUID) (TreatmentRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	treatment, ok := r.treatments[id]
	if !ok {
		return TreatmentRecord{}, ErrNotFound
	}
	pet, err := r.getPetLocked(ownerID, treatment.PetID)
	if err != nil {
		return TreatmentRecord{}, ErrNotFound
	}
	customer := r.customers[pet.CustomerID]

	return TreatmentRecord{
		Treatment:     treatment,
		PetName:       pet.Name,
		CustomerName:  customer.Name,
		CustomerPhone: customer.Phone,
	}, nil
}

// ListTreatmentRecords returns every treatment across a customer's pets.
func (r *InMemoryRepository) ListTreatmentRecords(_ context.Context, ownerID, customerID uuid.UUID) ([]TreatmentRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	customer, err := r.getCustomerLocked(ownerID, customerID)
	if err != nil {
		return nil, err
	}

	records := []TreatmentRecord{}
	for _, pet := range r.pets {
		if pet.CustomerID != customerID {
			continue
		}
		for _, treatment := range r.treatments {
			if treatment.PetID != pet.ID {
				continue
			}
			records = append(records, TreatmentRecord{
				Treatment:     treatment,
				PetName:       pet.Name,
				CustomerName:  customer.Name,
				CustomerPhone: customer.Phone,
			})
		}
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].PerformedAt.After(records[j].PerformedAt)
	})
	return records, nil
}

// DeleteTreatment removes a single owned treatment entry.
func (r *InMemoryRepository) DeleteTreatment(_ context.Context, ownerID, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	treatment, ok := r.treatments[id]
	if !ok {
		return ErrNotFound
	}
	if _, err := r.getPetLocked(ownerID, treatment.PetID); err != nil {
		return ErrNotFound
	}
	delete(r.treatments, id)
	return nil
}
