package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/clinic_scheduler/internal/model"
	"github.com/Freeeeeet/clinic_scheduler/internal/repository/base"
	"github.com/google/uuid"
)

type PhysicianRepo struct {
	*base.Repository
}

func NewPhysicianRepository(q base.Querier) *PhysicianRepo {
	return &PhysicianRepo{Repository: base.NewRepository(q)}
}

// GetByID получает врача вместе с клиникой
func (r *PhysicianRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Physician, error) {
	query := `
		SELECT p.id, p.clinic_id, p.first_name, p.last_name, p.abbreviation, p.specialty,
		       c.id, c.name, c.city, c.address
		FROM physicians p
		JOIN clinics c ON c.id = p.clinic_id
		WHERE p.id = $1`

	var (
		p model.Physician
		c model.Clinic
	)
	err := r.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.ClinicID, &p.FirstName, &p.LastName, &p.Abbreviation, &p.Specialty,
		&c.ID, &c.Name, &c.City, &c.Address,
	)
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get physician by id: %w", err)
	}
	p.Clinic = &c
	return &p, nil
}
