package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/FifiSALIOU/correction-sub000/internal/core/domain"
	"github.com/FifiSALIOU/correction-sub000/internal/core/ports"
)

// TechnicianRepository reads the support staff roster.
type TechnicianRepository struct {
	pool *pgxpool.Pool
}

// Ensure TechnicianRepository implements the ports.TechnicianRepository interface.
var _ ports.TechnicianRepository = (*TechnicianRepository)(nil)

// NewTechnicianRepository creates a new technician repository.
func NewTechnicianRepository(pool *pgxpool.Pool) ports.TechnicianRepository {
	return &TechnicianRepository{pool: pool}
}

// List returns all technicians ordered by name for stable rollup output.
func (r *TechnicianRepository) List(ctx context.Context) ([]*domain.Technician, error) {
	const query = `
SELECT id, full_name, specialization
FROM technicians
ORDER BY full_name, id
`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	technicians := make([]*domain.Technician, 0)
	for rows.Next() {
		var (
			id             pgtype.UUID
			fullName       string
			specialization pgtype.Text
		)
		if err := rows.Scan(&id, &fullName, &specialization); err != nil {
			return nil, err
		}
		technicians = append(technicians, &domain.Technician{
			ID:             uuid.UUID(id.Bytes),
			FullName:       fullName,
			Specialization: textOrEmpty(specialization),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return technicians, nil
}
