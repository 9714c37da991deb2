package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/clinic-pos/internal/domain"
)

// ErrStaffNotFound is returned when no staff record matches.
var ErrStaffNotFound = errors.New("staff record not found")

// StaffRepository handles persistence for staff records.
type StaffRepository interface {
	Create(ctx context.Context, staff *domain.StaffRecord) error
	UpdatePassword(ctx context.Context, uid, passwordHash string) error
	GetByUID(ctx context.Context, uid string) (*domain.StaffRecord, error)
	GetByEmail(ctx context.Context, email string) (*domain.StaffRecord, error)
	List(ctx context.Context, filter StaffFilter) ([]domain.StaffRecord, error)
}

// StaffFilter defines query params for staff listing.
type StaffFilter struct {
	Role   *domain.Role
	Limit  int
	Offset int
}

type staffRepository struct {
	pool *pgxpool.Pool
}

// NewStaffRepository instantiates the repository.
func NewStaffRepository(pool *pgxpool.Pool) StaffRepository {
	return &staffRepository{pool: pool}
}

const staffColumns = `uid, display_name, email, password_hash, role, doctor_id, created_at, updated_at, password_reset_at`

func (r *staffRepository) Create(ctx context.Context, staff *domain.StaffRecord) error {
	if err := staff.Validate(); err != nil {
		return err
	}
	const query = `
        INSERT INTO staff_records (uid, display_name, email, password_hash, role, doctor_id)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		staff.UID,
		staff.DisplayName,
		strings.ToLower(staff.Email),
		staff.PasswordHash,
		staff.Role,
		staff.DoctorID,
	).Scan(&staff.CreatedAt, &staff.UpdatedAt)
}

func (r *staffRepository) UpdatePassword(ctx context.Context, uid, passwordHash string) error {
	const query = `
        UPDATE staff_records
        SET password_hash=$1, password_reset_at=NOW(), updated_at=NOW()
        WHERE uid=$2`

	cmd, err := r.pool.Exec(ctx, query, passwordHash, uid)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrStaffNotFound
	}
	return nil
}

func (r *staffRepository) GetByUID(ctx context.Context, uid string) (*domain.StaffRecord, error) {
	query := `SELECT ` + staffColumns + ` FROM staff_records WHERE uid=$1`
	return scanOne(r.pool.QueryRow(ctx, query, uid))
}

func (r *staffRepository) GetByEmail(ctx context.Context, email string) (*domain.StaffRecord, error) {
	query := `SELECT ` + staffColumns + ` FROM staff_records WHERE email=$1`
	return scanOne(r.pool.QueryRow(ctx, query, strings.ToLower(email)))
}

func (r *staffRepository) List(ctx context.Context, filter StaffFilter) ([]domain.StaffRecord, error) {
	query := `SELECT ` + staffColumns + ` FROM staff_records`
	args := []any{}
	if filter.Role != nil {
		args = append(args, *filter.Role)
		query += fmt.Sprintf(" WHERE role=$%d", len(args))
	}

	query += " ORDER BY created_at DESC"
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	query += fmt.Sprintf(" LIMIT %d OFFSET %d", limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.StaffRecord
	for rows.Next() {
		staff, err := scanStaff(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *staff)
	}
	return result, rows.Err()
}

func scanOne(row pgx.Row) (*domain.StaffRecord, error) {
	staff, err := scanStaff(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrStaffNotFound
	}
	return staff, err
}

func scanStaff(row pgx.Row) (*domain.StaffRecord, error) {
	var staff domain.StaffRecord
	if err := row.Scan(
		&staff.UID,
		&staff.DisplayName,
		&staff.Email,
		&staff.PasswordHash,
		&staff.Role,
		&staff.DoctorID,
		&staff.CreatedAt,
		&staff.UpdatedAt,
		&staff.PasswordResetAt,
	); err != nil {
		return nil, err
	}
	return &staff, nil
}
