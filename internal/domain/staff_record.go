package domain

import (
	"errors"
	"time"
)

// StaffRecord is the directory entry that describes a principal's operational role.
type StaffRecord struct {
	UID             string
	DisplayName     *string
	Email           string
	PasswordHash    string
	Role            Role
	DoctorID        *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
	PasswordResetAt *time.Time
}

var (
	ErrMissingUID         = errors.New("staff record: uid required")
	ErrInvalidRole        = errors.New("staff record: invalid role")
	ErrDoctorIDRequired   = errors.New("staff record: doctor id required for doctor role")
	ErrDoctorIDNotAllowed = errors.New("staff record: doctor id only allowed for doctor role")
)

// Validate checks record invariants. DoctorID is present iff the role is doctor.
func (s *StaffRecord) Validate() error {
	if s.UID == "" {
		return ErrMissingUID
	}
	if !s.Role.Valid() {
		return ErrInvalidRole
	}
	hasDoctorID := s.DoctorID != nil && *s.DoctorID != ""
	if s.Role == RoleDoctor && !hasDoctorID {
		return ErrDoctorIDRequired
	}
	if s.Role != RoleDoctor && hasDoctorID {
		return ErrDoctorIDNotAllowed
	}
	return nil
}

// Principal returns the session identity derived from this record.
func (s *StaffRecord) Principal() Principal {
	return Principal{UID: s.UID, Email: s.Email, Role: s.Role}
}
