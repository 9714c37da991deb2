package dto

import (
	"time"

	"github.com/spec-kit/clinic-pos/internal/domain"
)

// LoginRequest payload.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// PasswordChangeRequest payload for authenticated password changes.
type PasswordChangeRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// AuthResponse carries an issued token.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// StaffResponse is the public view of a staff record.
type StaffResponse struct {
	UID             string      `json:"uid"`
	DisplayName     *string     `json:"display_name,omitempty"`
	Email           string      `json:"email"`
	Role            domain.Role `json:"role"`
	DoctorID        *string     `json:"doctor_id,omitempty"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
	PasswordResetAt *time.Time  `json:"password_reset_at,omitempty"`
}

// LoginResponse is returned by POST /auth/login.
type LoginResponse struct {
	Staff   StaffResponse `json:"staff"`
	Auth    AuthResponse  `json:"auth"`
	Landing string        `json:"landing"`
}

// SessionResponse describes the caller's session.
type SessionResponse struct {
	State     string            `json:"state"`
	Principal *domain.Principal `json:"principal,omitempty"`
	Landing   string            `json:"landing,omitempty"`
}

// AccessCheckResponse answers GET /access/check.
type AccessCheckResponse struct {
	Path    string      `json:"path"`
	Role    domain.Role `json:"role"`
	Allowed bool        `json:"allowed"`
	Rule    string      `json:"rule,omitempty"`
}

// PageResponse describes a dashboard page the caller may view.
type PageResponse struct {
	Page   string      `json:"page"`
	Path   string      `json:"path"`
	Role   domain.Role `json:"role"`
	Rule   string      `json:"rule,omitempty"`
	Viewer string      `json:"viewer"`
}

// UnauthorizedPageResponse is the access-denied page.
type UnauthorizedPageResponse struct {
	Page    string      `json:"page"`
	Path    string      `json:"path"`
	Role    domain.Role `json:"role"`
	Message string      `json:"message"`
}

// StaffFromDomain converts a record into its public view.
func StaffFromDomain(s *domain.StaffRecord) StaffResponse {
	return StaffResponse{
		UID:             s.UID,
		DisplayName:     s.DisplayName,
		Email:           s.Email,
		Role:            s.Role,
		DoctorID:        s.DoctorID,
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       s.UpdatedAt,
		PasswordResetAt: s.PasswordResetAt,
	}
}
