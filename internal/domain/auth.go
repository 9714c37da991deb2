package domain

// Principal is the authenticated identity for the current session.
type Principal struct {
	UID   string `json:"uid"`
	Email string `json:"email,omitempty"`
	Role  Role   `json:"role"`
}
