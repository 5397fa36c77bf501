package domain

import (
	"errors"
	"regexp"
	"strings"
	"time"
)

// User is an account holder of the observatory system. Credentials live on the identity record.
type User struct {
	ID          string     `db:"id" json:"id"`
	Username    string     `db:"username" json:"username"`
	DisplayName string     `db:"display_name" json:"display_name"`
	Role        Role       `db:"role" json:"role"`
	Status      UserStatus `db:"status" json:"status"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
}

type UserStatus string

const (
	UserStatusActive   UserStatus = "active"
	UserStatusDisabled UserStatus = "disabled"
)

// Role gates which use cases a user may perform.
type Role string

const (
	RoleAstronomer        Role = "astronomer"
	RoleScienceObserver   Role = "science_observer"
	RoleTelescopeOperator Role = "telescope_operator"
	RoleSupportStaff      Role = "support_staff"
	RoleAdministrator     Role = "administrator"
)

// Roles lists every role in display order.
var Roles = []Role{RoleAstronomer, RoleScienceObserver, RoleTelescopeOperator, RoleSupportStaff, RoleAdministrator}

var roleDisplay = map[Role]string{
	RoleAstronomer:        "Astronomer",
	RoleScienceObserver:   "Science Observer",
	RoleTelescopeOperator: "Telescope Operator",
	RoleSupportStaff:      "Support Staff",
	RoleAdministrator:     "Administrator",
}

var (
	// ErrUnknownRole is returned by ParseRole for values that name no role.
	ErrUnknownRole     = errors.New("unknown role")
	ErrInvalidUsername = errors.New("username must be 3-64 characters of a-z, 0-9, '.', '_' or '-'")
	ErrInvalidStatus   = errors.New("status must be active or disabled")
)

// Valid reports whether r is one of the defined roles.
func (r Role) Valid() bool {
	_, ok := roleDisplay[r]
	return ok
}

// DisplayName returns the human-readable role name, e.g. "Science Observer".
func (r Role) DisplayName() string {
	return roleDisplay[r]
}

// ParseRole accepts a role value ("science_observer") or display name ("Science Observer"), case-insensitively.
func ParseRole(s string) (Role, error) {
	s = strings.TrimSpace(s)
	for r, display := range roleDisplay {
		if strings.EqualFold(s, string(r)) || strings.EqualFold(s, display) {
			return r, nil
		}
	}
	return "", ErrUnknownRole
}

var usernamePattern = regexp.MustCompile(`^[a-z0-9._-]{3,64}$`)

// NormalizeUsername lowercases and trims a username.
func NormalizeUsername(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Validate checks the user for persistence. Returns an error describing the first validation failure.
func (u *User) Validate() error {
	if !usernamePattern.MatchString(u.Username) {
		return ErrInvalidUsername
	}
	if !u.Role.Valid() {
		return ErrUnknownRole
	}
	if u.Status == "" {
		u.Status = UserStatusActive
	}
	if u.Status != UserStatusActive && u.Status != UserStatusDisabled {
		return ErrInvalidStatus
	}
	return nil
}
