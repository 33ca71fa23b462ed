package auth

import (
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned for any failed login attempt.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Verifier checks logins against the single admin account configured
// through the environment. There is no user table; the agent has
// exactly one operator.
type Verifier struct {
	email        string
	passwordHash string
}

// NewVerifier builds a verifier from the configured admin credentials.
func NewVerifier(email, passwordHash string) *Verifier {
	return &Verifier{
		email:        strings.ToLower(strings.TrimSpace(email)),
		passwordHash: passwordHash,
	}
}

// Authenticate validates the provided credentials. It returns
// ErrInvalidCredentials on any mismatch, without distinguishing the
// failing field.
func (v *Verifier) Authenticate(email, password string) error {
	if v.email == "" || v.passwordHash == "" {
		return ErrInvalidCredentials
	}
	if strings.ToLower(strings.TrimSpace(email)) != v.email {
		return ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(v.passwordHash), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}
