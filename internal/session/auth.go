package session

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// MaxUserID bounds the pseudo-random user IDs handed to standard users.
const MaxUserID = 10

var (
	// ErrInvalidCredentials is returned when email or password is missing.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrNotLoggedIn is returned when no stored identity exists.
	ErrNotLoggedIn = errors.New("not logged in")
)

// Authenticator turns credentials into an identity.
// It is a stub, not a security mechanism: passwords are not checked.
type Authenticator struct {
	adminEmail string
	intn       func(n int) int
}

// NewAuthenticator creates an authenticator for the given admin email.
func NewAuthenticator(adminEmail string) *Authenticator {
	return &Authenticator{
		adminEmail: strings.TrimSpace(adminEmail),
		intn:       rand.IntN,
	}
}

// WithRand replaces the random source used for user IDs (for testing).
// intn must return a value in [0, n).
func (a *Authenticator) WithRand(intn func(n int) int) *Authenticator {
	a.intn = intn
	return a
}

// Login returns the identity for the credentials.
func (a *Authenticator) Login(email, password string) (Identity, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return Identity{}, ErrInvalidCredentials
	}
	if strings.EqualFold(email, a.adminEmail) {
		return Identity{Role: RoleAdmin, Email: a.adminEmail}, nil
	}
	return Identity{
		Role:   RoleUser,
		UserID: a.intn(MaxUserID) + 1,
		Email:  email,
	}, nil
}

// LoadFile reads a stored identity.
func LoadFile(path string) (Identity, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Identity{}, ErrNotLoggedIn
		}
		return Identity{}, fmt.Errorf("failed to read session: %w", err)
	}
	var id Identity
	if err := yaml.Unmarshal(data, &id); err != nil {
		return Identity{}, fmt.Errorf("invalid session file: %w", err)
	}
	if !id.Resolved() {
		return Identity{}, fmt.Errorf("invalid session file: %w", ErrNotLoggedIn)
	}
	return id, nil
}

// SaveFile stores an identity with mode 0600.
func SaveFile(path string, id Identity) error {
	data, err := yaml.Marshal(id)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}
