// Package credentials проверяет вход администратора по паре email и bcrypt-хэш из конфига.
package credentials

import (
	"context"
	"crypto/subtle"
	"fmt"
	"strings"

	"github.com/magabrotheeeer/lendlens/internal/lib/password"
	"github.com/magabrotheeeer/lendlens/internal/models"
)

// Authenticator хранит единственную учётную запись.
type Authenticator struct {
	email        string
	passwordHash string
}

// New создаёт аутентификатор. Хэш должен быть bcrypt-хэшем.
func New(email, passwordHash string) (*Authenticator, error) {
	if !password.IsHash(passwordHash) {
		return nil, fmt.Errorf("credentials.New: admin password hash is not a bcrypt hash")
	}
	return &Authenticator{
		email:        strings.ToLower(strings.TrimSpace(email)),
		passwordHash: passwordHash,
	}, nil
}

// Authenticate возвращает models.ErrAuthentication при несовпадении email или пароля.
func (a *Authenticator) Authenticate(_ context.Context, email, pass string) error {
	const op = "credentials.Authenticate"
	given := strings.ToLower(strings.TrimSpace(email))
	emailOK := subtle.ConstantTimeCompare([]byte(given), []byte(a.email)) == 1
	passErr := password.CompareHash(a.passwordHash, pass)
	if !emailOK || passErr != nil {
		return fmt.Errorf("%s: %w", op, models.ErrAuthentication)
	}
	return nil
}
