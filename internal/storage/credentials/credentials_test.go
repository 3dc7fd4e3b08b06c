package credentials

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/lendlens/internal/lib/password"
	"github.com/magabrotheeeer/lendlens/internal/models"
)

func TestAuthenticate(t *testing.T) {
	hash, err := password.GetHash("admin123")
	require.NoError(t, err)
	auth, err := New("admin@lendlens.com", hash)
	require.NoError(t, err)

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  bool
	}{
		{name: "valid", email: "admin@lendlens.com", password: "admin123"},
		{name: "email case and spaces ignored", email: "  Admin@LendLens.com ", password: "admin123"},
		{name: "wrong password", email: "admin@lendlens.com", password: "admin124", wantErr: true},
		{name: "wrong email", email: "user@lendlens.com", password: "admin123", wantErr: true},
		{name: "empty", email: "", password: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := auth.Authenticate(context.Background(), tt.email, tt.password)
			if tt.wantErr {
				assert.ErrorIs(t, err, models.ErrAuthentication)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestNewRejectsPlaintext(t *testing.T) {
	_, err := New("admin@lendlens.com", "admin123")
	assert.Error(t, err)
}
