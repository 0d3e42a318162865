package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/kitforge-id/kitforge/internal/shared"
)

type mockProfileRepo struct {
	byEmail map[string]*Profile
}

func (m *mockProfileRepo) FindByEmail(_ context.Context, email string) (*Profile, error) {
	p, ok := m.byEmail[email]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return p, nil
}

func (m *mockProfileRepo) Get(_ context.Context, id int64) (*Profile, error) {
	for _, p := range m.byEmail {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, shared.ErrNotFound
}

func newProfile(t *testing.T, email, password string, active bool) *Profile {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return &Profile{ID: 1, Email: email, PasswordHash: string(hash), Role: RoleClient, IsActive: active}
}

func TestAuthenticateSuccess(t *testing.T) {
	repo := &mockProfileRepo{byEmail: map[string]*Profile{
		"andi@example.com": newProfile(t, "andi@example.com", "secret123", true),
	}}
	svc := NewService(repo)

	profile, err := svc.Authenticate(context.Background(), "andi@example.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, "andi@example.com", profile.Email)
}

func TestAuthenticateWrongPassword(t *testing.T) {
	repo := &mockProfileRepo{byEmail: map[string]*Profile{
		"andi@example.com": newProfile(t, "andi@example.com", "secret123", true),
	}}
	svc := NewService(repo)

	_, err := svc.Authenticate(context.Background(), "andi@example.com", "wrong")
	assert.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestAuthenticateUnknownEmail(t *testing.T) {
	svc := NewService(&mockProfileRepo{byEmail: map[string]*Profile{}})

	_, err := svc.Authenticate(context.Background(), "nobody@example.com", "secret123")
	assert.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestAuthenticateInactiveProfile(t *testing.T) {
	repo := &mockProfileRepo{byEmail: map[string]*Profile{
		"andi@example.com": newProfile(t, "andi@example.com", "secret123", false),
	}}
	svc := NewService(repo)

	_, err := svc.Authenticate(context.Background(), "andi@example.com", "secret123")
	assert.ErrorIs(t, err, shared.ErrInvalidCredentials)
}
