package auth

import (
	"context"

	"golang.org/x/crypto/bcrypt"

	"github.com/kitforge-id/kitforge/internal/shared"
)

// Service wraps authentication business rules.
type Service struct {
	repo Repository
}

// NewService constructs a new Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Authenticate validates email/password credentials.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*Profile, error) {
	profile, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	if !profile.IsActive {
		return nil, shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(profile.PasswordHash), []byte(password)); err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	return profile, nil
}

// Profile loads a profile by id.
func (s *Service) Profile(ctx context.Context, id int64) (*Profile, error) {
	return s.repo.Get(ctx, id)
}
