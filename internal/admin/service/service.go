package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"catalogadmin/internal/admin"
	"catalogadmin/internal/api/dto"
	"catalogadmin/internal/metrics"
	"catalogadmin/pkg/hash"
)

var (
	ErrInvalidInput    = errors.New("invalid registration input")
	ErrEmailExists     = errors.New("email already exists")
	ErrWeakPassword    = errors.New("password does not meet policy")
	ErrAdminNotFound   = errors.New("admin not found")
	ErrInvalidPassword = errors.New("invalid password")
)

type AdminService struct {
	repo admin.Repository
}

func NewAdminService(repo admin.Repository) *AdminService {
	return &AdminService{repo: repo}
}

// Register checks, in order: required fields, duplicate email, password
// policy. Nothing is written unless all of them pass.
func (s *AdminService) Register(ctx context.Context, req dto.RegisterRequest) (*admin.Admin, error) {
	a, err := s.register(ctx, req)
	if err != nil {
		metrics.RegistrationsTotal.WithLabelValues("rejected").Inc()
		return nil, err
	}
	metrics.RegistrationsTotal.WithLabelValues("created").Inc()
	return a, nil
}

func (s *AdminService) register(ctx context.Context, req dto.RegisterRequest) (*admin.Admin, error) {
	if err := dto.Validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	_, err := s.repo.GetByEmail(ctx, req.Email)
	if err == nil {
		return nil, ErrEmailExists
	}
	if !errors.Is(err, admin.ErrNotFound) {
		return nil, fmt.Errorf("lookup admin by email: %w", err)
	}

	if err := dto.Validate.Var(req.Password, "adminpassword"); err != nil {
		return nil, ErrWeakPassword
	}

	hashed, err := hash.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	a := &admin.Admin{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hashed,
	}

	if err := s.repo.Create(ctx, a); err != nil {
		if errors.Is(err, admin.ErrEmailTaken) {
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("create admin: %w", err)
	}

	return a, nil
}

func (s *AdminService) Login(ctx context.Context, email, password string) (*admin.Admin, error) {
	a, err := s.repo.GetByEmail(ctx, email)
	if errors.Is(err, admin.ErrNotFound) {
		metrics.LoginAttemptsTotal.WithLabelValues("unknown_email").Inc()
		return nil, ErrAdminNotFound
	}
	if err != nil {
		metrics.LoginAttemptsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("lookup admin by email: %w", err)
	}

	if !hash.CheckPassword(a.PasswordHash, password) {
		metrics.LoginAttemptsTotal.WithLabelValues("bad_password").Inc()
		return nil, ErrInvalidPassword
	}

	metrics.LoginAttemptsTotal.WithLabelValues("success").Inc()
	return a, nil
}

// Profile resolves the admin behind a session. A token can outlive its admin
// record, which surfaces as ErrAdminNotFound.
func (s *AdminService) Profile(ctx context.Context, id int64) (*admin.Admin, error) {
	a, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, admin.ErrNotFound) {
		return nil, ErrAdminNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get admin %d: %w", id, err)
	}
	return a, nil
}

// UpdateProfile writes the supplied fields. A blank name counts as not
// supplied because an admin always has one.
func (s *AdminService) UpdateProfile(ctx context.Context, id int64, changes admin.ProfileChanges) (*admin.Admin, error) {
	if changes.Name != nil && strings.TrimSpace(*changes.Name) == "" {
		changes.Name = nil
	}
	if changes.Empty() {
		return s.Profile(ctx, id)
	}

	a, err := s.repo.UpdateProfile(ctx, id, changes)
	if errors.Is(err, admin.ErrNotFound) {
		return nil, ErrAdminNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update admin %d: %w", id, err)
	}
	return a, nil
}
