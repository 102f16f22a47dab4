package service

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"roombooking/internal/db"
	"roombooking/internal/entities"
	apperrors "roombooking/internal/errors"
	"roombooking/internal/repository"
)

type UserService struct {
	repo repository.UserRepository
	log  *logrus.Logger
}

func NewUserService(repo repository.UserRepository, log *logrus.Logger) *UserService {
	return &UserService{repo: repo, log: log}
}

func (s *UserService) Me(ctx context.Context, actor entities.Actor) (*db.Profile, error) {
	return s.repo.GetByID(ctx, actor.UserID)
}

// CurrentRole returns the effective role stored for the user.
func (s *UserService) CurrentRole(ctx context.Context, userID string) (string, error) {
	p, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return "", err
	}
	return p.Role, nil
}

func (s *UserService) ListUsers(ctx context.Context) ([]db.Profile, error) {
	return s.repo.List(ctx)
}

// UpdateUserRole replaces every role of the user with req.Role. Admins may
// not change their own role.
func (s *UserService) UpdateUserRole(ctx context.Context, actor entities.Actor, userID string, req entities.RoleRequest) (*db.Profile, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	if userID == actor.UserID && req.Role != db.RoleAdmin {
		return nil, fmt.Errorf("admins cannot demote themselves: %w", apperrors.ErrForbidden)
	}
	if err := s.repo.ReplaceRole(ctx, userID, req.Role); err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"user_id": userID, "role": req.Role, "by": actor.UserID}).Info("user role changed")
	return s.repo.GetByID(ctx, userID)
}
