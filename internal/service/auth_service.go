package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"roombooking/internal/auth"
	"roombooking/internal/db"
	"roombooking/internal/entities"
	apperrors "roombooking/internal/errors"
	"roombooking/internal/repository"
)

type AuthService interface {
	Register(ctx context.Context, req entities.RegisterRequest) (*db.Profile, error)
	Login(ctx context.Context, req entities.LoginRequest) (*entities.LoginResponse, error)
}

type authService struct {
	repo   repository.UserRepository
	secret []byte
	ttl    time.Duration
	log    *logrus.Logger
	now    func() time.Time
}

func NewAuthService(repo repository.UserRepository, secret string, ttl time.Duration, log *logrus.Logger) AuthService {
	return &authService{repo: repo, secret: []byte(secret), ttl: ttl, log: log, now: time.Now}
}

// Register creates a student profile.
func (s *authService) Register(ctx context.Context, req entities.RegisterRequest) (*db.Profile, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.FullName = strings.TrimSpace(req.FullName)
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	// Hashear la contraseña usando bcrypt
	hash, err := hashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	profile := &db.Profile{
		ID:           uuid.NewString(),
		FullName:     req.FullName,
		Email:        req.Email,
		Phone:        req.Phone,
		PasswordHash: hash,
		Role:         db.RoleStudent,
	}
	if err := s.repo.Create(ctx, profile); err != nil {
		return nil, err
	}
	s.log.WithField("user_id", profile.ID).Info("profile registered")
	return profile, nil
}

func (s *authService) Login(ctx context.Context, req entities.LoginRequest) (*entities.LoginResponse, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	profile, err := s.repo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}
	// Comparamos el password hasheado
	if !checkPasswordHash(req.Password, profile.PasswordHash) {
		return nil, apperrors.ErrInvalidCredentials
	}

	// Creamos un JWT
	actor := entities.Actor{UserID: profile.ID, Email: profile.Email, Role: profile.Role}
	token, expires, err := auth.IssueToken(s.secret, actor, s.ttl, s.now())
	if err != nil {
		return nil, err
	}
	return &entities.LoginResponse{Token: token, ExpiresAt: expires.Unix(), Role: profile.Role}, nil
}

func hashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

func checkPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
