package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"wms/internal/logger"
	"wms/internal/model"
	"wms/internal/repository"
	"wms/internal/token"
)

// AuthService exchanges credentials for signed bearer tokens.
type AuthService interface {
	Login(ctx context.Context, creds model.Credentials) (string, error)
	// EnsureAdmin creates an active ADMIN account when the username is free.
	EnsureAdmin(ctx context.Context, username, password string) error
}

type authService struct {
	accounts repository.AccountRepository
	issuer   *token.Issuer
}

func NewAuthService(accounts repository.AccountRepository, issuer *token.Issuer) AuthService {
	return &authService{accounts: accounts, issuer: issuer}
}

func (s *authService) Login(ctx context.Context, creds model.Credentials) (string, error) {
	log := logger.From(ctx).With(logger.Username(creds.Username))

	account, err := s.accounts.GetByUsername(ctx, creds.Username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Info("login for unknown username")
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("database error: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.Password), []byte(creds.Password)); err != nil {
		log.Info("login with wrong password")
		return "", ErrInvalidCredentials
	}
	if !account.Active {
		log.Info("login for inactive account")
		return "", ErrInvalidCredentials
	}

	raw, _, err := s.issuer.Issue(account.ID, account.Username, account.Role.Value)
	if err != nil {
		return "", err
	}
	log.Info("token issued", logger.SubjectID(account.ID), zap.String("role", string(account.Role.Value)))
	return raw, nil
}

func (s *authService) EnsureAdmin(ctx context.Context, username, password string) error {
	if _, err := s.accounts.GetByUsername(ctx, username); err == nil {
		return nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("database error: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	admin := &model.Account{
		Username: username,
		Email:    username + "@localhost",
		Password: string(hash),
		Role:     model.NewRole(model.RoleAdmin),
		Active:   true,
	}
	if err := s.accounts.Create(ctx, admin); err != nil {
		return translate(err, "account")
	}
	logger.From(ctx).Info("bootstrap admin created", logger.Username(username))
	return nil
}
