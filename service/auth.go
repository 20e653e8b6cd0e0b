package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/CUknot/fairmind/models"
	"github.com/CUknot/fairmind/store"
	"github.com/CUknot/fairmind/utils"
	"github.com/sirupsen/logrus"
)

// Accounts registers users and signs them in.
type Accounts struct {
	users  store.UserRepository
	tokens *utils.TokenIssuer
}

func NewAccounts(users store.UserRepository, tokens *utils.TokenIssuer) *Accounts {
	if users == nil || tokens == nil {
		panic("Accounts requires a user repository and a token issuer")
	}
	return &Accounts{users: users, tokens: tokens}
}

// Register creates a user and returns it with a fresh session token.
func (a *Accounts) Register(ctx context.Context, name, email, password string) (*models.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	logCtx := logrus.WithField("email", email)

	if _, err := a.users.FindByEmail(ctx, email); err == nil {
		return nil, "", ErrEmailTaken
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, "", fmt.Errorf("%w: %v", ErrInternal, err)
	}

	user := &models.User{Name: strings.TrimSpace(name), Email: email}
	if err := user.SetPassword(password); err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrInternal, err)
	}
	if err := a.users.Create(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, "", ErrEmailTaken
		}
		logCtx.WithError(err).Error("Failed to create user")
		return nil, "", fmt.Errorf("%w: %v", ErrInternal, err)
	}

	token, err := a.tokens.GenerateToken(user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrInternal, err)
	}
	logCtx.WithField("user_id", user.ID).Info("User registered")
	return user, token, nil
}

// Login checks the credentials and returns a fresh session token.
func (a *Accounts) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := a.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, "", ErrAuthenticationFailed
		}
		return nil, "", fmt.Errorf("%w: %v", ErrInternal, err)
	}
	if err := user.ValidatePassword(password); err != nil {
		return nil, "", ErrAuthenticationFailed
	}

	token, err := a.tokens.GenerateToken(user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrInternal, err)
	}
	return user, token, nil
}

// User looks up a user by id.
func (a *Accounts) User(ctx context.Context, userID uint) (*models.User, error) {
	user, err := a.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}
	return user, nil
}
