package service

import (
	"context"
	"time"

	"github.com/readvox/readvox/internal/model"
	appErr "github.com/readvox/readvox/internal/pkg/errors"
	"github.com/readvox/readvox/internal/pkg/jwt"
	"github.com/readvox/readvox/internal/pkg/password"
	"github.com/readvox/readvox/internal/pkg/timeutil"
	"github.com/readvox/readvox/internal/repo"
)

type AuthService struct {
	users         *repo.UserRepo
	jwtSecret     []byte
	jwtTTL        time.Duration
	allowRegister bool
}

func NewAuthService(users *repo.UserRepo, secret []byte, ttl time.Duration, allowRegister bool) *AuthService {
	return &AuthService{users: users, jwtSecret: secret, jwtTTL: ttl, allowRegister: allowRegister}
}

func (s *AuthService) Register(ctx context.Context, name, email, plainPassword string) (*model.User, string, error) {
	if !s.allowRegister {
		return nil, "", appErr.ErrForbidden
	}
	now := timeutil.NowUnix()
	hash, err := password.Hash(plainPassword)
	if err != nil {
		return nil, "", err
	}
	user := &model.User{
		ID:           newID(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Ctime:        now,
		Mtime:        now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, "", err
	}
	token, err := jwt.GenerateToken(user.ID, user.Email, s.jwtSecret, s.jwtTTL)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (s *AuthService) Login(ctx context.Context, email, plainPassword string) (*model.User, string, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, "", appErr.ErrUnauthorized
	}
	if err := password.Compare(user.PasswordHash, plainPassword); err != nil {
		return nil, "", appErr.ErrUnauthorized
	}
	token, err := jwt.GenerateToken(user.ID, user.Email, s.jwtSecret, s.jwtTTL)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (s *AuthService) GetUser(ctx context.Context, userID string) (*model.User, error) {
	return s.users.GetByID(ctx, userID)
}

func (s *AuthService) UpdateSubscription(ctx context.Context, userID string, subscribed bool) error {
	return s.users.UpdateSubscription(ctx, userID, subscribed, timeutil.NowUnix())
}
