package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"ai-image-studio/internal/core/auth"
	"ai-image-studio/internal/domain"
)

// AuthResult 注册/登录的返回
type AuthResult struct {
	Token  string `json:"token"`
	UserID int64  `json:"userId"`
}

type AuthService struct {
	users  domain.UserRepository
	jwter  *auth.JWTer
	hasher auth.Hasher
	log    *zap.Logger

	// 邮箱不存在时也做一次比对，避免响应耗时暴露账号是否存在
	dummyHash string
}

func NewAuthService(users domain.UserRepository, jwter *auth.JWTer, hasher auth.Hasher, log *zap.Logger) (*AuthService, error) {
	if users == nil || jwter == nil {
		return nil, errors.New("auth service: nil dependency")
	}
	if len(jwter.Secret) == 0 {
		return nil, errors.New("auth service: empty JWT secret")
	}
	if log == nil {
		log = zap.NewNop()
	}
	dummy, err := hasher.Hash("dummy-password-for-timing")
	if err != nil {
		return nil, err
	}
	return &AuthService{users: users, jwter: jwter, hasher: hasher, log: log, dummyHash: dummy}, nil
}

func (s *AuthService) Register(ctx context.Context, email, password string) (*AuthResult, error) {
	existing, err := s.users.FindByEmail(ctx, email)
	switch {
	case err == nil && existing != nil:
		s.log.Info("signup rejected: email taken", zap.String("email", email))
		return nil, domain.ErrDuplicateUser
	case err != nil && !errors.Is(err, domain.ErrNotFound):
		return nil, fmt.Errorf("register: %w", err)
	}

	hashed, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	u := &domain.User{Email: email, PasswordHash: hashed}
	if err := s.users.Create(ctx, u); err != nil {
		// 并发注册同一邮箱：唯一索引裁决，输家拿到 ErrDuplicateUser
		if errors.Is(err, domain.ErrDuplicateUser) {
			s.log.Info("signup lost race on email", zap.String("email", email))
			return nil, domain.ErrDuplicateUser
		}
		return nil, fmt.Errorf("register: %w", err)
	}

	tok, err := s.jwter.Issue(u.ID)
	if err != nil {
		return nil, fmt.Errorf("register: issue token: %w", err)
	}
	s.log.Info("user registered", zap.Int64("user_id", u.ID))
	return &AuthResult{Token: tok, UserID: u.ID}, nil
}

// Authenticate 邮箱不存在与密码错误返回同一个错误
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*AuthResult, error) {
	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("authenticate: %w", err)
		}
		s.hasher.Check(password, s.dummyHash)
		s.log.Info("login failed", zap.String("email", email))
		return nil, domain.ErrInvalidCredentials
	}
	if !s.hasher.Check(password, u.PasswordHash) {
		s.log.Info("login failed", zap.String("email", email))
		return nil, domain.ErrInvalidCredentials
	}

	tok, err := s.jwter.Issue(u.ID)
	if err != nil {
		return nil, fmt.Errorf("authenticate: issue token: %w", err)
	}
	return &AuthResult{Token: tok, UserID: u.ID}, nil
}
