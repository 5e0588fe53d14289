package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Makiato1999/CareMate-Backend/internal/db"
	"github.com/Makiato1999/CareMate-Backend/internal/model"
	"github.com/Makiato1999/CareMate-Backend/internal/token"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrWechatLogin  = errors.New("wechat login failed")
)

type UserStore interface {
	GetByOpenid(ctx context.Context, openid string) (*model.User, error)
	Create(ctx context.Context, openid string, unionid *string, userType model.UserType) (*model.User, error)
}

type CodeExchanger interface {
	ExchangeCode(ctx context.Context, code string) (*model.WechatSession, error)
}

type AuthService struct {
	users  UserStore
	wechat CodeExchanger
	tokens *token.Manager
	logger *slog.Logger
}

func NewAuthService(users UserStore, wechat CodeExchanger, tokens *token.Manager, logger *slog.Logger) *AuthService {
	return &AuthService{
		users:  users,
		wechat: wechat,
		tokens: tokens,
		logger: logger.With("component", "auth_service"),
	}
}

// WechatLogin exchanges a one-time mini-program code for a session token,
// provisioning a local user on first login.
func (s *AuthService) WechatLogin(ctx context.Context, code string) (*model.LoginResponse, error) {
	if strings.TrimSpace(code) == "" {
		return nil, fmt.Errorf("%w: code is required", ErrInvalidInput)
	}

	session, err := s.wechat.ExchangeCode(ctx, code)
	if err != nil {
		s.logger.Error("wechat code exchange failed", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrWechatLogin, err)
	}

	user, err := s.resolveUser(ctx, session)
	if err != nil {
		s.logger.Error("failed to resolve user", "openid", session.OpenID, "error", err)
		return nil, err
	}

	signed, err := s.tokens.Generate(user.ID, string(user.UserType))
	if err != nil {
		return nil, err
	}

	s.logger.Info("login succeeded", "user_id", user.ID, "user_type", user.UserType)

	return &model.LoginResponse{
		Token:    signed,
		UserID:   user.ID,
		UserType: user.UserType,
	}, nil
}

// resolveUser finds the user for the exchanged identity, creating one on
// first login. A unique violation on insert means a concurrent login won the
// race; the winner's row is fetched and used.
func (s *AuthService) resolveUser(ctx context.Context, session *model.WechatSession) (*model.User, error) {
	user, err := s.users.GetByOpenid(ctx, session.OpenID)
	if err == nil {
		return user, nil
	}
	if !db.IsNoRows(err) {
		return nil, err
	}

	user, err = s.users.Create(ctx, session.OpenID, session.UnionID, model.DefaultUserType)
	if err == nil {
		s.logger.Info("provisioned new user", "user_id", user.ID)
		return user, nil
	}
	if !db.IsUniqueViolation(err) {
		return nil, err
	}

	return s.users.GetByOpenid(ctx, session.OpenID)
}
