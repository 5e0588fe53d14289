package token

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/Makiato1999/CareMate-Backend/internal/config"
	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken  = errors.New("invalid token")
	ErrMisconfigured = errors.New("jwt config invalid")
)

type Claims struct {
	UserType string `json:"userType"`
	jwt.RegisteredClaims
}

// Manager issues and verifies HS256 session tokens. Secret and lifetime are
// fixed at construction.
type Manager struct {
	secret     []byte
	expiration time.Duration
}

func NewManager(cfg config.JWTConfig) (*Manager, error) {
	if cfg.Secret == "" {
		return nil, fmt.Errorf("%w: JWT_SECRET is required", ErrMisconfigured)
	}

	expiration, err := time.ParseDuration(cfg.Expiration)
	if err != nil || expiration <= 0 {
		return nil, fmt.Errorf("%w: invalid JWT_EXPIRATION", ErrMisconfigured)
	}

	return &Manager{
		secret:     []byte(cfg.Secret),
		expiration: expiration,
	}, nil
}

func (m *Manager) Generate(userID int64, userType string) (string, error) {
	return m.generateAt(userID, userType, time.Now())
}

func (m *Manager) generateAt(userID int64, userType string, now time.Time) (string, error) {
	claims := Claims{
		UserType: userType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.expiration)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

func (m *Manager) Parse(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (m *Manager) Validate(tokenStr string) bool {
	_, err := m.Parse(tokenStr)
	return err == nil
}

func (m *Manager) UserID(tokenStr string) (int64, error) {
	claims, err := m.Parse(tokenStr)
	if err != nil {
		return 0, err
	}
	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return 0, ErrInvalidToken
	}
	return userID, nil
}

func (m *Manager) UserType(tokenStr string) (string, error) {
	claims, err := m.Parse(tokenStr)
	if err != nil {
		return "", err
	}
	return claims.UserType, nil
}
