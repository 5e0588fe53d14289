package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/Makiato1999/CareMate-Backend/internal/config"
	"github.com/Makiato1999/CareMate-Backend/internal/model"
	"github.com/Makiato1999/CareMate-Backend/internal/token"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUserStore struct {
	users       map[string]*model.User
	nextID      int64
	createCalls int

	// createErr is returned once on the next Create call, simulating a
	// concurrent login winning the insert race.
	createErr     error
	createErrUser *model.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: map[string]*model.User{}, nextID: 1}
}

func (f *fakeUserStore) GetByOpenid(ctx context.Context, openid string) (*model.User, error) {
	if user, ok := f.users[openid]; ok && !user.Deleted {
		return user, nil
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeUserStore) Create(ctx context.Context, openid string, unionid *string, userType model.UserType) (*model.User, error) {
	f.createCalls++
	if f.createErr != nil {
		err := f.createErr
		f.createErr = nil
		if f.createErrUser != nil {
			f.users[openid] = f.createErrUser
		}
		return nil, err
	}
	user := &model.User{
		ID:       f.nextID,
		Openid:   openid,
		Unionid:  unionid,
		UserType: userType,
	}
	f.nextID++
	f.users[openid] = user
	return user, nil
}

type fakeExchanger struct {
	session *model.WechatSession
	err     error
}

func (f *fakeExchanger) ExchangeCode(ctx context.Context, code string) (*model.WechatSession, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.session, nil
}

func testTokens(t *testing.T) *token.Manager {
	t.Helper()
	tokens, err := token.NewManager(config.JWTConfig{Secret: "test-secret", Expiration: "1h"})
	require.NoError(t, err)
	return tokens
}

func testService(t *testing.T, users UserStore, wechat CodeExchanger) *AuthService {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewAuthService(users, wechat, testTokens(t), logger)
}

func TestWechatLoginBlankCode(t *testing.T) {
	svc := testService(t, newFakeUserStore(), &fakeExchanger{})

	for _, code := range []string{"", "   "} {
		_, err := svc.WechatLogin(context.Background(), code)
		assert.ErrorIs(t, err, ErrInvalidInput)
	}
}

func TestWechatLoginExchangeFailure(t *testing.T) {
	store := newFakeUserStore()
	svc := testService(t, store, &fakeExchanger{err: errors.New("wechat code exchange failed: invalid code")})

	_, err := svc.WechatLogin(context.Background(), "bad")
	require.ErrorIs(t, err, ErrWechatLogin)
	assert.Contains(t, err.Error(), "invalid code")
	assert.Zero(t, store.createCalls)
}

func TestWechatLoginFirstTimeCreatesUser(t *testing.T) {
	store := newFakeUserStore()
	svc := testService(t, store, &fakeExchanger{
		session: &model.WechatSession{OpenID: "wx001", SessionKey: "sk"},
	})

	resp, err := svc.WechatLogin(context.Background(), "abc123")
	require.NoError(t, err)
	assert.Equal(t, int64(1), resp.UserID)
	assert.Equal(t, model.UserTypeElder, resp.UserType)
	assert.Equal(t, 1, store.createCalls)

	tokens := testTokens(t)
	userID, err := tokens.UserID(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, int64(1), userID)

	userType, err := tokens.UserType(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, string(model.UserTypeElder), userType)
}

func TestWechatLoginExistingUserReused(t *testing.T) {
	store := newFakeUserStore()
	store.users["wx001"] = &model.User{ID: 1, Openid: "wx001", UserType: model.UserTypeElder}
	store.nextID = 2

	svc := testService(t, store, &fakeExchanger{
		session: &model.WechatSession{OpenID: "wx001", SessionKey: "sk"},
	})

	resp, err := svc.WechatLogin(context.Background(), "abc123")
	require.NoError(t, err)
	assert.Equal(t, int64(1), resp.UserID)
	assert.Equal(t, model.UserTypeElder, resp.UserType)
	assert.Zero(t, store.createCalls, "no new row for a known openid")
}

func TestWechatLoginRepeatResolvesSameUser(t *testing.T) {
	store := newFakeUserStore()
	svc := testService(t, store, &fakeExchanger{
		session: &model.WechatSession{OpenID: "wx001", SessionKey: "sk"},
	})

	first, err := svc.WechatLogin(context.Background(), "abc123")
	require.NoError(t, err)

	second, err := svc.WechatLogin(context.Background(), "def456")
	require.NoError(t, err)

	assert.Equal(t, first.UserID, second.UserID)
	assert.Equal(t, 1, store.createCalls)
}

func TestWechatLoginInsertRaceRefetches(t *testing.T) {
	store := newFakeUserStore()
	store.createErr = &pgconn.PgError{Code: "23505"}
	store.createErrUser = &model.User{ID: 9, Openid: "wx001", UserType: model.UserTypeCompanion}

	svc := testService(t, store, &fakeExchanger{
		session: &model.WechatSession{OpenID: "wx001", SessionKey: "sk"},
	})

	resp, err := svc.WechatLogin(context.Background(), "abc123")
	require.NoError(t, err)
	assert.Equal(t, int64(9), resp.UserID)
	assert.Equal(t, model.UserTypeCompanion, resp.UserType)
}

func TestWechatLoginStoreFailure(t *testing.T) {
	store := newFakeUserStore()
	store.createErr = errors.New("connection reset")

	svc := testService(t, store, &fakeExchanger{
		session: &model.WechatSession{OpenID: "wx001", SessionKey: "sk"},
	})

	_, err := svc.WechatLogin(context.Background(), "abc123")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrWechatLogin)
}
