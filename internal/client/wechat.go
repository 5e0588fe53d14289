// Client for the WeChat mini-program jscode2session endpoint.
//
// The exchange is a single GET with appid/secret/js_code/grant_type query
// parameters; WeChat reports failures in-band via errcode/errmsg rather than
// HTTP status, so both the transport status and the application code are
// checked.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/Makiato1999/CareMate-Backend/internal/config"
	"github.com/Makiato1999/CareMate-Backend/internal/model"
)

var ErrExchange = errors.New("wechat code exchange failed")

type codeToSessionResponse struct {
	OpenID     string `json:"openid"`
	SessionKey string `json:"session_key"`
	UnionID    string `json:"unionid"`
	ErrCode    int    `json:"errcode"`
	ErrMsg     string `json:"errmsg"`
}

type WechatClient struct {
	appID            string
	appSecret        string
	grantType        string
	codeToSessionURL string
	httpClient       *http.Client
}

func NewWechatClient(cfg config.WechatConfig) *WechatClient {
	timeout, err := time.ParseDuration(cfg.Timeout)
	if err != nil || timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &WechatClient{
		appID:            cfg.AppID,
		appSecret:        cfg.AppSecret,
		grantType:        cfg.GrantType,
		codeToSessionURL: cfg.CodeToSessionURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// ExchangeCode trades a one-time login code for the WeChat session identity.
func (c *WechatClient) ExchangeCode(ctx context.Context, code string) (*model.WechatSession, error) {
	q := url.Values{}
	q.Set("appid", c.appID)
	q.Set("secret", c.appSecret)
	q.Set("js_code", code)
	q.Set("grant_type", c.grantType)

	// Transport errors are reported with fixed text only: the raw error
	// strings carry the request URL, and with it the app secret.
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.codeToSessionURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request", ErrExchange)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: request failed", ErrExchange)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: unexpected status %d", ErrExchange, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response", ErrExchange)
	}
	if len(body) == 0 {
		return nil, fmt.Errorf("%w: empty response body", ErrExchange)
	}

	var session codeToSessionResponse
	if err := json.Unmarshal(body, &session); err != nil {
		return nil, fmt.Errorf("%w: failed to parse response", ErrExchange)
	}

	if session.ErrCode != 0 {
		return nil, fmt.Errorf("%w: %s", ErrExchange, session.ErrMsg)
	}
	if session.OpenID == "" {
		return nil, fmt.Errorf("%w: response missing openid", ErrExchange)
	}

	result := &model.WechatSession{
		OpenID:     session.OpenID,
		SessionKey: session.SessionKey,
	}
	if session.UnionID != "" {
		result.UnionID = &session.UnionID
	}
	return result, nil
}
