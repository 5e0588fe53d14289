package model

type WechatLoginRequest struct {
	Code string `json:"code" binding:"required"`
}

type LoginResponse struct {
	Token    string   `json:"token"`
	UserID   int64    `json:"userId"`
	UserType UserType `json:"userType"`
}

// WechatSession is the result of a jscode2session exchange.
// SessionKey is opaque session material from WeChat and must never be logged.
type WechatSession struct {
	OpenID     string
	SessionKey string
	UnionID    *string
}

// AuthUser is the identity the auth middleware attaches to the request context.
type AuthUser struct {
	UserID   int64
	UserType string
}
