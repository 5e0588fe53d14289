package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/Makiato1999/CareMate-Backend/internal/model"
	"github.com/Makiato1999/CareMate-Backend/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type AuthHandler struct {
	svc *service.AuthService
}

func NewAuthHandler(svc *service.AuthService) *AuthHandler {
	return &AuthHandler{svc: svc}
}

// Login godoc
// @Summary WeChat mini-program login
// @Description Exchanges a wx.login code for a session token, creating the user on first login.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body model.WechatLoginRequest true "One-time login code"
// @Success 200 {object} model.LoginResponse
// @Failure 400 {object} model.ErrorResponse
// @Failure 502 {object} model.ErrorResponse
// @Failure 500 {object} model.ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req model.WechatLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Code: http.StatusBadRequest, Message: bindingErrorMessage(err)})
		return
	}

	resp, err := h.svc.WechatLogin(c.Request.Context(), req.Code)
	if err != nil {
		writeLoginError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Me godoc
// @Summary Get current identity
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.MeResponse
// @Failure 401 {object} model.ErrorResponse
// @Router /user/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	user := GetAuthUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, model.ErrorResponse{Code: http.StatusUnauthorized, Message: "unauthorized"})
		return
	}
	c.JSON(http.StatusOK, model.MeResponse{
		UserID:   user.UserID,
		UserType: user.UserType,
	})
}

// bindingErrorMessage surfaces the first field validation message; malformed
// bodies get a generic one.
func bindingErrorMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return strings.ToLower(verrs[0].Field()) + " is required"
	}
	return "invalid request body"
}

func writeLoginError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Code: http.StatusBadRequest, Message: "code is required"})
	case errors.Is(err, service.ErrWechatLogin):
		c.JSON(http.StatusBadGateway, model.ErrorResponse{Code: http.StatusBadGateway, Message: err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Code: http.StatusInternalServerError, Message: "server error"})
	}
}
