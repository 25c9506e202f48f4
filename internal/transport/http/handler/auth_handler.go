package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"ai-image-studio/internal/service"
	"ai-image-studio/internal/transport/http/ez"
)

type Authenticator interface {
	Register(ctx context.Context, email, password string) (*service.AuthResult, error)
	Authenticate(ctx context.Context, email, password string) (*service.AuthResult, error)
}

type AuthHandler struct {
	svc Authenticator
}

func NewAuthHandler(svc Authenticator) *AuthHandler { return &AuthHandler{svc: svc} }

type signupIn struct {
	Email    string `json:"email"    binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type loginIn struct {
	Email    string `json:"email"    binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Signup(e ez.EZ) {
	ez.RegisterAction(e, ez.Action[signupIn, *service.AuthResult]{
		Method:  http.MethodPost,
		Path:    "/signup",
		Binder:  ez.BindJSON,
		Status:  http.StatusCreated,
		Message: "Registration successful",
		Handler: func(c *gin.Context, in *signupIn) (*service.AuthResult, error) {
			return h.svc.Register(c.Request.Context(), in.Email, in.Password)
		},
	})
}

func (h *AuthHandler) Login(e ez.EZ) {
	ez.RegisterAction(e, ez.Action[loginIn, *service.AuthResult]{
		Method:  http.MethodPost,
		Path:    "/login",
		Binder:  ez.BindJSON,
		Message: "Login successful",
		Handler: func(c *gin.Context, in *loginIn) (*service.AuthResult, error) {
			return h.svc.Authenticate(c.Request.Context(), in.Email, in.Password)
		},
	})
}
