package ez

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-image-studio/internal/core/auth"
	"ai-image-studio/internal/domain"
	resp "ai-image-studio/internal/transport/http/response"
)

func TestMapError(t *testing.T) {
	cases := []struct {
		err  error
		code string
		msg  string
	}{
		{domain.Invalid("prompt", "too long"), resp.CodeValidation, "too long"},
		{fmt.Errorf("wrapped: %w", domain.ErrDuplicateUser), resp.CodeUserExists, ""},
		{domain.ErrInvalidCredentials, resp.CodeInvalidCredentials, ""},
		{domain.ErrUnauthorized, resp.CodeUnauthorized, ""},
		{domain.ErrForbidden, resp.CodeForbidden, ""},
		{domain.ErrUnsupportedMedia, resp.CodeUnsupportedMedia, ""},
		{fmt.Errorf("svc: %w", domain.ErrTransientOverload), resp.CodeModelOverloaded, ""},
		{context.DeadlineExceeded, resp.CodeTimeout, ""},
		{errors.New("pq: relation does not exist"), resp.CodeInternal, ""},
		{fmt.Errorf("list: %w", errors.New("db exploded at 10.0.0.3")), resp.CodeInternal, ""},
	}
	for _, tc := range cases {
		t.Run(tc.err.Error(), func(t *testing.T) {
			ae := MapError(tc.err)
			assert.Equal(t, tc.code, ae.Code)
			assert.Equal(t, tc.msg, ae.Msg)
		})
	}
}

type signupIn struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

func newEngine(t *testing.T, handler func(c *gin.Context, in *signupIn) (gin.H, error)) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterAction(New(r.Group("/api"), nil), Action[signupIn, gin.H]{
		Method:  http.MethodPost,
		Path:    "/signup",
		Binder:  BindJSON,
		Status:  http.StatusCreated,
		Message: "ok",
		Handler: handler,
	})
	return r
}

func do(r http.Handler, body string) (*httptest.ResponseRecorder, map[string]any) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/signup", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	var m map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &m)
	return w, m
}

func TestRegisterAction_ValidationNeverReachesHandler(t *testing.T) {
	called := false
	r := newEngine(t, func(c *gin.Context, in *signupIn) (gin.H, error) {
		called = true
		return gin.H{}, nil
	})

	cases := map[string]struct{ body, msg string }{
		"missing email":  {`{"password":"secret1"}`, `"email" is required`},
		"bad email":      {`{"email":"nope","password":"secret1"}`, `"email" must be a valid email`},
		"short password": {`{"email":"a@b.co","password":"12345"}`, `"password" length must be at least 6 characters long`},
		"wrong type":     {`{"email":"a@b.co","password":123456}`, `"password" must be a string`},
		"not json":       {`{`, `Invalid request body`},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			w, m := do(r, tc.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, false, m["success"])
			assert.Equal(t, resp.CodeValidation, m["errorCode"])
			assert.Equal(t, tc.msg, m["message"])
		})
	}
	assert.False(t, called)
}

func TestRegisterAction_SuccessAndInternal(t *testing.T) {
	r := newEngine(t, func(c *gin.Context, in *signupIn) (gin.H, error) {
		if in.Email == "boom@example.com" {
			return nil, errors.New("sqlite: database is locked at /var/data")
		}
		return gin.H{"email": in.Email}, nil
	})

	w, m := do(r, `{"email":"ok@example.com","password":"secret1"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, true, m["success"])
	assert.Equal(t, "ok", m["message"])
	assert.Equal(t, map[string]any{"email": "ok@example.com"}, m["data"])
	assert.NotContains(t, m, "errorCode")

	w, m = do(r, `{"email":"boom@example.com","password":"secret1"}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Internal server error", m["message"])
	assert.Equal(t, resp.CodeInternal, m["errorCode"])
	assert.NotContains(t, w.Body.String(), "locked")
}

func TestRegisterAction_AuthRequiresUserID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterAction(New(r.Group(""), nil), Action[struct{}, int64]{
		Method: http.MethodGet,
		Path:   "/me",
		Binder: BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (int64, error) {
			id, _ := UserID(c)
			return id, nil
		},
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRegisterAction_AuthReadsRequestContext(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	g := r.Group("")
	g.Use(func(c *gin.Context) {
		c.Request = c.Request.WithContext(auth.WithUserID(c.Request.Context(), 42))
	})
	type listIn struct {
		Limit string `form:"limit"`
	}
	RegisterAction(New(g, nil), Action[listIn, gin.H]{
		Method: http.MethodGet,
		Path:   "/me",
		Binder: BindQuery,
		Auth:   true,
		Handler: func(c *gin.Context, in *listIn) (gin.H, error) {
			id, _ := UserID(c)
			return gin.H{"id": id, "limit": in.Limit}, nil
		},
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me?limit=3", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var m map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &m))
	assert.Equal(t, map[string]any{"id": float64(42), "limit": "3"}, m["data"])
}
