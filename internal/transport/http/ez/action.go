package ez

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"ai-image-studio/internal/core/auth"
	"ai-image-studio/internal/domain"
	resp "ai-image-studio/internal/transport/http/response"
)

// 绑定方式
type Binder string

const (
	BindJSON  Binder = "json"  // 从 JSON 绑定
	BindQuery Binder = "query" // 从 URL ?a=b 绑定
	BindForm  Binder = "form"  // multipart / urlencoded 表单
	BindNone  Binder = "none"  // 不绑定，自己从 c.Param / c.PostForm 取
)

type EZ struct {
	g   *gin.RouterGroup
	log *zap.Logger
}

func New(g *gin.RouterGroup, log *zap.Logger) EZ {
	if log == nil {
		log = zap.NewNop()
	}
	return EZ{g: g, log: log}
}

// 动作定义：I 入参，O 出参
type Action[I any, O any] struct {
	Method  string // "GET" | "POST" | "PUT" | "DELETE"
	Path    string
	Binder  Binder
	Auth    bool   // 是否要求登录（检查 userId）
	Status  int    // 成功时的 HTTP 状态，默认 200
	Message string // 成功时的 message
	Handler func(c *gin.Context, in *I) (O, error)
}

// RegisterAction 三步：绑定/校验 → 执行 → 统一错误映射
func RegisterAction[I any, O any](e EZ, a Action[I, O]) {
	status := a.Status
	if status == 0 {
		status = http.StatusOK
	}
	h := func(c *gin.Context) {
		if a.Auth {
			if _, ok := UserID(c); !ok {
				resp.Abort(c, resp.CodeUnauthorized, "")
				return
			}
		}

		var in I
		var bindErr error
		switch a.Binder {
		case BindJSON:
			bindErr = c.ShouldBindJSON(&in)
		case BindQuery:
			bindErr = c.ShouldBindQuery(&in)
		case BindForm:
			bindErr = c.ShouldBind(&in)
		default:
		}
		if bindErr != nil {
			e.fail(c, BindError(bindErr))
			return
		}

		out, err := a.Handler(c, &in)
		if err != nil {
			e.fail(c, err)
			return
		}
		resp.Success(c, status, a.Message, out)
	}

	switch strings.ToUpper(a.Method) {
	case http.MethodGet:
		e.g.GET(a.Path, h)
	case http.MethodPut:
		e.g.PUT(a.Path, h)
	case http.MethodDelete:
		e.g.DELETE(a.Path, h)
	default: // 默认 POST
		e.g.POST(a.Path, h)
	}
}

func (e EZ) fail(c *gin.Context, err error) {
	ae := MapError(err)
	if ae.Code == resp.CodeInternal {
		// 内部错误只进日志，不回给客户端
		e.log.Error("unhandled error",
			zap.String("path", c.FullPath()),
			zap.String("method", c.Request.Method),
			zap.Error(err),
		)
		_ = c.Error(err)
	}
	resp.Abort(c, ae.Code, ae.Msg)
}

// UserID 取鉴权中间件挂在 request context 上的用户 ID
func UserID(c *gin.Context) (int64, bool) {
	return auth.UserIDFrom(c.Request.Context())
}

// AErr 传输层错误（code 对应 response.CodeMsgMap）
type AErr struct {
	Code string
	Msg  string
	Err  error
}

func (e *AErr) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Code
}

func (e *AErr) Unwrap() error { return e.Err }

// MapError 领域错误 → 传输错误；未识别的一律 Internal，且 Msg 用默认提示
func MapError(err error) *AErr {
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		return &AErr{Code: resp.CodeValidation, Msg: ve.Msg, Err: err}
	}
	for _, m := range sentinels {
		if errors.Is(err, m.err) {
			return &AErr{Code: m.code, Err: err}
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &AErr{Code: resp.CodeTimeout, Err: err}
	}
	return &AErr{Code: resp.CodeInternal, Err: err}
}

var sentinels = []struct {
	err  error
	code string
}{
	{domain.ErrValidation, resp.CodeValidation},
	{domain.ErrDuplicateUser, resp.CodeUserExists},
	{domain.ErrInvalidCredentials, resp.CodeInvalidCredentials},
	{domain.ErrUnauthorized, resp.CodeUnauthorized},
	{domain.ErrForbidden, resp.CodeForbidden},
	{domain.ErrUnsupportedMedia, resp.CodeUnsupportedMedia},
	{domain.ErrTransientOverload, resp.CodeModelOverloaded},
	{domain.ErrNotFound, resp.CodeNotFound},
}
