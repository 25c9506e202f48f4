package response

import "net/http"

// 业务错误码（errorCode 字段）
const (
	CodeValidation         = "VALIDATION_ERROR"
	CodeUserExists         = "USER_EXISTS"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeForbidden          = "FORBIDDEN"
	CodeUnsupportedMedia   = "UNSUPPORTED_MEDIA"
	CodeModelOverloaded    = "MODEL_OVERLOADED"
	CodeTooManyRequests    = "TOO_MANY_REQUESTS"
	CodeTimeout            = "TIMEOUT"
	CodeNotFound           = "NOT_FOUND"
	CodeInternal           = "INTERNAL_ERROR"
)

// CodeInfo 一个错误码对应的 HTTP 状态与默认提示
type CodeInfo struct {
	Status int
	Msg    string
}

// CodeMsgMap 集中管理 code → status/msg
var CodeMsgMap = map[string]CodeInfo{
	CodeValidation:         {http.StatusBadRequest, "Validation error"},
	CodeUserExists:         {http.StatusBadRequest, "User already exists"},
	CodeInvalidCredentials: {http.StatusUnauthorized, "Invalid credentials"},
	CodeUnauthorized:       {http.StatusUnauthorized, "Access token required"},
	CodeForbidden:          {http.StatusForbidden, "Invalid token"},
	CodeUnsupportedMedia:   {http.StatusBadRequest, "Only image files are allowed"},
	CodeModelOverloaded:    {http.StatusServiceUnavailable, "Model overloaded"},
	CodeTooManyRequests:    {http.StatusTooManyRequests, "Too many requests"},
	CodeTimeout:            {http.StatusGatewayTimeout, "Request timeout"},
	CodeNotFound:           {http.StatusNotFound, "Not found"},
	CodeInternal:           {http.StatusInternalServerError, "Internal server error"},
}
