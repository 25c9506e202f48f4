package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Resp 统一响应包：{success, message, data?, errorCode?}
type Resp struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	Data      any    `json:"data,omitempty"`
	ErrorCode string `json:"errorCode,omitempty"`
}

func OK(msg string, data any) Resp {
	return Resp{Success: true, Message: msg, Data: data}
}

// Error 失败响应（customMsg 为空时用默认提示）
func Error(code, customMsg string) Resp {
	msg := customMsg
	if msg == "" {
		msg = CodeMsgMap[code].Msg
	}
	return Resp{Success: false, Message: msg, ErrorCode: code}
}

// StatusOf 未登记的 code 一律 500
func StatusOf(code string) int {
	if s, ok := CodeMsgMap[code]; ok {
		return s.Status
	}
	return http.StatusInternalServerError
}

func Success(c *gin.Context, status int, msg string, data any) {
	c.JSON(status, OK(msg, data))
}

func Abort(c *gin.Context, code, customMsg string) {
	c.AbortWithStatusJSON(StatusOf(code), Error(code, customMsg))
}
