package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"ai-image-studio/internal/core/auth"
	resp "ai-image-studio/internal/transport/http/response"
)

// AuthJWT 无 token → 401；token 无效/过期 → 403；通过后 userId 写入 request context
func AuthJWT(j *auth.JWTer) gin.HandlerFunc {
	return func(c *gin.Context) {
		tok := bearerToken(c.GetHeader("Authorization"))
		if tok == "" {
			resp.Abort(c, resp.CodeUnauthorized, "")
			return
		}
		claims, err := j.Parse(tok)
		if err != nil {
			_ = c.Error(err)
			resp.Abort(c, resp.CodeForbidden, "")
			return
		}
		c.Request = c.Request.WithContext(auth.WithUserID(c.Request.Context(), claims.UserID))
		c.Next()
	}
}

func bearerToken(header string) string {
	scheme, tok, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(tok)
}
