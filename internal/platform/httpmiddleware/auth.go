package httpmiddleware

import (
	"net/http"
	"strings"

	"base62num.local/gee"
	"base62num.local/internal/platform/auth"
)

// parseBearer 格式不对返回空串
func parseBearer(header string) string {
	fields := strings.Fields(header)
	if len(fields) != 2 || !strings.EqualFold(fields[0], "Bearer") {
		return ""
	}
	return fields[1]
}

// AuthRequired 要求有效的 Bearer JWT，并把身份写入请求 context。
func AuthRequired(ts auth.TokenService) gee.HandlerFunc {
	return func(ctx *gee.Context) {
		header := ctx.Req.Header.Get("Authorization")
		if header == "" {
			ctx.AbortWithError(http.StatusUnauthorized, "missing authorization header")
			return
		}
		token := parseBearer(header)
		if token == "" {
			ctx.AbortWithError(http.StatusUnauthorized, "invalid authorization format")
			return
		}
		claims, err := ts.Verify(token)
		if err != nil {
			ctx.AbortWithError(http.StatusUnauthorized, "invalid token")
			return
		}
		ctx.Req = ctx.Req.WithContext(auth.WithIdentity(ctx.Req.Context(), auth.Identity{
			Subject: claims.Subject,
			Role:    claims.Role,
		}))
		ctx.Next()
	}
}

// RequireRole 必须挂在 AuthRequired 之后。
func RequireRole(role string) gee.HandlerFunc {
	return func(ctx *gee.Context) {
		id, ok := auth.GetIdentity(ctx.Req.Context())
		if !ok {
			ctx.AbortWithError(http.StatusUnauthorized, "unauthorized")
			return
		}
		if id.Role != role {
			ctx.AbortWithError(http.StatusForbidden, "forbidden")
			return
		}
		ctx.Next()
	}
}
