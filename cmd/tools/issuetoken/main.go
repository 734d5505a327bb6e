package main

import (
	"fmt"
	"log"
	"os"

	"base62num.local/internal/platform/auth"
	"base62num.local/internal/platform/config"
)

// 用服务自己的 JWT 配置签发 token，默认 admin 角色
func main() {
	if len(os.Args) < 2 || len(os.Args) > 3 {
		log.Fatal("usage: go run ./cmd/tools/issuetoken <subject> [role]")
	}
	role := auth.RoleAdmin
	if len(os.Args) == 3 {
		role = os.Args[2]
	}

	cfg := config.Load()
	ts, err := auth.NewHS256Service(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL)
	if err != nil {
		log.Fatal(err)
	}
	token, err := ts.Sign(os.Args[1], role)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(token)
}
