package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"grocery-pricer/internal/api/middleware"
	"grocery-pricer/internal/infrastructure/config"
)

// 簽發觸發價格計算用的管理 token
func main() {
	subject := flag.String("sub", "ops", "token subject")
	ttl := flag.Duration("ttl", time.Hour, "token lifetime")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if cfg.Auth.JWTSecret == "" {
		fmt.Fprintln(os.Stderr, "auth.jwt_secret (ADMIN_JWT_SECRET) is not set")
		os.Exit(1)
	}

	token, err := middleware.IssueAdminToken(cfg.Auth.JWTSecret, *subject, *ttl, time.Now())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to issue token: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(token)
}
