// Command token prints a bearer token for the API, signed with AUTH_JWT_SECRET.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/prestamos/internal/auth"
	"github.com/MrJamesThe3rd/prestamos/internal/config"
)

func main() {
	subject := flag.String("sub", "admin", "token subject")
	ttl := flag.Duration("ttl", 30*24*time.Hour, "token lifetime")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if cfg.Auth.JWTSecret == "" {
		slog.Error("AUTH_JWT_SECRET is not set")
		os.Exit(1)
	}

	token, err := auth.NewToken([]byte(cfg.Auth.JWTSecret), *subject, *ttl, time.Now())
	if err != nil {
		slog.Error("failed to sign token", "error", err)
		os.Exit(1)
	}

	fmt.Println(token)
}
