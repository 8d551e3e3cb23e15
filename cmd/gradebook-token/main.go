// Command gradebook-token mints bearer tokens for local development against JWT_SECRET.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/noah-isme/sma-gradebook-api/internal/models"
	"github.com/noah-isme/sma-gradebook-api/internal/service"
	"github.com/noah-isme/sma-gradebook-api/pkg/config"
)

func main() {
	userID := flag.String("user", "dev-admin", "user id placed in the token")
	role := flag.String("role", string(models.RoleAdmin), "ADMIN, TEACHER or STAFF")
	email := flag.String("email", "", "optional email claim")
	ttl := flag.Duration("ttl", 0, "token lifetime, defaults to JWT_EXPIRATION")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	if cfg.Env == config.EnvProduction {
		fmt.Fprintln(os.Stderr, "refusing to mint tokens with ENV=production")
		os.Exit(1)
	}

	expiration := cfg.JWT.Expiration
	if *ttl > 0 {
		expiration = *ttl
	}
	auth := service.NewAuthService(service.AuthConfig{Secret: cfg.JWT.Secret, Expiration: expiration})
	token, expiresAt, err := auth.IssueToken(*userID, models.UserRole(strings.ToUpper(*role)), *email, "")
	if err != nil {
		fmt.Fprintf(os.Stderr, "issue token: %v\n", err)
		os.Exit(1)
	}
	if _, err := auth.ValidateToken(token); err != nil {
		fmt.Fprintf(os.Stderr, "role %q is not accepted by the API\n", *role)
		os.Exit(1)
	}
	fmt.Println(token)
	fmt.Fprintf(os.Stderr, "expires %s\n", expiresAt.Format(time.RFC3339))
}
