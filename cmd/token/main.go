// Command token issues a signed access token with the configured JWT
// secret. Useful for exercising the API locally.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/clubhub/backend/internal/domain/identity"
	"github.com/clubhub/backend/internal/infrastructure/auth"
	"github.com/clubhub/backend/internal/infrastructure/config"
)

func main() {
	var (
		uid           = flag.String("uid", "", "User ID (required)")
		email         = flag.String("email", "", "User email")
		login         = flag.String("login", "", "User login")
		role          = flag.String("role", "", "Role claim for -club: admin, diretor or jogador")
		clubID        = flag.String("club", "", "Club the role claim applies to")
		platformAdmin = flag.Bool("platform-admin", false, "Grant admin on every club")
		expiration    = flag.Duration("exp", 0, "Token lifetime (default: configured expiration)")
	)
	flag.Parse()

	if *uid == "" {
		fmt.Fprintln(os.Stderr, "uid is required")
		flag.Usage()
		os.Exit(2)
	}
	r := identity.Role(*role)
	if *role != "" && !r.IsValid() {
		fmt.Fprintf(os.Stderr, "invalid role %q\n", *role)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	jwtCfg := cfg.JWT
	if *expiration > 0 {
		jwtCfg.TokenExpiration = *expiration
	}

	tok, err := auth.NewJWTService(jwtCfg).GenerateToken(auth.GenerateTokenInput{
		UID:           *uid,
		Email:         *email,
		Login:         *login,
		Role:          r,
		ClubID:        *clubID,
		PlatformAdmin: *platformAdmin,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to sign token: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(tok.AccessToken)
	fmt.Fprintf(os.Stderr, "expires at %s\n", tok.ExpiresAt.Format(time.RFC3339))
}
