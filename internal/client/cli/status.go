package cli

import (
	"context"
	"errors"
	"time"

	"github.com/iudanet/portfolio/internal/client/auth"
)

func (c *Cli) runStatus(ctx context.Context) error {
	c.io.Printf("Server: %s\n", c.api.BaseURL())

	health, err := c.api.Health(ctx)
	if err != nil {
		c.io.Printf("Health: unreachable (%v)\n", err)
	} else {
		c.io.Printf("Health: %s, content %s, version %s\n", health.Status, health.ContentStatus, health.Version)
	}

	authData, err := c.session.Session(ctx)
	if errors.Is(err, auth.ErrNotAuthenticated) {
		c.io.Println("Status: Not authenticated")
		c.io.Println("Run 'portfolio login' to authenticate.")
		return nil
	}
	if err != nil {
		return err
	}

	c.io.Println("Status: Authenticated")
	c.io.Printf("Email: %s\n", authData.Email)
	if authData.Server != c.api.BaseURL() {
		c.io.Printf("⚠️  Session belongs to %s\n", authData.Server)
	}

	expiresAt := time.Unix(authData.ExpiresAt, 0)
	if remaining := time.Until(expiresAt); remaining > 0 {
		c.io.Printf("Access token expires in: %s\n", remaining.Round(time.Second))
	} else {
		c.io.Println("Access token expired, it is renewed on the next command.")
	}
	return nil
}
