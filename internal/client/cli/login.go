package cli

import (
	"context"
	"fmt"
	"time"
)

func (c *Cli) runLogin(ctx context.Context, email string, passwords Passwords) error {
	if email == "" {
		var err error
		email, err = c.io.ReadInput("Email: ")
		if err != nil {
			return fmt.Errorf("failed to read email: %w", err)
		}
	}

	password, err := c.getPassword(passwords)
	if err != nil {
		return err
	}

	authData, err := c.session.Login(ctx, email, password)
	if err != nil {
		return err
	}

	c.io.Println("✓ Login successful!")
	c.io.Printf("Server: %s\n", authData.Server)
	c.io.Printf("Email: %s\n", authData.Email)
	c.io.Printf("Access token expires: %s\n", time.Unix(authData.ExpiresAt, 0).Format(time.RFC3339))
	return nil
}
