// Package cli implements the portfolio admin command line.
package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/iudanet/portfolio/internal/client/api"
	"github.com/iudanet/portfolio/internal/client/iocli"
	"github.com/iudanet/portfolio/internal/client/storage"
	pkgapi "github.com/iudanet/portfolio/pkg/api"
)

// PasswordEnv is read before any other password source
const PasswordEnv = "PORTFOLIO_PASSWORD"

// Session is the login state of the CLI
type Session interface {
	Login(ctx context.Context, email, password string) (*storage.AuthData, error)
	Logout(ctx context.Context) error
	Session(ctx context.Context) (*storage.AuthData, error)
	AccessToken(ctx context.Context) (string, error)
}

// ContentAPI is the admin API of the server
type ContentAPI interface {
	BaseURL() string
	Health(ctx context.Context) (*pkgapi.HealthResponse, error)
	Snapshot(ctx context.Context, token string) (json.RawMessage, error)
	Reload(ctx context.Context, token string) (json.RawMessage, error)
	Initialize(ctx context.Context, token string) (json.RawMessage, error)
	PatchSingleton(ctx context.Context, token, kind string, payload json.RawMessage) (json.RawMessage, error)
	AddRow(ctx context.Context, token, kind string, payload json.RawMessage) (json.RawMessage, error)
	UpdateRow(ctx context.Context, token, kind, id string, payload json.RawMessage) (json.RawMessage, error)
	DeleteRow(ctx context.Context, token, kind, id string) error
	Reorder(ctx context.Context, token, kind string, ids []string) (json.RawMessage, error)
	Upload(ctx context.Context, token string, req api.UploadRequest) (*pkgapi.UploadResponse, error)
	DeleteUpload(ctx context.Context, token, objectPath string) error
}

// Passwords lists the non-interactive password sources
type Passwords struct {
	FromFile string
	FromArgs string
}

// Cli runs commands against one server
type Cli struct {
	api     ContentAPI
	session Session
	io      iocli.IO
	getenv  func(string) string
}

// New creates a Cli
func New(apiClient ContentAPI, session Session, terminal iocli.IO) *Cli {
	return &Cli{
		api:     apiClient,
		session: session,
		io:      terminal,
		getenv:  os.Getenv,
	}
}

// getPassword reads the password with priority:
// 1. environment variable PORTFOLIO_PASSWORD
// 2. file
// 3. command-line parameter
// 4. interactive prompt
func (c *Cli) getPassword(passwords Passwords) (string, error) {
	if envPassword := c.getenv(PasswordEnv); envPassword != "" {
		return envPassword, nil
	}

	if passwords.FromFile != "" {
		content, err := os.ReadFile(passwords.FromFile)
		if err != nil {
			return "", fmt.Errorf("failed to read password file: %w", err)
		}
		password := strings.TrimSpace(string(content))
		if password == "" {
			return "", fmt.Errorf("password file is empty")
		}
		return password, nil
	}

	if passwords.FromArgs != "" {
		return passwords.FromArgs, nil
	}

	password, err := c.io.ReadPassword("Password: ")
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	if password == "" {
		return "", fmt.Errorf("password cannot be empty")
	}
	return password, nil
}

// printJSON writes an indented JSON document
func (c *Cli) printJSON(data []byte) error {
	var out bytes.Buffer
	if err := json.Indent(&out, data, "", "  "); err != nil {
		return fmt.Errorf("failed to format response: %w", err)
	}
	c.io.Println(out.String())
	return nil
}
