package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/iudanet/portfolio/internal/client/api"
	"github.com/iudanet/portfolio/internal/models"
)

// Payload is the JSON body of a write, given inline or read from a file.
// File "-" reads standard input.
type Payload struct {
	Data  string
	File  string
	stdin io.Reader
}

func (p Payload) read() (json.RawMessage, error) {
	var data []byte
	switch {
	case p.Data != "" && p.File != "":
		return nil, fmt.Errorf("use either --data or --file")
	case p.Data != "":
		data = []byte(p.Data)
	case p.File == "-":
		in := p.stdin
		if in == nil {
			in = os.Stdin
		}
		var err error
		if data, err = io.ReadAll(in); err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
	case p.File != "":
		var err error
		if data, err = os.ReadFile(p.File); err != nil {
			return nil, fmt.Errorf("failed to read payload file: %w", err)
		}
	default:
		return nil, fmt.Errorf("a JSON payload is required (--data or --file)")
	}

	if !json.Valid(data) {
		return nil, fmt.Errorf("payload is not valid JSON")
	}
	return json.RawMessage(data), nil
}

func checkKind(kind string, kinds []string) error {
	if !slices.Contains(kinds, kind) {
		return fmt.Errorf("unknown kind %q (valid: %s)", kind, strings.Join(kinds, ", "))
	}
	return nil
}

func (c *Cli) runGet(ctx context.Context, kind string) error {
	token, err := c.session.AccessToken(ctx)
	if err != nil {
		return err
	}

	snapshot, err := c.api.Snapshot(ctx, token)
	if err != nil {
		return err
	}
	if kind == "" {
		return c.printJSON(snapshot)
	}

	if err := checkKind(kind, allKinds()); err != nil {
		return err
	}
	var parsed struct {
		Portfolio map[string]json.RawMessage `json:"portfolio"`
	}
	if err := json.Unmarshal(snapshot, &parsed); err != nil {
		return fmt.Errorf("failed to decode snapshot: %w", err)
	}
	section, ok := parsed.Portfolio[kind]
	if !ok {
		section = json.RawMessage("null")
	}
	return c.printJSON(section)
}

func (c *Cli) runInit(ctx context.Context) error {
	token, err := c.session.AccessToken(ctx)
	if err != nil {
		return err
	}
	if _, err := c.api.Initialize(ctx, token); err != nil {
		return err
	}
	c.io.Println("✓ Backend initialized with seed content")
	return nil
}

func (c *Cli) runReload(ctx context.Context) error {
	token, err := c.session.AccessToken(ctx)
	if err != nil {
		return err
	}
	if _, err := c.api.Reload(ctx, token); err != nil {
		return err
	}
	c.io.Println("✓ Content reloaded")
	return nil
}

func (c *Cli) runSet(ctx context.Context, kind string, payload Payload) error {
	if err := checkKind(kind, models.SingletonKinds); err != nil {
		return err
	}
	body, err := payload.read()
	if err != nil {
		return err
	}
	token, err := c.session.AccessToken(ctx)
	if err != nil {
		return err
	}
	res, err := c.api.PatchSingleton(ctx, token, kind, body)
	if err != nil {
		return err
	}
	return c.printJSON(res)
}

func (c *Cli) runAdd(ctx context.Context, kind string, payload Payload) error {
	if err := checkKind(kind, models.CollectionKinds); err != nil {
		return err
	}
	body, err := payload.read()
	if err != nil {
		return err
	}
	token, err := c.session.AccessToken(ctx)
	if err != nil {
		return err
	}
	res, err := c.api.AddRow(ctx, token, kind, body)
	if err != nil {
		return err
	}
	return c.printJSON(res)
}

func (c *Cli) runUpdate(ctx context.Context, kind, id string, payload Payload) error {
	if err := checkKind(kind, models.CollectionKinds); err != nil {
		return err
	}
	body, err := payload.read()
	if err != nil {
		return err
	}
	token, err := c.session.AccessToken(ctx)
	if err != nil {
		return err
	}
	res, err := c.api.UpdateRow(ctx, token, kind, id, body)
	if err != nil {
		return err
	}
	return c.printJSON(res)
}

func (c *Cli) runDelete(ctx context.Context, kind, id string) error {
	if err := checkKind(kind, models.CollectionKinds); err != nil {
		return err
	}
	token, err := c.session.AccessToken(ctx)
	if err != nil {
		return err
	}
	if err := c.api.DeleteRow(ctx, token, kind, id); err != nil {
		return err
	}
	c.io.Printf("✓ Deleted %s/%s\n", kind, id)
	return nil
}

func (c *Cli) runReorder(ctx context.Context, kind string, ids []string) error {
	if err := checkKind(kind, models.CollectionKinds); err != nil {
		return err
	}
	token, err := c.session.AccessToken(ctx)
	if err != nil {
		return err
	}
	res, err := c.api.Reorder(ctx, token, kind, ids)
	if err != nil {
		return err
	}
	return c.printJSON(res)
}

func (c *Cli) runUpload(ctx context.Context, file, folder, objectPath string) error {
	if (folder == "") == (objectPath == "") {
		return fmt.Errorf("set exactly one of --folder or --path")
	}

	f, err := os.Open(file)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	token, err := c.session.AccessToken(ctx)
	if err != nil {
		return err
	}
	res, err := c.api.Upload(ctx, token, api.UploadRequest{
		Body:     f,
		Folder:   folder,
		Path:     objectPath,
		Filename: filepath.Base(file),
	})
	if err != nil {
		return err
	}

	c.io.Printf("✓ Uploaded %s (%s)\n", res.Path, res.ContentType)
	c.io.Println(res.URL)
	return nil
}

func (c *Cli) runDeleteUpload(ctx context.Context, objectPath string) error {
	token, err := c.session.AccessToken(ctx)
	if err != nil {
		return err
	}
	if err := c.api.DeleteUpload(ctx, token, objectPath); err != nil {
		return err
	}
	c.io.Printf("✓ Deleted %s\n", objectPath)
	return nil
}

func allKinds() []string {
	return slices.Concat(models.SingletonKinds, models.CollectionKinds)
}
