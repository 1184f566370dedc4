package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/portfolio/internal/client/api"
	"github.com/iudanet/portfolio/internal/client/auth"
	"github.com/iudanet/portfolio/internal/client/iocli"
	"github.com/iudanet/portfolio/internal/client/storage"
	pkgapi "github.com/iudanet/portfolio/pkg/api"
)

const testServer = "http://portfolio.test"

type call struct {
	method  string
	kind    string
	id      string
	payload string
	ids     []string
}

type fakeAPI struct {
	healthErr error
	err       error
	snapshot  json.RawMessage
	calls     []call
	uploaded  api.UploadRequest
	uploadBuf []byte
	tokens    []string
}

func (f *fakeAPI) BaseURL() string { return testServer }

func (f *fakeAPI) Health(context.Context) (*pkgapi.HealthResponse, error) {
	if f.healthErr != nil {
		return nil, f.healthErr
	}
	return &pkgapi.HealthResponse{Status: "ok", ContentStatus: "ready", Version: "1.2.3"}, nil
}

func (f *fakeAPI) record(token string, c call) (json.RawMessage, error) {
	f.tokens = append(f.tokens, token)
	f.calls = append(f.calls, c)
	if f.err != nil {
		return nil, f.err
	}
	return json.RawMessage(`{"ok":true}`), nil
}

func (f *fakeAPI) Snapshot(_ context.Context, token string) (json.RawMessage, error) {
	if _, err := f.record(token, call{method: "snapshot"}); err != nil {
		return nil, err
	}
	return f.snapshot, nil
}

func (f *fakeAPI) Reload(_ context.Context, token string) (json.RawMessage, error) {
	return f.record(token, call{method: "reload"})
}

func (f *fakeAPI) Initialize(_ context.Context, token string) (json.RawMessage, error) {
	return f.record(token, call{method: "init"})
}

func (f *fakeAPI) PatchSingleton(_ context.Context, token, kind string, payload json.RawMessage) (json.RawMessage, error) {
	return f.record(token, call{method: "set", kind: kind, payload: string(payload)})
}

func (f *fakeAPI) AddRow(_ context.Context, token, kind string, payload json.RawMessage) (json.RawMessage, error) {
	return f.record(token, call{method: "add", kind: kind, payload: string(payload)})
}

func (f *fakeAPI) UpdateRow(_ context.Context, token, kind, id string, payload json.RawMessage) (json.RawMessage, error) {
	return f.record(token, call{method: "update", kind: kind, id: id, payload: string(payload)})
}

func (f *fakeAPI) DeleteRow(_ context.Context, token, kind, id string) error {
	_, err := f.record(token, call{method: "delete", kind: kind, id: id})
	return err
}

func (f *fakeAPI) Reorder(_ context.Context, token, kind string, ids []string) (json.RawMessage, error) {
	return f.record(token, call{method: "reorder", kind: kind, ids: ids})
}

func (f *fakeAPI) Upload(_ context.Context, token string, req api.UploadRequest) (*pkgapi.UploadResponse, error) {
	if _, err := f.record(token, call{method: "upload"}); err != nil {
		return nil, err
	}
	data, err := io.ReadAll(req.Body)
	if err != nil {
		return nil, err
	}
	f.uploaded = req
	f.uploadBuf = data
	return &pkgapi.UploadResponse{
		URL:         testServer + "/files/projects/abc.png",
		Path:        "projects/abc.png",
		ContentType: "image/png",
	}, nil
}

func (f *fakeAPI) DeleteUpload(_ context.Context, token, objectPath string) error {
	_, err := f.record(token, call{method: "delete-upload", id: objectPath})
	return err
}

type fakeSession struct {
	data      *storage.AuthData
	loginErr  error
	email     string
	password  string
	loggedOut bool
}

func (f *fakeSession) Login(_ context.Context, email, password string) (*storage.AuthData, error) {
	f.email, f.password = email, password
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	f.data = &storage.AuthData{
		Server:      testServer,
		Email:       email,
		AccessToken: "access",
		ExpiresAt:   time.Now().Add(15 * time.Minute).Unix(),
	}
	return f.data, nil
}

func (f *fakeSession) Logout(context.Context) error {
	if f.data == nil {
		return auth.ErrNotAuthenticated
	}
	f.data = nil
	f.loggedOut = true
	return nil
}

func (f *fakeSession) Session(context.Context) (*storage.AuthData, error) {
	if f.data == nil {
		return nil, auth.ErrNotAuthenticated
	}
	return f.data, nil
}

func (f *fakeSession) AccessToken(context.Context) (string, error) {
	if f.data == nil {
		return "", auth.ErrNotAuthenticated
	}
	return f.data.AccessToken, nil
}

type testEnv struct {
	api     *fakeAPI
	session *fakeSession
	out     *bytes.Buffer
	closed  bool
}

func loggedIn() *fakeSession {
	return &fakeSession{data: &storage.AuthData{
		Server:      testServer,
		Email:       "admin@example.com",
		AccessToken: "access",
		ExpiresAt:   time.Now().Add(10 * time.Minute).Unix(),
	}}
}

// run executes the command tree with args and the given stdin
func (e *testEnv) run(t *testing.T, stdin string, env map[string]string, args ...string) error {
	t.Helper()
	e.out.Reset()

	root := NewRootCommand("test", func(server, db string) (*Cli, func() error, error) {
		c := New(e.api, e.session, iocli.New(strings.NewReader(stdin), e.out))
		c.getenv = func(key string) string { return env[key] }
		return c, func() error {
			e.closed = true
			return nil
		}, nil
	})
	root.SetArgs(args)
	root.SetIn(strings.NewReader(stdin))
	root.SetOut(e.out)
	root.SetErr(e.out)
	return root.ExecuteContext(context.Background())
}

func setupEnv(session *fakeSession) *testEnv {
	return &testEnv{
		api:     &fakeAPI{},
		session: session,
		out:     &bytes.Buffer{},
	}
}

func TestLogin(t *testing.T) {
	t.Run("flags", func(t *testing.T) {
		env := setupEnv(&fakeSession{})
		err := env.run(t, "", nil, "login", "--email", "admin@example.com", "--password", "from-args")
		require.NoError(t, err)

		assert.Equal(t, "admin@example.com", env.session.email)
		assert.Equal(t, "from-args", env.session.password)
		assert.Contains(t, env.out.String(), "Login successful")
		assert.True(t, env.closed)
	})

	t.Run("env wins over file and args", func(t *testing.T) {
		env := setupEnv(&fakeSession{})
		file := filepath.Join(t.TempDir(), "pw")
		require.NoError(t, os.WriteFile(file, []byte("from-file\n"), 0o600))

		err := env.run(t, "", map[string]string{PasswordEnv: "from-env"},
			"login", "--email", "a@example.com", "--password-file", file, "--password", "x")
		require.NoError(t, err)
		assert.Equal(t, "from-env", env.session.password)
	})

	t.Run("file wins over args", func(t *testing.T) {
		env := setupEnv(&fakeSession{})
		file := filepath.Join(t.TempDir(), "pw")
		require.NoError(t, os.WriteFile(file, []byte("from-file\n"), 0o600))

		err := env.run(t, "", nil, "login", "--email", "a@example.com", "--password-file", file, "--password", "x")
		require.NoError(t, err)
		assert.Equal(t, "from-file", env.session.password)
	})

	t.Run("prompts", func(t *testing.T) {
		env := setupEnv(&fakeSession{})
		err := env.run(t, "admin@example.com\nprompted\n", nil, "login")
		require.NoError(t, err)

		assert.Equal(t, "admin@example.com", env.session.email)
		assert.Equal(t, "prompted", env.session.password)
	})

	t.Run("empty password file", func(t *testing.T) {
		env := setupEnv(&fakeSession{})
		file := filepath.Join(t.TempDir(), "pw")
		require.NoError(t, os.WriteFile(file, []byte("  \n"), 0o600))

		err := env.run(t, "", nil, "login", "--email", "a@example.com", "--password-file", file)
		assert.ErrorContains(t, err, "password file is empty")
	})

	t.Run("rejected", func(t *testing.T) {
		env := setupEnv(&fakeSession{loginErr: &api.Error{StatusCode: 401, Message: "invalid credentials"}})
		err := env.run(t, "", nil, "login", "--email", "a@example.com", "--password", "wrong")
		assert.ErrorContains(t, err, "invalid credentials")
	})
}

func TestLogout(t *testing.T) {
	env := setupEnv(loggedIn())
	require.NoError(t, env.run(t, "", nil, "logout"))
	assert.True(t, env.session.loggedOut)
	assert.Contains(t, env.out.String(), "Logout successful")

	err := env.run(t, "", nil, "logout")
	assert.ErrorIs(t, err, auth.ErrNotAuthenticated)
}

func TestStatus(t *testing.T) {
	t.Run("authenticated", func(t *testing.T) {
		env := setupEnv(loggedIn())
		require.NoError(t, env.run(t, "", nil, "status"))

		out := env.out.String()
		assert.Contains(t, out, "Server: "+testServer)
		assert.Contains(t, out, "content ready")
		assert.Contains(t, out, "Status: Authenticated")
		assert.Contains(t, out, "admin@example.com")
		assert.Contains(t, out, "Access token expires in")
	})

	t.Run("anonymous with server down", func(t *testing.T) {
		env := setupEnv(&fakeSession{})
		env.api.healthErr = errors.New("connection refused")
		require.NoError(t, env.run(t, "", nil, "status"))

		out := env.out.String()
		assert.Contains(t, out, "unreachable")
		assert.Contains(t, out, "Not authenticated")
	})

	t.Run("expired access token", func(t *testing.T) {
		session := loggedIn()
		session.data.ExpiresAt = time.Now().Add(-time.Minute).Unix()
		env := setupEnv(session)
		require.NoError(t, env.run(t, "", nil, "status"))
		assert.Contains(t, env.out.String(), "renewed on the next command")
	})
}

func TestContentCommands(t *testing.T) {
	payloadFile := filepath.Join(t.TempDir(), "row.json")
	require.NoError(t, os.WriteFile(payloadFile, []byte(`{"title":"From file"}`), 0o600))

	tests := []struct {
		name  string
		stdin string
		args  []string
		want  call
	}{
		{name: "init", args: []string{"init"}, want: call{method: "init"}},
		{name: "reload", args: []string{"reload"}, want: call{method: "reload"}},
		{
			name: "set inline",
			args: []string{"set", "settings", "--data", `{"siteTitle":"X"}`},
			want: call{method: "set", kind: "settings", payload: `{"siteTitle":"X"}`},
		},
		{
			name: "add from file",
			args: []string{"add", "projects", "-f", payloadFile},
			want: call{method: "add", kind: "projects", payload: `{"title":"From file"}`},
		},
		{
			name:  "update from stdin",
			stdin: `{"company":"Acme"}`,
			args:  []string{"update", "experience", "exp1", "--file", "-"},
			want:  call{method: "update", kind: "experience", id: "exp1", payload: `{"company":"Acme"}`},
		},
		{
			name: "delete",
			args: []string{"delete", "skills", "cat1"},
			want: call{method: "delete", kind: "skills", id: "cat1"},
		},
		{
			name: "reorder",
			args: []string{"reorder", "education", "edu2", "edu1"},
			want: call{method: "reorder", kind: "education", ids: []string{"edu2", "edu1"}},
		},
		{
			name: "delete upload",
			args: []string{"delete-upload", "projects/abc.png"},
			want: call{method: "delete-upload", id: "projects/abc.png"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := setupEnv(loggedIn())
			require.NoError(t, env.run(t, tt.stdin, nil, tt.args...))
			require.Len(t, env.api.calls, 1)
			assert.Equal(t, tt.want, env.api.calls[0])
			assert.Equal(t, []string{"access"}, env.api.tokens)
		})
	}
}

func TestContentCommands_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		wantErr string
		args    []string
	}{
		{name: "set collection", args: []string{"set", "projects", "-d", "{}"}, wantErr: "unknown kind"},
		{name: "add singleton", args: []string{"add", "profile", "-d", "{}"}, wantErr: "unknown kind"},
		{name: "delete unknown", args: []string{"delete", "blog", "x"}, wantErr: "unknown kind"},
		{name: "no payload", args: []string{"add", "projects"}, wantErr: "payload is required"},
		{name: "both payloads", args: []string{"add", "projects", "-d", "{}", "-f", "x.json"}, wantErr: "either --data or --file"},
		{name: "invalid json", args: []string{"set", "about", "-d", "{nope"}, wantErr: "not valid JSON"},
		{name: "missing file", args: []string{"add", "projects", "-f", "/nonexistent/row.json"}, wantErr: "failed to read payload file"},
		{name: "reorder without ids", args: []string{"reorder", "skills"}, wantErr: "requires at least 2 arg"},
		{name: "get unknown", args: []string{"get", "blog"}, wantErr: "unknown kind"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := setupEnv(loggedIn())
			err := env.run(t, "", nil, tt.args...)
			assert.ErrorContains(t, err, tt.wantErr)
			for _, c := range env.api.calls {
				assert.Equal(t, "snapshot", c.method, "no write reaches the server")
			}
		})
	}
}

func TestContentCommands_NotAuthenticated(t *testing.T) {
	env := setupEnv(&fakeSession{})
	err := env.run(t, "", nil, "reload")
	assert.ErrorIs(t, err, auth.ErrNotAuthenticated)
	assert.Empty(t, env.api.calls)
}

func TestContentCommands_ServerError(t *testing.T) {
	env := setupEnv(loggedIn())
	env.api.err = &api.Error{StatusCode: 404, Message: "row not found"}
	err := env.run(t, "", nil, "delete", "projects", "missing")
	assert.ErrorContains(t, err, "row not found")
}

func TestGet(t *testing.T) {
	env := setupEnv(loggedIn())
	env.api.snapshot = json.RawMessage(`{"status":"ready","portfolio":{"settings":{"siteTitle":"Site"},"projects":[{"id":"p1"}]}}`)

	require.NoError(t, env.run(t, "", nil, "get"))
	assert.Contains(t, env.out.String(), `"status": "ready"`)

	require.NoError(t, env.run(t, "", nil, "get", "projects"))
	out := env.out.String()
	assert.Contains(t, out, `"id": "p1"`)
	assert.NotContains(t, out, "siteTitle")

	require.NoError(t, env.run(t, "", nil, "get", "education"))
	assert.Equal(t, "null\n", env.out.String())
}

func TestUpload(t *testing.T) {
	file := filepath.Join(t.TempDir(), "shot.png")
	require.NoError(t, os.WriteFile(file, []byte("\x89PNG\r\n\x1a\nrest"), 0o600))

	env := setupEnv(loggedIn())
	require.NoError(t, env.run(t, "", nil, "upload", file, "--folder", "projects"))

	assert.Equal(t, "projects", env.api.uploaded.Folder)
	assert.Empty(t, env.api.uploaded.Path)
	assert.Equal(t, "shot.png", env.api.uploaded.Filename)
	assert.Equal(t, []byte("\x89PNG\r\n\x1a\nrest"), env.api.uploadBuf)
	assert.Contains(t, env.out.String(), "projects/abc.png")

	err := env.run(t, "", nil, "upload", file)
	assert.ErrorContains(t, err, "exactly one of --folder or --path")

	err = env.run(t, "", nil, "upload", file, "--folder", "a", "--path", "b")
	assert.Error(t, err)

	err = env.run(t, "", nil, "upload", filepath.Join(t.TempDir(), "missing.png"), "--path", "cv.pdf")
	assert.ErrorContains(t, err, "failed to open file")
}

func TestRootCommand_OpenError(t *testing.T) {
	root := NewRootCommand("test", func(server, db string) (*Cli, func() error, error) {
		return nil, nil, errors.New("locked")
	})
	root.SetArgs([]string{"status"})
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)

	err := root.Execute()
	assert.ErrorContains(t, err, "locked")
}

func TestRootCommand_PassesFlags(t *testing.T) {
	var gotServer, gotDB string
	root := NewRootCommand("test", func(server, db string) (*Cli, func() error, error) {
		gotServer, gotDB = server, db
		return New(&fakeAPI{}, &fakeSession{}, iocli.New(strings.NewReader(""), io.Discard)), nil, nil
	})
	root.SetArgs([]string{"--server", "https://cms.example.com", "--db", "/tmp/s.db", "status"})
	root.SetOut(io.Discard)

	require.NoError(t, root.Execute())
	assert.Equal(t, "https://cms.example.com", gotServer)
	assert.Equal(t, "/tmp/s.db", gotDB)

	root = NewRootCommand("test", func(server, db string) (*Cli, func() error, error) {
		gotServer, gotDB = server, db
		return New(&fakeAPI{}, &fakeSession{}, iocli.New(strings.NewReader(""), io.Discard)), nil, nil
	})
	root.SetArgs([]string{"status"})
	require.NoError(t, root.Execute())
	assert.Equal(t, DefaultServer, gotServer)
	assert.Equal(t, DefaultDB, gotDB)
}
