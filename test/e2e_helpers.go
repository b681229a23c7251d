//go:build e2e

package test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"note-weave/internal/config"
)

const (
	signUpEndpoint  = "/api/v1/auth/sign-up"
	signInEndpoint  = "/api/v1/auth/sign-in"
	signOutEndpoint = "/api/v1/auth/sign-out"
	meEndpoint      = "/api/v1/me"
	notesEndpoint   = "/api/v1/notes"
	wsEndpoint      = "/ws/notes"

	sessionCookie = "token"

	msgFailedToCloseResponseBody = "failed to close response body: %v"
)

// limitedWriter wraps an io.Writer and limits the amount of data written
type limitedWriter struct {
	w     io.Writer
	limit int64
	n     int64
}

func (lw *limitedWriter) Write(p []byte) (int, error) {
	if lw.n >= lw.limit {
		// Still drain the data so the pipe can't fill, but signal "written"
		lw.n += int64(len(p))
		return 0, io.ErrShortWrite
	}

	want := len(p)
	if remain := lw.limit - lw.n; int64(want) > remain {
		p = p[:remain]
	}

	n, err := lw.w.Write(p)
	lw.n += int64(n)
	if int64(want) > int64(n) && err == nil {
		err = io.ErrShortWrite
	}
	return n, err
}

// TestEnvironment holds the test infrastructure
type TestEnvironment struct {
	BaseURL string
	Client  *http.Client
}

// WSURL returns the live collaboration endpoint of the server under test.
func (e *TestEnvironment) WSURL() string {
	return "ws://" + strings.TrimPrefix(e.BaseURL, "http://") + wsEndpoint
}

// randomPort asks the kernel for an unused TCP port.
func randomPort() (string, error) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", err
	}
	defer l.Close()
	return strconv.Itoa(l.Addr().(*net.TCPAddr).Port), nil
}

// startPostgresTC returns a Postgres testcontainer DSN and its terminate func.
func startPostgresTC(ctx context.Context, t *testing.T) (string, func(), error) {
	t.Helper()
	t.Log("Starting Postgres container")
	pgC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:17-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "e2e",
				"POSTGRES_PASSWORD": "e2e",
				"POSTGRES_DB":       "e2e",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		return "", nil, err
	}

	host, err := pgC.Host(ctx)
	if err != nil {
		_ = pgC.Terminate(ctx)
		return "", nil, err
	}

	port, err := pgC.MappedPort(ctx, "5432")
	if err != nil {
		_ = pgC.Terminate(ctx)
		return "", nil, err
	}

	dsn := fmt.Sprintf("postgres://e2e:e2e@%s:%s/e2e?sslmode=disable", host, port.Port())
	return dsn, func() { _ = pgC.Terminate(ctx) }, nil
}

// startServerWithEnv starts the application server with custom environment variables
func startServerWithEnv(ctx context.Context, t *testing.T, dsn string, extraEnv map[string]string) (string, *exec.Cmd, context.CancelFunc, *bytes.Buffer, error) {
	t.Helper()
	t.Log("Starting server")

	appPort, err := randomPort()
	if err != nil {
		return "", nil, nil, nil, err
	}

	devNull, err := os.OpenFile(os.DevNull, os.O_WRONLY, 0)
	if err != nil {
		return "", nil, nil, nil, err
	}
	t.Cleanup(func() { _ = devNull.Close() })

	const maxStderrSize = 64 * 1024 // 64KB max
	stderrBuf := &bytes.Buffer{}
	limitedStderr := &limitedWriter{w: stderrBuf, limit: maxStderrSize}

	srvCtx, srvCancel := context.WithCancel(ctx)

	bin := os.Getenv("BIN_SERVER")
	var cmd *exec.Cmd
	if bin != "" {
		// already compiled once in the workflow
		cmd = exec.CommandContext(srvCtx, bin)
	} else {
		// local `go test` fallback
		cmd = exec.CommandContext(srvCtx, "go", "run", "./cmd/server")
		cmd.Dir = "../"
	}

	// Make the wrapper the leader of a new process group
	// so that we can later send a signal to the whole tree.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	envVars := []string{
		"STORE_DRIVER=postgres",
		fmt.Sprintf("POSTGRES_DSN=%s", dsn),
		"JWT_SECRET=test-e2e-secret-with-32-plus-characters-for-hs256-validation",
		"BCRYPT_COST=8",
		"LOG_LEVEL=info", // reduce log noise
		fmt.Sprintf("APP_PORT=%s", appPort),
	}
	for key, value := range extraEnv {
		envVars = append(envVars, fmt.Sprintf("%s=%s", key, value))
	}

	cmd.Env = append(envVars, os.Environ()...)
	cmd.Stdout = devNull
	cmd.Stderr = limitedStderr

	t.Logf("Launching server on :%s (binary=%q)", appPort, bin)
	if err := cmd.Start(); err != nil {
		srvCancel()
		return "", nil, nil, nil, err
	}

	return fmt.Sprintf("http://localhost:%s", appPort), cmd, srvCancel, stderrBuf, nil
}

// waitHealthy waits for the server to respond to health checks
func waitHealthy(baseURL string, timeout time.Duration) error {
	healthURL := fmt.Sprintf("%s/healthz", baseURL)
	client := &http.Client{Timeout: 2 * time.Second}

	deadline := time.Now().UTC().Add(timeout)
	for {
		if time.Now().UTC().After(deadline) {
			return fmt.Errorf("server never responded on %s", healthURL)
		}

		resp, err := client.Get(healthURL)
		if err == nil && resp.StatusCode == http.StatusOK {
			resp.Body.Close()
			return nil
		}
		if resp != nil {
			resp.Body.Close()
		}
		time.Sleep(200 * time.Millisecond)
	}
}

// httpJSON performs an HTTP request with JSON payload. A non-empty session is
// sent as the auth cookie.
func httpJSON(method, url string, payload any, session string) (*http.Response, error) {
	var body bytes.Buffer
	if payload != nil {
		if err := json.NewEncoder(&body).Encode(payload); err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequest(method, url, &body)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	if session != "" {
		req.AddCookie(&http.Cookie{Name: sessionCookie, Value: session})
	}

	client := &http.Client{Timeout: 5 * time.Second}
	return client.Do(req)
}

// makeHTTPRequest sends a JSON request, asserts the status and decodes the body into out (if non-nil).
func makeHTTPRequest(t *testing.T, method, url string, payload any, session string, expectedStatus int, out any) *http.Response {
	t.Helper()
	resp, err := httpJSON(method, url, payload, session)
	require.NoError(t, err)
	defer func() {
		if err := resp.Body.Close(); err != nil {
			t.Errorf(msgFailedToCloseResponseBody, err)
		}
	}()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, expectedStatus, resp.StatusCode, "%s %s: %s", method, url, body)

	if out != nil {
		require.NoError(t, json.Unmarshal(body, out))
	}
	return resp
}

// sessionFrom returns the auth cookie value set by resp.
func sessionFrom(resp *http.Response) string {
	for _, c := range resp.Cookies() {
		if c.Name == sessionCookie {
			return c.Value
		}
	}
	return ""
}

// SetupTestEnvironment sets up the complete test environment
func SetupTestEnvironment(t *testing.T) *TestEnvironment {
	return SetupTestEnvironmentWithEnv(t, nil)
}

// SetupTestEnvironmentWithEnv sets up the complete test environment with custom environment variables
func SetupTestEnvironmentWithEnv(t *testing.T, extraEnv map[string]string) *TestEnvironment {
	t.Helper()
	t.Log("Setting up test environment")
	config.ResetCache()
	t.Cleanup(config.ResetCache)

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	t.Cleanup(cancel)

	dsn, terminate, err := startPostgresTC(ctx, t)
	require.NoError(t, err)
	t.Cleanup(terminate)

	baseURL, cmd, srvCancel, stderrBuf, err := startServerWithEnv(ctx, t, dsn, extraEnv)
	require.NoError(t, err)

	t.Cleanup(func() {
		srvCancel()

		// Best-effort: kill the entire process group (-pgid)
		if pgid, err := syscall.Getpgid(cmd.Process.Pid); err == nil {
			_ = syscall.Kill(-pgid, syscall.SIGKILL)
		}

		done := make(chan struct{})
		go func() {
			_ = cmd.Wait() // waits for pipes to drain
			close(done)
		}()
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			_ = cmd.Process.Kill()
			<-done
		}

		if stderrBuf.Len() > 0 {
			t.Logf("Server stderr output (%d bytes):\n%s", stderrBuf.Len(), stderrBuf.String())
		}
	})

	if err := waitHealthy(baseURL, 60*time.Second); err != nil {
		if stderrBuf.Len() > 0 {
			t.Logf("Server stderr output on health check failure (%d bytes):\n%s", stderrBuf.Len(), stderrBuf.String())
		}
		require.NoError(t, err, "server never responded on %s", baseURL)
	}

	return &TestEnvironment{
		BaseURL: baseURL,
		Client:  &http.Client{Timeout: 5 * time.Second},
	}
}

// signUp registers a user and returns the session cookie value.
func signUp(t *testing.T, baseURL, email, password string) string {
	t.Helper()
	resp := makeHTTPRequest(t, http.MethodPost, baseURL+signUpEndpoint, map[string]string{
		"email":    email,
		"password": password,
	}, "", http.StatusCreated, nil)
	session := sessionFrom(resp)
	require.NotEmpty(t, session, "sign-up must set the session cookie")
	return session
}

func signInExpect(t *testing.T, baseURL, email, password string, want int) {
	t.Helper()
	makeHTTPRequest(t, http.MethodPost, baseURL+signInEndpoint, map[string]string{
		"email":    email,
		"password": password,
	}, "", want, nil)
}
