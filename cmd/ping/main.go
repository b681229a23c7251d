// cmd/ping/main.go
//
// Build with:
//   ./scripts/build.sh ./cmd/ping ping
//
// Intended for Docker HEALTHCHECK:
//   HEALTHCHECK CMD ["/ping"]
//
// The server answers /healthz with 500 {"status":"down","error":...} when its
// store is unreachable, so the body is decoded before the status is judged.

package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"
)

const (
	defaultPort          = 8080
	healthEndpoint       = "/healthz"
	expectedHealthStatus = "ok"
	requestTimeout       = 2 * time.Second // covers the server's store ping

	// exit codes
	codeRequestFailed     = 2
	codeBadHTTPStatus     = 3
	codeDecodeError       = 4
	codeReportedUnhealthy = 5
)

// healthResp mirrors { "status": "ok" } and { "status": "down", "error": "..." }.
type healthResp struct {
	Status string `json:"status"`
	Error  string `json:"error"`
}

func main() {
	port := detectPort(os.Getenv("APP_PORT"))
	url := fmt.Sprintf("http://localhost:%d%s", port, healthEndpoint)

	client := &http.Client{Timeout: requestTimeout}

	resp, err := client.Get(url)
	if err != nil {
		fail(codeRequestFailed, "request failed: %v", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			log.Printf("failed to close response body: %v", err)
		}
	}()

	var h healthResp
	if err := json.NewDecoder(resp.Body).Decode(&h); err != nil && !errors.Is(err, io.EOF) {
		fail(codeDecodeError, "decode error: %v", err)
	}

	switch {
	case h.Status != "" && h.Status != expectedHealthStatus:
		fail(codeReportedUnhealthy, "service reported %q: %s", h.Status, h.Error)
	case resp.StatusCode != http.StatusOK:
		fail(codeBadHTTPStatus, "unexpected HTTP status %d", resp.StatusCode)
	}

	log.Printf("service healthy on port %d", port)
}

// detectPort parses raw and falls back to defaultPort.
func detectPort(raw string) int {
	if p, err := strconv.Atoi(raw); err == nil && p > 0 && p <= 65535 {
		return p
	}
	return defaultPort
}

// fail logs a message and exits with the given code.
func fail(code int, format string, args ...any) {
	log.Printf(format, args...)
	os.Exit(code)
}
