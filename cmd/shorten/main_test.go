package main

import (
	"bytes"
	"context"
	"io"
	"net/http/httptest"
	"regexp"
	"testing"

	"github.com/go-chi/httplog/v2"
	"github.com/nexxeln/website/internal/database/memory"
	"github.com/nexxeln/website/internal/service"
	"github.com/stretchr/testify/assert"

	myhttp "github.com/nexxeln/website/internal/api/http"
)

func setupServer(t *testing.T) *httptest.Server {
	t.Helper()

	logger := httplog.NewLogger("", httplog.Options{Writer: io.Discard})
	svc := service.NewLinkService(memory.NewLinkRepository(), 7)

	server := httptest.NewServer(myhttp.NewRouter(logger, svc, "https://nexxel.dev"))
	t.Cleanup(server.Close)

	return server
}

func runShorten(t *testing.T, args ...string) (int, string, string) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, &stdout, &stderr)

	return code, stdout.String(), stderr.String()
}

func TestRun_Slug(t *testing.T) {
	server := setupServer(t)

	code, stdout, stderr := runShorten(t,
		"--api", server.URL,
		"--origin", "https://nexxel.dev",
		"--slug", "Cat-In-Hat",
		"--url", "https://example.com",
	)

	assert.Equal(t, 0, code, stderr)
	assert.Equal(t, "https://nexxel.dev/r/cat-in-hat\n", stdout)
}

func TestRun_Random(t *testing.T) {
	server := setupServer(t)

	code, stdout, stderr := runShorten(t, "--api", server.URL, "-r", "-u", "https://example.com")

	assert.Equal(t, 0, code, stderr)
	assert.Regexp(t, regexp.MustCompile(`^`+regexp.QuoteMeta(server.URL)+`/r/[a-z]+-[a-z]+-[a-z]+\n$`), stdout)
}

func TestRun_SlugTaken(t *testing.T) {
	server := setupServer(t)
	args := []string{"--api", server.URL, "--slug", "cat", "--url", "https://example.com"}

	code, _, stderr := runShorten(t, args...)
	assert.Equal(t, 0, code, stderr)

	code, stdout, stderr := runShorten(t, args...)
	assert.Equal(t, 1, code)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "slug is already taken")
}

func TestRun_InvalidInput(t *testing.T) {
	server := setupServer(t)

	tests := []struct {
		name    string
		args    []string
		code    int
		wantErr string
	}{
		{
			name:    "missing slug",
			args:    []string{"--api", server.URL, "--url", "https://example.com"},
			code:    2,
			wantErr: "one of --slug or --random is required",
		},
		{
			name:    "slug and random",
			args:    []string{"--api", server.URL, "-s", "cat", "-r", "--url", "https://example.com"},
			code:    2,
			wantErr: "mutually exclusive",
		},
		{
			name:    "missing url",
			args:    []string{"--api", server.URL, "-s", "cat"},
			code:    2,
			wantErr: "--url is required",
		},
		{
			name:    "invalid slug",
			args:    []string{"--api", server.URL, "-s", "not a slug", "--url", "https://example.com"},
			code:    1,
			wantErr: "only alphanumeric characters and hyphens are allowed",
		},
		{
			name:    "invalid url",
			args:    []string{"--api", server.URL, "-s", "cat", "--url", "example"},
			code:    1,
			wantErr: "a valid url",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, stdout, stderr := runShorten(t, tt.args...)

			assert.Equal(t, tt.code, code)
			assert.Empty(t, stdout)
			assert.Contains(t, stderr, tt.wantErr)
		})
	}
}

func TestRun_ServerUnavailable(t *testing.T) {
	server := setupServer(t)
	url := server.URL
	server.Close()

	code, stdout, stderr := runShorten(t, "--api", url, "-s", "cat", "--url", "https://example.com", "--timeout", "1s")

	assert.Equal(t, 1, code)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "could not check availability")
}
