// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jeranaias/orb-tui/internal/config"
	"github.com/jeranaias/orb-tui/internal/conversation"
	"github.com/jeranaias/orb-tui/internal/dispatch"
	"github.com/jeranaias/orb-tui/internal/server"
	"github.com/jeranaias/orb-tui/internal/storage"
	"github.com/jeranaias/orb-tui/internal/webhook"
)

// =============================================================================
// HELPERS
// =============================================================================

// isolate points the config directory at a temp dir and clears ORB_* env.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("ORB_HOME", dir)
	for _, key := range []string{
		"ORB_WEBHOOK_URL", "ORB_WEBHOOK_USER", "ORB_WEBHOOK_PASSWORD", "ORB_WEBHOOK_TIMEOUT",
		"ORB_SESSION_BACKEND", "ORB_LOG_LEVEL", "ORB_THEME", "ORB_NO_ANIMATION",
	} {
		t.Setenv(key, "")
	}
	t.Setenv("ORB_SESSION", "test")
	return dir
}

// echoWebhook starts the echo server and points ORB_WEBHOOK_URL at it.
func echoWebhook(t *testing.T, cfg server.Config) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(server.New(cfg, nil).Handler())
	t.Cleanup(srv.Close)
	t.Setenv("ORB_WEBHOOK_URL", srv.URL+"/webhook")
	return srv
}

type result struct {
	stdout string
	stderr string
	err    error
}

// run executes the command line in-process.
func run(t *testing.T, stdin string, args ...string) result {
	t.Helper()
	return runContext(t, context.Background(), stdin, args...)
}

func runContext(t *testing.T, ctx context.Context, stdin string, args ...string) result {
	t.Helper()
	root := NewRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	return result{stdout: out.String(), stderr: errOut.String(), err: err}
}

func decodeJSON(t *testing.T, raw string) JSONResponse {
	t.Helper()
	var resp JSONResponse
	require.NoError(t, json.Unmarshal([]byte(raw), &resp), "output: %s", raw)
	return resp
}

// =============================================================================
// ASK
// =============================================================================

func TestAsk_PrintsAnswerAndRecordsHistory(t *testing.T) {
	isolate(t)
	echoWebhook(t, server.Config{})

	res := run(t, "", "ask", "What", "is", "Go?")
	require.NoError(t, res.err)
	assert.Equal(t, "You asked: What is Go?\n", res.stdout)

	res = run(t, "", "history", "show", "--raw")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "What is Go?")
	assert.Contains(t, res.stdout, "You asked: What is Go?")
}

func TestAsk_ReadsQuestionFromStdin(t *testing.T) {
	isolate(t)
	echoWebhook(t, server.Config{})

	res := run(t, "  from stdin \n", "ask")
	require.NoError(t, res.err)
	assert.Equal(t, "You asked: from stdin\n", res.stdout)
}

func TestAsk_EmptyQuestion(t *testing.T) {
	isolate(t)
	echoWebhook(t, server.Config{})

	res := run(t, "   \n", "ask")
	require.Error(t, res.err)
	assert.Equal(t, ExitUsageError, ExitCode(res.err))
}

func TestAsk_JSON(t *testing.T) {
	isolate(t)
	echoWebhook(t, server.Config{Shape: server.ShapeAnswer})

	res := run(t, "", "ask", "--json", "hello")
	require.NoError(t, res.err)

	resp := decodeJSON(t, res.stdout)
	assert.True(t, resp.Success)
	assert.Equal(t, "ask", resp.Command)

	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok, "data = %#v", resp.Data)
	assert.Equal(t, "hello", data["query"])
	assert.Equal(t, "You asked: hello", data["answer"])
	assert.Equal(t, "test", data["session"])
	assert.NotEmpty(t, data["id"])
}

func TestAsk_WebhookNotConfigured(t *testing.T) {
	isolate(t)

	res := run(t, "", "ask", "hello")
	require.Error(t, res.err)
	assert.Equal(t, ExitConfigError, ExitCode(res.err))
	assert.Contains(t, res.err.Error(), "webhook.url")
}

func TestAsk_ServerErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   int
	}{
		{"server error", http.StatusInternalServerError, ExitNetworkError},
		{"unauthorized", http.StatusUnauthorized, ExitAuthError},
		{"forbidden", http.StatusForbidden, ExitAuthError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()
			t.Setenv("ORB_WEBHOOK_URL", srv.URL)

			res := run(t, "", "ask", "hello")
			require.Error(t, res.err)
			assert.Equal(t, tt.want, ExitCode(res.err))
			assert.Empty(t, res.stdout)

			// Failures never reach the history.
			show := run(t, "", "history", "show", "--json")
			require.NoError(t, show.err)
			data := decodeJSON(t, show.stdout).Data.(map[string]interface{})
			assert.Empty(t, data["exchanges"])
		})
	}
}

func TestAsk_BasicAuth(t *testing.T) {
	isolate(t)
	echoWebhook(t, server.Config{Username: "demo", Password: "secret"})

	res := run(t, "", "ask", "hello")
	require.Error(t, res.err)
	assert.Equal(t, ExitAuthError, ExitCode(res.err))

	t.Setenv("ORB_WEBHOOK_USER", "demo")
	t.Setenv("ORB_WEBHOOK_PASSWORD", "secret")
	res = run(t, "", "ask", "hello")
	require.NoError(t, res.err)
	assert.Equal(t, "You asked: hello\n", res.stdout)
}

func TestAsk_JSONErrorDocument(t *testing.T) {
	isolate(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()
	t.Setenv("ORB_WEBHOOK_URL", srv.URL)

	res := run(t, "", "ask", "--json", "hello")
	require.Error(t, res.err)

	var exitErr *ExitError
	require.True(t, errors.As(res.err, &exitErr))
	assert.Equal(t, ExitNetworkError, exitErr.Code)

	resp := decodeJSON(t, res.stdout)
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "Server error: 502", *resp.Error)
}

func TestAsk_EmptyAnswer(t *testing.T) {
	isolate(t)
	echoWebhook(t, server.Config{Shape: server.ShapeEmpty})

	res := run(t, "", "ask", "hello")
	require.NoError(t, res.err)
	assert.Empty(t, res.stdout)
	assert.Contains(t, res.stderr, "(empty answer)")

	dir := os.Getenv("ORB_HOME")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte("[ui]\nreport_empty_answers = true\n"), 0600))

	res = run(t, "", "ask", "hello")
	require.Error(t, res.err)
	assert.ErrorIs(t, res.err, dispatch.ErrEmptyAnswer)
}

func TestAsk_EphemeralLeavesNoHistory(t *testing.T) {
	isolate(t)
	echoWebhook(t, server.Config{})

	res := run(t, "", "--ephemeral", "ask", "hello")
	require.NoError(t, res.err)

	show := run(t, "", "history", "show", "--json")
	require.NoError(t, show.err)
	data := decodeJSON(t, show.stdout).Data.(map[string]interface{})
	assert.Empty(t, data["exchanges"])
}

func TestAsk_InvalidSession(t *testing.T) {
	isolate(t)
	echoWebhook(t, server.Config{})

	res := run(t, "", "--session", "../escape", "ask", "hello")
	require.Error(t, res.err)
	assert.Equal(t, ExitUsageError, ExitCode(res.err))
}

// =============================================================================
// HISTORY
// =============================================================================

func TestHistory_ShowLast(t *testing.T) {
	isolate(t)
	echoWebhook(t, server.Config{})

	res := run(t, "", "history", "show", "--last", "--json")
	require.NoError(t, res.err)
	assert.Empty(t, decodeJSON(t, res.stdout).Data.(map[string]interface{})["exchanges"])

	require.NoError(t, run(t, "", "ask", "one").err)
	require.NoError(t, run(t, "", "ask", "two").err)

	res = run(t, "", "history", "show", "--last", "--raw")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "You asked: two")
	assert.NotContains(t, res.stdout, "You asked: one")

	res = run(t, "", "history", "show", "--last", "--json")
	require.NoError(t, res.err)
	exchanges := decodeJSON(t, res.stdout).Data.(map[string]interface{})["exchanges"].([]interface{})
	require.Len(t, exchanges, 1)
	assert.Equal(t, "two", exchanges[0].(map[string]interface{})["query"])
}

func TestHistory_ExportJSONFile(t *testing.T) {
	dir := isolate(t)
	echoWebhook(t, server.Config{})

	require.NoError(t, run(t, "", "ask", "one").err)
	require.NoError(t, run(t, "", "ask", "two").err)

	path := filepath.Join(dir, "export", "chat.json")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0700))

	res := run(t, "", "history", "export", "--format", "json", "--output", path)
	require.NoError(t, res.err)
	assert.Contains(t, res.stderr, "Exported 2 exchanges")

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc struct {
		Title     string                  `json:"title"`
		Exchanges []conversation.Exchange `json:"exchanges"`
	}
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, "Ask Me Anything", doc.Title)
	require.Len(t, doc.Exchanges, 2)
	assert.Equal(t, "one", doc.Exchanges[0].Query)
	assert.Equal(t, "You asked: two", doc.Exchanges[1].Response)
}

func TestHistory_ExportMarkdownStdout(t *testing.T) {
	isolate(t)

	res := run(t, "", "history", "export")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "# Ask Me Anything")
	assert.Contains(t, res.stdout, "_No messages yet._")
}

func TestHistory_ExportHTMLToDirectory(t *testing.T) {
	dir := isolate(t)
	echoWebhook(t, server.Config{Shape: server.ShapeMarkdown})

	require.NoError(t, run(t, "", "ask", "hello").err)

	out := filepath.Join(dir, "exports")
	require.NoError(t, os.MkdirAll(out, 0700))

	res := run(t, "", "history", "export", "--format", "html", "--theme", "light", "--output", out)
	require.NoError(t, res.err)
	assert.Contains(t, res.stderr, "Exported 1 exchanges")

	matches, err := filepath.Glob(filepath.Join(out, "orb_test_*.html"))
	require.NoError(t, err)
	require.Len(t, matches, 1)

	data, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	assert.Contains(t, string(data), `class="light-theme"`)
	assert.Contains(t, string(data), "hello")
}

func TestHistory_ExportRejectsUnknownTheme(t *testing.T) {
	isolate(t)

	res := run(t, "", "history", "export", "--format", "html", "--theme", "neon")
	require.Error(t, res.err)
	assert.Equal(t, ExitUsageError, ExitCode(res.err))
}

func TestHistory_ExportUnknownFormat(t *testing.T) {
	isolate(t)

	res := run(t, "", "history", "export", "--format", "pdf")
	require.Error(t, res.err)
	assert.Equal(t, ExitUsageError, ExitCode(res.err))
}

func TestHistory_Clear(t *testing.T) {
	isolate(t)
	echoWebhook(t, server.Config{})

	require.NoError(t, run(t, "", "ask", "one").err)
	require.NoError(t, run(t, "", "--session", "other", "ask", "two").err)

	if !CanPrompt() {
		// Without a terminal, clearing needs --yes.
		res := run(t, "y\n", "history", "clear")
		require.Error(t, res.err)
		assert.Equal(t, ExitUsageError, ExitCode(res.err))
	}

	res := run(t, "", "history", "clear", "--yes")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "Erased 1 exchanges in session test")

	show := run(t, "", "history", "show", "--json")
	require.NoError(t, show.err)
	assert.Empty(t, decodeJSON(t, show.stdout).Data.(map[string]interface{})["exchanges"])

	show = run(t, "", "--session", "other", "history", "show", "--json")
	require.NoError(t, show.err)
	assert.Len(t, decodeJSON(t, show.stdout).Data.(map[string]interface{})["exchanges"], 1)

	res = run(t, "", "history", "clear", "--all", "--yes")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "Erased 1 sessions")
}

func TestHistory_Sessions(t *testing.T) {
	isolate(t)
	echoWebhook(t, server.Config{})

	require.NoError(t, run(t, "", "--session", "first", "ask", "one").err)
	require.NoError(t, run(t, "", "--session", "second", "ask", "two").err)

	res := run(t, "", "--session", "second", "history", "sessions", "--json")
	require.NoError(t, res.err)

	var resp struct {
		Success bool          `json:"success"`
		Data    []SessionInfo `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &resp))
	require.True(t, resp.Success)
	require.Len(t, resp.Data, 2)

	current := map[string]bool{}
	for _, info := range resp.Data {
		current[info.Session] = info.Current
		assert.Positive(t, info.Bytes)
	}
	assert.Equal(t, map[string]bool{"first": false, "second": true}, current)

	res = run(t, "", "--session", "second", "history", "sessions")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "* second")
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{"n\n", false},
		{"\n", false},
		{"", false},
	}
	for _, tt := range tests {
		var out bytes.Buffer
		assert.Equal(t, tt.want, confirm(strings.NewReader(tt.input), &out, "Erase?"), "input %q", tt.input)
		assert.Equal(t, "Erase? [y/N]: ", out.String())
	}
}

func TestFormatBytes(t *testing.T) {
	assert.Equal(t, "512 B", formatBytes(512))
	assert.Equal(t, "1.5 KB", formatBytes(1536))
	assert.Equal(t, "2.0 MB", formatBytes(2<<20))
}

// =============================================================================
// CONFIG
// =============================================================================

func TestConfig_SetThenGet(t *testing.T) {
	dir := isolate(t)

	res := run(t, "", "config", "set", "webhook.url", "https://example.com/hook")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "webhook.url = https://example.com/hook")

	res = run(t, "", "config", "get", "webhook.url")
	require.NoError(t, res.err)
	assert.Equal(t, "https://example.com/hook\n", res.stdout)

	info, err := os.Stat(filepath.Join(dir, "config.toml"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestConfig_SetDoesNotPersistEnvironment(t *testing.T) {
	dir := isolate(t)
	t.Setenv("ORB_WEBHOOK_USER", "env-user")
	t.Setenv("ORB_WEBHOOK_PASSWORD", "env-secret")

	require.NoError(t, run(t, "", "config", "set", "ui.theme", "light").err)

	data, err := os.ReadFile(filepath.Join(dir, "config.toml"))
	require.NoError(t, err)
	assert.NotContains(t, string(data), "env-secret")
	assert.NotContains(t, string(data), "env-user")
	assert.Contains(t, string(data), "light")
}

func TestConfig_SetRejectsInvalidValues(t *testing.T) {
	isolate(t)

	res := run(t, "", "config", "set", "webhook.nope", "x")
	require.Error(t, res.err)
	assert.Equal(t, ExitUsageError, ExitCode(res.err))

	res = run(t, "", "config", "set", "ui.theme", "neon")
	require.Error(t, res.err)
	assert.Equal(t, ExitConfigError, ExitCode(res.err))
}

func TestConfig_SecretsAreRedacted(t *testing.T) {
	isolate(t)
	t.Setenv("ORB_WEBHOOK_USER", "demo")
	t.Setenv("ORB_WEBHOOK_PASSWORD", "hunter2")

	res := run(t, "", "config", "get", "webhook.password")
	require.NoError(t, res.err)
	assert.Equal(t, Redacted+"\n", res.stdout)

	res = run(t, "", "config", "get", "webhook.password", "--reveal")
	require.NoError(t, res.err)
	assert.Equal(t, "hunter2\n", res.stdout)

	res = run(t, "", "config", "show")
	require.NoError(t, res.err)
	assert.NotContains(t, res.stdout, "hunter2")
	assert.Contains(t, res.stdout, Redacted)
	assert.Contains(t, res.stdout, "webhook.url")

	res = run(t, "", "config", "show", "--json")
	require.NoError(t, res.err)
	assert.NotContains(t, res.stdout, "hunter2")
}

func TestConfig_ShowWarnsAboutInvalidFile(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte("[ui]\ntheme = \"neon\"\n"), 0600))

	res := run(t, "", "config", "show")
	require.NoError(t, res.err)
	assert.Contains(t, res.stderr, "ui.theme")
	assert.Contains(t, res.stdout, "auto")
}

func TestConfig_Path(t *testing.T) {
	dir := isolate(t)

	res := run(t, "", "config", "path")
	require.NoError(t, res.err)
	assert.Equal(t, filepath.Join(dir, "config.toml")+"\n", res.stdout)
}

// =============================================================================
// INTERACTIVE COMMANDS
// =============================================================================

func TestInteractiveCommandsNeedTerminal(t *testing.T) {
	if IsTTY() && IsStdoutTTY() {
		t.Skip("running in a terminal")
	}
	isolate(t)

	for _, args := range [][]string{{}, {"chat"}} {
		res := run(t, "", args...)
		require.Error(t, res.err, "args %v", args)

		var ttyErr *TTYRequiredError
		assert.True(t, errors.As(res.err, &ttyErr), "args %v: %v", args, res.err)
		assert.Equal(t, ExitUsageError, ExitCode(res.err))
	}
}

type scriptedLines struct {
	lines   []string
	prompts int
}

func (s *scriptedLines) Prompt(string) (string, error) {
	s.prompts++
	if len(s.lines) == 0 {
		return "", io.EOF
	}
	line := s.lines[0]
	s.lines = s.lines[1:]
	return line, nil
}

func TestREPL(t *testing.T) {
	store := conversation.Open(storage.NewMemorySlot(), nil)
	client := webhook.NewClient(webhook.Config{}, nil)
	defer client.Close()

	srv := httptest.NewServer(server.New(server.Config{Shape: server.ShapeMarkdown}, nil).Handler())
	defer srv.Close()
	client.Reconfigure(webhook.Config{URL: srv.URL + "/webhook"})

	var out bytes.Buffer
	in := &scriptedLines{lines: []string{"hello", "", "/history", "/clear", "/bogus", "again"}}
	r := &repl{
		in:         in,
		out:        &out,
		dispatcher: dispatch.New(client, store, dispatch.Options{}),
		scope:      "test",
		render:     plainText,
		log:        zap.NewNop(),
	}

	require.NoError(t, r.run(context.Background()))
	text := out.String()

	assert.Contains(t, text, "Ask Me Anything")
	assert.Contains(t, text, "session test")
	assert.Contains(t, text, "hello")
	assert.Contains(t, text, "Conversation cleared")
	assert.Contains(t, text, "Unknown command: /bogus")
	assert.Contains(t, text, "1 exchanges in session test")
	assert.Equal(t, 7, in.prompts)

	require.Equal(t, 1, store.Len())
	last, _ := store.Last()
	assert.Equal(t, "again", last.Query)
}

func TestREPL_ExitCommandAndFailures(t *testing.T) {
	store := conversation.Open(storage.NewMemorySlot(), nil)
	client := webhook.NewClient(webhook.Config{}, nil)
	defer client.Close()

	var out bytes.Buffer
	in := &scriptedLines{lines: []string{"unanswered", "/exit", "never read"}}
	r := &repl{
		in:         in,
		out:        &out,
		dispatcher: dispatch.New(client, store, dispatch.Options{}),
		scope:      "test",
		render:     plainText,
		log:        zap.NewNop(),
	}

	require.NoError(t, r.run(context.Background()))
	assert.Contains(t, out.String(), webhook.ErrNotConfigured.Error())
	assert.Equal(t, 2, in.prompts)
	assert.Zero(t, store.Len())
}

// =============================================================================
// ECHO SERVER AND VERSION
// =============================================================================

func TestEchoServer_StopsWithContext(t *testing.T) {
	isolate(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := runContext(t, ctx, "", "echo-server", "--addr", "127.0.0.1:0")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "Echo webhook listening on http://127.0.0.1:")
	assert.Contains(t, res.stdout, "Answered 0 questions")
}

func TestEchoServer_ValidatesFlags(t *testing.T) {
	isolate(t)

	for _, args := range [][]string{
		{"echo-server", "--shape", "bogus"},
		{"echo-server", "--password", "secret"},
		{"echo-server", "--delay", "-1s"},
	} {
		res := run(t, "", args...)
		require.Error(t, res.err, "args %v", args)
		assert.Equal(t, ExitUsageError, ExitCode(res.err), "args %v", args)
	}
}

func TestVersion(t *testing.T) {
	res := run(t, "", "version", "--json")
	require.NoError(t, res.err)

	resp := decodeJSON(t, res.stdout)
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, Version, data["version"])
	assert.NotEmpty(t, data["go_version"])
}

func TestUnknownFlagIsUsageError(t *testing.T) {
	isolate(t)

	res := run(t, "", "ask", "--nope")
	require.Error(t, res.err)
	assert.Equal(t, ExitUsageError, ExitCode(res.err))
}

// =============================================================================
// EXIT CODES
// =============================================================================

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"plain", errors.New("boom"), ExitGeneralError},
		{"timeout", webhook.ErrTimeout, ExitTimeoutError},
		{"cancelled", webhook.ErrCanceled, ExitInterrupted},
		{"not configured", webhook.ErrNotConfigured, ExitConfigError},
		{"rate limited", webhook.ErrRateLimited, ExitNetworkError},
		{"status 500", webhook.StatusError(500), ExitNetworkError},
		{"status 401", webhook.StatusError(401), ExitAuthError},
		{"validation", NewValidationError("x", "", "bad"), ExitUsageError},
		{"tty", &TTYRequiredError{}, ExitUsageError},
		{"config", config.ValidateErrors{{Field: "ui.fps", Message: "bad"}}, ExitConfigError},
		{"invalid scope", storage.ErrInvalidScope, ExitUsageError},
		{"empty answer", dispatch.ErrEmptyAnswer, ExitNetworkError},
		{"explicit", &ExitError{Code: 42, Err: errors.New("shown")}, 42},
		{"wrapped", NewCommandError("history", "export", "failed", webhook.ErrTimeout), ExitTimeoutError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCode(tt.err))
		})
	}
}

func TestDisplayError_SkipsShownErrors(t *testing.T) {
	var out bytes.Buffer
	DisplayError(&out, &ExitError{Code: 5, Err: errors.New("already shown")})
	assert.Empty(t, out.String())

	DisplayError(&out, errors.New("boom"))
	assert.Equal(t, "[ERROR] boom\n", out.String())
}
