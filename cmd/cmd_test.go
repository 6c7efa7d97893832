package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/interview/internal/devserver"
	"github.com/abhisek/interview/internal/store"
	"github.com/abhisek/interview/internal/submit"
)

const questions = `[{"number":1,"question":"What is a goroutine?"},{"number":2,"question":"What is a channel?"}]`

// execute runs the root command with args and returns stdout and stderr.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})
	err := rootCmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

// workspace writes a question file and points config at temp paths.
func workspace(t *testing.T) (dir, questionsPath string) {
	t.Helper()
	dir = t.TempDir()
	questionsPath = filepath.Join(dir, "questions.json")
	require.NoError(t, os.WriteFile(questionsPath, []byte(questions), 0o644))
	t.Setenv("INTERVIEW_API_TOKEN", "tok")
	t.Setenv("INTERVIEW_LOG_LEVEL", "ERROR")
	return dir, questionsPath
}

func feedbackServer(t *testing.T) *httptest.Server {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "server.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	srv := httptest.NewServer(devserver.New(devserver.OfflineGenerator{}, st.FeedbackRepo()).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func TestSubmitAndHistory(t *testing.T) {
	dir, questionsPath := workspace(t)
	srv := feedbackServer(t)
	db := filepath.Join(dir, "interview.db")
	common := []string{"--env-file", filepath.Join(dir, "missing.env"), "--db", db, "--api-url", srv.URL}

	stdout, _, err := execute(t, append([]string{"submit", "--questions", questionsPath, "--answer", "1=A lightweight thread."}, common...)...)
	require.NoError(t, err)
	route := strings.TrimSpace(stdout)
	assert.True(t, strings.HasPrefix(route, "/feedback/"), route)

	stdout, _, err = execute(t, append([]string{"history", "--attempts"}, common...)...)
	require.NoError(t, err)
	assert.Contains(t, stdout, string(submit.StateSucceeded))
	assert.Contains(t, stdout, "1/2")
	assert.Contains(t, stdout, route)
	assert.Contains(t, stdout, "#1 generate")
	assert.Contains(t, stdout, "#1 persist")
}

func TestSubmitFailsAfterRetries(t *testing.T) {
	dir, questionsPath := workspace(t)
	srv := feedbackServer(t)
	url := srv.URL
	srv.Close()

	_, stderr, err := execute(t, "submit",
		"--env-file", filepath.Join(dir, "missing.env"),
		"--db", filepath.Join(dir, "interview.db"),
		"--questions", questionsPath,
		"--api-url", url,
		"--max-attempts", "2")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "after 2 attempt(s)")
	assert.Contains(t, stderr, submit.FailureNotice)
}

func TestInvalidConfig(t *testing.T) {
	dir, _ := workspace(t)
	_, _, err := execute(t, "history",
		"--env-file", filepath.Join(dir, "missing.env"),
		"--api-url", "not a url")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}

func TestPrintFeedback(t *testing.T) {
	raw, err := devserver.OfflineGenerator{}.Generate(context.Background(), nil)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, printFeedback(&buf, raw))
	assert.Contains(t, buf.String(), "Score:")

	buf.Reset()
	require.NoError(t, printFeedback(&buf, json.RawMessage(`{"ok":true}`)))
	assert.Equal(t, "{\"ok\":true}\n", buf.String())
}
