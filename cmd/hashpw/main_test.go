package main

import (
	"bytes"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/johnsonjew/learning-journal/internal/server/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pipeWith returns the read end of a pipe that yields input.
func pipeWith(t *testing.T, input string) *os.File {
	t.Helper()
	r, w, err := os.Pipe()
	require.NoError(t, err)
	_, err = w.WriteString(input)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	t.Cleanup(func() { _ = r.Close() })
	return r
}

func stubTerminal(t *testing.T, answers ...string) {
	t.Helper()
	oldRead, oldIs := readPassword, isTerminal
	t.Cleanup(func() { readPassword, isTerminal = oldRead, oldIs })

	isTerminal = func(int) bool { return true }
	readPassword = func(int) ([]byte, error) {
		if len(answers) == 0 {
			return nil, errors.New("no more input")
		}
		a := answers[0]
		answers = answers[1:]
		return []byte(a), nil
	}
}

func TestRun_Piped(t *testing.T) {
	var out, prompt bytes.Buffer
	require.NoError(t, run(pipeWith(t, "hunter2\n"), &out, &prompt))

	hash := strings.TrimSpace(out.String())
	assert.True(t, auth.CheckPassword(hash, "hunter2"))
	assert.Empty(t, prompt.String())
}

func TestRun_PipedWithoutNewline(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run(pipeWith(t, "hunter2"), &out, &bytes.Buffer{}))
	assert.True(t, auth.CheckPassword(strings.TrimSpace(out.String()), "hunter2"))
}

func TestRun_PipedEmpty(t *testing.T) {
	var out bytes.Buffer
	require.ErrorIs(t, run(pipeWith(t, ""), &out, &bytes.Buffer{}), errEmptyPassword)
	require.ErrorIs(t, run(pipeWith(t, "\n"), &out, &bytes.Buffer{}), errEmptyPassword)
	assert.Empty(t, out.String())
}

func TestRun_Terminal(t *testing.T) {
	stubTerminal(t, "s3cret", "s3cret")

	var out, prompt bytes.Buffer
	require.NoError(t, run(pipeWith(t, ""), &out, &prompt))

	assert.True(t, auth.CheckPassword(strings.TrimSpace(out.String()), "s3cret"))
	assert.Contains(t, prompt.String(), "Enter password: ")
	assert.Contains(t, prompt.String(), "Repeat password: ")
	assert.NotContains(t, prompt.String(), "s3cret")
}

func TestRun_TerminalMismatch(t *testing.T) {
	stubTerminal(t, "one", "two")

	var out bytes.Buffer
	require.ErrorIs(t, run(pipeWith(t, ""), &out, &bytes.Buffer{}), errMismatch)
	assert.Empty(t, out.String())
}

func TestRun_TerminalReadError(t *testing.T) {
	stubTerminal(t)
	require.Error(t, run(pipeWith(t, ""), &bytes.Buffer{}, &bytes.Buffer{}))
}
