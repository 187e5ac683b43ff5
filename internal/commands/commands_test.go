// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"testing"
	"unicode"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/opencoder/internal/lm"
	"github.com/jeranaias/opencoder/internal/model"
	"github.com/jeranaias/opencoder/internal/session"
)

// =============================================================================
// PARSER TESTS
// =============================================================================

func TestParse(t *testing.T) {
	tests := []struct {
		input    string
		wantName string
		wantArgs string
		wantOK   bool
	}{
		{"/help", "/help", "", true},
		{"/set model", "/set", "model", true},
		{"/set temperature 0.7", "/set", "temperature 0.7", true},
		{"/set  two-spaces", "/set", " two-spaces", true},
		{"/set\tmodel", "/set", "model", true},
		{"/set ", "/set", "", true},
		{"/", "/", "", true},
		{"hello", "", "", false},
		{"hello /help", "", "", false},
		{" /help", "", "", false},
		{"", "", "", false},
	}

	for _, tc := range tests {
		name, args, ok := Parse(tc.input)
		assert.Equal(t, tc.wantOK, ok, "Parse(%q) ok", tc.input)
		assert.Equal(t, tc.wantName, name, "Parse(%q) name", tc.input)
		assert.Equal(t, tc.wantArgs, args, "Parse(%q) args", tc.input)
	}
}

func TestParse_SplitsOnFirstWhitespace(t *testing.T) {
	alphabet := []rune("ab/ \t\nxé世")
	rng := rand.New(rand.NewSource(1))

	for i := 0; i < 2000; i++ {
		n := rng.Intn(12)
		runes := make([]rune, n)
		for j := range runes {
			runes[j] = alphabet[rng.Intn(len(alphabet))]
		}
		input := string(runes)

		name, args, ok := Parse(input)
		if !strings.HasPrefix(input, "/") {
			require.False(t, ok, "input %q", input)
			continue
		}
		require.True(t, ok, "input %q", input)

		idx := strings.IndexFunc(input, unicode.IsSpace)
		if idx < 0 {
			require.Equal(t, input, name)
			require.Empty(t, args)
			continue
		}
		require.Equal(t, input[:idx], name, "input %q", input)
		require.False(t, strings.ContainsFunc(name, unicode.IsSpace))
		require.Equal(t, input[idx+len(string([]rune(input[idx:])[0])):], args, "input %q", input)
	}
}

// =============================================================================
// REGISTRY TESTS
// =============================================================================

type fakePrompter struct {
	selectFn func(title string, options []string) (string, error)
	input    string
	inputErr error
	asked    []string
}

func (p *fakePrompter) Select(title string, options []string) (string, error) {
	p.asked = append(p.asked, title)
	return p.selectFn(title, options)
}

func (p *fakePrompter) Input(label string) (string, error) {
	p.asked = append(p.asked, label)
	return p.input, p.inputErr
}

func newTestState(t *testing.T, client *lm.Client, prompter session.Prompter) *session.State {
	t.Helper()
	settings := model.Settings{
		Name:          "m1",
		TopP:          0.95,
		TopK:          20,
		Temperature:   0.6,
		RepeatPenalty: 1.0,
	}
	return session.New(client, settings, "system prompt", prompter, nil)
}

func TestRegistry_LastRegistrationWins(t *testing.T) {
	r := NewRegistry(nil)
	r.Register(&Command{Name: "/x", Aliases: []string{"/old"}, Handler: func(context.Context, *session.State, string) (string, error) {
		return "first", nil
	}})
	r.Register(&Command{Name: "/x", Handler: func(context.Context, *session.State, string) (string, error) {
		return "second", nil
	}})

	out, err := r.Execute(context.Background(), "/x", "", newTestState(t, nil, nil))
	require.NoError(t, err)
	assert.Equal(t, "second", out)
	assert.Len(t, r.All(), 1)
	assert.Nil(t, r.Get("/old"), "aliases of the replaced command are dropped")
}

func TestRegistry_AllSortedByName(t *testing.T) {
	r := NewDefaultRegistry(nil)

	var names []string
	for _, cmd := range r.All() {
		names = append(names, cmd.Name)
	}
	assert.Equal(t, []string{"/exit", "/help", "/history", "/models", "/set", "/settings"}, names)
}

func TestRegistry_UnknownCommandLeavesStateUnchanged(t *testing.T) {
	r := NewDefaultRegistry(nil)
	st := newTestState(t, nil, nil)
	before := st.Settings
	beforeLen := st.Transcript.Len()

	out, err := r.Execute(context.Background(), "/frobnicate", "now", st)

	var unknown *UnknownCommandError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "/frobnicate", unknown.Name)
	assert.Contains(t, err.Error(), "/help")
	assert.Empty(t, out)
	assert.Empty(t, cmp.Diff(before, st.Settings))
	assert.Equal(t, beforeLen, st.Transcript.Len())
}

func TestRegistry_HandlerErrorReturnedUnchanged(t *testing.T) {
	sentinel := errors.New("handler broke")
	r := NewRegistry(nil)
	r.Register(&Command{Name: "/boom", Handler: func(context.Context, *session.State, string) (string, error) {
		return "partial", sentinel
	}})

	out, err := r.Execute(context.Background(), "/boom", "", newTestState(t, nil, nil))
	assert.Same(t, sentinel, err)
	assert.Equal(t, "partial", out)
}

func TestRegistry_HandlerReceivesArgsAndState(t *testing.T) {
	r := NewRegistry(nil)
	r.Register(&Command{Name: "/rename", Handler: func(_ context.Context, st *session.State, args string) (string, error) {
		st.Settings.Name = args
		return "ok", nil
	}})

	st := newTestState(t, nil, nil)
	_, err := r.Execute(context.Background(), "/rename", "m2", st)
	require.NoError(t, err)
	assert.Equal(t, "m2", st.Settings.Name)
}

func TestRegistry_Alias(t *testing.T) {
	r := NewDefaultRegistry(nil)
	_, err := r.Execute(context.Background(), "/quit", "", newTestState(t, nil, nil))
	assert.ErrorIs(t, err, ErrExit)
}

// =============================================================================
// BUILT-IN HANDLER TESTS
// =============================================================================

func TestHandleExit(t *testing.T) {
	r := NewDefaultRegistry(nil)
	out, err := r.Execute(context.Background(), "/exit", "", newTestState(t, nil, nil))
	assert.ErrorIs(t, err, ErrExit)
	assert.Empty(t, out)
}

func TestHandleHelp(t *testing.T) {
	r := NewDefaultRegistry(nil)
	out, err := r.Execute(context.Background(), "/help", "", newTestState(t, nil, nil))
	require.NoError(t, err)

	for _, cmd := range r.All() {
		assert.Contains(t, out, cmd.Name)
	}
	assert.Contains(t, out, setUsage)
	assert.True(t, r.Get("/help").Markdown)
}

func TestHandleHelp_IncludesLaterRegistrations(t *testing.T) {
	r := NewDefaultRegistry(nil)
	r.Register(&Command{Name: "/late", Description: "registered after builtins", Handler: HandleSettings})

	out, err := r.Execute(context.Background(), "/help", "", newTestState(t, nil, nil))
	require.NoError(t, err)
	assert.Contains(t, out, "/late")
}

func TestHandleSettings(t *testing.T) {
	out, err := HandleSettings(context.Background(), newTestState(t, nil, nil), "")
	require.NoError(t, err)
	assert.Contains(t, out, "model")
	assert.Contains(t, out, "m1")
	assert.Contains(t, out, "top_k")
	assert.Contains(t, out, "20")
}

func TestHandleHistory(t *testing.T) {
	st := newTestState(t, nil, nil)
	st.Transcript.Append(model.NewUserMessage("hello\nthere"))
	st.Transcript.Append(model.NewAssistantMessage(strings.Repeat("long ", 40)))

	out, err := HandleHistory(context.Background(), st, "")
	require.NoError(t, err)

	lines := strings.Split(out, "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "System")
	assert.Contains(t, lines[1], "hello there")
	assert.True(t, strings.HasSuffix(lines[2], "..."))
}
