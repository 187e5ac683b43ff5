// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/opencoder/internal/lm"
	"github.com/jeranaias/opencoder/internal/session"
)

func catalogServer(t *testing.T, body string) *lm.Client {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/models" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return lm.NewClient(server.URL, "k")
}

func TestHandleSet_DirectValues(t *testing.T) {
	tests := []struct {
		args  string
		want  string
		check func(t *testing.T, st *session.State)
	}{
		{"temperature 0.7", "Set temperature to 0.7", func(t *testing.T, st *session.State) {
			assert.Equal(t, 0.7, st.Settings.Temperature)
		}},
		{"top_p 1", "Set top_p to 1", func(t *testing.T, st *session.State) {
			assert.Equal(t, 1.0, st.Settings.TopP)
		}},
		{"top_k 40", "Set top_k to 40", func(t *testing.T, st *session.State) {
			assert.Equal(t, uint64(40), st.Settings.TopK)
		}},
		{"presence_penalty -1.5", "Set presence_penalty to -1.5", func(t *testing.T, st *session.State) {
			assert.Equal(t, -1.5, st.Settings.PresencePenalty)
		}},
		{"frequency_penalty 3", "Set frequency_penalty to 3", func(t *testing.T, st *session.State) {
			assert.Equal(t, 3.0, st.Settings.FrequencyPenalty, "values are not clamped")
		}},
		{"repeat_penalty 1.1", "Set repeat_penalty to 1.1", func(t *testing.T, st *session.State) {
			assert.Equal(t, 1.1, st.Settings.RepeatPenalty)
		}},
		{"model other-model", "Set model to other-model", func(t *testing.T, st *session.State) {
			assert.Equal(t, "other-model", st.Settings.Name)
		}},
	}

	for _, tc := range tests {
		t.Run(tc.args, func(t *testing.T) {
			st := newTestState(t, nil, nil)
			out, err := HandleSet(context.Background(), st, tc.args)
			require.NoError(t, err)
			assert.Equal(t, tc.want, out)
			tc.check(t, st)
		})
	}
}

func TestHandleSet_ValueKeepsInnerWhitespace(t *testing.T) {
	tests := []struct {
		args string
		want string
	}{
		{"model my  model", "my  model"},
		{"  model\tlocal/qwen 3  ", "local/qwen 3"},
		{"model   spaced   out", "spaced   out"},
	}

	for _, tc := range tests {
		t.Run(tc.args, func(t *testing.T) {
			st := newTestState(t, nil, nil)
			out, err := HandleSet(context.Background(), st, tc.args)
			require.NoError(t, err)
			assert.Equal(t, "Set model to "+tc.want, out)
			assert.Equal(t, tc.want, st.Settings.Name)
		})
	}
}

func TestHandleSet_InvalidNumber(t *testing.T) {
	tests := []string{"temperature warm", "top_k -1", "top_k 1.5"}

	for _, args := range tests {
		t.Run(args, func(t *testing.T) {
			st := newTestState(t, nil, nil)
			before := st.Settings

			_, err := HandleSet(context.Background(), st, args)
			var invalid *InvalidValueError
			require.ErrorAs(t, err, &invalid)
			assert.Equal(t, before, st.Settings)
		})
	}
}

func TestHandleSet_UnknownKey(t *testing.T) {
	for _, args := range []string{"", "colour blue", "Model"} {
		st := newTestState(t, nil, nil)
		out, err := HandleSet(context.Background(), st, args)
		require.NoError(t, err)
		assert.Contains(t, out, "Invalid argument")
		assert.Contains(t, out, setUsage)
		assert.Equal(t, "m1", st.Settings.Name)
	}
}

func TestHandleSet_PromptsForValue(t *testing.T) {
	prompter := &fakePrompter{input: " 0.25 "}
	st := newTestState(t, nil, prompter)

	out, err := HandleSet(context.Background(), st, "temperature")
	require.NoError(t, err)
	assert.Equal(t, "Set temperature to 0.25", out)
	assert.Equal(t, 0.25, st.Settings.Temperature)
	require.Len(t, prompter.asked, 1)
	assert.Contains(t, prompter.asked[0], "current 0.6")
}

func TestHandleSet_PromptCancelled(t *testing.T) {
	prompter := &fakePrompter{inputErr: session.ErrSelectionCancelled}
	st := newTestState(t, nil, prompter)

	out, err := HandleSet(context.Background(), st, "top_k")
	require.NoError(t, err)
	assert.Equal(t, unchangedMessage, out)
	assert.Equal(t, uint64(20), st.Settings.TopK)
}

func TestHandleSet_NoPrompter(t *testing.T) {
	st := newTestState(t, nil, nil)
	_, err := HandleSet(context.Background(), st, "top_p")
	var invalid *InvalidValueError
	require.ErrorAs(t, err, &invalid)
	assert.ErrorIs(t, err, errNoValue)
}

func TestHandleSet_ModelPicker(t *testing.T) {
	client := catalogServer(t, `{"data":[{"id":"qwen"},{"id":"llama"}]}`)
	var offered []string
	prompter := &fakePrompter{selectFn: func(_ string, options []string) (string, error) {
		offered = options
		return options[1], nil
	}}
	st := newTestState(t, client, prompter)

	out, err := HandleSet(context.Background(), st, "model")
	require.NoError(t, err)
	assert.Equal(t, "Set model to llama", out)
	assert.Equal(t, "llama", st.Settings.Name)
	assert.Equal(t, []string{"qwen", "llama"}, offered)
}

func TestHandleSet_ModelPickerEmptyCatalog(t *testing.T) {
	client := catalogServer(t, `{"data":[]}`)
	prompter := &fakePrompter{selectFn: func(string, []string) (string, error) {
		t.Fatal("picker must not open for an empty catalog")
		return "", nil
	}}
	st := newTestState(t, client, prompter)

	out, err := HandleSet(context.Background(), st, "model")
	require.NoError(t, err)
	assert.Equal(t, "No models available", out)
	assert.Equal(t, "m1", st.Settings.Name)
}

func TestHandleSet_ModelPickerCancelled(t *testing.T) {
	client := catalogServer(t, `{"data":[{"id":"qwen"}]}`)
	prompter := &fakePrompter{selectFn: func(string, []string) (string, error) {
		return "", session.ErrSelectionCancelled
	}}
	st := newTestState(t, client, prompter)

	out, err := HandleSet(context.Background(), st, "model")
	require.NoError(t, err)
	assert.Equal(t, unchangedMessage, out)
	assert.Equal(t, "m1", st.Settings.Name)
}

func TestHandleSet_ModelCatalogError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()
	st := newTestState(t, lm.NewClient(server.URL, "k"), nil)

	_, err := HandleSet(context.Background(), st, "model")
	var upErr *lm.UpstreamError
	require.ErrorAs(t, err, &upErr)
	assert.Equal(t, http.StatusBadGateway, upErr.Status)
	assert.Equal(t, "m1", st.Settings.Name)
}

func TestHandleModels(t *testing.T) {
	client := catalogServer(t, `{"data":[{"id":"m1"},{"id":"m2"}]}`)
	st := newTestState(t, client, nil)

	out, err := HandleModels(context.Background(), st, "")
	require.NoError(t, err)
	assert.Equal(t, "* m1\n  m2", out)
}

func TestHandleModels_Empty(t *testing.T) {
	client := catalogServer(t, `{"data":[]}`)
	out, err := HandleModels(context.Background(), newTestState(t, client, nil), "")
	require.NoError(t, err)
	assert.Equal(t, noModelsMessage, out)
}
