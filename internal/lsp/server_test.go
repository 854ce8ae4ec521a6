package lsp

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tliron/glsp"

	"github.com/ideo2004-afk/Obsidian-H2-Word-Count/internal/logging"
	"github.com/ideo2004-afk/Obsidian-H2-Word-Count/internal/settings"
	"github.com/ideo2004-afk/Obsidian-H2-Word-Count/internal/stats"
)

const uri = "file:///notes/a.md"

type recorder struct {
	mu        sync.Mutex
	notified  []string
	calls     []string
	callsDone chan struct{}
}

func newRecorder() *recorder {
	return &recorder{callsDone: make(chan struct{}, 16)}
}

func (r *recorder) notify(method string, params any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notified = append(r.notified, method)
}

func (r *recorder) call(method string, params any, result any) {
	r.mu.Lock()
	r.calls = append(r.calls, method)
	r.mu.Unlock()
	r.callsDone <- struct{}{}
}

type harness struct {
	t       *testing.T
	srv     *Server
	h       glsp.Handler
	rec     *recorder
	svc     *settings.Service
	storage *settings.MemoryStore
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	log := logging.Discard()
	store := settings.NewMemoryStore(nil)
	svc := settings.NewService(store, log)
	srv := NewServer(svc, stats.New(time.Hour), log, "test")
	return &harness{t: t, srv: srv, h: srv.Handler(), rec: newRecorder(), svc: svc, storage: store}
}

func (h *harness) send(method string, params any) (any, error) {
	h.t.Helper()
	raw, err := json.Marshal(params)
	require.NoError(h.t, err)

	r, validMethod, validParams, err := h.h.Handle(&glsp.Context{
		Method: method,
		Params: raw,
		Notify: h.rec.notify,
		Call:   h.rec.call,
	})
	require.True(h.t, validMethod, "method %s not handled", method)
	require.True(h.t, validParams, "params for %s rejected", method)
	return r, err
}

func (h *harness) initialize(options any) map[string]any {
	h.t.Helper()
	r, err := h.send("initialize", map[string]any{
		"processId":             nil,
		"rootUri":               nil,
		"capabilities":          map[string]any{},
		"initializationOptions": options,
	})
	require.NoError(h.t, err)

	data, err := json.Marshal(r)
	require.NoError(h.t, err)
	var result map[string]any
	require.NoError(h.t, json.Unmarshal(data, &result))
	return result
}

func (h *harness) open(text string) {
	h.t.Helper()
	_, err := h.send("textDocument/didOpen", map[string]any{
		"textDocument": map[string]any{"uri": uri, "languageId": "markdown", "version": 1, "text": text},
	})
	require.NoError(h.t, err)
}

func (h *harness) inlayHints() []inlayHint {
	h.t.Helper()
	r, err := h.send(MethodInlayHint, map[string]any{
		"textDocument": map[string]any{"uri": uri},
		"range": map[string]any{
			"start": map[string]any{"line": 0, "character": 0},
			"end":   map[string]any{"line": 1000, "character": 0},
		},
	})
	require.NoError(h.t, err)
	hints, ok := r.([]inlayHint)
	require.True(h.t, ok, "unexpected result type %T", r)
	return hints
}

func TestInitializeAdvertisesInlayHints(t *testing.T) {
	h := newHarness(t)
	result := h.initialize(nil)

	caps := result["capabilities"].(map[string]any)
	assert.Equal(t, true, caps["inlayHintProvider"])

	syncOpts := caps["textDocumentSync"].(map[string]any)
	assert.Equal(t, float64(2), syncOpts["change"])

	cmds := caps["executeCommandProvider"].(map[string]any)["commands"].([]any)
	assert.ElementsMatch(t, []any{CommandToggle, CommandSet}, cmds)

	info := result["serverInfo"].(map[string]any)
	assert.Equal(t, Name, info["name"])
}

func TestInitializeMergesOptions(t *testing.T) {
	h := newHarness(t)
	h.initialize(map[string]any{"showH1": true, "showWords": false, "bogus": 1})

	cur := h.svc.Current()
	assert.True(t, cur.ShowH1)
	assert.False(t, cur.ShowWords)
	assert.True(t, cur.ShowH2)
}

func TestRequestBeforeInitializeFails(t *testing.T) {
	h := newHarness(t)
	_, err := h.send(MethodInlayHint, map[string]any{"textDocument": map[string]any{"uri": uri}})
	assert.Error(t, err)
}

func TestInlayHintsFollowEdits(t *testing.T) {
	h := newHarness(t)
	h.initialize(nil)
	h.open("# Title\nfoo bar\n## Sub\nbaz\n")

	hints := h.inlayHints()
	require.Len(t, hints, 1)
	assert.Equal(t, "(1 words / 4 characters)", hints[0].Label)
	assert.Equal(t, "Sub", hints[0].Tooltip)
	assert.EqualValues(t, 2, hints[0].Position.Line)
	assert.EqualValues(t, 6, hints[0].Position.Character)
	assert.True(t, hints[0].PaddingLeft)

	// Insert " qux" after "baz".
	_, err := h.send("textDocument/didChange", map[string]any{
		"textDocument": map[string]any{"uri": uri, "version": 2},
		"contentChanges": []any{map[string]any{
			"range": map[string]any{
				"start": map[string]any{"line": 3, "character": 3},
				"end":   map[string]any{"line": 3, "character": 3},
			},
			"text": " qux",
		}},
	})
	require.NoError(t, err)

	hints = h.inlayHints()
	require.Len(t, hints, 1)
	assert.Equal(t, "(2 words / 8 characters)", hints[0].Label)

	h.rec.mu.Lock()
	assert.Contains(t, h.rec.notified, MethodAnnotations)
	h.rec.mu.Unlock()
}

func TestInlayHintsRangeFilter(t *testing.T) {
	h := newHarness(t)
	h.initialize(map[string]any{"sectioncount": map[string]any{"showH1": true}})
	h.open("# Title\nfoo bar\n## Sub\nbaz\n")

	r, err := h.send(MethodInlayHint, map[string]any{
		"textDocument": map[string]any{"uri": uri},
		"range": map[string]any{
			"start": map[string]any{"line": 1, "character": 0},
			"end":   map[string]any{"line": 3, "character": 0},
		},
	})
	require.NoError(t, err)
	hints := r.([]inlayHint)
	require.Len(t, hints, 1)
	assert.Equal(t, "Sub", hints[0].Tooltip)
}

func TestExecuteCommandTogglesAndRefreshes(t *testing.T) {
	h := newHarness(t)
	h.initialize(nil)
	h.open("# Title\nfoo bar\n## Sub\nbaz\n")

	r, err := h.send("workspace/executeCommand", map[string]any{
		"command":   CommandToggle,
		"arguments": []any{settings.KeyShowH1},
	})
	require.NoError(t, err)
	assert.Equal(t, true, r.(map[string]bool)[settings.KeyShowH1])
	assert.Len(t, h.inlayHints(), 2)

	select {
	case <-h.rec.callsDone:
	case <-time.After(time.Second):
		t.Fatal("expected an inlay hint refresh request")
	}
	h.rec.mu.Lock()
	assert.Equal(t, []string{MethodInlayHintRefresh}, h.rec.calls)
	h.rec.mu.Unlock()

	saved, err := h.storage.Load(context.Background())
	require.NoError(t, err)
	assert.True(t, saved[settings.KeyShowH1])
}

func TestExecuteCommandSetHidesEveryMetric(t *testing.T) {
	h := newHarness(t)
	h.initialize(nil)
	h.open("## Sub\nbaz\n")

	for _, key := range []string{settings.KeyShowWords, settings.KeyShowChars} {
		_, err := h.send("workspace/executeCommand", map[string]any{
			"command":   CommandSet,
			"arguments": []any{key, false},
		})
		require.NoError(t, err)
	}
	assert.Empty(t, h.inlayHints())
}

func TestExecuteCommandErrors(t *testing.T) {
	h := newHarness(t)
	h.initialize(nil)

	tests := []struct {
		name string
		args []any
		cmd  string
	}{
		{"missing key", nil, CommandToggle},
		{"unknown key", []any{"showH9"}, CommandToggle},
		{"missing value", []any{settings.KeyShowH1}, CommandSet},
		{"non-bool value", []any{settings.KeyShowH1, "yes"}, CommandSet},
		{"unknown command", []any{settings.KeyShowH1}, "sectioncount.nope"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.send("workspace/executeCommand", map[string]any{
				"command":   tt.cmd,
				"arguments": tt.args,
			})
			assert.Error(t, err)
		})
	}
}

func TestDidChangeConfiguration(t *testing.T) {
	h := newHarness(t)
	h.initialize(nil)
	h.open("# Title\nfoo bar\n## Sub\nbaz\n")

	_, err := h.send("workspace/didChangeConfiguration", map[string]any{
		"settings": map[string]any{"sectioncount": map[string]any{"showH1": true, "showH2": false}},
	})
	require.NoError(t, err)

	hints := h.inlayHints()
	require.Len(t, hints, 1)
	assert.Equal(t, "Title", hints[0].Tooltip)
	assert.Equal(t, "(5 words / 19 characters)", hints[0].Label)
}

func TestDidCloseForgetsDocument(t *testing.T) {
	h := newHarness(t)
	h.initialize(nil)
	h.open("## Sub\nbaz\n")

	_, err := h.send("textDocument/didClose", map[string]any{"textDocument": map[string]any{"uri": uri}})
	require.NoError(t, err)
	assert.Empty(t, h.inlayHints())

	_, err = h.send("textDocument/didClose", map[string]any{"textDocument": map[string]any{"uri": uri}})
	assert.Error(t, err)
}

func TestDecodeSettings(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want map[string]bool
	}{
		{"nil", nil, nil},
		{"flat", map[string]any{"showH1": true}, map[string]bool{"showH1": true}},
		{"nested", map[string]any{"sectioncount": map[string]any{"showPage": true}}, map[string]bool{"showPage": true}},
		{"non-bool ignored", map[string]any{"showH1": "yes", "showH2": nil, "showH3": false}, map[string]bool{"showH3": false}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeSettings(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := decodeSettings([]any{1, 2})
	assert.Error(t, err)
}
