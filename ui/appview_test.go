package ui

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ragchat/config"
	appmodel "ragchat/model"
	"ragchat/provider"
	provtest "ragchat/provider/testutil"
	"ragchat/rag"
	"ragchat/rag/testutil"
)

func newTestView(t *testing.T, exec *testutil.FakeExecutor, supported bool) AppView {
	t.Helper()
	return newTestViewWithConfig(t, config.DefaultConfig(), exec, supported)
}

func newTestViewWithConfig(t *testing.T, cfg *config.Config, exec *testutil.FakeExecutor, supported bool) AppView {
	t.Helper()
	tool := rag.Tool{RepoRoot: t.TempDir(), Python: "python3", Module: "scripts.ask"}
	caps := rag.NewStaticCapability(supported)
	runner := rag.NewRunner(tool, caps, rag.WithExecutor(exec))

	v := NewAppView(appmodel.NewModel(cfg, runner, caps, "test"))
	return update(t, v, tea.WindowSizeMsg{Width: 120, Height: 40})
}

func update(t *testing.T, v AppView, msg tea.Msg) AppView {
	t.Helper()
	m, _ := v.Update(msg)
	out, ok := m.(AppView)
	require.True(t, ok)
	return out
}

func press(t *testing.T, v AppView, msg tea.KeyMsg) (AppView, tea.Cmd) {
	t.Helper()
	m, cmd := v.Update(msg)
	out, ok := m.(AppView)
	require.True(t, ok)
	return out, cmd
}

var (
	keyEnter = tea.KeyMsg{Type: tea.KeyEnter}
	keyTab   = tea.KeyMsg{Type: tea.KeyTab}
	keyEsc   = tea.KeyMsg{Type: tea.KeyEsc}
	keyUp    = tea.KeyMsg{Type: tea.KeyUp}
	keyDown  = tea.KeyMsg{Type: tea.KeyDown}
	keyLeft  = tea.KeyMsg{Type: tea.KeyLeft}
	keyRight = tea.KeyMsg{Type: tea.KeyRight}
)

func alt(r string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(r), Alt: true}
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// drain runs cmd and every command batched inside it.
func drain(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, drain(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

// settle feeds the results of cmd back into v until no app message is left.
// Timer-driven messages (spinner, cursor blink, flash) are dropped.
func settle(t *testing.T, v AppView, cmd tea.Cmd) AppView {
	t.Helper()
	for round := 0; cmd != nil && round < 5; round++ {
		var next []tea.Cmd
		for _, msg := range drain(cmd) {
			switch msg.(type) {
			case queryDoneMsg, markdownRenderedMsg, modelsFetchedMsg, configSavedMsg, capabilityProbedMsg:
				m, c := v.Update(msg)
				v = m.(AppView)
				next = append(next, c)
			}
		}
		cmd = tea.Batch(next...)
	}
	return v
}

func ask(t *testing.T, v AppView, question string) AppView {
	t.Helper()
	v.textarea.SetValue(question)
	v, cmd := press(t, v, keyEnter)
	return settle(t, v, cmd)
}

func TestSubmit_ShowsQuestionAndBlocksInput(t *testing.T) {
	exec := testutil.NewFakeExecutor("usage: ask")
	v := newTestView(t, exec, false)

	v.textarea.SetValue("東京の人口は？")
	v, cmd := press(t, v, keyEnter)
	require.NotNil(t, cmd)

	msgs := v.dataModel.Messages
	require.Len(t, msgs, 2)
	assert.Equal(t, appmodel.RoleUser, msgs[0].Role)
	assert.Equal(t, "東京の人口は？", msgs[0].Content)
	assert.Equal(t, appmodel.RoleSystem, msgs[1].Role)
	assert.Equal(t, v.strings.Searching, msgs[1].Content)
	assert.True(t, v.Querying())
	assert.Empty(t, v.textarea.Value())

	// Second Enter while the first query is in flight is ignored
	v.textarea.SetValue("another question")
	v, blocked := press(t, v, keyEnter)
	assert.Nil(t, blocked)
	assert.Len(t, v.dataModel.Messages, 2)
	assert.Equal(t, v.strings.Busy, v.statusMsg)
	assert.Equal(t, "another question", v.textarea.Value())

	v = settle(t, v, cmd)

	msgs = v.dataModel.Messages
	require.Len(t, msgs, 2)
	assert.Equal(t, appmodel.RoleAssistant, msgs[1].Role)
	assert.Equal(t, "plain answer", msgs[1].Content)
	assert.NotEmpty(t, msgs[1].Rendered)
	assert.False(t, v.Querying())
	assert.Len(t, exec.QueryCalls(), 1)
}

func TestSubmit_BlankInputIgnored(t *testing.T) {
	exec := testutil.NewFakeExecutor("")
	v := newTestView(t, exec, false)

	v.textarea.SetValue("   ")
	v, cmd := press(t, v, keyEnter)

	assert.Nil(t, cmd)
	assert.Empty(t, v.dataModel.Messages)
	assert.Empty(t, exec.Calls())
}

func TestSubmit_ArgumentsFollowSidebar(t *testing.T) {
	exec := testutil.NewFakeExecutor("")
	v := newTestView(t, exec, false)

	v = ask(t, v, "東京の人口は？")

	calls := exec.QueryCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, []string{
		"--storage", "storage",
		"--k", "4",
		"--llm-backend", "openai",
		"--q", "東京の人口は？",
		"--llm-model", "gpt-5-mini",
	}, testutil.ToolArgs(calls[0]))
}

func TestTwoPhaseAnswer_EvidencePanel(t *testing.T) {
	exec := testutil.NewFakeExecutor("")
	v := newTestView(t, exec, true)

	v = ask(t, v, "q")

	last, ok := v.dataModel.LastAssistant()
	require.True(t, ok)
	assert.Equal(t, "concise answer", last.Content)
	assert.Equal(t, "full evidence", last.Evidence)
	assert.Len(t, exec.QueryCalls(), 2)

	view := stripANSI(v.View())
	assert.Contains(t, view, "▸ "+v.strings.EvidenceLabel)
	assert.NotContains(t, view, "full evidence")

	v, _ = press(t, v, alt("e"))
	view = stripANSI(v.View())
	assert.Contains(t, view, "▾ "+v.strings.EvidenceLabel)
	assert.Contains(t, view, "full evidence")

	v, _ = press(t, v, alt("e"))
	assert.NotContains(t, stripANSI(v.View()), "full evidence")
}

func TestToggleAllEvidence(t *testing.T) {
	exec := testutil.NewFakeExecutor("")
	v := newTestView(t, exec, true)
	v = ask(t, v, "one")
	v = ask(t, v, "two")

	v, _ = press(t, v, alt("E"))
	for _, msg := range v.dataModel.Messages {
		if msg.HasEvidence() {
			assert.True(t, v.expandedEvidence[msg.ID])
		}
	}

	v, _ = press(t, v, alt("E"))
	for _, msg := range v.dataModel.Messages {
		assert.False(t, v.expandedEvidence[msg.ID])
	}
}

func TestEmptyAnswer_ShowsPlaceholderWithStderr(t *testing.T) {
	exec := testutil.NewFakeExecutor("")
	exec.ExecuteFunc = func(ctx context.Context, cmd rag.Command) (rag.Result, error) {
		return rag.Result{Stderr: "Traceback: index missing", ExitCode: 1}, nil
	}
	v := newTestView(t, exec, false)

	v = ask(t, v, "q")

	last, ok := v.dataModel.LastAssistant()
	require.True(t, ok)
	assert.Equal(t, v.strings.Placeholder, last.Content)
	assert.True(t, last.Failed)
	assert.Equal(t, rag.StderrLabel+"\nTraceback: index missing", last.Evidence)
	assert.False(t, v.Querying())
}

func TestRunnerError_FoldedIntoEvidence(t *testing.T) {
	exec := testutil.NewFakeExecutor("")
	exec.ExecuteFunc = func(ctx context.Context, cmd rag.Command) (rag.Result, error) {
		return rag.Result{ExitCode: -1}, fmt.Errorf("%w after 2m0s: python3", rag.ErrTimeout)
	}
	v := newTestView(t, exec, false)

	v = ask(t, v, "q")

	last, ok := v.dataModel.LastAssistant()
	require.True(t, ok)
	assert.Equal(t, v.strings.Placeholder, last.Content)
	assert.True(t, strings.HasPrefix(last.Evidence, appmodel.ErrorLabel))
	assert.Contains(t, last.Evidence, "timed out")

	// Input is usable again
	v = ask(t, v, "again")
	assert.Len(t, exec.QueryCalls(), 2)
}

func TestClearHistory(t *testing.T) {
	exec := testutil.NewFakeExecutor("")
	v := newTestView(t, exec, false)
	for i := 0; i < 3; i++ {
		v = ask(t, v, fmt.Sprintf("q%d", i))
	}
	require.Len(t, v.dataModel.Messages, 6)

	v, _ = press(t, v, alt("l"))

	assert.Empty(t, v.dataModel.Messages)
	assert.Equal(t, v.strings.Cleared, v.statusMsg)
	assert.Contains(t, stripANSI(v.View()), v.strings.NoMessages)

	// Clearing an empty history is fine too
	v, _ = press(t, v, alt("l"))
	assert.Empty(t, v.dataModel.Messages)
}

func TestClearHistory_WhileQuerying(t *testing.T) {
	exec := testutil.NewFakeExecutor("")
	v := newTestView(t, exec, true)
	v = ask(t, v, "q0")
	require.Len(t, v.dataModel.Messages, 2)

	v.textarea.SetValue("q1")
	v, cmd := press(t, v, keyEnter)
	require.True(t, v.Querying())

	v, _ = press(t, v, alt("l"))
	assert.Empty(t, v.dataModel.Messages)
	assert.True(t, v.Querying(), "clearing does not cancel the running query")

	v = settle(t, v, cmd)

	require.Len(t, v.dataModel.Messages, 1)
	answer := v.dataModel.Messages[0]
	assert.Equal(t, appmodel.RoleAssistant, answer.Role)
	assert.Equal(t, "concise answer", answer.Content)
	assert.False(t, v.Querying())
	for _, m := range v.dataModel.Messages {
		assert.NotEqual(t, appmodel.RoleSystem, m.Role)
	}
}

func TestSidebar_AdjustsNextQuery(t *testing.T) {
	exec := testutil.NewFakeExecutor("")
	v := newTestView(t, exec, false)

	v, _ = press(t, v, keyTab)
	require.True(t, v.sidebar.focused)
	assert.Equal(t, fieldStorage, v.sidebar.selected)

	// Top-K is clamped to the slider range
	v, _ = press(t, v, keyDown)
	require.Equal(t, fieldTopK, v.sidebar.selected)
	for i := 0; i < 20; i++ {
		v, _ = press(t, v, keyRight)
	}
	assert.Equal(t, config.MaxTopK, v.dataModel.Query.K)
	for i := 0; i < 20; i++ {
		v, _ = press(t, v, keyLeft)
	}
	assert.Equal(t, config.MinTopK, v.dataModel.Query.K)

	// Backend cycles through all three options
	v, _ = press(t, v, runes("j"))
	require.Equal(t, fieldBackend, v.sidebar.selected)
	v, _ = press(t, v, keyRight)
	assert.Equal(t, rag.BackendCompatibleLocal, v.dataModel.Query.Backend)
	v, _ = press(t, v, keyRight)
	assert.Equal(t, rag.BackendNone, v.dataModel.Query.Backend)
	v, _ = press(t, v, keyRight)
	assert.Equal(t, rag.BackendOpenAI, v.dataModel.Query.Backend)
	v, _ = press(t, v, keyLeft)
	assert.Equal(t, rag.BackendNone, v.dataModel.Query.Backend)

	// Rerank toggle
	v, _ = press(t, v, keyDown)
	v, _ = press(t, v, keyDown)
	require.Equal(t, fieldRerank, v.sidebar.selected)
	v, _ = press(t, v, keyEnter)
	assert.False(t, v.dataModel.Query.Rerank)

	v, _ = press(t, v, keyTab)
	require.False(t, v.sidebar.focused)

	v = ask(t, v, "q")
	calls := exec.QueryCalls()
	require.Len(t, calls, 1)
	args := testutil.ToolArgs(calls[0])
	assert.Equal(t, "1", testutil.ArgValue(args, "--k"))
	assert.Equal(t, "none", testutil.ArgValue(args, "--llm-backend"))
	assert.Contains(t, args, "--no-rerank")
	assert.NotContains(t, args, "--llm-model")
}

func TestSidebar_EditStorage(t *testing.T) {
	v := newTestView(t, testutil.NewFakeExecutor(""), false)

	v, _ = press(t, v, keyTab)
	v, _ = press(t, v, keyEnter)
	require.True(t, v.sidebar.editing)
	assert.Equal(t, "storage", v.sidebar.input.Value())

	v, _ = press(t, v, alt("u"))
	assert.Empty(t, v.sidebar.input.Value())
	v, _ = press(t, v, runes("idx/ja"))
	v, _ = press(t, v, keyEnter)

	assert.False(t, v.sidebar.editing)
	assert.Equal(t, "idx/ja", v.dataModel.Query.Storage)

	// Esc cancels an edit
	v, _ = press(t, v, keyEnter)
	v, _ = press(t, v, runes("zzz"))
	v, _ = press(t, v, keyEsc)
	assert.Equal(t, "idx/ja", v.dataModel.Query.Storage)
}

func TestModelSelector_PickListedModel(t *testing.T) {
	v := newTestView(t, testutil.NewFakeExecutor(""), false)
	v.dataModel.NewLister = func(backend rag.Backend) (provider.ModelLister, error) {
		return provtest.NewMockLister(backend, "gpt-4o", "gpt-5-mini"), nil
	}

	v, cmd := press(t, v, alt("m"))
	require.True(t, v.showModelSelector)
	assert.True(t, v.modelsLoading)

	v = settle(t, v, cmd)
	assert.False(t, v.modelsLoading)
	require.Len(t, v.modelList, 2)
	assert.Equal(t, 1, v.selectedModelIdx, "current model is preselected")

	v, _ = press(t, v, keyUp)
	v, _ = press(t, v, keyEnter)

	assert.False(t, v.showModelSelector)
	assert.Equal(t, "gpt-4o", v.dataModel.Query.Model)

	cached, ok := v.dataModel.ModelCache[rag.BackendOpenAI]
	assert.True(t, ok)
	assert.Len(t, cached, 2)
}

func TestModelSelector_TypedName(t *testing.T) {
	v := newTestView(t, testutil.NewFakeExecutor(""), false)
	v.dataModel.Query.Backend = rag.BackendCompatibleLocal
	v.dataModel.NewLister = func(backend rag.Backend) (provider.ModelLister, error) {
		return provtest.NewMockLister(backend, "qwen2.5-7b-instruct"), nil
	}

	// Opened from the sidebar model field
	v, _ = press(t, v, keyTab)
	v.sidebar.selected = fieldModel
	v, cmd := press(t, v, keyEnter)
	require.True(t, v.showModelSelector)
	v = settle(t, v, cmd)

	v, _ = press(t, v, runes("internlm2-chat"))
	assert.Empty(t, v.filteredModelList)
	assert.Equal(t, "internlm2-chat", v.typedModelName())

	v, _ = press(t, v, keyEnter)
	assert.Equal(t, "internlm2-chat", v.dataModel.Query.Model)
}

func TestModelSelector_ListError(t *testing.T) {
	v := newTestView(t, testutil.NewFakeExecutor(""), false)
	v.dataModel.NewLister = func(backend rag.Backend) (provider.ModelLister, error) {
		return nil, errors.New("openai backend requires an API key")
	}

	v, cmd := press(t, v, alt("m"))
	v = settle(t, v, cmd)

	require.Error(t, v.modelsErr)
	assert.Contains(t, stripANSI(v.View()), "requires an API key")

	v, _ = press(t, v, keyEsc)
	assert.False(t, v.showModelSelector)
	assert.Equal(t, "gpt-5-mini", v.dataModel.Query.Model)
}

func TestMessageSearch_JumpAndFlash(t *testing.T) {
	v := newTestView(t, testutil.NewFakeExecutor(""), false)
	v = ask(t, v, "東京の人口は？")
	v = ask(t, v, "大阪の面積は？")

	v, _ = press(t, v, alt("f"))
	require.True(t, v.showMessageSearch)

	v, _ = press(t, v, runes("大阪"))
	require.NotEmpty(t, v.messageSearchResults)
	assert.Equal(t, 2, v.messageSearchResults[0].MessageIndex)

	v, cmd := press(t, v, keyEnter)
	require.NotNil(t, cmd)
	assert.False(t, v.showMessageSearch)
	assert.Equal(t, v.dataModel.Messages[2].ID, v.highlightedMessageID)
	assert.Contains(t, stripANSI(v.viewport.View()), ">>> ")

	for i := 0; i < 6; i++ {
		v = update(t, v, flashTickMsg{})
	}
	assert.Empty(t, v.highlightedMessageID)
	assert.Zero(t, v.highlightFlashCount)
}

func TestYank(t *testing.T) {
	var copied []string
	orig := copyToClipboard
	copyToClipboard = func(s string) error {
		copied = append(copied, s)
		return nil
	}
	t.Cleanup(func() { copyToClipboard = orig })

	v := newTestView(t, testutil.NewFakeExecutor(""), true)

	v, _ = press(t, v, alt("y"))
	assert.Empty(t, copied)
	assert.Equal(t, v.strings.NothingToYank, v.statusMsg)
	assert.True(t, v.statusError)

	v = ask(t, v, "q")

	v, _ = press(t, v, alt("y"))
	v, _ = press(t, v, alt("Y"))
	v, _ = press(t, v, alt("c"))

	require.Len(t, copied, 3)
	assert.Equal(t, "concise answer", copied[0])
	assert.Equal(t, "full evidence", copied[1])
	assert.Contains(t, copied[2], "user:\nq")
	assert.Contains(t, copied[2], "assistant:\nconcise answer")
	assert.Equal(t, v.strings.Copied, v.statusMsg)
}

func TestYank_ClipboardFailure(t *testing.T) {
	orig := copyToClipboard
	copyToClipboard = func(string) error { return errors.New("no clipboard utility") }
	t.Cleanup(func() { copyToClipboard = orig })

	v := newTestView(t, testutil.NewFakeExecutor(""), false)
	v = ask(t, v, "q")

	v, _ = press(t, v, alt("y"))
	assert.True(t, v.statusError)
	assert.Contains(t, v.statusMsg, "no clipboard utility")
}

func TestSaveSettings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.toml")
	cfg, err := config.LoadSettings(path)
	require.NoError(t, err)

	v := newTestViewWithConfig(t, cfg, testutil.NewFakeExecutor(""), false)
	v.dataModel.Query.K = 9
	v.dataModel.Query.Backend = rag.BackendCompatibleLocal

	v, cmd := press(t, v, alt("w"))
	v = settle(t, v, cmd)

	assert.False(t, v.statusError, v.statusMsg)
	assert.True(t, strings.HasPrefix(v.statusMsg, v.strings.Saved))

	reloaded, err := config.LoadSettings(path)
	require.NoError(t, err)
	assert.Equal(t, 9, reloaded.Query.K)
	assert.Equal(t, "compatible-local", reloaded.Query.LLMBackend)
}

func TestSaveSettings_NoBackingFile(t *testing.T) {
	v := newTestView(t, testutil.NewFakeExecutor(""), false)

	v, cmd := press(t, v, alt("w"))
	v = settle(t, v, cmd)

	assert.True(t, v.statusError)
	assert.True(t, strings.HasPrefix(v.statusMsg, v.strings.SaveFailed))
}

func TestCapabilityShownInSidebar(t *testing.T) {
	v := newTestView(t, testutil.NewFakeExecutor(""), true)
	assert.Contains(t, stripANSI(v.View()), v.strings.FormatPending)

	v = settle(t, v, v.dataModel.ProbeCapability())
	require.NotNil(t, v.formatSupported)
	assert.True(t, *v.formatSupported)
	assert.Contains(t, stripANSI(v.View()), v.strings.FormatYes)
}

func TestModals_HelpAndAbout(t *testing.T) {
	v := newTestView(t, testutil.NewFakeExecutor(""), false)

	v, _ = press(t, v, alt("h"))
	require.True(t, v.showHelp)
	view := stripANSI(v.View())
	assert.Contains(t, view, v.strings.HelpTitle)
	assert.Contains(t, view, "toggle latest evidence")

	v, _ = press(t, v, alt("A"))
	assert.False(t, v.showHelp)
	require.True(t, v.showAbout)
	assert.Contains(t, stripANSI(v.View()), "python3 -m scripts.ask")

	v, _ = press(t, v, keyEsc)
	assert.False(t, v.showAbout)
}

func TestQuit(t *testing.T) {
	v := newTestView(t, testutil.NewFakeExecutor(""), false)

	v, cmd := press(t, v, alt("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.True(t, v.dataModel.Quitting)
}

func TestEnglishLocale(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Language = "en"
	exec := testutil.NewFakeExecutor("")
	exec.ExecuteFunc = func(ctx context.Context, cmd rag.Command) (rag.Result, error) {
		return rag.Result{}, nil
	}
	v := newTestViewWithConfig(t, cfg, exec, false)

	v = ask(t, v, "q")
	last, _ := v.dataModel.LastAssistant()
	assert.Equal(t, "_(no result / failed)_", last.Content)
}
