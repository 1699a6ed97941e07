// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/jeranaias/orb-tui/internal/dispatch"
	"github.com/jeranaias/orb-tui/internal/ui/scene"
	"github.com/jeranaias/orb-tui/internal/ui/styles"
	"github.com/jeranaias/orb-tui/internal/webhook"
)

const (
	// Title is shown on the landing screen.
	Title = "Ask Me Anything"

	// PlaceholderIdle and PlaceholderPending are the input placeholders.
	PlaceholderIdle    = "Type here ..."
	PlaceholderPending = "Sending..."

	// ThinkingText is shown next to the spinner while a request is pending.
	ThinkingText = "Thinking..."

	// statusTTL is how long a status line stays visible.
	statusTTL = 4 * time.Second

	// Fixed layout heights.
	inputHeight  = 3 // bordered input box
	statusHeight = 1 // spinner, error or status line
	footerHeight = 1 // key help
	titleHeight  = 2 // title and hint on the landing screen

	// maxSceneRows caps the landing scene.
	maxSceneRows = 14

	// CharLimit caps a single query.
	CharLimit = 4096
)

// Options configures a chat Model.
type Options struct {
	// Dispatcher sends queries and owns the conversation store.
	Dispatcher *dispatch.Dispatcher

	// Client is reconfigured when the config file changes. Optional.
	Client *webhook.Client

	// Theme defaults to an auto-detected theme.
	Theme *styles.Theme

	// Scope is the session scope, shown in the header.
	Scope string

	// FPS is the animation frame rate.
	FPS int

	// ReduceMotion renders a still backdrop.
	ReduceMotion bool

	// Context is the parent of every request.
	Context context.Context

	// Seed seeds the backdrop's particles.
	Seed uint64

	Logger *zap.Logger
}

// Model is the Bubble Tea model for the chat view.
type Model struct {
	dispatcher *dispatch.Dispatcher
	client     *webhook.Client
	ctx        context.Context
	log        *zap.Logger

	// Styling
	theme    *styles.Theme
	markdown *markdownRenderer
	scene    *scene.Scene

	// Dimensions
	width  int
	height int
	ready  bool

	// UI Components
	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model
	keyMap   KeyMap

	// Request state mirrored from the dispatcher
	pending      bool
	pendingQuery string
	pendingSince time.Time
	err          error

	// Status line
	status    string
	statusSeq int

	scope        string
	reduceMotion bool
	ticking      bool
}

// New creates a chat model.
func New(opts Options) Model {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Theme == nil {
		opts.Theme = styles.NewTheme(styles.ModeAuto)
	}
	if opts.Context == nil {
		opts.Context = context.Background()
	}
	if opts.FPS <= 0 {
		opts.FPS = 20
	}
	if opts.Seed == 0 {
		opts.Seed = uint64(time.Now().UnixNano())
	}

	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = PlaceholderIdle
	ti.CharLimit = CharLimit
	ti.Focus()

	m := Model{
		dispatcher:   opts.Dispatcher,
		client:       opts.Client,
		ctx:          opts.Context,
		log:          opts.Logger.Named("chat"),
		theme:        opts.Theme,
		markdown:     newMarkdownRenderer(opts.Theme.GlamourStyle(), opts.Logger),
		scene:        scene.New(80, maxSceneRows, opts.FPS, opts.Seed),
		viewport:     viewport.New(80, 10),
		input:        ti,
		spinner:      spinner.New(),
		keyMap:       DefaultKeyMap(),
		scope:        opts.Scope,
		reduceMotion: opts.ReduceMotion,
		ticking:      !opts.ReduceMotion,
	}
	m.viewport.KeyMap = viewport.KeyMap{}
	m.applyTheme(opts.Theme)
	m.syncCompact()
	m.scene.Settle()
	return m
}

// =============================================================================
// BUBBLE TEA INTERFACE
// =============================================================================

// Init starts the cursor blink and the animation.
func (m Model) Init() tea.Cmd {
	if m.reduceMotion {
		return textinput.Blink
	}
	return tea.Batch(textinput.Blink, m.nextFrame())
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case frameMsg:
		return m.handleFrame()

	case spinner.TickMsg:
		if !m.pending {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case DispatchDoneMsg:
		return m.handleDispatchDone(msg)

	case ConfigReloadedMsg:
		return m.handleConfigReloaded(msg)

	case statusClearMsg:
		if msg.seq == m.statusSeq {
			m.status = ""
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// =============================================================================
// LAYOUT
// =============================================================================

func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height
	m.ready = true
	m.theme.SetSize(m.width, m.height)

	// Prompt "> " plus the box border and padding.
	m.input.Width = max(m.width-8, 10)

	m.scene.Resize(max(m.width, 1), m.sceneRows())
	m.layout()
	m.updateViewport()
	return m, nil
}

// sceneRows is the landing scene height for the current terminal.
func (m Model) sceneRows() int {
	available := m.height - inputHeight - statusHeight - footerHeight - titleHeight
	return max(min(maxSceneRows, available), 3)
}

// layout sizes the viewport to whatever the scene leaves free.
func (m *Model) layout() {
	m.viewport.Width = max(m.width, 1)
	m.viewport.Height = max(m.height-m.scene.Rows()-inputHeight-statusHeight-footerHeight, 1)
}

// hasConversation reports whether the landing screen has been left.
func (m Model) hasConversation() bool {
	return m.pending || (m.dispatcher != nil && m.dispatcher.Store().Len() > 0)
}

// syncCompact shrinks the sphere once a conversation exists.
func (m *Model) syncCompact() {
	m.scene.SetCompact(m.hasConversation())
	if m.reduceMotion {
		m.scene.Settle()
		m.layout()
	}
}

// =============================================================================
// ANIMATION
// =============================================================================

// startTicking restarts the frame loop after motion was re-enabled.
func (m *Model) startTicking() tea.Cmd {
	if m.reduceMotion || m.ticking {
		return nil
	}
	m.ticking = true
	return m.nextFrame()
}

func (m Model) nextFrame() tea.Cmd {
	return tea.Tick(m.scene.Interval(), func(time.Time) tea.Msg {
		return frameMsg{}
	})
}

func (m Model) handleFrame() (tea.Model, tea.Cmd) {
	if m.reduceMotion {
		m.ticking = false
		return m, nil
	}
	rows := m.scene.Rows()
	m.scene.Step()
	if m.scene.Rows() != rows {
		m.layout()
	}
	return m, m.nextFrame()
}

// =============================================================================
// KEYS
// =============================================================================

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keyMap.Quit):
		if m.pending {
			m.dispatcher.Cancel()
		}
		return m, tea.Quit

	case key.Matches(msg, m.keyMap.Cancel):
		if m.pending {
			m.dispatcher.Cancel()
			return m, nil
		}
		m.err = nil
		return m, nil

	case key.Matches(msg, m.keyMap.Submit):
		return m.submit()

	case key.Matches(msg, m.keyMap.PageUp):
		m.viewport.ViewUp()
		return m, nil

	case key.Matches(msg, m.keyMap.PageDown):
		m.viewport.ViewDown()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// =============================================================================
// DISPATCH
// =============================================================================

// submit hands the input to the dispatcher. Blank input and input typed
// while a request is pending are ignored.
func (m Model) submit() (tea.Model, tea.Cmd) {
	if m.dispatcher == nil {
		return m, nil
	}
	req, ok := m.dispatcher.Accept(m.input.Value())
	if !ok {
		return m, nil
	}

	m.input.Reset()
	m.input.Placeholder = PlaceholderPending
	m.pending = true
	m.pendingQuery = req.Query
	m.pendingSince = time.Now()
	m.err = nil
	m.syncCompact()
	m.updateViewport()
	m.viewport.GotoBottom()

	ctx := m.ctx
	run := func() tea.Msg {
		return DispatchDoneMsg{Result: req.Run(ctx)}
	}
	return m, tea.Batch(run, m.spinner.Tick)
}

func (m Model) handleDispatchDone(msg DispatchDoneMsg) (tea.Model, tea.Cmd) {
	status := m.dispatcher.Status()
	m.pending = status.Pending()
	m.pendingQuery = ""
	m.input.Placeholder = PlaceholderIdle
	m.err = status.Err

	m.log.Debug("request finished",
		zap.Stringer("outcome", msg.Result.Outcome),
		zap.Duration("elapsed", time.Since(m.pendingSince)))

	m.syncCompact()
	m.updateViewport()
	if msg.Result.Outcome == dispatch.OutcomeRecorded {
		m.viewport.GotoBottom()
	}
	return m, nil
}

// =============================================================================
// CONFIG RELOAD
// =============================================================================

// applyTheme restyles the input and spinner, which copy their styles.
func (m *Model) applyTheme(t *styles.Theme) {
	m.theme = t
	m.input.PromptStyle = t.InputPrompt
	m.input.TextStyle = t.InputText
	m.input.PlaceholderStyle = t.InputPlaceholder
	m.spinner.Spinner = t.SpinnerFor().Spinner()
	m.spinner.Style = t.Spinner
}

func (m Model) handleConfigReloaded(msg ConfigReloadedMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		m.log.Warn("config reload failed", zap.Error(msg.Err))
		return m.setStatus("Config reload failed: " + msg.Err.Error())
	}
	cfg := msg.Config
	if cfg == nil {
		return m, nil
	}

	if m.client != nil {
		m.client.Reconfigure(webhook.ConfigFrom(cfg.Webhook))
	}
	if m.dispatcher != nil {
		m.dispatcher.SetReportEmpty(cfg.UI.ReportEmptyAnswers)
	}

	m.applyTheme(styles.NewTheme(cfg.UI.Theme))
	m.theme.SetSize(m.width, m.height)
	m.markdown.setStyle(m.theme.GlamourStyle())

	var cmds []tea.Cmd
	m.reduceMotion = cfg.UI.ReduceMotion
	if m.reduceMotion {
		m.scene.Settle()
		m.layout()
	} else {
		cmds = append(cmds, m.startTicking())
	}
	m.updateViewport()

	text := "Configuration reloaded"
	if err := cfg.RequireWebhook(); err != nil {
		text = "Configuration reloaded: " + err.Error()
	}
	m.log.Info("config reloaded", zap.String("webhook", cfg.Webhook.URL))

	next, cmd := m.setStatus(text)
	cmds = append(cmds, cmd)
	return next, tea.Batch(cmds...)
}

func (m Model) setStatus(text string) (Model, tea.Cmd) {
	m.status = text
	m.statusSeq++
	seq := m.statusSeq
	return m, tea.Tick(statusTTL, func(time.Time) tea.Msg {
		return statusClearMsg{seq: seq}
	})
}

// =============================================================================
// ACCESSORS
// =============================================================================

// Pending reports whether a request is in flight.
func (m Model) Pending() bool {
	return m.pending
}

// Err returns the error shown near the input, if any.
func (m Model) Err() error {
	return m.err
}

// Status returns the transient status line.
func (m Model) Status() string {
	return m.status
}

// Input returns the current input text.
func (m Model) Input() string {
	return m.input.Value()
}
