package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"qsearch/internal/config"
	"qsearch/internal/eventbus"
	"qsearch/internal/results"
	"qsearch/internal/search"
	"qsearch/internal/ui/views"
)

const (
	inboxSize   = 256
	placeholder = "Start typing to search."
)

// fieldControl is the on-screen control bound to one form field
type fieldControl struct {
	name     string
	label    string
	kind     search.FieldKind
	input    textinput.Model // KindInput
	options  []string        // KindSelect
	selected int
}

func (f *fieldControl) value() string {
	if f.kind == search.KindInput {
		return f.input.Value()
	}
	return f.options[f.selected]
}

// Model represents the UI state
type Model struct {
	form   *search.Form
	panel  *results.Panel
	styles *views.Styles
	keys   keyMap
	log    zerolog.Logger

	fields []*fieldControl
	focus  int

	width    int
	height   int
	viewport viewport.Model
	spinner  spinner.Model
	help     help.Model

	// inbox carries bus events and timer callbacks into the update loop
	inbox  chan tea.Msg
	quit   chan struct{}
	detach func()
	pager  *Pager
}

// NewModel creates a new UI model. The panel is built here so its event
// subscriptions and scroll timer feed the model's update loop.
func NewModel(cfg *config.Config, form *search.Form, bus eventbus.EventBus, log zerolog.Logger) *Model {
	styles := views.NewStyles()

	m := &Model{
		form:     form,
		styles:   styles,
		keys:     newKeyMap(),
		log:      log.With().Str("component", "ui").Logger(),
		viewport: viewport.New(80, 20),
		spinner:  spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(styles.Loading)),
		help:     help.New(),
		inbox:    make(chan tea.Msg, inboxSize),
		quit:     make(chan struct{}),
		pager:    &Pager{},
	}

	card := views.NewHitCard(styles, cfg.Server)
	m.panel = results.NewPanel(bus, cfg.ResultType, styles, results.Options{
		Placeholder:     styles.Dim.Render(placeholder),
		Renderers:       results.DefaultRenderers(card),
		ScrollDebounce:  cfg.ScrollDebounce.Duration,
		OnScrollSettled: func() { m.post(scrollSettledMsg{}) },
		Log:             log,
	})
	m.detach = m.panel.Attach(func(e eventbus.DomainEvent) { m.post(EventMsg{Event: e}) })

	for _, f := range cfg.Fields {
		fc := &fieldControl{name: f.Name, label: f.Label}
		if fc.label == "" {
			fc.label = f.Name
		}
		if f.Kind == config.KindSelect {
			fc.kind = search.KindSelect
			fc.options = f.Options
		} else {
			fc.kind = search.KindInput
			ti := textinput.New()
			ti.Prompt = ""
			ti.Placeholder = "type at least " + fmt.Sprint(cfg.MinChars) + " characters"
			fc.input = ti
		}
		m.fields = append(m.fields, fc)
	}
	m.focusField(0)

	return m
}

// SetProgram sets the program reference for terminal management
func (m *Model) SetProgram(p *tea.Program) {
	m.pager.SetProgram(p)
}

// Close detaches the model from the bus and stops its timers
func (m *Model) Close() {
	select {
	case <-m.quit:
	default:
		close(m.quit)
	}
	if m.detach != nil {
		m.detach()
		m.detach = nil
	}
}

// Panel returns the result panel
func (m *Model) Panel() *results.Panel {
	return m.panel
}

// post hands msg to the update loop; it is called from bus and timer goroutines
func (m *Model) post(msg tea.Msg) {
	select {
	case m.inbox <- msg:
	case <-m.quit:
	}
}

// listen waits for the next message posted to the inbox
func (m *Model) listen() tea.Cmd {
	return func() tea.Msg {
		select {
		case msg := <-m.inbox:
			return msg
		case <-m.quit:
			return nil
		}
	}
}

// Init returns an initial command
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.listen(), textinput.Blink)
}

// Update handles messages
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.layout()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		if msg.Button == tea.MouseButtonWheelDown || msg.Button == tea.MouseButtonWheelUp {
			m.scrolled()
		}
		return m, cmd

	case EventMsg:
		cmds := []tea.Cmd{m.listen()}
		wasLoading := m.panel.Loading()
		m.panel.Apply(msg.Event)
		if ev, ok := msg.Event.(eventbus.ResultsEvent); ok && !ev.Result.IsEmpty() {
			m.viewport.GotoTop()
		}
		m.refresh()
		if !wasLoading && m.panel.Loading() {
			cmds = append(cmds, m.spinner.Tick)
		}
		return m, tea.Batch(cmds...)

	case scrollSettledMsg:
		m.panel.CheckScroll()
		return m, m.listen()

	case spinner.TickMsg:
		if !m.panel.Loading() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case pagerMsg:
		if msg.err != nil {
			// log only; do not surface in the status line
			m.log.Error().Err(msg.err).Msg("Pager failed")
		}
		return m, nil
	}

	// Cursor blink and other text input internals
	if fc := m.focused(); fc != nil && fc.kind == search.KindInput {
		var cmd tea.Cmd
		fc.input, cmd = fc.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.NextField):
		return m, m.focusField(m.focus + 1)

	case key.Matches(msg, m.keys.PrevField):
		return m, m.focusField(m.focus - 1)

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.layout()
		return m, nil

	case key.Matches(msg, m.keys.Pager):
		return m, m.pager.open(m.panel.Render(m.contentWidth()))

	case key.Matches(msg, m.keys.Up):
		m.viewport.LineUp(1)
		m.scrolled()
		return m, nil

	case key.Matches(msg, m.keys.Down):
		m.viewport.LineDown(1)
		m.scrolled()
		return m, nil

	case key.Matches(msg, m.keys.PageUp):
		m.viewport.HalfViewUp()
		m.scrolled()
		return m, nil

	case key.Matches(msg, m.keys.PageDown):
		m.viewport.HalfViewDown()
		m.scrolled()
		return m, nil
	}

	fc := m.focused()
	if fc == nil {
		return m, nil
	}

	if fc.kind == search.KindSelect {
		switch {
		case key.Matches(msg, m.keys.Prev):
			fc.selected = (fc.selected + len(fc.options) - 1) % len(fc.options)
		case key.Matches(msg, m.keys.Next):
			fc.selected = (fc.selected + 1) % len(fc.options)
		default:
			return m, nil
		}
		m.changed(fc)
		return m, nil
	}

	before := fc.input.Value()
	var cmd tea.Cmd
	fc.input, cmd = fc.input.Update(msg)
	if fc.input.Value() != before {
		m.changed(fc)
	}
	return m, cmd
}

// changed forwards the value of a control to the form
func (m *Model) changed(fc *fieldControl) {
	if err := m.form.Change(fc.name, fc.value()); err != nil {
		m.log.Error().Err(err).Str("field", fc.name).Msg("Field change rejected")
	}
}

// scrolled reports the bottom line of the visible results to the panel
func (m *Model) scrolled() {
	m.panel.Scrolled(m.viewport.YOffset + m.viewport.Height)
}

func (m *Model) focused() *fieldControl {
	if len(m.fields) == 0 {
		return nil
	}
	return m.fields[m.focus]
}

func (m *Model) focusField(i int) tea.Cmd {
	if len(m.fields) == 0 {
		return nil
	}
	i = (i%len(m.fields) + len(m.fields)) % len(m.fields)
	if fc := m.focused(); fc != nil && fc.kind == search.KindInput {
		fc.input.Blur()
	}
	m.focus = i
	if fc := m.fields[i]; fc.kind == search.KindInput {
		return fc.input.Focus()
	}
	return nil
}

func (m *Model) contentWidth() int {
	w := m.width - m.styles.Main.GetHorizontalFrameSize()
	if w < 20 {
		w = 20
	}
	return w
}

// layout sizes the viewport to what the header and footer leave free
func (m *Model) layout() {
	m.viewport.Width = m.contentWidth()
	for _, fc := range m.fields {
		if fc.kind == search.KindInput {
			fc.input.Width = m.viewport.Width - lipgloss.Width(fc.label) - 4
		}
	}
	chrome := lipgloss.Height(m.header()) + lipgloss.Height(m.footer())
	h := m.height - chrome
	if h < 3 {
		h = 3
	}
	m.viewport.Height = h
	m.refresh()
}

// refresh re-renders the panel into the viewport
func (m *Model) refresh() {
	m.viewport.SetContent(m.panel.Render(m.viewport.Width))
}

func (m *Model) header() string {
	var b strings.Builder
	b.WriteString(m.styles.Title.Render("qsearch"))
	b.WriteString("\n")
	for i, fc := range m.fields {
		label, sel := m.styles.Label, m.styles.Select
		if i == m.focus {
			label, sel = m.styles.FocusLabel, m.styles.FocusSelect
		}
		b.WriteString(label.Render(fc.label + ": "))
		if fc.kind == search.KindInput {
			b.WriteString(fc.input.View())
		} else {
			v := fc.options[fc.selected]
			if v == "" {
				v = "any"
			}
			b.WriteString(sel.Render("‹ " + v + " ›"))
		}
		b.WriteString("\n")
	}
	b.WriteString(m.status())
	return b.String()
}

func (m *Model) status() string {
	if m.panel.Loading() {
		return m.spinner.View() + m.styles.Status.Render(" searching")
	}
	if r := m.panel.Result(); r != nil && len(r.Hits) > 0 {
		s := fmt.Sprintf("%d of %d hits", len(r.Hits), r.Total)
		if r.HasMoreHits {
			s += ", scroll for more"
		}
		return m.styles.Status.Render(s)
	}
	return ""
}

func (m *Model) footer() string {
	return m.styles.Help.Render(m.help.View(m.keys))
}

// View renders the screen
func (m *Model) View() string {
	return m.styles.Main.Render(lipgloss.JoinVertical(lipgloss.Left,
		m.header(),
		m.viewport.View(),
		m.footer(),
	))
}
