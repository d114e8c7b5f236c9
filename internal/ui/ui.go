package ui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/desertthunder/eqviz/internal/dashboard"
	"github.com/desertthunder/eqviz/internal/formatter"
	"github.com/desertthunder/eqviz/internal/models"
	"github.com/desertthunder/eqviz/internal/shared"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	LoginView ViewState = iota
	RegisterView
	DashboardView
	UploadView
)

const (
	listWidth = 36
	barWidth  = 24
)

// Model represents the TUI application state.
type Model struct {
	ctx      context.Context
	dash     *dashboard.Dashboard
	view     ViewState
	width    int
	height   int
	username textinput.Model
	password textinput.Model
	path     textinput.Model
	uploads  list.Model
	stats    table.Model
	spinner  spinner.Model
	busy     bool
	notice   string
	err      error
	help     help.Model
	keys     keyMap
}

// NewModel creates a new TUI model over dash. It opens on the dashboard when a session was restored.
func NewModel(ctx context.Context, dash *dashboard.Dashboard) *Model {
	username := textinput.New()
	username.Placeholder = "username"
	username.Prompt = "Username: "
	username.CharLimit = 150

	password := textinput.New()
	password.Placeholder = "password"
	password.Prompt = "Password: "
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'

	path := textinput.New()
	path.Placeholder = "./equipment.csv"
	path.Prompt = "CSV file: "

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.warn

	uploads := list.New(nil, list.NewDefaultDelegate(), listWidth, 20)
	uploads.Title = "Recent Uploads"
	uploads.SetShowHelp(false)
	uploads.SetFilteringEnabled(false)
	uploads.SetShowStatusBar(false)

	m := &Model{
		ctx:      ctx,
		dash:     dash,
		username: username,
		password: password,
		path:     path,
		uploads:  uploads,
		stats:    table.New(table.WithColumns(statsColumns()), table.WithHeight(6)),
		spinner:  sp,
		help:     help.New(),
		keys:     newKeyMap(),
	}

	if dash.Authenticated() {
		m.showDashboard()
	} else {
		m.showForm(LoginView)
	}
	return m
}

// CurrentView returns the current view state.
func (m *Model) CurrentView() ViewState { return m.view }

// Init starts the cursor blink of the focused input.
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.uploads.SetSize(listWidth, max(msg.Height-6, 8))
		return m, nil

	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case Msg:
		return m.handleMsg(msg)

	case tea.KeyMsg:
		if m.busy {
			if key.Matches(msg, m.keys.abort) {
				return m, tea.Quit
			}
			return m, nil
		}
		switch m.view {
		case LoginView, RegisterView:
			return m.handleFormKeys(msg)
		case DashboardView:
			return m.handleDashboardKeys(msg)
		case UploadView:
			return m.handleUploadKeys(msg)
		}
	}

	return m, nil
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	m.busy = false

	switch msg.kind {
	case MsgAuthDone:
		data := msg.data.(authDone)
		if data.err != nil {
			m.err = data.err
			m.password.SetValue("")
			return m, nil
		}
		m.err = nil
		m.password.SetValue("")
		if data.view == RegisterView {
			m.notice = "Account created"
		} else {
			m.notice = "Signed in"
			if data.result != nil && data.result.Skipped > 0 {
				m.notice = fmt.Sprintf("Signed in (%d malformed uploads skipped)", data.result.Skipped)
			}
		}
		m.showDashboard()
		return m, nil

	case MsgUploadDone:
		data := msg.data.(uploadDone)
		if data.err != nil {
			if !m.dash.Authenticated() {
				m.showForm(LoginView)
			}
			m.err = data.err
			return m, nil
		}
		m.err = nil
		m.path.SetValue("")
		m.notice = fmt.Sprintf("Uploaded %d records", data.summary.TotalRecords)
		m.showDashboard()
		return m, nil
	}
	return m, nil
}

func (m *Model) handleFormKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		return m, tea.Quit
	case "tab":
		if m.view == LoginView {
			m.showForm(RegisterView)
		} else {
			m.showForm(LoginView)
		}
		return m, textinput.Blink
	case "up", "down":
		m.toggleFocus()
		return m, textinput.Blink
	case "enter":
		if m.username.Focused() && m.password.Value() == "" {
			m.toggleFocus()
			return m, textinput.Blink
		}
		return m.startAuth()
	}

	var cmd tea.Cmd
	if m.username.Focused() {
		m.username, cmd = m.username.Update(msg)
	} else {
		m.password, cmd = m.password.Update(msg)
	}
	return m, cmd
}

func (m *Model) handleDashboardKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.upload):
		m.view = UploadView
		m.err = nil
		m.notice = ""
		return m, m.path.Focus()
	case key.Matches(msg, m.keys.logout):
		m.dash.Logout()
		m.showForm(LoginView)
		m.notice = "Signed out"
		return m, textinput.Blink
	case key.Matches(msg, m.keys.enter):
		if item, ok := m.uploads.SelectedItem().(uploadItem); ok {
			m.dash.Select(item.upload.ID)
			m.refresh()
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.uploads, cmd = m.uploads.Update(msg)
	return m, cmd
}

func (m *Model) handleUploadKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.err = nil
		m.showDashboard()
		return m, nil
	case "enter":
		return m.startUpload()
	}

	var cmd tea.Cmd
	m.path, cmd = m.path.Update(msg)
	return m, cmd
}

func (m *Model) startAuth() (tea.Model, tea.Cmd) {
	m.busy = true
	m.err = nil
	m.notice = ""

	view := m.view
	username, password := m.username.Value(), m.password.Value()
	auth := func() tea.Msg {
		if view == RegisterView {
			err := m.dash.Register(m.ctx, username, password)
			return authDoneMsg(view, nil, err)
		}
		result, err := m.dash.Login(m.ctx, username, password)
		return authDoneMsg(view, result, err)
	}
	return m, tea.Batch(m.spinner.Tick, auth)
}

func (m *Model) startUpload() (tea.Model, tea.Cmd) {
	m.busy = true
	m.err = nil
	m.notice = ""

	path := strings.TrimSpace(m.path.Value())
	upload := func() tea.Msg {
		summary, err := m.dash.SubmitFile(m.ctx, path)
		return uploadDoneMsg(summary, err)
	}
	return m, tea.Batch(m.spinner.Tick, upload)
}

func (m *Model) showForm(view ViewState) {
	m.view = view
	m.err = nil
	m.password.SetValue("")
	m.password.Blur()
	m.path.Blur()
	m.username.Focus()
}

func (m *Model) showDashboard() {
	m.view = DashboardView
	m.username.Blur()
	m.password.Blur()
	m.path.Blur()
	m.refresh()
}

func (m *Model) toggleFocus() {
	if m.username.Focused() {
		m.username.Blur()
		m.password.Focus()
		return
	}
	m.password.Blur()
	m.username.Focus()
}

// refresh re-reads the uploads and selection from the dashboard.
func (m *Model) refresh() {
	var selectedID string
	selected := m.dash.Selected()
	if selected != nil {
		selectedID = selected.ID
	}

	uploads := m.dash.Uploads()
	m.uploads.SetItems(uploadItems(uploads, selectedID))
	for i, u := range uploads {
		if u.ID == selectedID {
			m.uploads.Select(i)
		}
	}

	if selected != nil {
		m.stats.SetRows(statsRows(*selected))
	} else {
		m.stats.SetRows(nil)
	}
}

func statsColumns() []table.Column {
	cols := []table.Column{{Title: "Type", Width: 14}, {Title: "Count", Width: 7}}
	for _, metric := range models.Metrics {
		cols = append(cols, table.Column{Title: metric.Label(), Width: 16})
	}
	return cols
}

func statsRows(summary models.UploadSummary) []table.Row {
	rows := []table.Row{}
	for _, r := range formatter.TypeRows(summary) {
		row := table.Row{r.Type, strconv.Itoa(r.Count)}
		for _, metric := range models.Metrics {
			row = append(row, formatter.FormatNumber(metric.Of(r.Stats)))
		}
		rows = append(rows, row)
	}
	return rows
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	var body string
	switch m.view {
	case LoginView, RegisterView:
		body = m.renderForm()
	case DashboardView:
		body = m.renderDashboard()
	case UploadView:
		body = m.renderUpload()
	}

	return fmt.Sprintf("%s%s", body, m.renderStatus())
}

func (m *Model) renderStatus() string {
	switch {
	case m.busy:
		return fmt.Sprintf("\n\n%s working...", m.spinner.View())
	case m.err != nil:
		return "\n\n" + styles.err.Render(shared.UserMessage(m.err))
	case m.notice != "":
		return "\n\n" + styles.ok.Render(m.notice)
	}
	return ""
}

func (m *Model) renderForm() string {
	heading := "Log In"
	alt := key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "register instead"))
	if m.view == RegisterView {
		heading = "Create Account"
		alt = key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "log in instead"))
	}

	submit := key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "submit"))
	helpView := m.help.ShortHelpView([]key.Binding{submit, alt, m.keys.abort})

	return fmt.Sprintf("%s\n%s\n%s\n\n%s",
		styles.title.Render("eqviz · "+heading),
		m.username.View(),
		m.password.View(),
		helpView,
	)
}

func (m *Model) renderDashboard() string {
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.up, m.keys.down, m.keys.enter, m.keys.upload, m.keys.logout, m.keys.quit})

	if len(m.uploads.Items()) == 0 {
		empty := styles.help.Render("No uploads yet. Press u to upload a CSV file.")
		return fmt.Sprintf("%s\n%s\n\n%s", styles.title.Render("eqviz"), empty, helpView)
	}

	left := m.uploads.View()
	right := m.renderSummary()
	return fmt.Sprintf("%s\n\n%s", lipgloss.JoinHorizontal(lipgloss.Top, left, "  ", right), helpView)
}

func (m *Model) renderSummary() string {
	selected := m.dash.Selected()
	if selected == nil {
		return styles.panel.Render(styles.help.Render("Select an upload and press enter"))
	}

	var b strings.Builder
	b.WriteString(styles.title.Render(selected.FileName))
	b.WriteString("\n")
	if ts := shared.FormatTimestamp(selected.UploadedAt); ts != "" {
		b.WriteString(styles.label.Render("Uploaded ") + ts + "\n")
	}
	b.WriteString(styles.label.Render("Total Records ") + styles.value.Render(strconv.Itoa(selected.TotalRecords)) + "\n")
	for _, metric := range models.Metrics {
		b.WriteString(styles.label.Render(metric.Label()+" ") + styles.value.Render(formatter.FormatNumber(metric.Overall(*selected))) + "\n")
	}

	b.WriteString("\n" + styles.label.Render(formatter.ChartDistribution.Title()) + "\n")
	for _, row := range formatter.TypeRows(*selected) {
		fmt.Fprintf(&b, "%-14s %s %5d (%s%%)\n", row.Type, Bar(row.Share, barWidth), row.Count, formatter.FormatNumber(row.Share))
	}

	b.WriteString("\n" + m.stats.View())
	return styles.panel.Render(b.String())
}

func (m *Model) renderUpload() string {
	submit := key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "upload"))
	helpView := m.help.ShortHelpView([]key.Binding{submit, m.keys.back})

	return fmt.Sprintf("%s\n%s\n\n%s",
		styles.title.Render("Upload CSV"),
		m.path.View(),
		helpView,
	)
}
