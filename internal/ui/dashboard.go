package ui

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/codegen-studio/engine/internal/client"
	"github.com/codegen-studio/engine/internal/models"
	"github.com/codegen-studio/engine/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	DefaultProgressInterval = time.Second
	DefaultFilesInterval    = 2 * time.Second

	leftWidth = 44
	treeWidth = 36
)

// ExamplePrompts seed the prompt box on request.
var ExamplePrompts = []string{
	"Create a simple calculator with basic arithmetic operations",
	"Build a todo application with add, edit, and delete functionality",
	"Make a weather dashboard with current conditions and forecast",
	"Design a contact book with search and filtering features",
}

type focusArea int

const (
	focusPrompt focusArea = iota
	focusFiles
)

type projectsMsg struct {
	projects []models.Project
	state    client.State
}

type progressMsg struct {
	projectID uuid.UUID
	records   []models.GenerationProgress
	state     client.State
}

type filesMsg struct {
	projectID uuid.UUID
	files     []models.GeneratedFile
	state     client.State
}

type noticeMsg client.Notice

type submittedMsg struct {
	project *models.Project
	err     error
}

type downloadedMsg struct {
	path string
	err  error
}

// Options configures the dashboard.
type Options struct {
	API              *client.API
	DownloadDir      string
	ProgressInterval time.Duration
	FilesInterval    time.Duration
	// ProjectID opens an existing project instead of waiting for a prompt.
	ProjectID *uuid.UUID
}

// Model is the bubbletea model of the studio dashboard.
type Model struct {
	ctx     context.Context
	cancel  context.CancelFunc
	session *client.Session
	updates chan tea.Msg

	progressInterval time.Duration
	filesInterval    time.Duration
	watchCancel      context.CancelFunc

	projects   []models.Project
	progress   []models.GenerationProgress
	files      []models.GeneratedFile
	filesState client.State
	cursor     int
	rendered   bool
	submitting bool
	notice     *client.Notice

	focus   focusArea
	prompt  textarea.Model
	bar     progress.Model
	preview viewport.Model
	help    help.Model
	keys    keyMap

	width, height int
}

var _ tea.Model = (*Model)(nil)
var _ client.Notifier = (*Model)(nil)

// New builds the dashboard. Watches stop when ctx ends or the user quits.
func New(ctx context.Context, opts Options) *Model {
	ctx, cancel := context.WithCancel(ctx)

	ta := textarea.New()
	ta.Placeholder = "Describe the application you want to create..."
	ta.ShowLineNumbers = false
	ta.SetWidth(leftWidth - 4)
	ta.SetHeight(5)
	ta.Focus()

	m := &Model{
		ctx:              ctx,
		cancel:           cancel,
		updates:          make(chan tea.Msg),
		progressInterval: opts.ProgressInterval,
		filesInterval:    opts.FilesInterval,
		prompt:           ta,
		bar:              progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
		preview:          viewport.New(40, 20),
		help:             help.New(),
		keys:             defaultKeyMap(),
		width:            120,
		height:           36,
	}
	if m.progressInterval <= 0 {
		m.progressInterval = DefaultProgressInterval
	}
	if m.filesInterval <= 0 {
		m.filesInterval = DefaultFilesInterval
	}
	m.session = client.NewSession(opts.API, m, opts.DownloadDir)
	if opts.ProjectID != nil {
		m.session.SetActiveProject(*opts.ProjectID)
	}
	m.refreshPreview()
	return m
}

// Session exposes the underlying session.
func (m *Model) Session() *client.Session { return m.session }

// Notify queues a notice for display.
func (m *Model) Notify(n client.Notice) {
	select {
	case m.updates <- noticeMsg(n):
	case <-m.ctx.Done():
	}
}

func (m *Model) Init() tea.Cmd {
	m.watch(m.ctx, client.Query{Key: client.ProjectsKey(), Enabled: true}, func(e client.Entry) tea.Msg {
		ps := decodeEntry[models.Project](e)
		return projectsMsg{projects: ps, state: e.State}
	})
	if id, ok := m.session.ActiveProject(); ok {
		m.watchProject(id)
	}
	return tea.Batch(textarea.Blink, m.listen())
}

// listen waits for the next message produced by a watch or a notice.
func (m *Model) listen() tea.Cmd {
	return func() tea.Msg {
		select {
		case msg := <-m.updates:
			return msg
		case <-m.ctx.Done():
			return nil
		}
	}
}

func (m *Model) watch(ctx context.Context, q client.Query, wrap func(client.Entry) tea.Msg) {
	go m.session.API().Cache().Watch(ctx, q, func(e client.Entry, err error) {
		if err != nil {
			logger.L().Warn("poll failed", zap.String("key", q.Key.Path()), zap.Error(err))
			return
		}
		select {
		case m.updates <- wrap(e):
		case <-ctx.Done():
		}
	})
}

// decodeEntry reads a list from e; a body of the wrong shape reads as empty.
func decodeEntry[T any](e client.Entry) []T {
	var out []T
	if err := e.Decode(&out); err != nil {
		logger.L().Debug("decode entry failed", zap.String("state", e.State.String()), zap.Error(err))
		return nil
	}
	return out
}

// watchProject replaces the progress and files watches with ones for id.
func (m *Model) watchProject(id uuid.UUID) {
	if m.watchCancel != nil {
		m.watchCancel()
	}
	ctx, cancel := context.WithCancel(m.ctx)
	m.watchCancel = cancel
	m.progress, m.files, m.cursor = nil, nil, 0

	m.watch(ctx, client.Query{Key: client.ProgressKey(id), Interval: m.progressInterval, Enabled: true}, func(e client.Entry) tea.Msg {
		recs := decodeEntry[models.GenerationProgress](e)
		return progressMsg{projectID: id, records: recs, state: e.State}
	})
	m.watch(ctx, client.Query{Key: client.FilesKey(id), Interval: m.filesInterval, Enabled: true}, func(e client.Entry) tea.Msg {
		files := decodeEntry[models.GeneratedFile](e)
		return filesMsg{projectID: id, files: files, state: e.State}
	})
}

func (m *Model) isActive(id uuid.UUID) bool {
	active, ok := m.session.ActiveProject()
	return ok && active == id
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.resize()
		return m, nil

	case projectsMsg:
		m.projects = msg.projects
		return m, m.listen()

	case progressMsg:
		if m.isActive(msg.projectID) {
			m.progress = msg.records
		}
		return m, m.listen()

	case filesMsg:
		if m.isActive(msg.projectID) {
			m.setFiles(msg.files, msg.state)
		}
		return m, m.listen()

	case noticeMsg:
		n := client.Notice(msg)
		m.notice = &n
		return m, m.listen()

	case submittedMsg:
		m.submitting = false
		if msg.err == nil && msg.project != nil {
			m.prompt.Reset()
			m.watchProject(msg.project.ID)
			m.refreshPreview()
		}
		return m, nil

	case downloadedMsg:
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.preview, cmd = m.preview.Update(msg)
	return m, cmd
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.Close()
		return m, tea.Quit
	case key.Matches(msg, m.keys.SwitchFocus):
		if m.focus == focusPrompt {
			m.focus = focusFiles
			m.prompt.Blur()
		} else {
			m.focus = focusPrompt
			return m, m.prompt.Focus()
		}
		return m, nil
	case key.Matches(msg, m.keys.Submit):
		return m, m.submit()
	case key.Matches(msg, m.keys.Example):
		m.prompt.SetValue(ExamplePrompts[rand.Intn(len(ExamplePrompts))])
		return m, nil
	}

	if m.focus == focusPrompt {
		var cmd tea.Cmd
		m.prompt, cmd = m.prompt.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.files)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Open):
		if m.cursor < len(m.files) {
			f := m.files[m.cursor]
			m.session.SelectFile(&f)
			m.preview.GotoTop()
			m.refreshPreview()
		}
	case key.Matches(msg, m.keys.ToggleMarkdown):
		m.rendered = !m.rendered
		m.refreshPreview()
	case key.Matches(msg, m.keys.Download):
		if m.cursor < len(m.files) {
			return m, m.downloadFile(m.files[m.cursor])
		}
	case key.Matches(msg, m.keys.DownloadProject):
		return m, m.downloadProject()
	case key.Matches(msg, m.keys.PrevProject):
		m.switchProject(-1)
	case key.Matches(msg, m.keys.NextProject):
		m.switchProject(1)
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	default:
		var cmd tea.Cmd
		m.preview, cmd = m.preview.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) submit() tea.Cmd {
	if m.submitting {
		return nil
	}
	prompt := m.prompt.Value()
	if strings.TrimSpace(prompt) != "" {
		m.submitting = true
	}
	ctx, session := m.ctx, m.session
	return func() tea.Msg {
		p, err := session.Submit(ctx, prompt)
		if errors.Is(err, client.ErrEmptyPrompt) {
			return nil
		}
		return submittedMsg{project: p, err: err}
	}
}

func (m *Model) downloadFile(f models.GeneratedFile) tea.Cmd {
	ctx, session := m.ctx, m.session
	return func() tea.Msg {
		path, err := session.DownloadFile(ctx, f)
		return downloadedMsg{path: path, err: err}
	}
}

func (m *Model) downloadProject() tea.Cmd {
	ctx, session := m.ctx, m.session
	return func() tea.Msg {
		path, err := session.DownloadProject(ctx)
		return downloadedMsg{path: path, err: err}
	}
}

// switchProject moves the active project along the project list.
func (m *Model) switchProject(step int) {
	if len(m.projects) == 0 {
		return
	}
	idx := -1
	if id, ok := m.session.ActiveProject(); ok {
		for i, p := range m.projects {
			if p.ID == id {
				idx = i
				break
			}
		}
	}
	next := (idx + step + len(m.projects)) % len(m.projects)
	if idx < 0 {
		next = 0
	}
	m.session.SetActiveProject(m.projects[next].ID)
	m.watchProject(m.projects[next].ID)
	m.refreshPreview()
}

func (m *Model) setFiles(files []models.GeneratedFile, state client.State) {
	m.files, m.filesState = files, state
	if m.cursor >= len(files) {
		m.cursor = max(0, len(files)-1)
	}
	sel := m.session.SelectedFile()
	if sel == nil {
		return
	}
	for i := range files {
		if files[i].ID == sel.ID && files[i].Content != sel.Content {
			f := files[i]
			m.session.SelectFile(&f)
			m.refreshPreview()
			return
		}
	}
}

func (m *Model) previewWidth() int {
	return max(20, m.width-leftWidth-treeWidth-6)
}

func (m *Model) resize() {
	m.preview.Width = m.previewWidth()
	m.preview.Height = max(5, m.height-8)
	m.refreshPreview()
}

func (m *Model) refreshPreview() {
	m.preview.SetContent(PreviewBody(m.session.SelectedFile(), m.rendered, m.preview.Width))
}

// Close stops every watch.
func (m *Model) Close() {
	m.cancel()
}

func (m *Model) View() string {
	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render("Codegen Studio"), "  ", mutedStyle.Render("Agentic Development Platform"))

	inner := leftWidth - 4
	promptTitle := headingStyle.Render("Prompt")
	if m.submitting {
		promptTitle += mutedStyle.Render("  generating...")
	}
	left := []string{m.panel(m.focus == focusPrompt, leftWidth, promptTitle+"\n"+m.prompt.View()+"\n"+mutedStyle.Render("ctrl+s generate • ctrl+e example"))}
	if _, ok := m.session.ActiveProject(); ok {
		if p := RenderProgress(m.progress, m.bar, inner); p != "" {
			left = append(left, m.panel(false, leftWidth, p))
		}
	}
	left = append(left, m.panel(false, leftWidth, RenderStats(m.files, inner)))

	var selected uuid.UUID
	if sel := m.session.SelectedFile(); sel != nil {
		selected = sel.ID
	}
	treeContent := RenderFileTree(m.files, m.cursor, selected, treeWidth-4)
	if m.filesState == client.StateUnavailable {
		treeContent += "\n" + dangerStyle.Render("server unavailable")
	}
	tree := m.panel(m.focus == focusFiles, treeWidth, treeContent)

	previewContent := m.preview.View()
	if sel := m.session.SelectedFile(); sel != nil {
		previewContent = PreviewHeader(sel, m.previewWidth()) + "\n" + previewContent
	}
	preview := m.panel(false, m.previewWidth()+4, previewContent)

	body := lipgloss.JoinHorizontal(lipgloss.Top,
		lipgloss.JoinVertical(lipgloss.Left, left...), tree, preview)

	footer := m.help.View(m.keys)
	if m.notice != nil {
		style := successStyle
		if m.notice.Destructive {
			style = dangerStyle
		}
		footer = style.Render(m.notice.Title+": "+m.notice.Description) + "\n" + footer
	}
	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}

func (m *Model) panel(focused bool, width int, content string) string {
	style := panelStyle
	if focused {
		style = focusedPanelStyle
	}
	return style.Width(width - 2).Render(content)
}
