package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/dockerlens/dockerlens/internal/api"
	"github.com/dockerlens/dockerlens/internal/session"
	"github.com/dockerlens/dockerlens/pkg/models"
)

type section int

const (
	sectionOverview section = iota
	sectionDockerfile
	sectionOptimize
	sectionFiles
	sectionChat
)

var sectionTitles = [...]string{"Overview", "Dockerfile", "Optimize", "Files", "Chat"}

// sectionKind maps a fetchable section to its secondary slot.
func sectionKind(s section) (session.Kind, bool) {
	switch s {
	case sectionDockerfile:
		return session.KindDockerfile, true
	case sectionOptimize:
		return session.KindOptimize, true
	case sectionFiles:
		return session.KindFileTree, true
	default:
		return 0, false
	}
}

type model struct {
	ctx    context.Context
	client *api.Client
	sess   *session.Controller

	imageInput textinput.Model
	chatInput  textinput.Model
	viewport   viewport.Model
	tree       *treeView
	markdown   *glamour.TermRenderer

	currentSection section
	spinner        *Spinner
	spinning       bool
	ready          bool
	width          int
	height         int
}

func initialModel(ctx context.Context, client *api.Client) model {
	imageInput := textinput.New()
	imageInput.Placeholder = "nginx:latest"
	imageInput.Prompt = "Image: "
	imageInput.CharLimit = 256
	imageInput.Focus()

	chatInput := textinput.New()
	chatInput.Placeholder = "Ask about this image…"
	chatInput.Prompt = "> "
	chatInput.CharLimit = 512

	return model{
		ctx:        ctx,
		client:     client,
		sess:       session.New(),
		imageInput: imageInput,
		chatInput:  chatInput,
		spinner:    NewSpinner(),
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(tea.EnterAltScreen, textinput.Blink)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-6)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - 6
		}
		m.markdown = newMarkdownRenderer(msg.Width - 4)
		m.updateViewport()

	case tea.KeyMsg:
		return m.handleKey(msg)

	case AnalysisCompletedMsg:
		if m.sess.ResolvePrimary(msg.ImageRef, msg.Result, msg.Error) {
			if m.sess.Ready() {
				m.currentSection = sectionOverview
				m.imageInput.Blur()
			}
			m.updateViewport()
		}

	case DockerfileCompletedMsg:
		if m.sess.Resolve(session.KindDockerfile, msg.ImageRef, msg.Dockerfile, msg.Error) {
			m.updateViewport()
		}

	case OptimizeCompletedMsg:
		if m.sess.Resolve(session.KindOptimize, msg.ImageRef, msg.Report, msg.Error) {
			m.updateViewport()
		}

	case FilesCompletedMsg:
		if m.sess.Resolve(session.KindFileTree, msg.ImageRef, msg.Forest, msg.Error) {
			// A fresh snapshot always gets a fresh viewer; expansion
			// state never outlives the forest it was built for.
			m.tree = nil
			if msg.Error == nil {
				m.tree = newTreeView(msg.Forest)
			}
			m.updateViewport()
		}

	case ChatCompletedMsg:
		if m.sess.ResolveChat(msg.ImageRef, msg.Reply, msg.Error) {
			m.updateViewport()
		}

	case TickMsg:
		if m.anyPending() {
			m.spinner.Next()
			m.updateViewport()
			return m, tickCmd()
		}
		m.spinning = false
		return m, nil
	}

	if m.sess.Ready() {
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	if !m.sess.Ready() {
		return m.handleSubmitKey(msg)
	}

	if m.currentSection == sectionChat {
		return m.handleChatKey(msg)
	}

	switch msg.String() {
	case "q", "esc":
		return m, tea.Quit
	case "n":
		// Back to the submit screen for a new image.
		m.sess.Reset()
		m.tree = nil
		m.imageInput.SetValue("")
		m.imageInput.Focus()
		return m, textinput.Blink
	case "tab":
		return m.switchSection((m.currentSection + 1) % section(len(sectionTitles)))
	case "shift+tab":
		return m.switchSection((m.currentSection + section(len(sectionTitles)) - 1) % section(len(sectionTitles)))
	case "1", "2", "3", "4", "5":
		return m.switchSection(section(msg.String()[0] - '1'))
	case "r":
		return m.triggerCurrent(true)
	case "up", "k":
		if m.currentSection == sectionFiles && m.tree != nil {
			m.tree.moveCursor(-1)
			m.updateViewport()
			return m, nil
		}
	case "down", "j":
		if m.currentSection == sectionFiles && m.tree != nil {
			m.tree.moveCursor(1)
			m.updateViewport()
			return m, nil
		}
	case "enter", " ":
		if m.currentSection == sectionFiles && m.tree != nil {
			m.tree.toggleAtCursor()
			m.updateViewport()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// handleSubmitKey drives the image-reference prompt shown before a primary
// analysis has succeeded.
func (m model) handleSubmitKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return m, tea.Quit
	case "enter":
		ref := m.imageInput.Value()
		if !m.sess.StartAnalysis(ref) {
			return m, nil
		}
		return m, tea.Batch(
			analyzeCmd(m.ctx, m.client, m.sess.ImageRef()),
			m.startSpinner(),
		)
	}

	var cmd tea.Cmd
	m.imageInput, cmd = m.imageInput.Update(msg)
	return m, cmd
}

// handleChatKey drives the chat section, where printable keys belong to the
// input line rather than to section shortcuts.
func (m model) handleChatKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return m.switchSection(sectionOverview)
	case "tab":
		return m.switchSection((m.currentSection + 1) % section(len(sectionTitles)))
	case "shift+tab":
		return m.switchSection(m.currentSection - 1)
	case "enter":
		text, ok := m.sess.SendChat(m.chatInput.Value())
		if !ok {
			return m, nil
		}
		m.chatInput.SetValue("")
		m.updateViewport()
		m.viewport.GotoBottom()
		return m, tea.Batch(
			chatCmd(m.ctx, m.client, m.sess.ImageRef(), text),
			m.startSpinner(),
		)
	}

	var cmd tea.Cmd
	m.chatInput, cmd = m.chatInput.Update(msg)
	return m, cmd
}

// switchSection changes the visible section and fetches its data on first
// visit. Overview is always populated (it is the primary result) and chat
// fetches per message, so only the three slot-backed sections trigger here.
func (m model) switchSection(s section) (tea.Model, tea.Cmd) {
	if s < 0 || int(s) >= len(sectionTitles) {
		return m, nil
	}
	m.currentSection = s
	if s == sectionChat {
		m.chatInput.Focus()
	} else {
		m.chatInput.Blur()
	}
	if kind, ok := sectionKind(s); ok && m.sess.Slot(kind).Status == session.StatusUntriggered {
		return m.triggerCurrent(false)
	}
	m.updateViewport()
	return m, nil
}

// triggerCurrent (re)issues the remote call behind the visible section.
// retrigger allows refreshing from a terminal state; the controller
// rejects triggers while the slot is pending either way.
func (m model) triggerCurrent(retrigger bool) (tea.Model, tea.Cmd) {
	kind, ok := sectionKind(m.currentSection)
	if !ok {
		if retrigger && m.currentSection == sectionOverview {
			// Re-run the primary analysis for the same reference.
			if m.sess.StartAnalysis(m.sess.ImageRef()) {
				return m, tea.Batch(analyzeCmd(m.ctx, m.client, m.sess.ImageRef()), m.startSpinner())
			}
		}
		return m, nil
	}
	status := m.sess.Slot(kind).Status
	if !retrigger && status != session.StatusUntriggered {
		m.updateViewport()
		return m, nil
	}
	if !m.sess.Trigger(kind) {
		m.updateViewport()
		return m, nil
	}
	m.updateViewport()

	ref := m.sess.ImageRef()
	var cmd tea.Cmd
	switch kind {
	case session.KindDockerfile:
		cmd = generateDockerfileCmd(m.ctx, m.client, ref)
	case session.KindOptimize:
		cmd = optimizeCmd(m.ctx, m.client, ref)
	case session.KindFileTree:
		cmd = listFilesCmd(m.ctx, m.client, ref)
	}
	return m, tea.Batch(cmd, m.startSpinner())
}

// startSpinner begins ticking unless a tick loop is already running.
func (m *model) startSpinner() tea.Cmd {
	if m.spinning {
		return nil
	}
	m.spinning = true
	return tickCmd()
}

func (m *model) anyPending() bool {
	if m.sess.PrimaryPending() {
		return true
	}
	for _, kind := range []session.Kind{session.KindDockerfile, session.KindOptimize, session.KindFileTree, session.KindChat} {
		if m.sess.Slot(kind).Status == session.StatusPending {
			return true
		}
	}
	return false
}

func (m *model) updateViewport() {
	if !m.ready || !m.sess.Ready() {
		return
	}
	m.viewport.SetContent(m.renderSection())
}

var (
	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229")).Background(lipgloss.Color("63"))
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	labelStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
	valueStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	tabStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Padding(0, 1)
	activeTabStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true).Padding(0, 1)
	footerStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	userMsgStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
	asstMsgStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
)

func (m model) View() string {
	if !m.ready {
		return "\n  Initializing..."
	}

	if !m.sess.Ready() {
		return m.renderSubmitScreen()
	}

	header := titleStyle.Render(fmt.Sprintf(" dockerlens — %s ", m.sess.ImageRef()))
	tabs := m.renderTabs()
	footer := m.renderFooter()

	body := m.viewport.View()
	if m.currentSection == sectionChat {
		body = fmt.Sprintf("%s\n%s", body, m.chatInput.View())
	}

	return fmt.Sprintf("%s\n%s\n%s\n%s", header, tabs, body, footer)
}

func (m model) renderSubmitScreen() string {
	var s strings.Builder
	s.WriteString("\n  " + titleStyle.Render(" dockerlens ") + "\n\n")
	s.WriteString("  Analyze a container image for security and size issues.\n\n")
	s.WriteString("  " + m.imageInput.View() + "\n\n")

	if m.sess.PrimaryPending() {
		s.WriteString("  " + m.spinner.loadingLine(fmt.Sprintf("Analyzing %s…", m.sess.ImageRef())) + "\n")
	} else if m.sess.PrimaryErr() != "" {
		s.WriteString("  " + errorStyle.Render("Analysis failed: "+m.sess.PrimaryErr()) + "\n")
		s.WriteString("  " + footerStyle.Render("Adjust the reference and press enter to retry.") + "\n")
	}

	s.WriteString("\n  " + footerStyle.Render("enter: analyze • esc: quit"))
	return s.String()
}

func (m model) renderTabs() string {
	var tabs []string
	for i, title := range sectionTitles {
		label := fmt.Sprintf("%d %s", i+1, title)
		if section(i) == m.currentSection {
			tabs = append(tabs, activeTabStyle.Render(label))
		} else {
			tabs = append(tabs, tabStyle.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m model) renderFooter() string {
	info := "tab/1-5: sections • r: refresh • n: new image • q: quit"
	if m.currentSection == sectionFiles {
		info = "↑/↓: move • enter: expand/collapse • " + info
	}
	if m.currentSection == sectionChat {
		info = "enter: send • esc: back • tab: sections"
	}
	return footerStyle.Render(info)
}

func (m model) renderSection() string {
	switch m.currentSection {
	case sectionOverview:
		return m.renderOverview()
	case sectionDockerfile:
		return m.renderSlotText(session.KindDockerfile, "Reconstructing Dockerfile…")
	case sectionOptimize:
		return m.renderOptimize()
	case sectionFiles:
		return m.renderFiles()
	case sectionChat:
		return m.renderChat()
	}
	return ""
}

func (m model) renderOverview() string {
	result := m.sess.PrimaryResult()
	if result == nil {
		return ""
	}
	meta := result.Metadata

	var s strings.Builder
	writeField := func(label, value string) {
		if value == "" {
			value = "—"
		}
		s.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render(label+":"), valueStyle.Render(value)))
	}

	writeField("Image ID", truncate(meta.ImageID, 32))
	writeField("OS/Arch", fmt.Sprintf("%s/%s", meta.OS, meta.Architecture))
	writeField("Size", humanSize(meta.Size))
	user := meta.User
	if user == "" {
		user = "not set (runs as root)"
	}
	writeField("User", user)
	writeField("Exposed ports", strings.Join(meta.ExposedPorts, ", "))
	writeField("Env vars", fmt.Sprintf("%d defined", len(meta.EnvVars)))
	writeField("Layers", fmt.Sprintf("%d", len(meta.History)))
	s.WriteString("\n")
	s.WriteString(m.renderMarkdown(result.Recommendations))
	return s.String()
}

func (m model) renderOptimize() string {
	slot := m.sess.Slot(session.KindOptimize)
	if text, done := m.renderSlotStatus(slot, "Scanning for optimizations…"); !done {
		return text
	}
	report, ok := slot.Payload.(*models.OptimizationReport)
	if !ok || report == nil {
		return errorStyle.Render("Unexpected optimization payload")
	}

	var s strings.Builder
	s.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("Total size:"), valueStyle.Render(humanSize(report.TotalSize))))
	s.WriteString(fmt.Sprintf("%s %s\n\n", labelStyle.Render("Potential savings:"), valueStyle.Render(humanSize(report.PotentialSavings))))

	if len(report.Suggestions) == 0 {
		s.WriteString(footerStyle.Render("No optimization opportunities found."))
		return s.String()
	}
	for i, suggestion := range report.Suggestions {
		s.WriteString(fmt.Sprintf("%d. %s (%s)\n", i+1,
			valueStyle.Bold(true).Render(suggestion.Title),
			humanSize(suggestion.EstimatedSavings)))
		for _, line := range wrapText(suggestion.Description, m.viewport.Width-4) {
			s.WriteString("   " + valueStyle.Render(line) + "\n")
		}
		s.WriteString("\n")
	}
	return s.String()
}

func (m model) renderFiles() string {
	slot := m.sess.Slot(session.KindFileTree)
	if text, done := m.renderSlotStatus(slot, "Listing image files…"); !done {
		return text
	}
	if m.tree == nil {
		return errorStyle.Render("Unexpected file-listing payload")
	}
	return m.tree.render()
}

func (m model) renderChat() string {
	var s strings.Builder
	for _, entry := range m.sess.ChatLog() {
		style := asstMsgStyle
		label := "assistant"
		if entry.Speaker == models.SpeakerUser {
			style = userMsgStyle
			label = "you"
		}
		s.WriteString(style.Render(label+":") + "\n")
		for _, line := range wrapText(entry.Text, m.viewport.Width-2) {
			s.WriteString("  " + valueStyle.Render(line) + "\n")
		}
		s.WriteString("\n")
	}
	if m.sess.Slot(session.KindChat).Status == session.StatusPending {
		s.WriteString(m.spinner.loadingLine("Thinking…") + "\n")
	}
	if len(m.sess.ChatLog()) == 0 {
		s.WriteString(footerStyle.Render("Ask anything about this image, e.g. \"why is it running as root?\""))
	}
	return s.String()
}

// renderSlotText renders a slot whose payload is plain text.
func (m model) renderSlotText(kind session.Kind, pendingMsg string) string {
	slot := m.sess.Slot(kind)
	if text, done := m.renderSlotStatus(slot, pendingMsg); !done {
		return text
	}
	content, ok := slot.Payload.(string)
	if !ok {
		return errorStyle.Render("Unexpected payload")
	}
	return valueStyle.Render(content)
}

// renderSlotStatus handles the three non-success states of a slot. done is
// true when the slot holds a payload and the caller should render it.
func (m model) renderSlotStatus(slot session.Slot, pendingMsg string) (string, bool) {
	switch slot.Status {
	case session.StatusUntriggered:
		return footerStyle.Render("Not requested yet. Press r to fetch."), false
	case session.StatusPending:
		return m.spinner.loadingLine(pendingMsg), false
	case session.StatusFailed:
		return errorStyle.Render("Failed: "+slot.Err) + "\n" +
			footerStyle.Render("Press r to retry."), false
	}
	return "", true
}

func (m model) renderMarkdown(content string) string {
	if m.markdown == nil {
		return valueStyle.Render(content)
	}
	rendered, err := m.markdown.Render(content)
	if err != nil {
		return valueStyle.Render(content)
	}
	return strings.TrimSpace(rendered)
}

func newMarkdownRenderer(width int) *glamour.TermRenderer {
	if width < 20 {
		width = 20
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil
	}
	return renderer
}

// wrapText wraps text to fit within the specified width
func wrapText(text string, width int) []string {
	if width <= 0 {
		return []string{text}
	}

	var lines []string
	for _, paragraph := range strings.Split(text, "\n") {
		words := strings.Fields(paragraph)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}
		currentLine := words[0]
		for _, word := range words[1:] {
			if len(currentLine)+1+len(word) > width {
				lines = append(lines, currentLine)
				currentLine = word
			} else {
				currentLine += " " + word
			}
		}
		lines = append(lines, currentLine)
	}
	return lines
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

// Run starts the TUI against the given analyzer client and blocks until
// the user quits.
func Run(ctx context.Context, client *api.Client) error {
	p := tea.NewProgram(
		initialModel(ctx, client),
		tea.WithAltScreen(),
	)
	_, err := p.Run()
	return err
}
