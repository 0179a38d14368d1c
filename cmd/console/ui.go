package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/jwebster45206/npc-engine/internal/app"
	"github.com/jwebster45206/npc-engine/internal/roster"
	"github.com/jwebster45206/npc-engine/internal/services/events"
)

const (
	PlaceHolderText = "Say something, or /help..."
	sweepInterval   = time.Second
)

type chatLine struct {
	speaker string
	text    string
	notice  bool
}

// ConsoleUI is the BubbleTea model that runs the UI.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	engine       *app.Engine
	characters   []string
	names        map[string]string
	events       <-chan events.Event
	chatViewport viewport.Model
	metaViewport viewport.Model
	textarea     textarea.Model
	history      []chatLine
	ready        bool
	width        int
	height       int
	loading      bool

	playerID   string
	listenerID string

	// character selection state
	showPickerModal bool
	selected        int

	showQuitModal bool
}

var (
	chatPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(1).
			PaddingLeft(3)

	metaPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingRight(2)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")). // pink
			Bold(true)

	speakerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")). // purple
			Bold(true)

	userStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")) // teal

	noticeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("244")).
			Italic(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2).
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("255"))

	modalTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true).
			Align(lipgloss.Center)

	modalItemStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	modalSelectedItemStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("0")).
				Background(lipgloss.Color("205")).
				Bold(true)

	separatorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))
)

func NewConsoleUI(engine *app.Engine, r *roster.Roster) ConsoleUI {
	ta := textarea.New()
	ta.Placeholder = PlaceHolderText
	ta.Focus()
	ta.Prompt = promptStyle.Render(":: ")
	ta.CharLimit = 500
	ta.SetWidth(50)
	ta.SetHeight(3)
	ta.ShowLineNumbers = false

	chatVp := viewport.New(50, 20)
	chatVp.MouseWheelEnabled = true

	ids := make([]string, 0, len(r.Characters))
	names := make(map[string]string, len(r.Characters))
	for _, spec := range r.Characters {
		ids = append(ids, spec.ID)
		names[spec.ID] = spec.Name
	}

	return ConsoleUI{
		engine:          engine,
		characters:      ids,
		names:           names,
		events:          engine.Bus.Subscribe(),
		textarea:        ta,
		chatViewport:    chatVp,
		metaViewport:    viewport.New(20, 20),
		playerID:        ids[0],
		listenerID:      ids[1],
		showPickerModal: true,
		selected:        1,
	}
}

func (m ConsoleUI) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, waitForEvent(m.events), sweepTick(sweepInterval))
}

func (m ConsoleUI) displayName(id string) string {
	if name, ok := m.names[id]; ok && name != "" {
		return name
	}
	return id
}

// writeChatContent rebuilds the transcript for the current viewport width.
func (m *ConsoleUI) writeChatContent() {
	width := m.chatViewport.Width - 6
	if width < 20 {
		width = 20
	}

	var content strings.Builder
	content.WriteString(titleStyle.Render("NPC ENGINE") + "\n\n")
	content.WriteString(fmt.Sprintf("You are %s, talking to %s.\n\n", m.displayName(m.playerID), m.displayName(m.listenerID)))
	content.WriteString(separatorStyle.Render(strings.Repeat("─", width)) + "\n\n")

	for _, l := range m.history {
		switch {
		case l.notice:
			content.WriteString(noticeStyle.Render(wordwrap.String(l.text, width)) + "\n")
		case l.speaker == m.playerID:
			content.WriteString(userStyle.Render("You: ") + wordwrap.String(l.text, width-5) + "\n\n")
		default:
			prefix := m.displayName(l.speaker) + ": "
			content.WriteString(speakerStyle.Render(prefix) + wordwrap.String(l.text, width-len(prefix)) + "\n\n")
		}
	}
	if m.loading {
		content.WriteString(promptStyle.Render(m.displayName(m.listenerID)+" is thinking...") + "\n")
	}

	m.chatViewport.SetContent(content.String())
	m.chatViewport.GotoBottom()
}

func (m *ConsoleUI) refreshMeta() {
	m.metaViewport.SetContent(writeMetadata(m.engine, m.listenerID, m.displayName(m.playerID)))
}

func (m *ConsoleUI) notice(text string) {
	m.history = append(m.history, chatLine{text: text, notice: true})
	m.writeChatContent()
}

func (m ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// background messages keep flowing while a modal is open
	switch msg := msg.(type) {
	case worldEventMsg:
		if !msg.ok {
			return m, nil
		}
		if line := describeEvent(msg.event); line != "" && (msg.event.CharacterID == m.listenerID || msg.event.CharacterID == m.playerID) {
			m.notice(line)
		}
		m.refreshMeta()
		return m, waitForEvent(m.events)

	case sweepTickMsg:
		m.engine.Sweeper.RunOnce(context.Background())
		return m, sweepTick(sweepInterval)
	}

	if m.showPickerModal {
		return m.updatePickerModal(msg)
	}
	if m.showQuitModal {
		return m.updateQuitModal(msg)
	}

	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.MouseMsg:
		m.chatViewport, vpCmd = m.chatViewport.Update(msg)
		return m, vpCmd

	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.showQuitModal = true
			return m, nil
		case tea.KeyEnter:
			if m.loading {
				return m, nil
			}
			input := strings.TrimSpace(m.textarea.Value())
			if input == "" {
				return m, nil
			}
			m.textarea.Reset()
			if strings.HasPrefix(input, "/") {
				return m.handleCommand(input)
			}

			m.loading = true
			m.history = append(m.history, chatLine{speaker: m.playerID, text: input})
			m.writeChatContent()
			return m, say(m.engine, m.listenerID, m.playerID, input)
		}

	case replyMsg:
		m.loading = false
		if msg.err != nil {
			m.history = append(m.history, chatLine{text: errorStyle.Render("Error: " + msg.err.Error()), notice: true})
		} else {
			m.history = append(m.history, chatLine{speaker: m.listenerID, text: msg.line})
		}
		m.writeChatContent()
		m.refreshMeta()
		return m, nil
	}

	m.textarea, tiCmd = m.textarea.Update(msg)
	m.chatViewport, vpCmd = m.chatViewport.Update(msg)
	return m, tea.Batch(tiCmd, vpCmd)
}

func (m *ConsoleUI) resize(width, height int) {
	m.width = width
	m.height = height

	chatWidth := int(float64(m.width)*0.7) - 4
	metaWidth := m.width - chatWidth - 6

	m.chatViewport.Width = chatWidth - 2
	m.chatViewport.Height = m.height - 7
	m.metaViewport.Width = metaWidth - 2
	m.metaViewport.Height = m.height - 4
	m.textarea.SetWidth(chatWidth - 4)

	m.ready = true
	m.writeChatContent()
	m.refreshMeta()
}

func (m ConsoleUI) handleCommand(input string) (tea.Model, tea.Cmd) {
	fields := strings.Fields(input)
	cmd := strings.ToLower(fields[0])
	arg := ""
	if len(fields) > 1 {
		arg = strings.ToLower(fields[1])
	}

	switch cmd {
	case "/help":
		m.notice(`Commands:
• /talk <id> - talk to someone else (no id opens the picker)
• /as <id> - speak as another character
• /open - let them start the conversation
• /needs - show their needs
• /stats - show engine stats
• /copy - copy the transcript to the clipboard
• Ctrl+C - quit`)

	case "/talk":
		if arg == "" {
			m.showPickerModal = true
			return m, nil
		}
		if !m.switchTo(&m.listenerID, arg) {
			return m, nil
		}
		m.notice("Now talking to " + m.displayName(m.listenerID))

	case "/as":
		if !m.switchTo(&m.playerID, arg) {
			return m, nil
		}
		m.notice("Now speaking as " + m.displayName(m.playerID))

	case "/open":
		m.loading = true
		m.writeChatContent()
		return m, say(m.engine, m.listenerID, m.playerID, "")

	case "/needs":
		c, err := m.engine.Character(m.listenerID)
		if err != nil {
			m.notice(err.Error())
			break
		}
		m.notice(m.displayName(m.listenerID) + " needs:\n" + formatNeeds(c.View().Needs))

	case "/stats":
		m.notice(formatStats(m.engine))

	case "/copy":
		if err := clipboard.WriteAll(m.transcript()); err != nil {
			m.notice("Copy failed: " + err.Error())
			break
		}
		m.notice("Transcript copied.")

	default:
		m.notice("Unknown command " + cmd + ", try /help")
	}
	return m, nil
}

// switchTo points target at id when id names another known character.
func (m *ConsoleUI) switchTo(target *string, id string) bool {
	if _, err := m.engine.Character(id); err != nil {
		m.notice(err.Error())
		return false
	}
	if id == m.playerID || id == m.listenerID {
		m.notice(m.displayName(id) + " is already in this conversation")
		return false
	}
	*target = id
	m.refreshMeta()
	return true
}

func (m ConsoleUI) transcript() string {
	var b strings.Builder
	for _, l := range m.history {
		if l.notice {
			continue
		}
		fmt.Fprintf(&b, "%s: %s\n", m.displayName(l.speaker), l.text)
	}
	return b.String()
}

func (m ConsoleUI) updatePickerModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC:
			return m, tea.Quit
		case tea.KeyEsc:
			m.showPickerModal = false
			return m, nil
		case tea.KeyUp:
			if m.selected > 0 {
				m.selected--
			}
		case tea.KeyDown:
			if m.selected < len(m.characters)-1 {
				m.selected++
			}
		case tea.KeyEnter:
			id := m.characters[m.selected]
			if id == m.playerID {
				return m, nil
			}
			m.listenerID = id
			m.showPickerModal = false
			m.writeChatContent()
			m.refreshMeta()
			return m, textarea.Blink
		}
	}
	return m, nil
}

func (m ConsoleUI) updateQuitModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc, tea.KeyEnter:
			return m, tea.Quit
		default:
			switch msg.String() {
			case "y", "Y":
				return m, tea.Quit
			case "n", "N":
				m.showQuitModal = false
				m.textarea.Focus()
				return m, textarea.Blink
			}
		}
	}
	return m, nil
}

func (m ConsoleUI) renderQuitModal() string {
	var content strings.Builder
	content.WriteString(modalTitleStyle.Render("Leave the office?"))
	content.WriteString("\n\n")
	content.WriteString(promptStyle.Render("Press Y to quit, N to keep talking"))

	modal := modalStyle.Width(50).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) renderPickerModal() string {
	var content strings.Builder
	content.WriteString(modalTitleStyle.Render("Who do you want to talk to?"))
	content.WriteString("\n\n")

	for i, id := range m.characters {
		label := fmt.Sprintf("%s (%s)", m.displayName(id), id)
		if id == m.playerID {
			label += " - you"
		}
		if i == m.selected {
			content.WriteString(modalSelectedItemStyle.Render("▶ " + label))
		} else {
			content.WriteString(modalItemStyle.Render("  " + label))
		}
		content.WriteString("\n")
	}

	content.WriteString("\n")
	content.WriteString(promptStyle.Render("Use ↑/↓ to navigate, Enter to select, Esc to close"))

	modal := modalStyle.Width(60).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) View() string {
	if m.width == 0 || m.height == 0 {
		return "\n  Initializing..."
	}
	if m.showPickerModal {
		return m.renderPickerModal()
	}
	if m.showQuitModal {
		return m.renderQuitModal()
	}

	chatWidth := int(float64(m.width)*0.7) - 4
	metaWidth := m.width - chatWidth - 6

	chatPanel := chatPanelStyle.Width(chatWidth).Height(m.height - 3).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			m.chatViewport.View(),
			"",
			separatorStyle.Render(strings.Repeat("─", chatWidth-4)),
			m.textarea.View(),
		),
	)

	metaPanel := metaPanelStyle.Width(metaWidth).Height(m.height - 2).Render(
		m.metaViewport.View(),
	)

	return lipgloss.JoinHorizontal(lipgloss.Top, chatPanel, metaPanel)
}
