package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mvaldes/passguard/vault"
)

const clipboardClearDelay = 30 * time.Second

type browserModel struct {
	creds    []vault.Credential
	visible  []vault.Credential
	cursor   int
	state    string // "list", "detail"
	filter   textinput.Model
	revealed bool
	msg      string
	err      string
}

// RunBrowser opens the interactive credential browser: a filterable list
// with detail view, reveal and clipboard copy.
func RunBrowser(v *vault.Vault) {
	creds, err := v.All()
	if err != nil {
		fmt.Println(errorStyle.Render("Error reading vault: " + err.Error()))
		return
	}

	filter := textinput.New()
	filter.Placeholder = "type to filter by service"
	filter.Prompt = "/ "
	filter.CharLimit = 64

	m := browserModel{
		creds:   creds,
		visible: creds,
		state:   "list",
		filter:  filter,
	}

	if _, err := tea.NewProgram(m).Run(); err != nil {
		fmt.Println(errorStyle.Render("Error running browser: " + err.Error()))
	}
}

func (m browserModel) Init() tea.Cmd {
	return nil
}

func (m browserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m.state {
	case "detail":
		return m.updateDetail(msg)
	default:
		return m.updateList(msg)
	}
}

func (m browserModel) View() string {
	switch m.state {
	case "detail":
		return m.viewDetail()
	default:
		return m.viewList()
	}
}

func (m browserModel) updateList(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	if m.filter.Focused() {
		switch keyMsg.String() {
		case "enter", "esc":
			m.filter.Blur()
		case "ctrl+c":
			return m, tea.Quit
		default:
			var cmd tea.Cmd
			m.filter, cmd = m.filter.Update(msg)
			m.applyFilter()
			return m, cmd
		}
		return m, nil
	}

	switch keyMsg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "j", "down":
		if m.cursor < len(m.visible)-1 {
			m.cursor++
		}
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
	case "/":
		m.filter.Focus()
	case "enter":
		if len(m.visible) > 0 {
			m.state = "detail"
			m.revealed = false
			m.msg = ""
		}
	case "c":
		if len(m.visible) > 0 {
			m.copySelected()
		}
	}
	return m, nil
}

func (m *browserModel) applyFilter() {
	query := strings.ToLower(m.filter.Value())
	if query == "" {
		m.visible = m.creds
	} else {
		var visible []vault.Credential
		for _, cred := range m.creds {
			if strings.Contains(strings.ToLower(cred.Service), query) {
				visible = append(visible, cred)
			}
		}
		m.visible = visible
	}
	if m.cursor >= len(m.visible) {
		m.cursor = 0
	}
}

func (m *browserModel) copySelected() {
	cred := m.visible[m.cursor]
	if err := clipboard.WriteAll(cred.Password); err != nil {
		m.err = "clipboard unavailable: " + err.Error()
		return
	}
	m.msg = "Password copied, clipboard clears in 30s"
	time.AfterFunc(clipboardClearDelay, func() {
		clipboard.WriteAll("")
	})
}

func (m browserModel) viewList() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Credentials") + "\n\n")
	b.WriteString(m.filter.View() + "\n\n")

	if len(m.visible) == 0 {
		b.WriteString(dimStyle.Render("nothing matches") + "\n")
	}
	for i, cred := range m.visible {
		line := fmt.Sprintf("%-20s  %-25s  %s", cred.Service, cred.Username, cred.Date)
		if i == m.cursor {
			line = selectedStyle.Render(line)
		}
		b.WriteString(line + "\n")
	}

	if m.msg != "" {
		b.WriteString("\n" + successStyle.Render(m.msg))
	}
	if m.err != "" {
		b.WriteString("\n" + errorStyle.Render(m.err))
	}
	b.WriteString("\n" + dimStyle.Render("j/k move · enter details · c copy · / filter · q back"))
	return b.String()
}

func (m browserModel) updateDetail(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch keyMsg.String() {
	case "esc", "q":
		m.state = "list"
	case "ctrl+c":
		return m, tea.Quit
	case "v":
		m.revealed = !m.revealed
	case "c":
		m.copySelected()
	}
	return m, nil
}

func (m browserModel) viewDetail() string {
	cred := m.visible[m.cursor]
	password := strings.Repeat("*", 8)
	if m.revealed {
		password = cred.Password
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render("Details - "+cred.Service) + "\n\n")
	b.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("Service:"), cred.Service))
	b.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("Username:"), cred.Username))
	b.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("Password:"), password))
	b.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("Created:"), cred.Date))

	if m.msg != "" {
		b.WriteString("\n" + successStyle.Render(m.msg))
	}
	b.WriteString("\n" + dimStyle.Render("v reveal · c copy · esc back"))
	return b.String()
}
