package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))
	menuNumStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	successStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	warnStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	labelStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	selectedStyle = lipgloss.NewStyle().Background(lipgloss.Color("57")).Foreground(lipgloss.Color("0"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

func printHeader(title string) {
	const width = 60
	if len(title) > width {
		title = title[:width]
	}
	bar := "+" + strings.Repeat("-", width) + "+"
	pad := width - len(title)
	left := pad / 2
	fmt.Println(headerStyle.Render(bar))
	fmt.Println(headerStyle.Render("|") +
		strings.Repeat(" ", left) + headerStyle.Render(title) + strings.Repeat(" ", pad-left) +
		headerStyle.Render("|"))
	fmt.Println(headerStyle.Render(bar))
}

func printMenu(options []string) {
	for i, option := range options {
		fmt.Printf("%s %s\n", menuNumStyle.Render(fmt.Sprintf("[%d]", i+1)), option)
	}
}
