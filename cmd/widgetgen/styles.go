package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	accent  = lipgloss.Color("#8BC34A")
	muted   = lipgloss.Color("#7a869a")
	warning = lipgloss.Color("#FFC107")
	danger  = lipgloss.Color("#e53935")

	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(accent)
	labelStyle = lipgloss.NewStyle().Foreground(muted).Width(14)
	codeStyle  = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(0, 1)
	noticeStyle = lipgloss.NewStyle().Foreground(warning)
	errorStyle  = lipgloss.NewStyle().Bold(true).Foreground(danger)
)

func printCode(w io.Writer, code string) {
	fmt.Fprintln(w, titleStyle.Render("Widget code"))
	fmt.Fprintln(w, codeStyle.Render(code))
}

func printField(w io.Writer, name, value string) {
	fmt.Fprintln(w, lipgloss.JoinHorizontal(lipgloss.Top, labelStyle.Render(name), value))
}

func printSection(w io.Writer, title string) {
	fmt.Fprintln(w, titleStyle.Render(strings.TrimSpace(title)))
}
