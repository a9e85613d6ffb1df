// Package ui 渲染写到 stderr 的人类可读状态行；stdout 只承载数据。
package ui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

var (
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#DC2626")).Bold(true)
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#CA8A04"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#16A34A"))
	hintStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280")).Italic(true)
	boldStyle    = lipgloss.NewStyle().Bold(true)
)

// Printer 把带样式的消息写到 w。Plain 为 true 时不加样式（非 TTY / 测试）。
type Printer struct {
	w     io.Writer
	plain bool
}

func New(w io.Writer, plain bool) Printer {
	return Printer{w: w, plain: plain}
}

func (p Printer) render(s lipgloss.Style, msg string) string {
	if p.plain {
		return msg
	}
	return s.Render(msg)
}

// Success prints a green success line.
func (p Printer) Success(format string, args ...any) {
	_, _ = fmt.Fprintln(p.w, p.render(successStyle, fmt.Sprintf(format, args...)))
}

// Warn prints a yellow warning line.
func (p Printer) Warn(format string, args ...any) {
	_, _ = fmt.Fprintln(p.w, p.render(warnStyle, "Warning: "+fmt.Sprintf(format, args...)))
}

// Error prints a styled error with an optional hint.
func (p Printer) Error(title, hint string) {
	_, _ = fmt.Fprintln(p.w, p.render(errorStyle, "Error: "+title))
	if hint != "" {
		_, _ = fmt.Fprintln(p.w, "  "+p.render(hintStyle, "Hint: "+hint))
	}
}

// Summary prints "label: n" pairs, label in bold.
func (p Printer) Summary(label string, n int) {
	_, _ = fmt.Fprintf(p.w, "  %s %d\n", p.render(boldStyle, label+":"), n)
}
