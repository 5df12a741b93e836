// Package ui holds the shared lipgloss styles for CLI output.
package ui

import "github.com/charmbracelet/lipgloss"

var (
	passStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	accentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("255"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
)

// RenderPass renders a success marker.
func RenderPass(s string) string { return passStyle.Render(s) }

// RenderWarn renders a warning marker.
func RenderWarn(s string) string { return warnStyle.Render(s) }

// RenderError renders an error marker.
func RenderError(s string) string { return errorStyle.Render(s) }

// RenderAccent renders attention-drawing text.
func RenderAccent(s string) string { return accentStyle.Render(s) }

// RenderHeader renders a section or table header.
func RenderHeader(s string) string { return headerStyle.Render(s) }

// RenderDim renders secondary detail text.
func RenderDim(s string) string { return dimStyle.Render(s) }
