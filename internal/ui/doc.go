// Package ui renders split progress, summaries and export history for the terminal with lipgloss.
//
// Rendering functions return strings so the CLI decides where they are written.
package ui
