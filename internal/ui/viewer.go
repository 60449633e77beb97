package ui

import "modtest/internal/domain"

// Viewer displays run reports in an interactive TUI
type Viewer interface {
	View(report *domain.ExecutionReport) error
}
