package ui

import "pwt/internal/domain"

// Viewer displays run results interactively
type Viewer interface {
	View(results *domain.RunOutput) error
}
