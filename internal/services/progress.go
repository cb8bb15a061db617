package services

import "scmdash/internal/models"

// coupledProgress applies the repository status/progress coupling.
// A nil progress falls back to current.
func coupledProgress(status string, progress *int, current int) int {
	p := current
	if progress != nil {
		p = *progress
	}
	switch status {
	case models.StatusCompleted:
		return 100
	case models.StatusNotStarted:
		return 0
	case models.StatusInProgress:
		return max(1, p)
	}
	return clampPercent(p)
}

// derivedProgress fills a missing migration progress from its status.
func derivedProgress(status string, progress *int, current int) int {
	if progress != nil {
		return clampPercent(*progress)
	}
	switch status {
	case models.StatusCompleted:
		return 100
	case models.StatusNotStarted:
		return 0
	case models.StatusInProgress:
		return max(1, current)
	}
	return current
}

func clampPercent(p int) int {
	return min(max(p, 0), 100)
}
