package sla

import (
	"time"

	"github.com/spec-kit/complaint-sla-service/internal/domain"
)

// EscalationStats are the dashboard counters over escalated tickets.
type EscalationStats struct {
	TotalActive        int `json:"total_active"`
	HighUrgency        int `json:"high_urgency"`
	WaitingResponse    int `json:"waiting_response"`
	CompletedThisMonth int `json:"completed_this_month"`
	NewToday           int `json:"new_today"`
}

// FoldStats counts escalated tickets into dashboard buckets in one pass.
// completed_this_month intentionally filters on created_at to match the
// upstream reporting behavior, even though resolved_at would be the more
// natural completion marker.
func FoldStats(rows []EscalatedTicketView, now time.Time) EscalationStats {
	var stats EscalationStats
	monthStart := startOfMonth(now)
	dayStart := startOfDay(now)

	for i := range rows {
		row := &rows[i]
		if !row.Status.IsTerminal() {
			stats.TotalActive++
		}
		if row.Priority.IsHighUrgency() {
			stats.HighUrgency++
		}
		if row.Status == domain.TicketStatusEscalated {
			stats.WaitingResponse++
		}
		if row.Status.IsTerminal() && !row.CreatedAt.Before(monthStart) {
			stats.CompletedThisMonth++
		}
		if !row.EscalatedAt.Before(dayStart) {
			stats.NewToday++
		}
	}
	return stats
}

func startOfMonth(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
}

func startOfDay(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}
