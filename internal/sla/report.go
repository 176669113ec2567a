package sla

import (
	"math"
	"time"

	"github.com/spec-kit/complaint-sla-service/internal/domain"
)

// Summary aggregates a ticket collection for dashboard rendering.
// CsatScore is sourced externally and passed through by the caller;
// Summarize never computes it.
type Summary struct {
	TotalTickets       int                 `json:"total_tickets"`
	BreachRate         float64             `json:"breach_rate"`
	AvgResolutionHours float64             `json:"avg_resolution_hours"`
	CsatScore          *float64            `json:"csat_score,omitempty"`
	Skipped            int                 `json:"skipped,omitempty"`
	ByState            map[BreachState]int `json:"by_state,omitempty"`
}

// Summarize folds tickets into summary statistics in a single pass.
// Snapshots that fail classification with malformed input are skipped and
// counted, so one bad row never sinks the whole report. Rates are rounded
// to one decimal; the empty set yields all zeros.
func Summarize(tickets []TicketSnapshot, now time.Time) (Summary, error) {
	summary := Summary{ByState: make(map[BreachState]int)}

	breached := 0
	resolvedCount := 0
	var resolutionTotal time.Duration

	for i := range tickets {
		t := &tickets[i]
		state, err := Classify(*t, now)
		if err != nil {
			summary.Skipped++
			continue
		}
		summary.TotalTickets++
		summary.ByState[state]++
		if state.IsBreach() {
			breached++
		}
		if t.Status == domain.TicketStatusResolved && t.ResolvedAt != nil && !t.CreatedAt.IsZero() {
			resolvedCount++
			resolutionTotal += t.ResolvedAt.Sub(t.CreatedAt)
		}
	}

	if summary.TotalTickets > 0 {
		summary.BreachRate = roundOneDecimal(100 * float64(breached) / float64(summary.TotalTickets))
	}
	if resolvedCount > 0 {
		hours := resolutionTotal.Hours() / float64(resolvedCount)
		summary.AvgResolutionHours = roundOneDecimal(hours)
	}
	return summary, nil
}

func roundOneDecimal(v float64) float64 {
	return math.Round(v*10) / 10
}
