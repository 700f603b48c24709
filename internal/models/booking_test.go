package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	all := []BookingStatus{StatusPending, StatusConfirmed, StatusCancelled, StatusRejected, StatusCompleted}

	allowed := map[[2]BookingStatus]bool{
		{StatusPending, StatusConfirmed}:   true,
		{StatusPending, StatusRejected}:    true,
		{StatusPending, StatusCancelled}:   true,
		{StatusConfirmed, StatusCancelled}: true,
		{StatusConfirmed, StatusCompleted}: true,
	}

	for _, from := range all {
		for _, to := range all {
			want := allowed[[2]BookingStatus{from, to}]
			assert.Equal(t, want, CanTransition(from, to), "%s -> %s", from, to)
		}
	}
}

func TestCanTransition_TerminalStatesStayTerminal(t *testing.T) {
	for _, terminal := range []BookingStatus{StatusCancelled, StatusRejected, StatusCompleted} {
		assert.False(t, CanTransition(terminal, StatusPending), "%s must not re-enter pending", terminal)
		assert.False(t, CanTransition(terminal, StatusConfirmed))
	}
}

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name                       string
		startA, endA, startB, endB string
		want                       bool
	}{
		{"disjoint before", "2026-09-01", "2026-09-03", "2026-09-05", "2026-09-07", false},
		{"disjoint after", "2026-09-05", "2026-09-07", "2026-09-01", "2026-09-03", false},
		{"identical", "2026-09-01", "2026-09-03", "2026-09-01", "2026-09-03", true},
		{"contained", "2026-09-01", "2026-09-10", "2026-09-03", "2026-09-05", true},
		{"partial", "2026-09-01", "2026-09-05", "2026-09-04", "2026-09-08", true},
		// Inclusive boundaries: A ends the day B starts, that day is shared.
		{"boundary touch end-start", "2026-09-01", "2026-09-03", "2026-09-03", "2026-09-05", true},
		{"boundary touch start-end", "2026-09-03", "2026-09-05", "2026-09-01", "2026-09-03", true},
		{"adjacent days", "2026-09-01", "2026-09-03", "2026-09-04", "2026-09-06", false},
		{"single day equal", "2026-09-01", "2026-09-01", "2026-09-01", "2026-09-01", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Overlaps(day(tt.startA), day(tt.endA), day(tt.startB), day(tt.endB))
			assert.Equal(t, tt.want, got)
		})
	}
}
