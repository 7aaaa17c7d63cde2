package model

import (
	"math"
	"testing"
)

func TestContributionTotal(t *testing.T) {
	summary := &ContributionSummary{Commits: 100, Issues: 20, PullRequests: 30, CalendarTotal: 50}
	if got := summary.Total(); got != 200 {
		t.Errorf("Total() = %d, want 200", got)
	}
}

func TestActiveMonths(t *testing.T) {
	tests := []struct {
		name     string
		calendar []ContributionDay
		want     int
	}{
		{
			name: "distinct months",
			calendar: []ContributionDay{
				{Date: "2026-01-05", Count: 3},
				{Date: "2026-01-20", Count: 1},
				{Date: "2026-02-10", Count: 2},
				{Date: "2026-04-01", Count: 1},
			},
			want: 3,
		},
		{
			name: "zero-count days excluded",
			calendar: []ContributionDay{
				{Date: "2026-01-05", Count: 0},
				{Date: "2026-02-10", Count: 1},
			},
			want: 1,
		},
		{
			name:     "empty calendar",
			calendar: nil,
			want:     0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			summary := &ContributionSummary{Calendar: tt.calendar}
			if got := summary.ActiveMonths(); got != tt.want {
				t.Errorf("ActiveMonths() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestWeekdayRatio(t *testing.T) {
	// 2026-01-05 is a Monday, 2026-01-10 a Saturday.
	tests := []struct {
		name     string
		calendar []ContributionDay
		want     float64
	}{
		{
			name: "weekdays only",
			calendar: []ContributionDay{
				{Date: "2026-01-05", Count: 4},
				{Date: "2026-01-06", Count: 4},
			},
			want: 1.0,
		},
		{
			name: "half on the weekend",
			calendar: []ContributionDay{
				{Date: "2026-01-05", Count: 4},
				{Date: "2026-01-10", Count: 4},
			},
			want: 0.5,
		},
		{
			name:     "zero contributions never divide by zero",
			calendar: []ContributionDay{{Date: "2026-01-05", Count: 0}},
			want:     0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			summary := &ContributionSummary{Calendar: tt.calendar}
			if got := summary.WeekdayRatio(); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("WeekdayRatio() = %v, want %v", got, tt.want)
			}
		})
	}
}
