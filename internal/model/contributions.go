package model

import (
	"database/sql/driver"
	"encoding/json"
	"time"
)

// ContributionDay is one cell of the contribution calendar.
type ContributionDay struct {
	Date  string `json:"date"` // YYYY-MM-DD
	Count int    `json:"count"`
}

// ContributionSummary aggregates a user's contribution activity over the
// lookback window. Read-only once fetched.
type ContributionSummary struct {
	Commits       int               `json:"commits"`
	Issues        int               `json:"issues"`
	PullRequests  int               `json:"pull_requests"`
	CalendarTotal int               `json:"calendar_total"`
	Calendar      []ContributionDay `json:"calendar"`
}

func (c *ContributionSummary) Value() (driver.Value, error) {
	if c == nil {
		return nil, nil
	}
	return json.Marshal(*c)
}

func (c *ContributionSummary) Scan(value interface{}) error {
	return scanJSON(value, c)
}

// Total is the overall contribution volume used by the follower-tier check.
func (c *ContributionSummary) Total() int {
	return c.Commits + c.Issues + c.PullRequests + c.CalendarTotal
}

// ActiveMonths counts distinct calendar months with at least one contribution.
func (c *ContributionSummary) ActiveMonths() int {
	months := make(map[string]bool)
	for _, day := range c.Calendar {
		if day.Count <= 0 {
			continue
		}
		if len(day.Date) >= 7 {
			months[day.Date[:7]] = true
		}
	}
	return len(months)
}

// WeekdayRatio is the share of calendar contributions made Monday-Friday.
// A calendar with zero contributions yields 0, never a division by zero.
func (c *ContributionSummary) WeekdayRatio() float64 {
	total := 0
	weekday := 0
	for _, day := range c.Calendar {
		if day.Count <= 0 {
			continue
		}
		t, err := time.Parse("2006-01-02", day.Date)
		if err != nil {
			continue
		}
		total += day.Count
		if t.Weekday() != time.Saturday && t.Weekday() != time.Sunday {
			weekday += day.Count
		}
	}
	if total == 0 {
		return 0
	}
	return float64(weekday) / float64(total)
}
