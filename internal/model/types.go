package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// ParentRating records that a rated parent vouched for this user at discovery
// time. Via is the edge direction through which the user was found.
type ParentRating struct {
	Parent string  `json:"parent"`
	Rating float64 `json:"rating"`
	Via    string  `json:"via"`
}

// ParentRatings is an append-only set serialized into a JSON column.
type ParentRatings []ParentRating

func (p ParentRatings) Value() (driver.Value, error) {
	if p == nil {
		p = ParentRatings{}
	}
	return json.Marshal(p)
}

func (p *ParentRatings) Scan(value interface{}) error {
	return scanJSON(value, p)
}

// StringList is a JSON-serialized slice column (classification tags, banned
// region lists in snapshots, ...).
type StringList []string

func (s StringList) Value() (driver.Value, error) {
	if s == nil {
		s = StringList{}
	}
	return json.Marshal(s)
}

func (s *StringList) Scan(value interface{}) error {
	return scanJSON(value, s)
}

// RatingBreakdown maps rubric criterion name to its score.
type RatingBreakdown map[string]float64

func (b RatingBreakdown) Value() (driver.Value, error) {
	if b == nil {
		b = RatingBreakdown{}
	}
	return json.Marshal(b)
}

func (b *RatingBreakdown) Scan(value interface{}) error {
	return scanJSON(value, b)
}

// RepoSummary is one entry of the repo-list enrichment facet.
type RepoSummary struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Language    string `json:"language"`
	Stars       int    `json:"stars"`
	Forks       int    `json:"forks"`
}

type RepoList []RepoSummary

func (r *RepoList) Value() (driver.Value, error) {
	if r == nil {
		return nil, nil
	}
	return json.Marshal(*r)
}

func (r *RepoList) Scan(value interface{}) error {
	return scanJSON(value, r)
}

func scanJSON(value interface{}, dest interface{}) error {
	if value == nil {
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, dest)
	case string:
		return json.Unmarshal([]byte(v), dest)
	default:
		return fmt.Errorf("cannot scan %T into %T", value, dest)
	}
}
