package model

// LeadMessage is the rated-lead event published to Kafka.
type LeadMessage struct {
	Login   string     `json:"login"`
	Rating  float64    `json:"rating"`
	Depth   int        `json:"depth"`
	Tags    StringList `json:"tags"`
	Summary string     `json:"summary"`
}
