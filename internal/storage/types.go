package storage

import "time"

// Attempt outcomes.
const (
	StatusPosted = "posted"
	StatusFailed = "failed"
)

// Attempt is one publish of one fact, including every retry it took.
type Attempt struct {
	ID       string
	FactID   int
	Status   string // "posted" or "failed"
	RemoteID string
	Tries    int
	Warning  string
	Error    string
	Text     string
	At       time.Time
}

// Stats holds aggregate statistics about the posting history.
type Stats struct {
	Posted        int64
	Failed        int64
	DistinctFacts int64
	LastPosted    time.Time
	TopFacts      []FactCount
}

// FactCount pairs a fact id with the number of times it was posted.
type FactCount struct {
	FactID int
	Count  int64
}
