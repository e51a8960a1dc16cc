package transcript

import (
	"strconv"
	"time"
)

type Status string

const (
	StatusActive Status = "active"
	StatusEnded  Status = "ended"
)

// Transcript is the record kept for one recognizer session.
type Transcript struct {
	ID           string     `json:"id"`
	Engine       string     `json:"engine"`
	Search       string     `json:"search,omitempty"`
	SampleRate   int        `json:"sample_rate,omitempty"`
	Status       Status     `json:"status"`
	StartedAt    time.Time  `json:"started_at"`
	LastActiveAt time.Time  `json:"last_active_at"`
	EndedAt      *time.Time `json:"ended_at,omitempty"`
}

func (t *Transcript) RedisKey() string {
	return RedisKey(t.ID)
}

func RedisKey(id string) string {
	return "transcript:" + id
}

func EntriesRedisKey(id string) string {
	return "transcript:" + id + ":entries"
}

// Entry is one final hypothesis.
type Entry struct {
	Text  string    `json:"text"`
	Final bool      `json:"final"`
	At    time.Time `json:"at"`
}

type Metrics struct {
	Date       string `json:"date"`
	Hour       int    `json:"hour"`
	Sessions   int64  `json:"sessions"`
	Utterances int64  `json:"utterances"`
	Errors     int64  `json:"errors"`
}

func MetricsRedisKey(date string, hour int) string {
	return "transcript:metrics:" + date + ":" + strconv.Itoa(hour)
}
