package models

import (
	"crypto/sha256"
	"database/sql/driver"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	json "github.com/goccy/go-json"
)

type EventType string

const (
	EventOpen       EventType = "open"
	EventClick      EventType = "click"
	EventPageView   EventType = "page_view"
	EventSessionEnd EventType = "session_end"
)

func (e EventType) IsValid() bool {
	switch e {
	case EventOpen, EventClick, EventPageView, EventSessionEnd:
		return true
	}
	return false
}

const (
	MetaTimeSpentSeconds = "timeSpentSeconds"
	MetaTargetURL        = "targetUrl"
	MetaUserAgent        = "userAgent"
)

// Metadata is the open key/value bag stored with every event as a JSON column.
type Metadata map[string]any

func (m Metadata) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (m *Metadata) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*m = Metadata{}
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("unsupported metadata type %T", src)
	}
	if len(raw) == 0 {
		*m = Metadata{}
		return nil
	}
	out := Metadata{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return err
	}
	*m = out
	return nil
}

// Float reads a numeric metadata value; JSON numbers decode as float64.
func (m Metadata) Float(key string) (float64, bool) {
	v, ok := m[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

var ErrUnknownEventType = errors.New("unknown event type")

// AnalyticsEvent rows are append-only. Destinations have no length limit, so click dedup
// matches on TargetHash, which fits in the dedup index.
type AnalyticsEvent struct {
	ID           uint      `gorm:"primaryKey"`
	EventType    EventType `gorm:"size:32;not null;index:idx_events_dedup,priority:1"`
	SubjectID    *string   `gorm:"size:64;index:idx_events_dedup,priority:2"`
	SessionID    string    `gorm:"size:64"`
	NewsletterID string    `gorm:"size:64;not null;index:idx_events_dedup,priority:3"`
	ArticleID    *string   `gorm:"size:64;index"`
	TargetURL    string    `gorm:"type:text"`
	TargetHash   string    `gorm:"size:64;index:idx_events_dedup,priority:4"`
	OccurredAt   time.Time `gorm:"not null;index;index:idx_events_dedup,priority:5"`
	Metadata     Metadata  `gorm:"type:text"`
}

// HashTarget returns the SHA-256 hex of a click destination, or "" for none.
func HashTarget(target string) string {
	if target == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(target))
	return hex.EncodeToString(sum[:])
}

func (AnalyticsEvent) TableName() string {
	return "analytics_events"
}
