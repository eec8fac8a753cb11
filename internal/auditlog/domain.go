package auditlog

import "time"

// Entry represents a record stored in audit_logs. Entries are immutable:
// the HTTP surface only ever lists and reads them.
type Entry struct {
	ID         int64          `json:"id"`
	Actor      string         `json:"actor"`
	Action     string         `json:"action"`
	Entity     string         `json:"entity"`
	EntityID   string         `json:"entity_id"`
	Meta       map[string]any `json:"meta,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
}
