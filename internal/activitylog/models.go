package activitylog

import (
	"marketing-console/internal/actor"
)

// Collection is the docstore collection holding persisted log entries.
const Collection = "activity_logs"

type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
	LevelDebug   Level = "debug"
)

type Category string

const (
	CategoryAuth        Category = "auth"
	CategoryDatabase    Category = "database"
	CategoryAPI         Category = "api"
	CategoryUI          Category = "ui"
	CategorySecurity    Category = "security"
	CategoryPerformance Category = "performance"
	CategorySystem      Category = "system"
)

// Entry is one audit/activity fact. Entries are created synchronously
// in memory, persisted exactly once by the Sink, and never mutated.
type Entry struct {
	Level    Level
	Category Category
	Action   string
	Message  string

	// Details is an optional free-form structured payload.
	Details map[string]any

	// DurationSeconds is set for performance entries.
	DurationSeconds float64

	// Actor and ClientDescriptor are best-effort attribution captured
	// at enqueue time.
	Actor            actor.Identity
	ClientDescriptor string
}

func (e Entry) fields(serverTime string) map[string]any {
	f := map[string]any{
		"level":       string(e.Level),
		"category":    string(e.Category),
		"action":      e.Action,
		"message":     e.Message,
		"server_time": serverTime,
	}
	if len(e.Details) > 0 {
		f["details"] = e.Details
	}
	if e.DurationSeconds > 0 {
		f["duration"] = e.DurationSeconds
	}
	if e.Actor.ID != "" {
		f["actor_id"] = e.Actor.ID
	}
	if e.Actor.Label != "" {
		f["actor_label"] = e.Actor.Label
	}
	if e.ClientDescriptor != "" {
		f["client_descriptor"] = e.ClientDescriptor
	}
	return f
}
