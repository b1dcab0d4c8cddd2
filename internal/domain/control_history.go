package domain

import "time"

// ControlSource where a control command originated.
type ControlSource string

const (
	SourceManual      ControlSource = "manual"
	SourceSchedule    ControlSource = "schedule"
	SourceAutomation  ControlSource = "automation"
	SourceScene       ControlSource = "scene"
	SourceExternalAPI ControlSource = "external_api"
)

// ControlHistoryEntry one persisted row per dispatch attempt, success
// or failure. Never mutated after insert.
type ControlHistoryEntry struct {
	ID           string
	GreenhouseID string
	ControlKey   string
	ControlName  string
	Action       string
	Value        string
	Source       ControlSource
	UserID       *string
	IPAddress    *string
	Success      bool
	ErrorMessage *string
	CreatedAt    time.Time
}
