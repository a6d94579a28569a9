package models

import "time"

// Run kinds.
const (
	KindDiscovery    = "discovery"
	KindSpecificIDs  = "specific-ids"
	KindStaleRefresh = "stale-refresh"
)

// Run statuses. A run moves from started to exactly one terminal status.
const (
	StatusStarted   = "started"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// SyncRun is the audit row of one orchestrator run.
type SyncRun struct {
	ID              uint       `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	SyncID          string     `gorm:"column:sync_id;size:36;uniqueIndex;not null" json:"syncId"`
	Kind            string     `gorm:"column:kind;size:32;not null" json:"kind"`
	Status          string     `gorm:"column:status;size:16;index;not null" json:"status"`
	OptionsSnapshot string     `gorm:"column:options_snapshot;type:text" json:"options"`
	StartedAt       time.Time  `gorm:"column:started_at;index" json:"startedAt"`
	CompletedAt     *time.Time `gorm:"column:completed_at" json:"completedAt,omitempty"`
	DurationMs      *int64     `gorm:"column:duration_ms" json:"durationMs,omitempty"`
	ResultSummary   *string    `gorm:"column:result_summary;type:text" json:"resultSummary,omitempty"`
	ErrorMessage    *string    `gorm:"column:error_message;type:text" json:"errorMessage,omitempty"`
}

func (SyncRun) TableName() string {
	return "sync_runs"
}

// Terminal reports whether the run has finished, successfully or not.
func (r *SyncRun) Terminal() bool {
	return r.Status == StatusCompleted || r.Status == StatusFailed
}

// SyncRunColumns lists the columns the audit logger reads and writes.
var SyncRunColumns = []string{
	"id", "sync_id", "kind", "status", "options_snapshot", "started_at",
	"completed_at", "duration_ms", "result_summary", "error_message",
}
