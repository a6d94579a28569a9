package judges

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"judge-sync/core/batch"
	"judge-sync/feature/judges/models"

	"gorm.io/gorm"
)

// ErrRunFinished is returned when a terminal status is written twice.
var ErrRunFinished = errors.New("sync run already finished")

var terminalColumns = []string{"status", "completed_at", "duration_ms", "result_summary", "error_message"}

// RunSummary is the JSON stored in SyncRun.ResultSummary.
type RunSummary struct {
	batch.Stats
	ErrorCount int `json:"errorCount"`
}

// AuditLogger records one sync_runs row per run: inserted as started, then
// updated in place exactly once to completed or failed.
type AuditLogger struct {
	db  *gorm.DB
	now func() time.Time
}

// NewAuditLogger creates an AuditLogger. A nil clock uses time.Now.
func NewAuditLogger(db *gorm.DB, now func() time.Time) *AuditLogger {
	if now == nil {
		now = time.Now
	}
	return &AuditLogger{db: db, now: now}
}

// Start inserts the started row for a run. options is stored as JSON.
func (a *AuditLogger) Start(ctx context.Context, syncID, kind string, options any) (*models.SyncRun, error) {
	snapshot, err := json.Marshal(options)
	if err != nil {
		return nil, fmt.Errorf("encode run options: %w", err)
	}

	run := &models.SyncRun{
		SyncID:          syncID,
		Kind:            kind,
		Status:          models.StatusStarted,
		OptionsSnapshot: string(snapshot),
		StartedAt:       a.now().UTC(),
	}
	if err := a.db.WithContext(ctx).Create(run).Error; err != nil {
		return nil, fmt.Errorf("insert sync run: %w", err)
	}
	return run, nil
}

// Complete marks the run completed with the aggregated stats.
func (a *AuditLogger) Complete(ctx context.Context, run *models.SyncRun, stats batch.Stats) error {
	summary, err := json.Marshal(RunSummary{Stats: stats, ErrorCount: len(stats.Errors)})
	if err != nil {
		return fmt.Errorf("encode run summary: %w", err)
	}
	s := string(summary)
	return a.finish(ctx, run, models.StatusCompleted, &s, nil)
}

// Fail marks the run failed with the fault that aborted it.
func (a *AuditLogger) Fail(ctx context.Context, run *models.SyncRun, cause error) error {
	msg := "unknown error"
	if cause != nil {
		msg = cause.Error()
	}
	return a.finish(ctx, run, models.StatusFailed, nil, &msg)
}

func (a *AuditLogger) finish(ctx context.Context, run *models.SyncRun, status string, summary, errMsg *string) error {
	if run == nil {
		return errors.New("sync run is nil")
	}
	if run.Terminal() {
		return ErrRunFinished
	}

	completed := a.now().UTC()
	duration := completed.Sub(run.StartedAt).Milliseconds()

	next := *run
	next.Status = status
	next.CompletedAt = &completed
	next.DurationMs = &duration
	next.ResultSummary = summary
	next.ErrorMessage = errMsg

	res := a.db.WithContext(ctx).
		Model(&next).
		Where("status = ?", models.StatusStarted).
		Select(terminalColumns).
		Updates(&next)
	if res.Error != nil {
		return fmt.Errorf("update sync run %s: %w", run.SyncID, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrRunFinished
	}

	*run = next
	return nil
}

// Get returns the run with syncID, or nil when there is none.
func (a *AuditLogger) Get(ctx context.Context, syncID string) (*models.SyncRun, error) {
	var run models.SyncRun
	err := a.db.WithContext(ctx).Where("sync_id = ?", syncID).Take(&run).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// Recent returns up to n runs, newest first.
func (a *AuditLogger) Recent(ctx context.Context, n int) ([]models.SyncRun, error) {
	var runs []models.SyncRun
	err := a.db.WithContext(ctx).Order("started_at DESC").Order("id DESC").Limit(n).Find(&runs).Error
	return runs, err
}
