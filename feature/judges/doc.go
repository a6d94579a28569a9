// Package judges synchronizes local judicial entities with the remote registry.
//
// A run starts at Orchestrator.SyncJudges, which builds a worklist from explicit
// ids, stale local records or Discovery, and feeds it through a batch.Runner
// into Reconciler.Reconcile. Each run is recorded in sync_runs by the
// AuditLogger. Identity is the registry's external id and nothing else.
package judges
