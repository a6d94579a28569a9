// Package models holds the gorm models persisted by the judges sync engine.
package models
