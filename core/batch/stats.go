package batch

import "context"

// Outcome is the tri-state result of processing one item.
type Outcome struct {
	Created  bool
	Updated  bool
	Enhanced bool
}

// ItemFunc processes one worklist item.
type ItemFunc func(ctx context.Context, item string) (Outcome, error)

// Stats aggregates item outcomes. Processed counts every item the ItemFunc was
// invoked for, successful or not; Skipped items are not processed.
type Stats struct {
	Processed int      `json:"processed"`
	Created   int      `json:"created"`
	Updated   int      `json:"updated"`
	Enhanced  int      `json:"enhanced"`
	Skipped   int      `json:"skipped"`
	Errors    []string `json:"errors"`
}

// Merge folds other into s.
func (s *Stats) Merge(other Stats) {
	s.Processed += other.Processed
	s.Created += other.Created
	s.Updated += other.Updated
	s.Enhanced += other.Enhanced
	s.Skipped += other.Skipped
	s.Errors = append(s.Errors, other.Errors...)
}

func (s *Stats) record(o Outcome) {
	if o.Created {
		s.Created++
	}
	if o.Updated {
		s.Updated++
	}
	if o.Enhanced {
		s.Enhanced++
	}
}
