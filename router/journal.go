package router

import "context"

// Record describes one committed transition for the journal.
type Record struct {
	Token string
	Seq   int64
	From  string
	To    string

	Retained     []string
	Entering     []string
	Exiting      []string
	Inactivating []string
	Reactivating []string
}

// Journal receives a record for every committed transition.
// Implemented by the sqlite journal; a nil journal disables recording.
//
// Journal failures are logged and do not fail the transition: the
// registry commit has already been decided by then and history is
// advisory.
type Journal interface {
	Append(ctx context.Context, rec Record) error
}
