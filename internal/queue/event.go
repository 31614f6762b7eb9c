// Package queue defines message payloads exchanged over the message broker
// and the best-effort publisher that emits them.
package queue

// Account event kinds published to the "account.events" queue.
const (
	EventRegistered = "registered"
	EventLoggedIn   = "logged_in"
)

// AccountEvent is published on account lifecycle transitions.  It carries
// enough for downstream consumers to log, notify or feed analytics without
// querying the primary database.
type AccountEvent struct {
	Event      string `json:"event"`
	AccountID  uint64 `json:"account_id"`
	Email      string `json:"email"`
	OccurredAt string `json:"occurred_at"`
}
