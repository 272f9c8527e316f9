package queue

import "time"

// Message is one operational note waiting to be relayed by the admin loop.
// Source names the producer (a service title or the lifecycle manager); the
// ID ties the relay attempt back to the producer's log lines.
type Message struct {
	ID         string
	Source     string
	Body       string
	EnqueuedAt time.Time
}
