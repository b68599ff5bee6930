package bus

import "time"

// Event represents a domain event published on the bus.
//
// Kind namespaces in use:
//
//	srv.*     inbound real-time events from the backend socket
//	session.* connection lifecycle (connected, disconnected, ready, qr)
//	unread.*  unread tracker transitions and counts
//	chatlist.* roster changes
//	stories.* status viewer changes
type Event struct {
	Kind      string
	Timestamp time.Time
	Payload   any
}
