// Package protocol defines the event names and payload shapes shared between
// the sweep agent, the in-process bus, and WebSocket observers.
package protocol

// Event names pushed on the bus and forwarded to WebSocket clients.
const (
	// EventStatus carries a SweepStatus snapshot. Published on every agent
	// state transition and on availability changes.
	EventStatus = "sweep.status"

	// EventDeleted announces one confirmed deletion. Payload is DeletedPost.
	EventDeleted = "sweep.deleted"

	// EventShutdown tells observers the process is going away.
	EventShutdown = "shutdown"
)
