package protocol

// SweepStatus is the immutable status snapshot published on EventStatus.
type SweepStatus struct {
	Running      bool   `json:"running"`
	Deleting     bool   `json:"deleting"`
	DeletedCount int    `json:"deletedCount"`
	Identity     string `json:"identity,omitempty"`
	CanRun       bool   `json:"canRun"`
	Message      string `json:"message"`
}

// DeletedPost is the payload of EventDeleted.
type DeletedPost struct {
	CycleID   string `json:"cycleId"`
	Permalink string `json:"permalink,omitempty"`
	Identity  string `json:"identity"`
}

// EventFrame is the wire shape sent to WebSocket observers.
type EventFrame struct {
	Event   string `json:"event"`
	Payload any    `json:"payload,omitempty"`
}
