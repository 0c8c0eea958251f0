package sweep

import "github.com/nextlevelbuilder/sweeper/pkg/protocol"

// Human-readable status messages, chosen by statusMessage.
const (
	msgNeedIdentity = "sign-in required: no identity detected"
	msgWrongView    = "waiting for a sweepable view"
	msgDeleting     = "deleting a flagged post"
	msgScanning     = "scanning for flagged posts"
	msgReady        = "ready"
)

// Unavailability reasons recorded into lastError when the agent gates itself.
const (
	reasonNoIdentity = "no signed-in identity detected"
	reasonWrongView  = "left the sweepable view"
)

// statusMessage derives the snapshot message from state alone. lastError wins;
// otherwise the ladder is: no identity → wrong view → deleting → scanning →
// ready. This is a pure function of the snapshot, independent of how the
// state was reached.
func statusMessage(st protocol.SweepStatus, lastError string) string {
	if lastError != "" {
		return lastError
	}
	switch {
	case st.Identity == "":
		return msgNeedIdentity
	case !st.CanRun:
		return msgWrongView
	case st.Deleting:
		return msgDeleting
	case st.Running:
		return msgScanning
	default:
		return msgReady
	}
}
