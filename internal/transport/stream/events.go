// Package stream fans build progress out to WebSocket watchers. The
// service publishes events; every connected client gets its own
// buffered queue and clients that stop draining are disconnected
// rather than ever blocking the builder.
package stream

// Event types, in the order a build emits them.
const (
	EventBuildStarted   = "BUILD_STARTED"
	EventOpApplied      = "OP_APPLIED"
	EventBuildCompleted = "BUILD_COMPLETED"
	EventBuildFailed    = "BUILD_FAILED"
)

// Event is one progress message on the watch stream. OP_APPLIED events
// are batched: Seq is the count of operations applied so far, Cmd the
// last command in the batch.
type Event struct {
	Type    string `json:"type"`
	BuildID string `json:"build_id"`
	TS      int64  `json:"ts"`

	Seq    int    `json:"seq,omitempty"`
	Total  int    `json:"total,omitempty"`
	Blocks int64  `json:"blocks,omitempty"`
	Cmd    string `json:"cmd,omitempty"`

	Description string  `json:"description,omitempty"`
	Origin      *[3]int `json:"origin,omitempty"`

	Status string `json:"status,omitempty"`
	Code   string `json:"code,omitempty"`
	Error  string `json:"error,omitempty"`
}
