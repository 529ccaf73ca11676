package ws

import "encoding/json"

const (
	eventError = "live/error"
	ackSuffix  = "-ack"
)

// Envelope wraps every frame in both directions. ID is echoed back on the
// reply so a screen can match it to its request.
type Envelope struct {
	ID    string          `json:"id,omitempty"`
	Event string          `json:"event"`
	Body  json.RawMessage `json:"body,omitempty"`
} // @name LiveEnvelope

type NoBody struct{}

// SnapshotBody answers "live/snapshot". Running is null when no auction runs.
type SnapshotBody struct {
	Running json.RawMessage `json:"running"`
} // @name LiveSnapshot

type ErrorBody struct {
	Error string `json:"error"`
} // @name LiveError

func errorEnvelope(id string, err error) Envelope {
	body, _ := json.Marshal(ErrorBody{Error: err.Error()})
	return Envelope{ID: id, Event: eventError, Body: body}
}
