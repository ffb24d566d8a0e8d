package motors

import (
	"net/http"

	"github.com/go-chi/render"

	"github.com/kilianp07/autopi/core/motor"
)

// SnapshotSource is implemented by motor.DualMotors.
type SnapshotSource interface {
	Snapshot() motor.Snapshot
}

// MotorStatus is the JSON form of one motor.
type MotorStatus struct {
	Direction string `json:"direction"`
	Power     int    `json:"power"`
	Frequency int    `json:"frequency"`
	Reversing bool   `json:"reversing"`
}

// Status is the body of GET /api/motors/status.
type Status struct {
	Left    MotorStatus `json:"left"`
	Right   MotorStatus `json:"right"`
	Turning bool        `json:"turning"`
}

func toStatus(s motor.State) MotorStatus {
	return MotorStatus{
		Direction: s.Direction.String(),
		Power:     s.Power,
		Frequency: s.Frequency,
		Reversing: s.Reversing,
	}
}

// NewStatusHandler returns an HTTP handler exposing the in-memory motor
// state. It never touches the hardware.
func NewStatusHandler(src SnapshotSource) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		snap := src.Snapshot()
		out := Status{Left: toStatus(snap.Left), Right: toStatus(snap.Right), Turning: snap.Turning}
		render.JSON(w, r, out)
	})
}
