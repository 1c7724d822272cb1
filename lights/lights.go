package lights

import (
	"context"
	"math"
)

type Color struct {
	Red   uint8
	Green uint8
	Blue  uint8
}

// DistanceTo is the Euclidean distance between two colors in RGB space. The
// metric is fixed; palette matching depends on it staying stable.
func (c Color) DistanceTo(o Color) float64 {
	dr := float64(c.Red) - float64(o.Red)
	dg := float64(c.Green) - float64(o.Green)
	db := float64(c.Blue) - float64(o.Blue)
	return math.Sqrt(dr*dr + dg*dg + db*db)
}

// CommandID names a pre-learned command on the light device. Opaque to the
// decision engine; only the transport knows what it expands to.
type CommandID string

// Sender dispatches a single command to the light hardware.
type Sender interface {
	Send(ctx context.Context, id CommandID) error
}
