package actor

// Resizer is an optional pluggable policy invoked on a children group's
// heartbeat tick (with_heartbeat_tick) that can grow or shrink its
// member count between bounds, adapting original_source's
// OptimalSizeExploringResizer/UpscaleStrategy (see SPEC_FULL.md
// "Supplemented features").
type Resizer interface {
	// Resize returns the desired redundancy given the current count and
	// a recent load sample (0..1, fraction of members busy). Returning
	// current leaves the group unchanged.
	Resize(current int, load float64) int
}

// BoundedResizer grows by one member when load exceeds High and shrinks
// by one when load drops below Low, clamped to [Min, Max].
type BoundedResizer struct {
	Min, Max int
	Low, High float64
}

// Resize implements Resizer.
func (r BoundedResizer) Resize(current int, load float64) int {
	next := current
	switch {
	case load > r.High && current < r.Max:
		next = current + 1
	case load < r.Low && current > r.Min:
		next = current - 1
	}
	if next < r.Min {
		next = r.Min
	}
	if next > r.Max {
		next = r.Max
	}
	return next
}

var _ Resizer = BoundedResizer{}
