package actor

// Strategy decides, given the index of a terminated member within a
// children group's registration order, which members must be stopped
// and restarted together (§4.9).
type Strategy int

const (
	// OneForOne restarts only the failed child.
	OneForOne Strategy = iota
	// OneForAll stops every sibling, then restarts them all.
	OneForAll
	// RestForOne stops every sibling created after the failed one (in
	// registration order), then restarts them in order.
	RestForOne
)

func (s Strategy) String() string {
	switch s {
	case OneForOne:
		return "one_for_one"
	case OneForAll:
		return "one_for_all"
	case RestForOne:
		return "rest_for_one"
	default:
		return "unknown"
	}
}

// affected returns the indices (into a members slice ordered by
// registration) that must be stopped-and-restarted alongside failedIdx
// under s, including failedIdx itself.
func (s Strategy) affected(failedIdx, total int) []int {
	switch s {
	case OneForAll:
		idx := make([]int, total)
		for i := range idx {
			idx[i] = i
		}
		return idx
	case RestForOne:
		idx := make([]int, 0, total-failedIdx)
		for i := failedIdx; i < total; i++ {
			idx = append(idx, i)
		}
		return idx
	default: // OneForOne
		return []int{failedIdx}
	}
}
