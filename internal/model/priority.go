package model

import (
	"math"

	"github.com/devscout/github-leadgen/cfg"
)

// NoParentPriority sorts users nobody has vouched for yet below every user
// with at least one parent rating. They stay selectable, just last.
const NoParentPriority = -1

// ComputePriority derives traversal priority from the recorded parent
// ratings: average parent rating, scaled by the direction multiplier (being
// chosen as a followee is a stronger signal than merely following someone
// strong) and attenuated by sqrt(depth) to prefer shallower users.
func ComputePriority(sum float64, count int, viaFollowing bool, depth int, crawler cfg.Crawler) float64 {
	if count == 0 {
		return NoParentPriority
	}
	avg := sum / float64(count)

	multiplier := crawler.FollowerMultiplier
	if viaFollowing {
		multiplier = crawler.FollowingMultiplier
	}

	priority := avg * multiplier
	if depth > 1 {
		priority /= math.Sqrt(float64(depth))
	}
	return priority
}
