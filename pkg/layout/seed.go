package layout

import (
	"math"

	"github.com/nodescape/nodescape/pkg/entity"
	"github.com/nodescape/nodescape/pkg/observability"
)

// DefaultSpacing is the ring distance used by seed placement when no node
// spacing is configured.
const DefaultSpacing = 100

// groupSeedOffset displaces a synthesized group from its expansion anchor.
// Both components are non-zero: a purely horizontal or vertical line
// between the group, the anchor and the anchor's existing neighbor is a
// stable-but-wrong configuration the force-directed solver cannot escape.
var groupSeedOffset = entity.Point{X: 120, Y: 80}

// SeedRings assigns deterministic pending positions to freshly created
// nodes by placing them on concentric rings around the anchor, without
// running the layout engine.
//
// Ring 0 holds a single node at the anchor. Ring k (k >= 1) holds
// min(remaining, floor(2*pi*k)) nodes evenly spaced by angle at radial
// distance k*spacing. Ring circumference grows linearly with k and so does
// the node count per ring, approximating uniform areal density; the
// force-directed pass then starts from a collision-light configuration
// instead of a single overlapping pile.
func SeedRings(nodes []*entity.Node, anchor entity.Point, spacing float64) {
	if len(nodes) == 0 {
		return
	}
	if spacing <= 0 {
		spacing = DefaultSpacing
	}

	nodes[0].Seed(anchor)

	rest := nodes[1:]
	for ring := 1; len(rest) > 0; ring++ {
		capacity := int(math.Floor(2 * math.Pi * float64(ring)))
		count := min(len(rest), capacity)
		radius := float64(ring) * spacing

		for i := 0; i < count; i++ {
			angle := 2 * math.Pi * float64(i) / float64(count)
			rest[i].Seed(entity.Point{
				X: anchor.X + radius*math.Cos(angle),
				Y: anchor.Y + radius*math.Sin(angle),
			})
		}
		rest = rest[count:]
	}

	observability.Layout().OnSeed(len(nodes), false)
}
