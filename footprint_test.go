package camfov

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRigFootprint_Wireframe(t *testing.T) {
	rig := NewRig(indoorTestSpec())
	fp := RigFootprint(rig)

	require.Len(t, fp.Edges, 12)
	origin := rig.Root.WorldPosition()
	reach := fp.FarOutline[0].Sub(origin).Len() + 0.05

	nearest := reach
	for _, tube := range fp.Edges {
		assert.Len(t, tube, edgeTubeSides*6)
		for _, p := range tube {
			d := p.Sub(origin).Len()
			assert.LessOrEqual(t, d, reach)
			nearest = min(nearest, d)
		}
	}
	assert.Less(t, nearest, float32(0.2), "legs start at the near plane, in world space")
	assert.Empty(t, fp.Triangles, "nothing solved yet")
}
