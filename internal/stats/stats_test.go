package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAccumulatorFilteringRate(t *testing.T) {
	t.Run("zero input count does not divide by zero", func(t *testing.T) {
		a := &Accumulator{}
		assert.Equal(t, 0.0, a.FilteringRate())
	})

	t.Run("rate is rejected over input", func(t *testing.T) {
		a := &Accumulator{InputCount: 10, RejectedCount: 3}
		assert.InDelta(t, 0.3, a.FilteringRate(), 1e-9)
	})
}

func TestAccumulatorRebuildTracking(t *testing.T) {
	a := &Accumulator{}
	a.RecordRebuild(fixAt(1, 2, 100))
	a.RecordRebuild(fixAt(3, 4, 200))
	assert.Equal(t, int64(2), a.RebuildCount)
	assert.Len(t, a.RebuildPositions, 2)
}

func TestAccumulatorReset(t *testing.T) {
	a := &Accumulator{InputCount: 5, RejectedCount: 2}
	a.AddMarker(Marker{Kind: KindTunnel})
	a.Reset()
	assert.Equal(t, int64(0), a.InputCount)
	assert.Empty(t, a.Markers)
}

func TestMarkerKindWireKind(t *testing.T) {
	assert.Equal(t, "drift", KindStaticDrift.WireKind())
	assert.Equal(t, "drift", KindMovingDrift.WireKind())
	assert.Equal(t, "tunnel", KindTunnel.WireKind())
	assert.Equal(t, "speed", KindSpeed.WireKind())
	assert.Equal(t, "rebuild", KindRebuild.WireKind())
}
