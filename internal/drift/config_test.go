package drift

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfigMatchesDocumentedDefaults(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 10, cfg.WindowSize)
	assert.Equal(t, 15*time.Second, cfg.ValidityPeriod)
	assert.Equal(t, 10, cfg.MaxDriftSequence)
	assert.Equal(t, 2.0, cfg.DriftMultiplier)
	assert.Equal(t, 30.0, cfg.LinearAngleThresholdDeg)
	assert.Equal(t, 50.0, cfg.FloorRadiusMeters)
}
