package traffic

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimulatedProviderProducesPlausibleSamples(t *testing.T) {
	p := NewSimulatedProvider()

	for i := 0; i < 50; i++ {
		sample, err := p.Sample(context.Background(), testRoute)
		require.NoError(t, err)

		assert.Positive(t, sample.DurationWithoutTraffic)
		assert.GreaterOrEqual(t, sample.DurationWithTraffic, sample.DurationWithoutTraffic)
		assert.LessOrEqual(t, sample.Delta(), simMaxCongestion)
		assert.NotEmpty(t, sample.ID)
	}
}
