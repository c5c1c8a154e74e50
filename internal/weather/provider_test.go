package weather

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSynthetic_Deterministic(t *testing.T) {
	s := NewSynthetic(1)
	at := time.Date(2024, 6, 1, 12, 15, 0, 0, time.UTC)

	a, err := s.Conditions(context.Background(), 40, -74, at)
	require.NoError(t, err)
	b, err := s.Conditions(context.Background(), 40, -74, at)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	// Same 5° cell and same hour bucket.
	c, err := s.Conditions(context.Background(), 41.5, -73.2, at.Add(30*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, a, c)
}

func TestSynthetic_Bounded(t *testing.T) {
	s := NewSynthetic(0)
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for lat := -85.0; lat <= 85; lat += 17 {
		for lon := -180.0; lon < 180; lon += 23 {
			for h := 0; h < 48; h += 7 {
				c, err := s.Conditions(context.Background(), lat, lon, start.Add(time.Duration(h)*time.Hour))
				require.NoError(t, err)
				assert.GreaterOrEqual(t, c.CloudCover, 0.0)
				assert.LessOrEqual(t, c.CloudCover, 1.0)
				assert.GreaterOrEqual(t, c.Fog, 0.0)
				assert.LessOrEqual(t, c.Fog, 1.0)
				assert.GreaterOrEqual(t, c.Precipitation, 0.0)
			}
		}
	}
}

func TestStaticAndFuncProviders(t *testing.T) {
	st := Static(Conditions{CloudCover: 0.4})
	c, err := st.Conditions(context.Background(), 0, 0, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, 0.4, c.CloudCover)

	f := ProviderFunc(func(_ context.Context, lat, _ float64, _ time.Time) (Conditions, error) {
		return Conditions{Fog: lat / 100}, nil
	})
	c, err = f.Conditions(context.Background(), 50, 0, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, 0.5, c.Fog)
}
