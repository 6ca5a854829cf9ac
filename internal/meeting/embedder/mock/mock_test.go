package mock_test

import (
	"context"
	"math"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/meetingmind/contextd/internal/meeting/embedder/mock"
)

func cosine(a, b []float32) float64 {
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	return dot
}

func TestEmbedDeterministic(t *testing.T) {
	ctx := context.Background()
	emb := mock.New()

	v1, err := emb.Embed(ctx, "quarterly planning meeting")
	gt.NoError(t, err)
	v2, err := emb.Embed(ctx, "quarterly planning meeting")
	gt.NoError(t, err)
	gt.Equal(t, v1, v2)
	gt.Equal(t, len(v1), emb.Dimensions())
}

func TestEmbedUnitNorm(t *testing.T) {
	ctx := context.Background()
	emb := mock.New()

	for _, text := range []string{"a", "api endpoint design", ""} {
		vec, err := emb.Embed(ctx, text)
		gt.NoError(t, err)

		var norm float64
		for _, v := range vec {
			norm += float64(v) * float64(v)
		}
		gt.True(t, math.Abs(norm-1.0) < 1e-5)
	}
}

func TestEmbedTokenOverlapOrdering(t *testing.T) {
	ctx := context.Background()
	emb := mock.New()

	query, err := emb.Embed(ctx, "rest api endpoint design")
	gt.NoError(t, err)
	near, err := emb.Embed(ctx, "api endpoint rest discussion")
	gt.NoError(t, err)
	far, err := emb.Embed(ctx, "gardening tulips and soil")
	gt.NoError(t, err)

	// Shared tokens must pull vectors closer together.
	gt.True(t, cosine(query, near) > cosine(query, far))
}

func TestCustomDimensions(t *testing.T) {
	ctx := context.Background()
	emb := mock.NewWithDimensions(32)

	vec, err := emb.Embed(ctx, "some text")
	gt.NoError(t, err)
	gt.Equal(t, len(vec), 32)
	gt.Equal(t, emb.Dimensions(), 32)
}
