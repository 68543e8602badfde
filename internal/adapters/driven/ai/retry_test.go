package ai

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/deckqa/internal/core/domain"
)

// flakyChat fails with the queued errors before succeeding.
type flakyChat struct {
	errs  []error
	calls int
}

func (f *flakyChat) Complete(_ context.Context, prompt string) (string, error) {
	f.calls++
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		return "", err
	}
	return "echo: " + prompt, nil
}

func (f *flakyChat) ModelName() string          { return "flaky" }
func (f *flakyChat) Ping(context.Context) error { return nil }
func (f *flakyChat) Close() error               { return nil }

type flakyEmbedding struct {
	errs  []error
	calls int
}

func (f *flakyEmbedding) next() error {
	f.calls++
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		return err
	}
	return nil
}

func (f *flakyEmbedding) Embed(context.Context, string) ([]float32, error) {
	if err := f.next(); err != nil {
		return nil, err
	}
	return []float32{1, 0}, nil
}

func (f *flakyEmbedding) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	if err := f.next(); err != nil {
		return nil, err
	}
	out := make([][]float32, len(texts))
	for i := range out {
		out[i] = []float32{1, 0}
	}
	return out, nil
}

func (f *flakyEmbedding) Dimensions() int            { return 2 }
func (f *flakyEmbedding) ModelName() string          { return "flaky" }
func (f *flakyEmbedding) Ping(context.Context) error { return nil }
func (f *flakyEmbedding) Close() error               { return nil }

func fastRetry() RetryConfig {
	return RetryConfig{MaxRetries: 3, Initial: time.Millisecond, Multiplier: 2}
}

func rateLimited() error {
	return fmt.Errorf("openai: %w: slow down", domain.ErrRateLimited)
}

func TestDefaultRetryConfig_Backoff(t *testing.T) {
	cfg := DefaultRetryConfig()
	assert.Equal(t, 3, cfg.MaxRetries)
	assert.Equal(t, 500*time.Millisecond, cfg.backoff(1))
	assert.Equal(t, time.Second, cfg.backoff(2))
	assert.Equal(t, 2*time.Second, cfg.backoff(3))
}

func TestRetryChat_RecoversFromRateLimit(t *testing.T) {
	inner := &flakyChat{errs: []error{rateLimited(), rateLimited()}}
	svc := RetryChat(inner, fastRetry())

	got, err := svc.Complete(context.Background(), "hi")
	require.NoError(t, err)
	assert.Equal(t, "echo: hi", got)
	assert.Equal(t, 3, inner.calls)
	assert.Equal(t, "flaky", svc.ModelName())
}

func TestRetryChat_GivesUpAfterMaxRetries(t *testing.T) {
	inner := &flakyChat{errs: []error{rateLimited(), rateLimited(), rateLimited(), rateLimited(), rateLimited()}}
	_, err := RetryChat(inner, fastRetry()).Complete(context.Background(), "hi")

	assert.ErrorIs(t, err, domain.ErrRateLimited)
	assert.ErrorContains(t, err, "max retries (3) exceeded")
	assert.Equal(t, 4, inner.calls)
}

func TestRetryChat_OtherErrorsAreNotRetried(t *testing.T) {
	inner := &flakyChat{errs: []error{errors.New("bad request")}}
	_, err := RetryChat(inner, fastRetry()).Complete(context.Background(), "hi")

	assert.EqualError(t, err, "bad request")
	assert.Equal(t, 1, inner.calls)
}

func TestRetryChat_StopsOnCancel(t *testing.T) {
	inner := &flakyChat{errs: []error{rateLimited(), rateLimited()}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := RetryChat(inner, RetryConfig{MaxRetries: 3, Initial: time.Hour, Multiplier: 2}).Complete(ctx, "hi")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, inner.calls)
}

func TestRetryEmbedding(t *testing.T) {
	inner := &flakyEmbedding{errs: []error{rateLimited()}}
	svc := RetryEmbedding(inner, fastRetry())

	vec, err := svc.Embed(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 0}, vec)

	inner.errs = []error{rateLimited()}
	vecs, err := svc.EmbedBatch(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	assert.Len(t, vecs, 2)
	assert.Equal(t, 4, inner.calls)
	assert.Equal(t, 2, svc.Dimensions())
}

func TestRetry_NilServices(t *testing.T) {
	assert.Nil(t, RetryEmbedding(nil, fastRetry()))
	assert.Nil(t, RetryChat(nil, fastRetry()))
}
