package fetch

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubFetcher 测试替身
type stubFetcher struct {
	outcome Outcome
	err     error
	calls   int
}

func (s *stubFetcher) Fetch(ctx context.Context, url, dir string) (Outcome, error) {
	s.calls++
	return s.outcome, s.err
}

func TestCoordinatorSuccess(t *testing.T) {
	primary := &stubFetcher{outcome: Outcome{ExitCode: 0}}
	secondary := &stubFetcher{outcome: Outcome{ExitCode: 0}}

	c := NewCoordinator(primary, secondary)
	outcome, err := c.Fetch(context.Background(), "https://example.com/v", t.TempDir())
	require.NoError(t, err)
	assert.True(t, outcome.Success())
	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, 1, secondary.calls)
}

func TestCoordinatorSecondaryFailureIsSoft(t *testing.T) {
	t.Run("nonzero exit", func(t *testing.T) {
		primary := &stubFetcher{outcome: Outcome{ExitCode: 0}}
		secondary := &stubFetcher{outcome: Outcome{ExitCode: 1, Stderr: []byte("chat unavailable")}}

		c := NewCoordinator(primary, secondary)
		_, err := c.Fetch(context.Background(), "https://example.com/v", t.TempDir())
		assert.NoError(t, err, "次抓取失败不应影响整体结果")
	})

	t.Run("spawn failure", func(t *testing.T) {
		primary := &stubFetcher{outcome: Outcome{ExitCode: 0}}
		secondary := &stubFetcher{err: errors.New("exec: not found")}

		c := NewCoordinator(primary, secondary)
		_, err := c.Fetch(context.Background(), "https://example.com/v", t.TempDir())
		assert.NoError(t, err)
	})
}

func TestCoordinatorPrimaryExitError(t *testing.T) {
	primary := &stubFetcher{outcome: Outcome{ExitCode: 2, Stderr: []byte("403 forbidden")}}
	secondary := &stubFetcher{outcome: Outcome{ExitCode: 0}}

	c := NewCoordinator(primary, secondary)
	_, err := c.Fetch(context.Background(), "https://example.com/v", t.TempDir())
	require.Error(t, err)

	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 2, exitErr.ExitCode)
	assert.Contains(t, exitErr.Stderr, "403 forbidden")

	// 次抓取仍应被等待执行
	assert.Equal(t, 1, secondary.calls)
}

func TestCoordinatorPrimarySpawnError(t *testing.T) {
	primary := &stubFetcher{err: errors.New("exec: no such file")}

	c := NewCoordinator(primary, nil)
	_, err := c.Fetch(context.Background(), "https://example.com/v", t.TempDir())
	require.Error(t, err)

	var exitErr *ExitError
	assert.False(t, errors.As(err, &exitErr), "spawn 失败不是 ExitError")
}

func TestCoordinatorWithoutSecondary(t *testing.T) {
	primary := &stubFetcher{outcome: Outcome{ExitCode: 0}}

	c := NewCoordinator(primary, nil)
	_, err := c.Fetch(context.Background(), "https://example.com/v", t.TempDir())
	assert.NoError(t, err)
}
