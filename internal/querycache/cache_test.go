package querycache_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mbaayadmin/internal/querycache"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newCache() (*querycache.Cache, *clock) {
	clk := &clock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	return querycache.New(querycache.Options{StaleTime: 5 * time.Minute, Now: clk.Now}), clk
}

func counting(calls *int32, v any) querycache.Fetcher {
	return func(ctx context.Context) (any, error) {
		atomic.AddInt32(calls, 1)
		return v, nil
	}
}

func TestConcurrentReadersShareOneFetch(t *testing.T) {
	c, _ := newCache()
	var calls int32
	release := make(chan struct{})
	fetch := func(ctx context.Context) (any, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return []string{"ada", "grace"}, nil
	}

	const readers = 8
	var wg sync.WaitGroup
	results := make([]any, readers)
	for i := 0; i < readers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err := c.Get(context.Background(), querycache.Key{"users"}, fetch)
			assert.NoError(t, err)
			results[i] = v
		}(i)
	}
	require.Eventually(t, func() bool {
		e, _ := c.Peek(querycache.Key{"users"})
		return e.State == querycache.Loading
	}, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
	for _, r := range results {
		assert.Equal(t, []string{"ada", "grace"}, r)
	}
}

func TestFreshEntryIsServedWithoutFetch(t *testing.T) {
	c, clk := newCache()
	var calls int32
	k := querycache.Key{"vendors"}

	_, err := c.Get(context.Background(), k, counting(&calls, 1))
	require.NoError(t, err)
	clk.Advance(4 * time.Minute)
	v, err := c.Get(context.Background(), k, counting(&calls, 2))
	require.NoError(t, err)
	assert.Equal(t, 1, v)
	assert.EqualValues(t, 1, calls)

	clk.Advance(2 * time.Minute)
	v, err = c.Get(context.Background(), k, counting(&calls, 3))
	require.NoError(t, err)
	assert.Equal(t, 3, v, "entry past the stale time must be re-fetched")
	assert.EqualValues(t, 2, calls)
}

func TestInvalidateForcesRefetch(t *testing.T) {
	c, _ := newCache()
	var calls int32
	k := querycache.Key{"vendor", "abc"}

	_, err := c.Get(context.Background(), k, counting(&calls, "before"))
	require.NoError(t, err)
	c.Invalidate(k)

	e, _ := c.Peek(k)
	assert.Equal(t, querycache.Idle, e.State)

	v, err := c.Get(context.Background(), k, counting(&calls, "after"))
	require.NoError(t, err)
	assert.Equal(t, "after", v)
	assert.EqualValues(t, 2, calls)
}

func TestInvalidateMatchesPrefix(t *testing.T) {
	c, _ := newCache()
	var calls int32
	ctx := context.Background()
	_, _ = c.Get(ctx, querycache.Key{"vendor", "a"}, counting(&calls, 1))
	_, _ = c.Get(ctx, querycache.Key{"vendor", "b"}, counting(&calls, 1))
	_, _ = c.Get(ctx, querycache.Key{"vendors"}, counting(&calls, 1))

	c.Invalidate(querycache.Key{"vendor"})

	a, _ := c.Peek(querycache.Key{"vendor", "a"})
	b, _ := c.Peek(querycache.Key{"vendor", "b"})
	all, _ := c.Peek(querycache.Key{"vendors"})
	assert.Equal(t, querycache.Idle, a.State)
	assert.Equal(t, querycache.Idle, b.State)
	assert.Equal(t, querycache.Ready, all.State, "vendors is not prefixed by vendor")
}

func TestLateResponseDoesNotOverwriteNewer(t *testing.T) {
	c, _ := newCache()
	k := querycache.Key{"kycRequests"}
	ctx := context.Background()

	oldStarted := make(chan struct{})
	oldRelease := make(chan struct{})
	oldDone := make(chan any)
	go func() {
		v, _ := c.Get(ctx, k, func(context.Context) (any, error) {
			close(oldStarted)
			<-oldRelease
			return "old", nil
		})
		oldDone <- v
	}()
	<-oldStarted

	c.Invalidate(k)

	v, err := c.Get(ctx, k, func(context.Context) (any, error) { return "new", nil })
	require.NoError(t, err)
	assert.Equal(t, "new", v)

	close(oldRelease)
	assert.Equal(t, "old", <-oldDone, "the caller still gets its own response")

	e, _ := c.Peek(k)
	assert.Equal(t, querycache.Ready, e.State)
	assert.Equal(t, "new", e.Data)

	var calls int32
	v, err = c.Get(ctx, k, counting(&calls, "unused"))
	require.NoError(t, err)
	assert.Equal(t, "new", v)
	assert.EqualValues(t, 0, calls)
}

func TestInvalidateDuringFlightDropsResult(t *testing.T) {
	c, _ := newCache()
	k := querycache.Key{"users"}
	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan struct{})
	go func() {
		_, _ = c.Get(context.Background(), k, func(context.Context) (any, error) {
			close(started)
			<-release
			return "pre-mutation", nil
		})
		close(done)
	}()
	<-started
	c.Invalidate(k)
	close(release)
	<-done

	e, _ := c.Peek(k)
	assert.NotEqual(t, querycache.Ready, e.State)
	assert.Nil(t, e.Data)
}

func TestFailureIsRecordedAndNotRetried(t *testing.T) {
	c, _ := newCache()
	k := querycache.Key{"all-orders"}
	var calls int32
	boom := errors.New("backend down")

	_, err := c.Get(context.Background(), k, func(context.Context) (any, error) {
		atomic.AddInt32(&calls, 1)
		return nil, boom
	})
	require.ErrorIs(t, err, boom)
	assert.EqualValues(t, 1, calls)

	e, _ := c.Peek(k)
	assert.Equal(t, querycache.Failed, e.State)
	assert.ErrorIs(t, e.Err, boom)

	v, err := c.Get(context.Background(), k, counting(&calls, "recovered"))
	require.NoError(t, err)
	assert.Equal(t, "recovered", v)
}

func TestAbandonedReaderLeavesFetchRunning(t *testing.T) {
	c, _ := newCache()
	k := querycache.Key{"allReviews"}
	release := make(chan struct{})
	ctx, cancel := context.WithCancel(context.Background())

	errc := make(chan error, 1)
	go func() {
		_, err := c.Get(ctx, k, func(fctx context.Context) (any, error) {
			<-release
			return "reviews", fctx.Err()
		})
		errc <- err
	}()
	require.Eventually(t, func() bool {
		e, _ := c.Peek(k)
		return e.State == querycache.Loading
	}, time.Second, time.Millisecond)
	cancel()
	assert.ErrorIs(t, <-errc, context.Canceled)

	close(release)
	require.Eventually(t, func() bool {
		e, _ := c.Peek(k)
		return e.State == querycache.Ready
	}, time.Second, time.Millisecond)
}

func TestClosedCacheDiscardsLateResults(t *testing.T) {
	c, _ := newCache()
	k := querycache.Key{"communityPosts"}
	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan struct{})
	go func() {
		_, _ = c.Get(context.Background(), k, func(context.Context) (any, error) {
			close(started)
			<-release
			return "posts", nil
		})
		close(done)
	}()
	<-started
	c.Close()
	close(release)
	<-done

	_, ok := c.Peek(k)
	assert.False(t, ok)
	_, err := c.Get(context.Background(), k, counting(new(int32), 1))
	assert.ErrorIs(t, err, querycache.ErrClosed)
}

func TestTypedQuery(t *testing.T) {
	c, _ := newCache()
	got, err := querycache.Query(context.Background(), c, querycache.Key{"n"}, func(context.Context) (int, error) { return 7, nil })
	require.NoError(t, err)
	assert.Equal(t, 7, got)

	_, err = querycache.Query(context.Background(), c, querycache.Key{"n"}, func(context.Context) (string, error) { return "x", nil })
	assert.Error(t, err, "cached int read back as string")
}

func TestRegistryIsolatesSessions(t *testing.T) {
	r := querycache.NewRegistry(querycache.Options{})
	a := r.For("sid-a")
	assert.Same(t, a, r.For("sid-a"))
	assert.NotSame(t, a, r.For("sid-b"))
	assert.Equal(t, 2, r.Len())

	r.Drop("sid-a")
	assert.Equal(t, 1, r.Len())
	_, err := a.Get(context.Background(), querycache.Key{"x"}, counting(new(int32), 1))
	assert.ErrorIs(t, err, querycache.ErrClosed)
}
