package ethereum

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestThrottleBoundsConcurrency(t *testing.T) {
	th := NewThrottle(2)

	var inFlight, peak int32
	wg := sync.WaitGroup{}
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := th.Do(context.Background(), func() error {
				n := atomic.AddInt32(&inFlight, 1)
				for {
					p := atomic.LoadInt32(&peak)
					if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
						break
					}
				}
				time.Sleep(5 * time.Millisecond)
				atomic.AddInt32(&inFlight, -1)
				return nil
			})
			if err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()
	require.LessOrEqual(t, atomic.LoadInt32(&peak), int32(2))
}

func TestThrottleCanceled(t *testing.T) {
	th := NewThrottle(1)
	release := make(chan struct{})
	go th.Do(context.Background(), func() error {
		<-release
		return nil
	})
	defer close(release)

	// wait until the only slot is taken
	require.Eventually(t, func() bool { return len(th.tokens) == 1 }, time.Second, time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	called := false
	err := th.Do(ctx, func() error {
		called = true
		return nil
	})
	require.Equal(t, context.Canceled, err)
	require.False(t, called)
}
