package lock_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-importa/internal/lock"
)

func newLocker(t *testing.T) (lock.Locker, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return lock.Locker{R: client}, mr
}

func TestTryWithLockRunsOnceAcrossReplicas(t *testing.T) {
	locker, _ := newLocker(t)
	release := make(chan struct{})
	skipped := make(chan struct{}, 3)
	var ran atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := locker.TryWithLock(context.Background(), "lock:fx:refresh", time.Second, func(context.Context) error {
				ran.Add(1)
				<-release
				return nil
			})
			if err != nil {
				t.Errorf("try lock: %v", err)
			}
			if !ok {
				skipped <- struct{}{}
			}
		}()
	}
	for i := 0; i < 3; i++ {
		select {
		case <-skipped:
		case <-time.After(time.Second):
			t.Fatal("replicas did not skip while the lease was held")
		}
	}
	close(release)
	wg.Wait()
	require.EqualValues(t, 1, ran.Load())
}

func TestTryWithLockSkipsWhenHeld(t *testing.T) {
	locker, mr := newLocker(t)
	require.NoError(t, mr.Set("lock:fx:refresh", "someone-else"))

	ran := false
	ok, err := locker.TryWithLock(context.Background(), "lock:fx:refresh", time.Second, func(context.Context) error {
		ran = true
		return nil
	})
	require.NoError(t, err)
	require.False(t, ok)
	require.False(t, ran)

	got, err := mr.Get("lock:fx:refresh")
	require.NoError(t, err)
	require.Equal(t, "someone-else", got, "foreign lock left untouched")
}

func TestTryWithLockReleasesAfterError(t *testing.T) {
	locker, mr := newLocker(t)
	boom := errors.New("boom")

	ok, err := locker.TryWithLock(context.Background(), "lock:fx:refresh", 5*time.Second, func(context.Context) error {
		require.True(t, mr.Exists("lock:fx:refresh"))
		require.Equal(t, 5*time.Second, mr.TTL("lock:fx:refresh"))
		return boom
	})
	require.True(t, ok)
	require.ErrorIs(t, err, boom)
	require.False(t, mr.Exists("lock:fx:refresh"))
}

func TestTryWithLockKeepsNewerHoldersLease(t *testing.T) {
	locker, mr := newLocker(t)

	ok, err := locker.TryWithLock(context.Background(), "lock:fx:refresh", time.Second, func(context.Context) error {
		// Our lease expired mid-run and another replica took over.
		require.NoError(t, mr.Set("lock:fx:refresh", "replica-b"))
		return nil
	})
	require.True(t, ok)
	require.NoError(t, err)

	got, err := mr.Get("lock:fx:refresh")
	require.NoError(t, err)
	require.Equal(t, "replica-b", got)
}

func TestTryWithLockReleasesAfterCancel(t *testing.T) {
	locker, mr := newLocker(t)
	ctx, cancel := context.WithCancel(context.Background())

	ok, err := locker.TryWithLock(ctx, "lock:fx:refresh", time.Second, func(context.Context) error {
		cancel()
		return nil
	})
	require.True(t, ok)
	require.NoError(t, err)
	require.False(t, mr.Exists("lock:fx:refresh"))
}

func TestTryWithLockRequiresClient(t *testing.T) {
	_, err := lock.Locker{}.TryWithLock(context.Background(), "k", time.Second, func(context.Context) error { return nil })
	require.Error(t, err)
}
