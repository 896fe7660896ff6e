package ringchan_test

import (
	"sync"
	"testing"

	"github.com/srg/blescout/internal/ringchan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForceSendOverwritesOldest(t *testing.T) {
	rc := ringchan.New[int](3)

	for i := 1; i <= 5; i++ {
		rc.ForceSend(i)
	}

	// Only the last 3 values survive.
	assert.Equal(t, []int{3, 4, 5}, rc.Drain())

	m := rc.GetMetrics()
	assert.Equal(t, int64(5), m.Written)
	assert.Equal(t, int64(2), m.Overwritten)
}

func TestTryReceiveEmpty(t *testing.T) {
	rc := ringchan.New[string](1)

	v, ok := rc.TryReceive()
	assert.False(t, ok)
	assert.Empty(t, v)
}

func TestDrainEmpty(t *testing.T) {
	rc := ringchan.New[int](4)
	assert.Empty(t, rc.Drain())
}

func TestNewPanicsOnZeroCapacity(t *testing.T) {
	require.Panics(t, func() { ringchan.New[int](0) })
}

func TestConcurrentProducers(t *testing.T) {
	rc := ringchan.New[int](64)

	var wg sync.WaitGroup
	for p := 0; p < 8; p++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				rc.ForceSend(i)
			}
		}()
	}
	wg.Wait()

	m := rc.GetMetrics()
	assert.Equal(t, int64(800), m.Written)
	assert.Equal(t, m.Written-m.Overwritten, int64(rc.Len()))
}
