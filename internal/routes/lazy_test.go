package routes

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func templNop() templ.Component {
	return templ.NopComponent
}

func TestLazy_LoadsOnce(t *testing.T) {
	var calls atomic.Int32
	l := NewLazy(func() (templ.Component, error) {
		calls.Add(1)
		return templ.NopComponent, nil
	})

	assert.False(t, l.Loaded())
	assert.Equal(t, int32(0), calls.Load(), "loader must not run before first use")

	c1, err := l.Resolve()
	require.NoError(t, err)
	c2, err := l.Resolve()
	require.NoError(t, err)

	assert.True(t, l.Loaded())
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, c1, c2)
}

func TestLazy_ConcurrentFirstUse(t *testing.T) {
	var calls atomic.Int32
	l := NewLazy(func() (templ.Component, error) {
		calls.Add(1)
		return templ.NopComponent, nil
	})

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = l.Resolve()
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
}

func TestLazy_CachesError(t *testing.T) {
	var calls atomic.Int32
	boom := errors.New("boom")
	l := NewLazy(func() (templ.Component, error) {
		calls.Add(1)
		return nil, boom
	})

	_, err := l.Resolve()
	assert.ErrorIs(t, err, boom)
	_, err = l.Resolve()
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, int32(1), calls.Load())
}
