package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ShayCichocki/scriptroom/internal/agent"
	"github.com/ShayCichocki/scriptroom/internal/orchestrator"
	"github.com/ShayCichocki/scriptroom/pkg/models"
)

func idle() agent.Backend {
	return agent.BackendFunc(func(context.Context, agent.Request) (agent.Reply, error) {
		return agent.Reply{}, nil
	})
}

func testFactory(created *atomic.Int32, creds *sync.Map) Factory {
	return func(id, credential string) (*orchestrator.Orchestrator, error) {
		created.Add(1)
		if creds != nil {
			creds.Store(id, credential)
		}
		return orchestrator.New(idle(), orchestrator.WithSessionID(id), orchestrator.WithPaceDelay(0))
	}
}

func TestRegistry_GetOrCreateReturnsSameSession(t *testing.T) {
	var created atomic.Int32
	var creds sync.Map
	r := NewRegistry(testFactory(&created, &creds))

	a, err := r.GetOrCreate("s1", "sk-ant-first")
	require.NoError(t, err)
	b, err := r.GetOrCreate("s1", "sk-ant-second")
	require.NoError(t, err)

	assert.Same(t, a, b)
	assert.Equal(t, int32(1), created.Load())
	cred, _ := creds.Load("s1")
	assert.Equal(t, "sk-ant-first", cred)
	assert.Equal(t, "s1", a.ID())
}

func TestRegistry_SessionsAreIndependent(t *testing.T) {
	var created atomic.Int32
	r := NewRegistry(testFactory(&created, nil))

	a, err := r.GetOrCreate("a", "")
	require.NoError(t, err)
	b, err := r.GetOrCreate("b", "")
	require.NoError(t, err)

	_, err = a.Start(context.Background(), "Roman aqueducts", "")
	require.NoError(t, err)

	assert.NotSame(t, a.Bus(), b.Bus())
	assert.True(t, a.State().Started())
	assert.False(t, b.State().Started())
	assert.Zero(t, b.Bus().Len())
}

func TestRegistry_ConcurrentGetOrCreate(t *testing.T) {
	var created atomic.Int32
	r := NewRegistry(testFactory(&created, nil))

	const sessions, callers = 8, 16
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := r.GetOrCreate(fmt.Sprintf("s%d", i%sessions), "")
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, sessions, r.Len())
	assert.Equal(t, int32(sessions), created.Load())
}

func TestRegistry_FactoryError(t *testing.T) {
	r := NewRegistry(func(string, string) (*orchestrator.Orchestrator, error) {
		return nil, errors.New("no API key")
	})

	_, err := r.GetOrCreate("s1", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no API key")
	assert.Zero(t, r.Len())

	_, err = r.GetOrCreate("", "")
	assert.Error(t, err)
}

func TestRegistry_ResetKeepsSession(t *testing.T) {
	var created atomic.Int32
	r := NewRegistry(testFactory(&created, nil))

	o, err := r.GetOrCreate("s1", "")
	require.NoError(t, err)
	_, err = o.Start(context.Background(), "Roman aqueducts", "")
	require.NoError(t, err)

	require.NoError(t, r.Reset("s1"))

	got, ok := r.Get("s1")
	require.True(t, ok)
	assert.Same(t, o, got)
	assert.Equal(t, models.PhaseIdle, got.State().Phase)
	assert.False(t, got.State().Started())

	assert.ErrorIs(t, r.Reset("missing"), ErrUnknownSession)
}

func TestRegistry_DisposeStopsAndRemoves(t *testing.T) {
	var created atomic.Int32
	r := NewRegistry(testFactory(&created, nil))

	o, err := r.GetOrCreate("s1", "")
	require.NoError(t, err)
	_, err = o.Start(context.Background(), "Roman aqueducts", "")
	require.NoError(t, err)

	require.NoError(t, r.Dispose("s1"))

	_, ok := r.Get("s1")
	assert.False(t, ok)
	assert.False(t, o.State().Running)
	assert.ErrorIs(t, r.Dispose("s1"), ErrUnknownSession)
}

func TestRegistry_StopAllAndIDs(t *testing.T) {
	var created atomic.Int32
	r := NewRegistry(testFactory(&created, nil))

	for _, id := range []string{"b", "a"} {
		o, err := r.GetOrCreate(id, "")
		require.NoError(t, err)
		_, err = o.Start(context.Background(), "topic "+id, "")
		require.NoError(t, err)
	}

	assert.Equal(t, []string{"a", "b"}, r.IDs())

	r.StopAll()
	for _, id := range r.IDs() {
		o, _ := r.Get(id)
		assert.False(t, o.State().Running)
	}
}
