package agent

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agentone/internal/llm"
)

func testManager(t *testing.T) *Manager {
	t.Helper()
	registry := testRegistry(t)
	client := &llm.MockClient{}

	runtimes := make([]*Runtime, 0, len(Variants))
	for _, variant := range Variants {
		policy, err := PolicyFor(variant)
		require.NoError(t, err)
		runtime, err := NewRuntime(string(variant), policy, registry, client)
		require.NoError(t, err)
		runtimes = append(runtimes, runtime)
	}
	return NewManager(runtimes...)
}

func TestManagerGet(t *testing.T) {
	manager := testManager(t)

	runtime, err := manager.Get("researcher")
	require.NoError(t, err)
	assert.Equal(t, "researcher", runtime.ID())
}

func TestManagerGetUnknown(t *testing.T) {
	manager := testManager(t)

	_, err := manager.Get("janitor")

	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "janitor", notFound.AgentID)
}

func TestManagerIDsPreserveOrder(t *testing.T) {
	manager := testManager(t)

	assert.Equal(t, []string{"strategist", "researcher", "data_analyst", "writer"}, manager.IDs())
}

func TestManagerSnapshots(t *testing.T) {
	manager := testManager(t)

	snapshots := manager.Snapshots()

	require.Len(t, snapshots, 4)
	for _, snap := range snapshots {
		assert.Equal(t, StatusIdle, snap.Status)
		assert.NotEmpty(t, snap.Name)
	}
}

func TestRunMetricsLoopStopsOnContext(t *testing.T) {
	manager := testManager(t)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		defer close(done)
		manager.RunMetricsLoop(ctx, 10*time.Millisecond)
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("metrics loop did not stop")
	}
}
