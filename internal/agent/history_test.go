package agent

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistoryAppendAndSnapshot(t *testing.T) {
	h := newChatHistory(4)
	h.append(ChatMessage{Role: RoleUser, Text: "q1"})
	h.append(ChatMessage{Role: RoleAgent, Text: "a1"})

	got := h.snapshot()
	require.Len(t, got, 2)
	assert.Equal(t, "q1", got[0].Text)
	assert.Equal(t, "a1", got[1].Text)
}

func TestHistoryEvictsOldestFirst(t *testing.T) {
	h := newChatHistory(3)
	for i := 1; i <= 5; i++ {
		h.append(ChatMessage{Role: RoleUser, Text: fmt.Sprintf("m%d", i)})
	}

	got := h.snapshot()
	require.Len(t, got, 3)
	assert.Equal(t, "m3", got[0].Text)
	assert.Equal(t, "m4", got[1].Text)
	assert.Equal(t, "m5", got[2].Text)
	assert.Equal(t, 3, h.len())
}

func TestHistorySnapshotIsACopy(t *testing.T) {
	h := newChatHistory(2)
	h.append(ChatMessage{Role: RoleUser, Text: "original"})

	got := h.snapshot()
	got[0].Text = "mutated"

	assert.Equal(t, "original", h.snapshot()[0].Text)
}

func TestHistoryZeroLimitUsesDefault(t *testing.T) {
	h := newChatHistory(0)
	assert.Equal(t, defaultHistoryLimit, len(h.entries))
}
