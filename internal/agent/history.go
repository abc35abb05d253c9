package agent

// defaultHistoryLimit caps chat history when no explicit limit is configured.
const defaultHistoryLimit = 200

// chatHistory is a fixed-capacity ring buffer of chat messages with
// oldest-first eviction. It is not safe for concurrent use; the runtime
// guards it with its state lock.
type chatHistory struct {
	entries []ChatMessage
	head    int
	size    int
}

func newChatHistory(limit int) *chatHistory {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	return &chatHistory{
		entries: make([]ChatMessage, limit),
	}
}

// append adds a message, evicting the oldest entry when full.
func (h *chatHistory) append(msg ChatMessage) {
	idx := (h.head + h.size) % len(h.entries)
	h.entries[idx] = msg
	if h.size < len(h.entries) {
		h.size++
	} else {
		h.head = (h.head + 1) % len(h.entries)
	}
}

// snapshot returns the messages oldest-first as a fresh slice.
func (h *chatHistory) snapshot() []ChatMessage {
	out := make([]ChatMessage, h.size)
	for i := 0; i < h.size; i++ {
		out[i] = h.entries[(h.head+i)%len(h.entries)]
	}
	return out
}

func (h *chatHistory) len() int { return h.size }
