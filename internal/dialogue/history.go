package dialogue

const DefaultMaxMessages = 30

// History is the ordered log of produced messages. It is owned by a single
// goroutine and is not safe for concurrent use.
//
// The backing buffer may grow to twice the configured maximum before it is
// trimmed back to the newest max entries; Messages exposes the strict view.
type History struct {
	max     int
	entries []Message
}

func NewHistory(limit int) *History {
	if limit <= 0 {
		limit = DefaultMaxMessages
	}
	return &History{max: limit}
}

func (h *History) Append(m Message) {
	h.entries = append(h.entries, m)
	if len(h.entries) > 2*h.max {
		h.trim()
	}
}

// Messages returns at most max of the newest entries in insertion order.
func (h *History) Messages() []Message {
	start := 0
	if len(h.entries) > h.max {
		start = len(h.entries) - h.max
	}
	return append([]Message(nil), h.entries[start:]...)
}

// All returns every buffered entry, including those beyond the strict view.
func (h *History) All() []Message {
	return append([]Message(nil), h.entries...)
}

// Recent returns the n-th newest non-system message, counting from 1.
func (h *History) Recent(n int) (Message, bool) {
	if n <= 0 {
		return Message{}, false
	}
	for i := len(h.entries) - 1; i >= 0; i-- {
		if h.entries[i].IsSystem() {
			continue
		}
		n--
		if n == 0 {
			return h.entries[i], true
		}
	}
	return Message{}, false
}

func (h *History) Len() int {
	return len(h.entries)
}

func (h *History) Max() int {
	return h.max
}

func (h *History) SetMax(limit int) {
	if limit <= 0 {
		return
	}
	h.max = limit
	if len(h.entries) > 2*h.max {
		h.trim()
	}
}

func (h *History) Clear() {
	h.entries = nil
}

func (h *History) trim() {
	kept := make([]Message, h.max)
	copy(kept, h.entries[len(h.entries)-h.max:])
	h.entries = kept
}
