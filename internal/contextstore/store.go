package contextstore

import (
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// Role tags a turn by who spoke it. All non-assistant speakers collapse into
// RoleUser, even in multi-party rooms.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is a single dialogue utterance inside a window.
type Turn struct {
	ID      string `json:"id"`
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Store keeps one bounded FIFO turn window per user/chat key. All operations
// across all keys serialize through a single lock; expected key cardinality is
// low and critical sections are short. Windows live for the process lifetime,
// there is no expiry beyond capacity eviction.
type Store struct {
	mu            sync.RWMutex
	maxSize       int
	assistantName string
	windows       map[string][]Turn
}

// New creates a store with the given window capacity. Capacity 0 is legal and
// leaves every window perpetually empty.
func New(assistantName string, maxSize int) *Store {
	if maxSize < 0 {
		maxSize = 0
	}
	return &Store{
		maxSize:       maxSize,
		assistantName: assistantName,
		windows:       make(map[string][]Turn),
	}
}

// key scopes a window to a user, and to a chat when one is given.
func key(userID, chatID int64) string {
	if chatID != 0 {
		return fmt.Sprintf("user_%d_chat_%d", userID, chatID)
	}
	return fmt.Sprintf("user_%d", userID)
}

// Append records one utterance, evicting the oldest turn first when the
// window is at capacity. The speaker name is embedded in the stored content
// as a prefix marker so the generation model can attribute lines.
func (s *Store) Append(userID, chatID int64, speaker, text string) {
	turn := Turn{
		ID:      uuid.NewString(),
		Role:    RoleUser,
		Content: fmt.Sprintf("$%s says: $%s", speaker, text),
	}
	if speaker == s.assistantName {
		turn.Role = RoleAssistant
	}

	k := key(userID, chatID)

	s.mu.Lock()
	defer s.mu.Unlock()

	w := s.windows[k]
	for len(w) > 0 && len(w) >= s.maxSize {
		w = w[1:]
	}
	if s.maxSize > 0 {
		w = append(w, turn)
	}
	s.windows[k] = w
}

// Snapshot returns an independent copy of the window in arrival order.
// Later mutations of the store never alter a returned snapshot.
func (s *Store) Snapshot(userID, chatID int64) []Turn {
	s.mu.RLock()
	defer s.mu.RUnlock()

	w := s.windows[key(userID, chatID)]
	if len(w) == 0 {
		return nil
	}
	out := make([]Turn, len(w))
	copy(out, w)
	return out
}

// Len reports the current window length for a key.
func (s *Store) Len(userID, chatID int64) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.windows[key(userID, chatID)])
}

// Keys lists all window keys seen so far, sorted, for diagnostics.
func (s *Store) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.windows))
	for k := range s.windows {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
