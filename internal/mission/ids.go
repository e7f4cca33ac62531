package mission

import (
	"strconv"
	"sync/atomic"

	"github.com/google/uuid"
)

// IDGenerator allocates plan and node identifiers. The planner is handed one
// explicitly so that plan construction stays deterministic under test.
type IDGenerator interface {
	NewID() uuid.UUID
}

// RandomIDs allocates random (version 4) identifiers
type RandomIDs struct{}

func (RandomIDs) NewID() uuid.UUID {
	return uuid.New()
}

// SequenceIDs allocates name-based (version 5) identifiers derived from a
// namespace and a monotonically increasing counter. Two generators with the
// same namespace yield the same sequence. Safe for concurrent use.
type SequenceIDs struct {
	namespace uuid.UUID
	next      atomic.Uint64
}

// NewSequenceIDs creates a deterministic generator rooted at namespace
func NewSequenceIDs(namespace uuid.UUID) *SequenceIDs {
	return &SequenceIDs{namespace: namespace}
}

func (s *SequenceIDs) NewID() uuid.UUID {
	n := s.next.Add(1)
	return uuid.NewSHA1(s.namespace, []byte(strconv.FormatUint(n, 10)))
}
