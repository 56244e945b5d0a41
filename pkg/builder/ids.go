package builder

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// IDGenerator hands out field ids. taken reports ids already in use.
type IDGenerator interface {
	Next(taken func(id string) bool) string
}

// IDStrategy names a built-in IDGenerator.
type IDStrategy string

const (
	IDStrategyTimestamp IDStrategy = "timestamp"
	IDStrategyUUID      IDStrategy = "uuid"
)

// NewIDGenerator resolves a strategy name; empty selects timestamps.
func NewIDGenerator(strategy IDStrategy) (IDGenerator, error) {
	switch IDStrategy(strings.ToLower(strings.TrimSpace(string(strategy)))) {
	case "", IDStrategyTimestamp:
		return NewTimestampIDs(nil), nil
	case IDStrategyUUID:
		return UUIDIDs{}, nil
	}
	return nil, fmt.Errorf("builder: unknown id strategy %q", strategy)
}

// TimestampIDs issues millisecond Unix timestamps as decimal strings. Ids are
// strictly increasing per generator and skip values already taken, so two
// fields added within the same millisecond still get distinct ids.
type TimestampIDs struct {
	mu   sync.Mutex
	now  func() time.Time
	last int64
}

// NewTimestampIDs returns a generator reading the given clock (time.Now when nil).
func NewTimestampIDs(now func() time.Time) *TimestampIDs {
	if now == nil {
		now = time.Now
	}
	return &TimestampIDs{now: now}
}

func (g *TimestampIDs) Next(taken func(id string) bool) string {
	g.mu.Lock()
	defer g.mu.Unlock()

	candidate := g.now().UnixMilli()
	if candidate <= g.last {
		candidate = g.last + 1
	}
	for taken != nil && taken(strconv.FormatInt(candidate, 10)) {
		candidate++
	}
	g.last = candidate
	return strconv.FormatInt(candidate, 10)
}

// UUIDIDs issues time ordered UUIDv7 strings.
type UUIDIDs struct{}

func (UUIDIDs) Next(taken func(id string) bool) string {
	for {
		id, err := uuid.NewV7()
		if err != nil {
			id = uuid.New()
		}
		if taken == nil || !taken(id.String()) {
			return id.String()
		}
	}
}
