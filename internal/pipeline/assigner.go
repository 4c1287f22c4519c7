package pipeline

import (
	"math/rand"
	"sync"
	"time"
)

// OwnerAssigner picks the CRM user that will own a created lead. Each pick
// is an independent uniform draw over the user list; consecutive leads can
// land on the same owner and selections carry no memory.
type OwnerAssigner struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewOwnerAssigner creates an assigner with a time-seeded source
func NewOwnerAssigner() *OwnerAssigner {
	return &OwnerAssigner{
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// NewOwnerAssignerWithSeed creates an assigner with a fixed seed, for tests
func NewOwnerAssignerWithSeed(seed int64) *OwnerAssigner {
	return &OwnerAssigner{
		rng: rand.New(rand.NewSource(seed)),
	}
}

// Assign returns a user id drawn uniformly from the list. ok is false when
// the list is empty, in which case the caller skips owner assignment.
func (a *OwnerAssigner) Assign(userIDs []int) (int, bool) {
	if len(userIDs) == 0 {
		return 0, false
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	return userIDs[a.rng.Intn(len(userIDs))], true
}
