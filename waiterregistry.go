package threadlet

// InterestMask is the bitset of readiness conditions a waiter cares about,
// and the mask reported back by the platform poller (§4.1, §4.2).
type InterestMask uint32

const (
	InterestRead InterestMask = 1 << iota
	InterestWrite
	InterestError
	InterestHangup
)

// waiterEntry is one fd -> (task, interest-mask, deadline) mapping (§3).
type waiterEntry struct {
	fd         int
	task       *Task
	mask       InterestMask
	deadlineMs int64 // 0 means no deadline
}

// WaiterRegistry is the C3 component: a dense fd-keyed map from fd to the
// task parked on it. At most one entry per fd per loop; an entry exists iff
// the associated task is WAITING for that fd (§4.2 invariant).
type WaiterRegistry struct {
	entries map[int]*waiterEntry
}

// NewWaiterRegistry constructs an empty waiter registry.
func NewWaiterRegistry() *WaiterRegistry {
	return &WaiterRegistry{entries: make(map[int]*waiterEntry)}
}

// Add inserts a waiter entry for fd, replacing any existing one for the same
// fd (§4.2).
func (r *WaiterRegistry) Add(fd int, task *Task, mask InterestMask, deadlineMs int64) {
	r.entries[fd] = &waiterEntry{fd: fd, task: task, mask: mask, deadlineMs: deadlineMs}
}

// Lookup returns the waiter entry for fd, if any.
func (r *WaiterRegistry) Lookup(fd int) (*waiterEntry, bool) {
	e, ok := r.entries[fd]
	return e, ok
}

// Remove deletes the waiter entry for fd. Returns true if one existed.
func (r *WaiterRegistry) Remove(fd int) bool {
	if _, ok := r.entries[fd]; !ok {
		return false
	}
	delete(r.entries, fd)
	return true
}

// Count returns the number of outstanding waiters.
func (r *WaiterRegistry) Count() int { return len(r.entries) }
