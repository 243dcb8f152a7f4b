package will

// State is the persistence contract the Will Engine depends on: the Will
// table keyed by integer id, the next_will_id counter, and the
// pending-check ring buffer the scheduler scans.
type State interface {
	// NextWillID returns the next free will id and advances the counter.
	NextWillID() (uint64, error)
	// Put inserts or updates a will record.
	Put(w *Will) error
	// Get loads a single will record, or ErrNotFound.
	Get(id uint64) (*Will, error)
	// List returns every will record, for read-only observability.
	List() ([]*Will, error)
	// Enqueue appends a will id to the pending-check ring buffer.
	Enqueue(id uint64) error
	// RingSnapshot returns the full ring buffer and the current cursor
	// position, for scheduler_poll.
	RingSnapshot() (ids []uint64, cursor int, err error)
	// AdvanceCursor moves the ring cursor forward by n (mod ring length)
	// and persists it.
	AdvanceCursor(n int) error
	// PruneReleased removes every already-released will id from the ring
	// buffer, implementing the lazy-compaction resolution of Open
	// Question 4.
	PruneReleased() error
}
