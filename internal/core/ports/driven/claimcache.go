package driven

// ClaimCache is the process-wide registry of files currently being handled.
// It is the only shared mutable state of the push pipeline.
//
// Implementations must make TryClaim linearizable: among any set of concurrent
// TryClaim calls for the same identity exactly one observes true.
type ClaimCache interface {
	// TryClaim atomically inserts identity if absent.
	// Returns true iff this call performed the insert.
	TryClaim(identity string) bool

	// Release removes identity. Releasing an unclaimed identity is a no-op.
	Release(identity string)

	// Claimed returns the currently claimed identities.
	Claimed() []string

	// Len returns the number of claimed identities.
	Len() int

	// Clear removes every claim.
	Clear()
}
