package storage

// State maps validator addresses to the bytes stored there.
//
// Contract:
//   - Addresses MUST be well-formed (address.Valid); others yield ErrInvalidAddress.
//   - Get MUST return ErrNotFound when nothing is stored at the address.
//   - Put replaces any existing value; callers needing create-once semantics
//     check Has under their own lock.
//   - Delete removes the value at the address; deleting a missing address
//     is not an error.
//   - Returned byte slices are owned by the caller.
type State interface {
	Get(addr string) ([]byte, error)
	Put(addr string, value []byte) error
	Has(addr string) bool
	Delete(addr string) error
}
