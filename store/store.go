// Package store provides the opaque key-value stores backing account
// records and daily market snapshots. Callers treat records as black
// boxes; the only guarantee is atomicity of a single read or write.
package store

// AccountStore reads and writes serialized account records keyed by
// lowercased account name.
type AccountStore interface {
	ReadAccount(name string) ([]byte, bool, error)
	WriteAccount(name string, record []byte) error
}
