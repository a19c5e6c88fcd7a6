// Package kv defines the string key-value store the library persists into,
// with an in-memory implementation for tests and a SQLite one for disk.
package kv

// Store is a synchronous, process-local string key-value store.
type Store interface {
	// Get returns the value for key; ok is false when the key is absent.
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
	// Delete removes key. Deleting an absent key is not an error.
	Delete(key string) error
	// Keys returns every key starting with prefix, sorted.
	Keys(prefix string) ([]string, error)
}

// Op is a single write inside a batch.
type Op struct {
	Key    string
	Value  string
	Delete bool
}

// SetOp builds a set operation.
func SetOp(key, value string) Op {
	return Op{Key: key, Value: value}
}

// DeleteOp builds a delete operation.
func DeleteOp(key string) Op {
	return Op{Key: key, Delete: true}
}

// Batcher is implemented by stores that can apply several writes atomically.
type Batcher interface {
	Store
	Batch(ops ...Op) error
}

// Apply writes ops atomically when s supports batching, otherwise one by one
// in order. In the non-atomic case a failure leaves earlier ops applied.
func Apply(s Store, ops ...Op) error {
	if b, ok := s.(Batcher); ok {
		return b.Batch(ops...)
	}
	for _, op := range ops {
		var err error
		if op.Delete {
			err = s.Delete(op.Key)
		} else {
			err = s.Set(op.Key, op.Value)
		}
		if err != nil {
			return err
		}
	}
	return nil
}
