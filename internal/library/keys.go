package library

// Persisted layout.
const (
	IndexKey         = "pc_capsules_index"
	CapsuleKeyPrefix = "pc_capsule_"
)

// CapsuleKey returns the store key of the capsule record for id.
func CapsuleKey(id string) string {
	return CapsuleKeyPrefix + id
}
