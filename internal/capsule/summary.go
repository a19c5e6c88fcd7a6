package capsule

import "time"

// IndexEntry is the projection of a capsule kept in the library index.
// Used for listing without loading full records.
type IndexEntry struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Subject   string    `json:"subject"`
	Level     Level     `json:"level"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ToIndexEntry projects a Capsule onto its index entry.
func (c *Capsule) ToIndexEntry() IndexEntry {
	return IndexEntry{
		ID:        c.ID,
		Title:     c.Meta.Title,
		Subject:   c.Meta.Subject,
		Level:     c.Meta.Level,
		UpdatedAt: c.UpdatedAt,
	}
}
