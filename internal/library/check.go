package library

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/hpungsan/pocket/internal/capsule"
	"github.com/hpungsan/pocket/internal/errors"
	"github.com/hpungsan/pocket/internal/kv"
	"github.com/hpungsan/pocket/internal/progress"
)

// CheckReport describes how far the stored index is from the stored records.
type CheckReport struct {
	Indexed int `json:"indexed"`
	Records int `json:"records"`

	// CorruptIndex is set when the index key holds unparsable data.
	CorruptIndex bool `json:"corrupt_index"`

	// OrphanEntries are index entries with no loadable record.
	OrphanEntries []string `json:"orphan_entries"`

	// UnindexedRecords are loadable records missing from the index.
	UnindexedRecords []string `json:"unindexed_records"`

	// DuplicateEntries are ids listed more than once in the index.
	DuplicateEntries []string `json:"duplicate_entries"`

	// CorruptRecords are capsule keys whose value cannot be parsed.
	CorruptRecords []string `json:"corrupt_records"`

	// OrphanProgress are progress records whose capsule is gone.
	OrphanProgress []string `json:"orphan_progress"`
}

// Consistent reports whether the index lists exactly the loadable records
// and no progress is left behind.
func (r *CheckReport) Consistent() bool {
	return !r.CorruptIndex &&
		len(r.OrphanEntries) == 0 &&
		len(r.UnindexedRecords) == 0 &&
		len(r.DuplicateEntries) == 0 &&
		len(r.OrphanProgress) == 0
}

type scan struct {
	report  *CheckReport
	index   []capsule.IndexEntry
	records map[string]*capsule.Capsule
}

// Check compares the index with the stored records without changing anything.
func (r *Repository) Check() (*CheckReport, error) {
	s, err := r.scan()
	if err != nil {
		return nil, err
	}
	return s.report, nil
}

// Repair rewrites the index so it lists exactly the loadable records, and
// deletes progress of capsules that no longer exist. Entries keep their
// order and are refreshed from their records; unindexed records are
// appended newest first. Corrupt records are left in place.
//
// The returned report describes the state found before repairing.
func (r *Repository) Repair() (*CheckReport, error) {
	s, err := r.scan()
	if err != nil {
		return nil, err
	}
	if s.report.Consistent() {
		return s.report, nil
	}

	seen := make(map[string]bool, len(s.index))
	rebuilt := make([]capsule.IndexEntry, 0, len(s.records))
	for _, e := range s.index {
		c, ok := s.records[e.ID]
		if !ok || seen[e.ID] {
			continue
		}
		seen[e.ID] = true
		rebuilt = append(rebuilt, c.ToIndexEntry())
	}

	var missing []*capsule.Capsule
	for _, id := range s.report.UnindexedRecords {
		missing = append(missing, s.records[id])
	}
	sort.SliceStable(missing, func(i, j int) bool {
		return missing[i].UpdatedAt.After(missing[j].UpdatedAt)
	})
	for _, c := range missing {
		rebuilt = append(rebuilt, c.ToIndexEntry())
	}

	index, err := json.Marshal(rebuilt)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	ops := []kv.Op{kv.SetOp(IndexKey, string(index))}
	for _, id := range s.report.OrphanProgress {
		ops = append(ops, kv.DeleteOp(progress.Key(id)))
	}
	if err := kv.Apply(r.kv, ops...); err != nil {
		return nil, err
	}

	r.logger.Info("index repaired",
		"entries", len(rebuilt),
		"dropped", len(s.report.OrphanEntries)+len(s.report.DuplicateEntries),
		"added", len(missing),
		"progress_removed", len(s.report.OrphanProgress))
	return s.report, nil
}

func (r *Repository) scan() (*scan, error) {
	report := &CheckReport{
		OrphanEntries:    []string{},
		UnindexedRecords: []string{},
		DuplicateEntries: []string{},
		CorruptRecords:   []string{},
		OrphanProgress:   []string{},
	}

	var index []capsule.IndexEntry
	raw, ok, err := r.kv.Get(IndexKey)
	if err != nil {
		return nil, err
	}
	if ok {
		if err := json.Unmarshal([]byte(raw), &index); err != nil {
			report.CorruptIndex = true
			index = nil
		}
	}
	report.Indexed = len(index)

	keys, err := r.kv.Keys(CapsuleKeyPrefix)
	if err != nil {
		return nil, err
	}
	records := make(map[string]*capsule.Capsule, len(keys))
	corrupt := make(map[string]bool)
	for _, key := range keys {
		id := strings.TrimPrefix(key, CapsuleKeyPrefix)
		value, ok, err := r.kv.Get(key)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		c, err := decodeCapsule(value)
		if err != nil {
			report.CorruptRecords = append(report.CorruptRecords, id)
			corrupt[id] = true
			continue
		}
		c.ID = id
		records[id] = c
	}
	report.Records = len(records)

	indexed := make(map[string]bool, len(index))
	for _, e := range index {
		if indexed[e.ID] {
			report.DuplicateEntries = append(report.DuplicateEntries, e.ID)
			continue
		}
		indexed[e.ID] = true
		if _, ok := records[e.ID]; !ok {
			report.OrphanEntries = append(report.OrphanEntries, e.ID)
		}
	}
	for id := range records {
		if !indexed[id] {
			report.UnindexedRecords = append(report.UnindexedRecords, id)
		}
	}
	sort.Strings(report.UnindexedRecords)

	progressKeys, err := r.kv.Keys(progress.KeyPrefix)
	if err != nil {
		return nil, err
	}
	for _, key := range progressKeys {
		id := strings.TrimPrefix(key, progress.KeyPrefix)
		if _, ok := records[id]; !ok && !corrupt[id] {
			report.OrphanProgress = append(report.OrphanProgress, id)
		}
	}
	sort.Strings(report.OrphanProgress)

	return &scan{report: report, index: index, records: records}, nil
}
