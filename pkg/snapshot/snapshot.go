package snapshot

import (
	"fmt"
	"time"

	"github.com/dkillam05/farmvista-copilot-sub001/pkg/matching"
)

// Fields is one upstream row: column name to value.
type Fields map[string]any

// Collection maps record id to its fields.
type Collection map[string]Fields

// Snapshot is the read-only dataset handed over by the ingestion pipeline.
// The contract is explicit and versioned; there is no shape sniffing. Missing
// or empty collections are tolerated.
type Snapshot struct {
	Version     string
	LoadedAt    time.Time
	Collections map[string]Collection
}

// New stamps a snapshot with its version tag, falling back to the load
// timestamp when the pipeline did not supply an explicit one.
func New(version string, collections map[string]Collection) *Snapshot {
	now := time.Now().UTC()
	if version == "" {
		version = fmt.Sprintf("ts-%d", now.UnixNano())
	}
	if collections == nil {
		collections = make(map[string]Collection)
	}
	return &Snapshot{Version: version, LoadedAt: now, Collections: collections}
}

// labelFields are probed in order; every present, non-empty string value
// becomes a label, first hit being the canonical display label.
var labelFields = []string{"name", "display_name", "title", "label", "short_name"}

// BuildIndex derives the alias index for a snapshot. Pure: same snapshot in,
// same index out.
func BuildIndex(snap *Snapshot, numeric matching.NumericPrefixed) *matching.Index {
	var records []*matching.Record
	for collName, coll := range snap.Collections {
		for id, fields := range coll {
			records = append(records, recordFrom(id, collName, fields, numeric))
		}
	}
	idx := matching.NewIndex(snap.Version, records)
	for collName := range snap.Collections {
		idx.EnsureCollection(collName)
	}
	return idx
}

func recordFrom(id, collection string, fields Fields, numeric matching.NumericPrefixed) *matching.Record {
	var labels []string
	for _, key := range labelFields {
		if v, ok := fields[key].(string); ok && v != "" {
			labels = append(labels, v)
		}
	}
	status, _ := fields["status"].(string)
	return matching.NewRecord(id, collection, status, labels, numeric)
}
