package models

import "fmt"

// Snapshot format history:
//
//	v1  items with bookmarks only
//	v2  adds the notes cache keyed by sourceId
//	v3  adds per-item sessions
//	v4  adds skipCount and completionCount
//	v5  adds sourceKind
//
// Every step is additive: it fills missing fields with defaults and never
// removes or reinterprets existing ones. New steps are appended, history is
// never rewritten.
type migration struct {
	to    int
	apply func(*SnapshotDoc)
}

var migrations = []migration{
	{2, migrateNotesCache},
	{3, migrateSessions},
	{4, migrateCounters},
	{5, migrateSourceKind},
}

// Migrate upgrades doc in place from its stored version to SchemaVersion,
// applying every intervening step in order. Returns true when any step ran
// so callers know to re-persist the result.
func Migrate(doc *SnapshotDoc) (bool, error) {
	if doc.Version > SchemaVersion {
		return false, &ValidationError{Reason: fmt.Sprintf("snapshot version %d is newer than supported %d", doc.Version, SchemaVersion)}
	}
	if doc.Version < 1 {
		doc.Version = 1
	}

	migrated := false
	for _, m := range migrations {
		if doc.Version >= m.to {
			continue
		}
		m.apply(doc)
		doc.Version = m.to
		migrated = true
	}
	return migrated, nil
}

func migrateNotesCache(doc *SnapshotDoc) {
	if doc.Notes == nil {
		doc.Notes = make(map[string]string)
	}
}

func migrateSessions(doc *SnapshotDoc) {
	for _, it := range doc.Items {
		if it != nil && it.Sessions == nil {
			it.Sessions = []SessionRecord{}
		}
	}
}

func migrateCounters(doc *SnapshotDoc) {
	for _, it := range doc.Items {
		if it == nil {
			continue
		}
		if it.SkipCount == nil {
			it.SkipCount = new(float64)
		}
		if it.CompletionCount == nil {
			it.CompletionCount = new(int)
		}
	}
}

func migrateSourceKind(doc *SnapshotDoc) {
	for _, it := range doc.Items {
		if it != nil && it.SourceKind == nil {
			kind := SourceYouTube
			it.SourceKind = &kind
		}
	}
}
