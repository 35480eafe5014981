package models

import "fmt"

// SchemaVersion is the current snapshot format version.
const SchemaVersion = 5

// StarRecord, SessionRecord, FrequencyRecord and SnapshotDoc mirror the
// on-disk JSON schema. Optional fields are pointers (or nilable slices) so
// migration can tell "absent" from "zero" when loading older versions.
type StarRecord struct {
	Timestamp float64 `json:"timestamp"`
	CreatedAt int64   `json:"createdAt"`
}

type SessionRecord struct {
	StartedAt       int64   `json:"startedAt"`
	DurationSeconds float64 `json:"durationSeconds"`
}

type FrequencyRecord struct {
	SourceID        string          `json:"sourceId"`
	SourceKind      *SourceKind     `json:"sourceKind,omitempty"`
	Title           string          `json:"title"`
	AddedAt         int64           `json:"addedAt"`
	LastPlayedAt    *int64          `json:"lastPlayedAt,omitempty"`
	Bookmarks       []StarRecord    `json:"bookmarks"`
	Sessions        []SessionRecord `json:"sessions"`
	SkipCount       *float64        `json:"skipCount,omitempty"`
	CompletionCount *int            `json:"completionCount,omitempty"`
	TotalDuration   *float64        `json:"totalDuration,omitempty"`
}

type SnapshotDoc struct {
	Items    []*FrequencyRecord `json:"items"`
	Notes    map[string]string  `json:"notes,omitempty"`
	Settings map[string]any     `json:"settings,omitempty"`
	Version  int                `json:"version"`
}

// Validate checks a fully migrated snapshot for structural soundness.
// Any violation rejects the whole document.
func (doc *SnapshotDoc) Validate() error {
	if doc.Version != SchemaVersion {
		return &ValidationError{Reason: fmt.Sprintf("version %d, want %d", doc.Version, SchemaVersion)}
	}
	if doc.Items == nil {
		return &ValidationError{Reason: "missing items"}
	}
	seen := make(map[string]struct{}, len(doc.Items))
	for i, it := range doc.Items {
		if it == nil {
			return &ValidationError{Reason: fmt.Sprintf("items[%d] is null", i)}
		}
		if it.SourceID == "" {
			return &ValidationError{Reason: fmt.Sprintf("items[%d] missing sourceId", i)}
		}
		if _, dup := seen[it.SourceID]; dup {
			return &ValidationError{Reason: fmt.Sprintf("duplicate sourceId %q", it.SourceID)}
		}
		seen[it.SourceID] = struct{}{}
		if it.SourceKind == nil || !it.SourceKind.Valid() {
			return &ValidationError{Reason: fmt.Sprintf("item %q has invalid sourceKind", it.SourceID)}
		}
		if it.AddedAt <= 0 {
			return &ValidationError{Reason: fmt.Sprintf("item %q missing addedAt", it.SourceID)}
		}
		if it.Bookmarks == nil {
			return &ValidationError{Reason: fmt.Sprintf("item %q missing bookmarks", it.SourceID)}
		}
		for _, b := range it.Bookmarks {
			if b.Timestamp < 0 {
				return &ValidationError{Reason: fmt.Sprintf("item %q has negative bookmark timestamp", it.SourceID)}
			}
		}
		if it.Sessions == nil {
			return &ValidationError{Reason: fmt.Sprintf("item %q missing sessions", it.SourceID)}
		}
		for _, s := range it.Sessions {
			if s.DurationSeconds < 0 {
				return &ValidationError{Reason: fmt.Sprintf("item %q has negative session duration", it.SourceID)}
			}
		}
		if it.SkipCount == nil || *it.SkipCount < 0 {
			return &ValidationError{Reason: fmt.Sprintf("item %q missing skipCount", it.SourceID)}
		}
		if it.CompletionCount == nil || *it.CompletionCount < 0 {
			return &ValidationError{Reason: fmt.Sprintf("item %q missing completionCount", it.SourceID)}
		}
	}
	return nil
}

func (it *FrequencyRecord) toFrequency() *Frequency {
	f := &Frequency{
		SourceID:        it.SourceID,
		SourceKind:      *it.SourceKind,
		Title:           it.Title,
		AddedAt:         it.AddedAt,
		SkipCount:       *it.SkipCount,
		CompletionCount: *it.CompletionCount,
		Stars:           make([]Star, 0, len(it.Bookmarks)),
		Sessions:        make([]Session, 0, len(it.Sessions)),
	}
	if it.LastPlayedAt != nil {
		f.LastPlayedAt = *it.LastPlayedAt
	}
	if it.TotalDuration != nil {
		f.TotalDuration = *it.TotalDuration
	}
	for _, b := range it.Bookmarks {
		f.Stars = append(f.Stars, Star{Timestamp: b.Timestamp, CreatedAt: b.CreatedAt})
	}
	for _, s := range it.Sessions {
		f.Sessions = append(f.Sessions, Session{StartedAt: s.StartedAt, DurationSeconds: s.DurationSeconds})
	}
	f.normalizeStars()
	return f
}

func (f *Frequency) toRecord() *FrequencyRecord {
	skip := f.SkipCount
	completions := f.CompletionCount
	kind := f.SourceKind
	rec := &FrequencyRecord{
		SourceID:        f.SourceID,
		SourceKind:      &kind,
		Title:           f.Title,
		AddedAt:         f.AddedAt,
		Bookmarks:       make([]StarRecord, 0, len(f.Stars)),
		Sessions:        make([]SessionRecord, 0, len(f.Sessions)),
		SkipCount:       &skip,
		CompletionCount: &completions,
	}
	if f.LastPlayedAt != 0 {
		lp := f.LastPlayedAt
		rec.LastPlayedAt = &lp
	}
	if f.TotalDuration != 0 {
		td := f.TotalDuration
		rec.TotalDuration = &td
	}
	for _, s := range f.Stars {
		rec.Bookmarks = append(rec.Bookmarks, StarRecord{Timestamp: s.Timestamp, CreatedAt: s.CreatedAt})
	}
	for _, s := range f.Sessions {
		rec.Sessions = append(rec.Sessions, SessionRecord{StartedAt: s.StartedAt, DurationSeconds: s.DurationSeconds})
	}
	return rec
}

// Snapshot exports the full library state as a current-version document.
func (l *Library) Snapshot() *SnapshotDoc {
	l.mu.RLock()
	defer l.mu.RUnlock()

	doc := &SnapshotDoc{
		Items:   make([]*FrequencyRecord, 0, len(l.order)),
		Notes:   make(map[string]string, len(l.notes)),
		Version: SchemaVersion,
	}
	for _, id := range l.order {
		doc.Items = append(doc.Items, l.items[id].toRecord())
	}
	for k, v := range l.notes {
		doc.Notes[k] = v
	}
	if len(l.settings) > 0 {
		doc.Settings = make(map[string]any, len(l.settings))
		for k, v := range l.settings {
			doc.Settings[k] = v
		}
	}
	return doc
}

// Restore replaces the library state with a validated snapshot.
// All-or-nothing: on validation failure the library is left untouched.
func (l *Library) Restore(doc *SnapshotDoc) error {
	if err := doc.Validate(); err != nil {
		return err
	}

	items := make(map[string]*Frequency, len(doc.Items))
	order := make([]string, 0, len(doc.Items))
	for _, it := range doc.Items {
		items[it.SourceID] = it.toFrequency()
		order = append(order, it.SourceID)
	}
	notes := make(map[string]string, len(doc.Notes))
	for k, v := range doc.Notes {
		notes[k] = v
	}
	settings := make(map[string]any, len(doc.Settings))
	for k, v := range doc.Settings {
		settings[k] = v
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.items = items
	l.order = order
	l.notes = notes
	l.settings = settings
	l.generation++
	return nil
}
