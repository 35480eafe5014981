package models

// Built-in stations installed on first run so a fresh library is not empty.
var seedFrequencies = []struct {
	id    string
	title string
	kind  SourceKind
}{
	{"jfKfPokIr4w", "lofi hip hop radio - beats to relax/study to", SourceYouTube},
	{"4xDzrJKXOOY", "synthwave radio - beats to chill/game to", SourceYouTube},
	{"HuFYqnbVbzY", "jazz lofi radio - beats to chill/study to", SourceYouTube},
}

// SeedIfEmpty installs the built-in stations when the library holds nothing,
// and returns how many were added. Called on first-ever initialization only;
// a loaded snapshot, even an empty one, is never reseeded over.
func (l *Library) SeedIfEmpty() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.items) > 0 {
		return 0
	}
	now := l.nowMillis()
	for _, s := range seedFrequencies {
		f := &Frequency{
			SourceID:   s.id,
			SourceKind: s.kind,
			Title:      s.title,
			AddedAt:    now,
			Stars:      []Star{},
			Sessions:   []Session{},
		}
		l.items[s.id] = f
		l.order = append(l.order, s.id)
	}
	l.generation++
	return len(seedFrequencies)
}
