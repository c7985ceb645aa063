package ports

// Storage persists the last good corpus to durable storage so a restarted
// process can serve queries before its first refresh completes. The index is
// a pure function of the corpus and is rebuilt on load, not persisted.
//
// Crash safety: SaveCorpus must be transactional. A crash mid-write must not
// corrupt a previously committed snapshot.
type Storage interface {
	// SaveCorpus persists the corpus for a mirror set, overwriting any prior
	// snapshot for the same mirrorID.
	SaveCorpus(mirrorID string, corpus *Corpus) error

	// LoadCorpus retrieves the snapshot for a mirror set.
	// Returns nil, nil if none exists (fresh mirror).
	LoadCorpus(mirrorID string) (*Corpus, error)

	// DeleteMirror removes all data for a mirror set.
	// Idempotent: deleting a nonexistent mirror is not an error.
	DeleteMirror(mirrorID string) error
}
