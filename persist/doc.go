// Package persist provides durable keyed storage for per-entity
// conversation histories.
//
// The Store interface is deliberately narrow (get, put, and delete of an
// opaque blob under a session/entity key) so the session core stays
// testable without a real storage medium. MemoryStore backs tests;
// SQLiteStore survives process restarts.
package persist
