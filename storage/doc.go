// Package storage defines the persistence contracts for patent records.
//
// The PatentRepository interface is the write target of the collection
// pipeline and the read source of the embedding stage. Implementations must
// be thread-safe: the pipeline upserts from many workers concurrently.
//
// Subpackage badger provides the BadgerDB-backed implementation.
package storage
