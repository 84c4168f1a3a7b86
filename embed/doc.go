// Package embed turns collected patent abstracts into vectors and writes
// them to a vector index.
//
// The stage drains records in pending embedding state from the patent
// repository in batches: abstracts are embedded, vectors normalized to
// unit length for cosine similarity, inserted into the vector store, and
// each record's embedding status is advanced to embedded or failed. A
// record that fails keeps the failure reason, so a run always terminates
// and can be safely re-run to retry earlier failures after resetting
// their status.
package embed
