// Package pipeline orchestrates a media run end to end.
//
// A run probes every input path, classifies the items, enriches them
// with metadata and thumbnails in a bounded worker pool, batches them
// into albums and uploads each batch through the Transport. Broken
// inputs are skipped and rejected uploads fail only their own album, so
// one bad file never sinks the rest of the run.
package pipeline
