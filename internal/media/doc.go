// Package media holds the assembly half of the upload pipeline: probing
// local files into items, applying the sending policy (size demotion,
// uncompressed mode, spoilers, thumbnail need), and batching items into
// Bot API compliant albums.
//
// Everything here is filesystem-and-policy only; subprocess enrichment,
// multipart encoding and the network live in their own packages.
package media
