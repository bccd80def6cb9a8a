// Package thumbnail enriches media items with duration/dimension metadata
// and small JPEG previews ahead of upload.
//
// The external ffprobe/ffmpeg binaries sit behind the Tool interface so the
// pipeline never branches on tool presence; hosts without the binaries fall
// back to an in-process image resize for photos and simply skip video
// metadata. Enrichment is strictly additive; no failure here ever fails a
// send.
package thumbnail
