// Package encode builds streaming multipart/form-data bodies for Bot API
// media uploads.
//
// Album bodies carry one binary part per item plus a JSON sidecar whose
// attach:// references bind out-of-band metadata to those parts; single
// sends use flat form fields instead. File content streams through an
// io.Pipe so arbitrarily large uploads hold one read buffer, not the file.
package encode
