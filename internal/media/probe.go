package media

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/najahiiii/telebot-send/internal/mediatypes"
)

// Probe inspects a local file and produces the Item that feeds the rest of
// the pipeline. The kind comes from the extension tables with a content
// sniff for unknown extensions; size comes from the filesystem. Video
// metadata and thumbnails are filled in later by the enrichment stage.
//
// asFile is the caller's uncompressed-send override: with it set, a file
// whose kind cannot be determined still goes through as a document instead
// of failing with ErrUnsupportedMedia.
func Probe(path string, asFile bool) (*Item, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%w: %s is not a regular file", ErrFileNotFound, path)
	}

	kind, mime := mediatypes.Detect(path)
	if kind == mediatypes.KindUnknown {
		if !asFile {
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedMedia, path)
		}
		kind = mediatypes.KindDocument
	}

	return &Item{
		Path: path,
		Name: filepath.Base(path),
		Kind: kind,
		Mime: mime,
		Size: info.Size(),
	}, nil
}
