package media

import (
	"errors"
	"strconv"

	"github.com/najahiiii/telebot-send/internal/mediatypes"
)

// PhotoMaxBytes is the Bot API ceiling for photo uploads. Anything larger
// must be sent as a document.
const PhotoMaxBytes = 10 << 20

var (
	// ErrFileNotFound means a path did not resolve to a readable regular file.
	ErrFileNotFound = errors.New("file not found")
	// ErrUnsupportedMedia means the media kind could not be determined.
	ErrUnsupportedMedia = errors.New("unsupported media type")
)

// Metadata carries stream properties extracted from a video file.
type Metadata struct {
	Duration int
	Width    int
	Height   int
}

// Item is one local file on its way to Telegram. It is created by Probe,
// adjusted by Classify and the thumbnail generator, and read-only after
// batching.
type Item struct {
	Path string
	Name string
	Kind mediatypes.Kind
	Mime string
	Size int64

	Caption     string
	Spoiler     bool
	ForceAsFile bool

	// WantsThumbnail is set by the classifier for items that should carry
	// a generated preview (videos, and photos demoted to documents).
	WantsThumbnail bool

	Thumbnail []byte
	Meta      *Metadata
}

// HasThumbnail reports whether a generated preview is attached.
func (it *Item) HasThumbnail() bool {
	return len(it.Thumbnail) > 0
}

// PartName returns the multipart field name for the item's file content
// at the given album position.
func PartName(index int) string {
	return "file" + strconv.Itoa(index)
}

// ThumbPartName returns the multipart field name for the item's thumbnail
// at the given album position.
func ThumbPartName(index int) string {
	return PartName(index) + "_thumb"
}
