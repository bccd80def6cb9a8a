package media

import (
	"strings"

	"github.com/najahiiii/telebot-send/internal/logging"
	"github.com/najahiiii/telebot-send/internal/mediatypes"
)

// ClassifyOptions carries the caller intent the policy rules read.
type ClassifyOptions struct {
	// AsFile sends everything uncompressed as documents.
	AsFile bool
	// Spoiler blurs photo/video media until tapped.
	Spoiler bool
}

// A rule adjusts one item in place. Rules are pure apart from logging and
// run in a fixed order; 10 MiB photo demotion must precede the thumbnail
// decision so a demoted photo still gets its preview.
type rule func(*Item, ClassifyOptions)

var rules = []rule{
	demoteOversizedPhoto,
	applyAsFile,
	applySpoiler,
	markThumbnailNeed,
}

// Classify applies the sending policy to every probed item, in order.
// Items are mutated in place and returned for chaining.
func Classify(items []*Item, opts ClassifyOptions) []*Item {
	for _, it := range items {
		for _, r := range rules {
			r(it, opts)
		}
	}
	return items
}

// demoteOversizedPhoto reclassifies photos above the Bot API photo ceiling
// as documents.
func demoteOversizedPhoto(it *Item, _ ClassifyOptions) {
	if it.Kind == mediatypes.KindPhoto && it.Size > PhotoMaxBytes {
		logging.Info("Photo %s exceeds 10 MiB (%d bytes); sending as document.", it.Path, it.Size)
		it.Kind = mediatypes.KindDocument
		it.ForceAsFile = true
	}
}

// applyAsFile forces document sending for every item when requested.
func applyAsFile(it *Item, opts ClassifyOptions) {
	if opts.AsFile {
		it.Kind = mediatypes.KindDocument
		it.ForceAsFile = true
	}
}

// applySpoiler copies the spoiler intent onto visual media. The API only
// honors it for photos and videos; elsewhere it stays unset rather than
// erroring.
func applySpoiler(it *Item, opts ClassifyOptions) {
	it.Spoiler = opts.Spoiler && it.Kind.IsVisual()
}

// markThumbnailNeed flags the items that should carry a generated preview:
// videos, and image files that will travel as documents.
func markThumbnailNeed(it *Item, _ ClassifyOptions) {
	isImage := strings.HasPrefix(it.Mime, "image/")
	it.WantsThumbnail = it.Kind == mediatypes.KindVideo ||
		(isImage && it.Kind == mediatypes.KindDocument)
}
