package media

import "github.com/najahiiii/telebot-send/internal/mediatypes"

// MaxAlbumSize is the Bot API limit on items per media group.
const MaxAlbumSize = 10

// Album is an ordered batch of items sent together. A single-item album
// bypasses sendMediaGroup and uses the kind's own send method.
type Album struct {
	Items []*Item
}

// Single reports whether the album degrades to a plain single-media send.
func (a Album) Single() bool {
	return len(a.Items) == 1
}

// Batch partitions classified items into albums.
//
// With group disabled, or a single input item, every item becomes its own
// album and the caption repeats on each send. With grouping, items are cut
// into consecutive chunks of at most MaxAlbumSize in input order, and the
// caption lands on the first item of the first album only; the Bot API
// renders an album-wide caption only when exactly the lead item carries
// one. Documents never share an album with photo, video or audio media, so
// a change of document-ness also cuts a chunk boundary.
func Batch(items []*Item, group bool, caption string) []Album {
	if len(items) == 0 {
		return nil
	}

	if !group || len(items) == 1 {
		albums := make([]Album, 0, len(items))
		for _, it := range items {
			it.Caption = caption
			albums = append(albums, Album{Items: []*Item{it}})
		}
		return albums
	}

	var albums []Album
	start := 0
	for start < len(items) {
		docRun := items[start].Kind == mediatypes.KindDocument
		end := start
		for end < len(items) &&
			end-start < MaxAlbumSize &&
			(items[end].Kind == mediatypes.KindDocument) == docRun {
			end++
		}
		albums = append(albums, Album{Items: items[start:end]})
		start = end
	}

	if caption != "" {
		albums[0].Items[0].Caption = caption
	}
	return albums
}
