package encode

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"os"
	"sort"
	"strconv"

	"github.com/najahiiii/telebot-send/internal/media"
)

// ErrEncoding means a file changed or vanished between probing and
// encoding. Content integrity can no longer be guaranteed, so the batch is
// surfaced as failed rather than retried.
var ErrEncoding = errors.New("encoding failed")

// Observer counts bytes as file content is pushed into the request body.
// Implementations must never block; the progress tracker satisfies this.
type Observer interface {
	Add(n int64)
}

// Fields are caller-supplied textual form fields (chat_id, reply_markup,
// message_thread_id, disable_notification) merged into every body.
type Fields map[string]string

// Body is a streaming multipart request body. File bytes flow through a
// pipe as the HTTP client consumes the reader; nothing is buffered whole.
type Body struct {
	Reader      io.ReadCloser
	ContentType string
	// Total is the byte count of file content plus thumbnails, used to
	// scale progress display. Multipart framing is not included.
	Total int64
}

// InputMedia is one sidecar entry of a sendMediaGroup request. Media and
// Thumbnail hold attach:// references into the multipart body.
type InputMedia struct {
	Type       string `json:"type"`
	Media      string `json:"media"`
	Caption    string `json:"caption,omitempty"`
	HasSpoiler bool   `json:"has_spoiler,omitempty"`
	Width      int    `json:"width,omitempty"`
	Height     int    `json:"height,omitempty"`
	Duration   int    `json:"duration,omitempty"`
	Thumbnail  string `json:"thumbnail,omitempty"`
}

// Album builds the sendMediaGroup body for a multi-item album: one binary
// part per item, one per attached thumbnail, and a single JSON sidecar
// associating them. Files are opened up front so a stat-then-read race
// surfaces here as ErrEncoding instead of half way through a transfer.
func Album(album media.Album, fields Fields, obs Observer) (*Body, error) {
	files, total, err := openAll(album.Items)
	if err != nil {
		return nil, err
	}

	sidecar := make([]InputMedia, len(album.Items))
	for i, it := range album.Items {
		entry := InputMedia{
			Type:       string(it.Kind),
			Media:      "attach://" + media.PartName(i),
			Caption:    it.Caption,
			HasSpoiler: it.Spoiler,
		}
		if it.Meta != nil {
			entry.Width = it.Meta.Width
			entry.Height = it.Meta.Height
			entry.Duration = it.Meta.Duration
		}
		if it.HasThumbnail() {
			entry.Thumbnail = "attach://" + media.ThumbPartName(i)
			total += int64(len(it.Thumbnail))
		}
		sidecar[i] = entry
	}

	serialized, err := json.Marshal(sidecar)
	if err != nil {
		closeAll(files)
		return nil, fmt.Errorf("%w: serializing media sidecar: %v", ErrEncoding, err)
	}

	pr, pw := io.Pipe()
	writer := multipart.NewWriter(pw)

	go func() {
		defer closeAll(files)

		if err := writeFields(writer, fields); err != nil {
			pw.CloseWithError(err)
			return
		}
		if err := writer.WriteField("media", string(serialized)); err != nil {
			pw.CloseWithError(fmt.Errorf("%w: %v", ErrEncoding, err))
			return
		}
		for i, it := range album.Items {
			if err := writeFile(writer, media.PartName(i), it, files[i], obs); err != nil {
				pw.CloseWithError(err)
				return
			}
			if it.HasThumbnail() {
				if err := writeThumb(writer, media.ThumbPartName(i), it.Thumbnail, obs); err != nil {
					pw.CloseWithError(err)
					return
				}
			}
		}
		if err := writer.Close(); err != nil {
			pw.CloseWithError(fmt.Errorf("%w: %v", ErrEncoding, err))
			return
		}
		pw.Close()
	}()

	return &Body{Reader: pr, ContentType: writer.FormDataContentType(), Total: total}, nil
}

// Single builds the body for a one-item send. The same per-item data the
// sidecar would carry travels as flat form fields next to the one binary
// part; no sidecar is needed.
func Single(it *media.Item, fields Fields, obs Observer) (*Body, error) {
	files, total, err := openAll([]*media.Item{it})
	if err != nil {
		return nil, err
	}
	if it.HasThumbnail() {
		total += int64(len(it.Thumbnail))
	}

	pr, pw := io.Pipe()
	writer := multipart.NewWriter(pw)

	go func() {
		defer closeAll(files)

		if err := writeFields(writer, fields); err != nil {
			pw.CloseWithError(err)
			return
		}
		if err := writeItemFields(writer, it); err != nil {
			pw.CloseWithError(err)
			return
		}
		if err := writeFile(writer, string(it.Kind), it, files[0], obs); err != nil {
			pw.CloseWithError(err)
			return
		}
		if it.HasThumbnail() {
			if err := writeThumb(writer, "thumbnail", it.Thumbnail, obs); err != nil {
				pw.CloseWithError(err)
				return
			}
		}
		if err := writer.Close(); err != nil {
			pw.CloseWithError(fmt.Errorf("%w: %v", ErrEncoding, err))
			return
		}
		pw.Close()
	}()

	return &Body{Reader: pr, ContentType: writer.FormDataContentType(), Total: total}, nil
}

// writeItemFields emits the flat per-item fields of a single-media send.
func writeItemFields(w *multipart.Writer, it *media.Item) error {
	set := func(name, value string) error {
		if value == "" {
			return nil
		}
		if err := w.WriteField(name, value); err != nil {
			return fmt.Errorf("%w: %v", ErrEncoding, err)
		}
		return nil
	}

	if err := set("caption", it.Caption); err != nil {
		return err
	}
	if it.Spoiler {
		if err := set("has_spoiler", "true"); err != nil {
			return err
		}
	}
	if it.Kind == "video" {
		if err := set("supports_streaming", "true"); err != nil {
			return err
		}
	}
	if it.Meta != nil {
		if it.Meta.Duration > 0 {
			if err := set("duration", strconv.Itoa(it.Meta.Duration)); err != nil {
				return err
			}
		}
		if it.Meta.Width > 0 {
			if err := set("width", strconv.Itoa(it.Meta.Width)); err != nil {
				return err
			}
		}
		if it.Meta.Height > 0 {
			if err := set("height", strconv.Itoa(it.Meta.Height)); err != nil {
				return err
			}
		}
	}
	return nil
}

// writeFields emits caller fields in sorted order so bodies are
// reproducible.
func writeFields(w *multipart.Writer, fields Fields) error {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := w.WriteField(name, fields[name]); err != nil {
			return fmt.Errorf("%w: %v", ErrEncoding, err)
		}
	}
	return nil
}

func writeFile(w *multipart.Writer, partName string, it *media.Item, f *os.File, obs Observer) error {
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, partName, it.Name))
	if it.Mime != "" {
		header.Set("Content-Type", it.Mime)
	} else {
		header.Set("Content-Type", "application/octet-stream")
	}

	part, err := w.CreatePart(header)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrEncoding, err)
	}

	var dst io.Writer = part
	if obs != nil {
		dst = io.MultiWriter(part, observerWriter{obs})
	}
	if _, err := io.Copy(dst, f); err != nil {
		return fmt.Errorf("%w: reading %s: %v", ErrEncoding, it.Path, err)
	}
	return nil
}

func writeThumb(w *multipart.Writer, partName string, thumb []byte, obs Observer) error {
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, partName, partName+".jpg"))
	header.Set("Content-Type", "image/jpeg")

	part, err := w.CreatePart(header)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrEncoding, err)
	}
	if _, err := part.Write(thumb); err != nil {
		return fmt.Errorf("%w: %v", ErrEncoding, err)
	}
	if obs != nil {
		obs.Add(int64(len(thumb)))
	}
	return nil
}

// openAll opens every item's file, returning ErrEncoding if any path no
// longer resolves to readable content.
func openAll(items []*media.Item) ([]*os.File, int64, error) {
	files := make([]*os.File, 0, len(items))
	var total int64
	for _, it := range items {
		f, err := os.Open(it.Path)
		if err != nil {
			closeAll(files)
			return nil, 0, fmt.Errorf("%w: %s became unreadable: %v", ErrEncoding, it.Path, err)
		}
		info, err := f.Stat()
		if err != nil {
			f.Close()
			closeAll(files)
			return nil, 0, fmt.Errorf("%w: %s became unreadable: %v", ErrEncoding, it.Path, err)
		}
		files = append(files, f)
		total += info.Size()
	}
	return files, total, nil
}

func closeAll(files []*os.File) {
	for _, f := range files {
		f.Close()
	}
}

type observerWriter struct{ obs Observer }

func (w observerWriter) Write(p []byte) (int, error) {
	w.obs.Add(int64(len(p)))
	return len(p), nil
}
