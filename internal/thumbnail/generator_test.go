package thumbnail

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/najahiiii/telebot-send/internal/media"
	"github.com/najahiiii/telebot-send/internal/mediatypes"
)

// fakeTool records calls and plays back canned results.
type fakeTool struct {
	meta      *media.Metadata
	metaErr   error
	frame     []byte
	frameErr  error
	probes    int
	extracts  []float64
	lastPath  string
	extracted string
}

func (f *fakeTool) ProbeVideo(_ context.Context, path string) (*media.Metadata, error) {
	f.probes++
	f.lastPath = path
	return f.meta, f.metaErr
}

func (f *fakeTool) ExtractFrame(_ context.Context, path string, offset float64) ([]byte, error) {
	f.extracts = append(f.extracts, offset)
	f.extracted = path
	return f.frame, f.frameErr
}

func videoItem() *media.Item {
	return &media.Item{
		Path:           "/clips/a.mp4",
		Name:           "a.mp4",
		Kind:           mediatypes.KindVideo,
		Mime:           "video/mp4",
		WantsThumbnail: true,
	}
}

func TestEnrichVideoAttachesMetadataAndThumbnail(t *testing.T) {
	tool := &fakeTool{
		meta:  &media.Metadata{Duration: 42, Width: 1920, Height: 1080},
		frame: []byte{0xff, 0xd8, 0xff},
	}
	it := videoItem()

	NewGenerator(tool).Enrich(context.Background(), it)

	if it.Meta == nil || it.Meta.Duration != 42 || it.Meta.Width != 1920 {
		t.Errorf("metadata not attached: %+v", it.Meta)
	}
	if !it.HasThumbnail() {
		t.Error("thumbnail not attached")
	}
	if len(tool.extracts) != 1 {
		t.Fatalf("ExtractFrame called %d times, want 1", len(tool.extracts))
	}
	if off := tool.extracts[0]; off < 0 || off >= 42 {
		t.Errorf("frame offset %f outside [0, duration)", off)
	}
}

func TestEnrichVideoToolUnavailableIsSoft(t *testing.T) {
	it := videoItem()
	NewGenerator(Unavailable{}).Enrich(context.Background(), it)

	if it.Meta != nil {
		t.Errorf("metadata should stay absent, got %+v", it.Meta)
	}
	if it.HasThumbnail() {
		t.Error("thumbnail should stay absent")
	}
}

func TestEnrichVideoProbeFailureStillTriesThumbnail(t *testing.T) {
	tool := &fakeTool{
		metaErr: errors.New("ffprobe exploded"),
		frame:   []byte{1, 2, 3},
	}
	it := videoItem()
	NewGenerator(tool).Enrich(context.Background(), it)

	if it.Meta != nil {
		t.Error("metadata should be absent after probe failure")
	}
	if !it.HasThumbnail() {
		t.Error("thumbnail should still be attempted and attached")
	}
	if tool.extracts[0] != 0 {
		t.Errorf("offset without duration should be 0, got %f", tool.extracts[0])
	}
}

func TestEnrichPhotoUsesToolFrame(t *testing.T) {
	tool := &fakeTool{frame: []byte{9, 9}}
	it := &media.Item{
		Path:           "/pics/big.png",
		Kind:           mediatypes.KindDocument,
		Mime:           "image/png",
		WantsThumbnail: true,
	}
	NewGenerator(tool).Enrich(context.Background(), it)

	if !bytes.Equal(it.Thumbnail, []byte{9, 9}) {
		t.Errorf("thumbnail = %v, want tool frame", it.Thumbnail)
	}
	if tool.probes != 0 {
		t.Error("photos should not be ffprobed")
	}
}

func TestEnrichPhotoFallsBackToInProcessResize(t *testing.T) {
	// Real PNG on disk, tool unavailable: the imaging fallback must kick in.
	dir := t.TempDir()
	path := filepath.Join(dir, "big.png")
	img := image.NewRGBA(image.Rect(0, 0, 640, 480))
	for y := 0; y < 480; y++ {
		for x := 0; x < 640; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encoding fixture: %v", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	it := &media.Item{
		Path:           path,
		Kind:           mediatypes.KindDocument,
		Mime:           "image/png",
		WantsThumbnail: true,
	}
	NewGenerator(Unavailable{}).Enrich(context.Background(), it)

	if !it.HasThumbnail() {
		t.Fatal("fallback thumbnail not generated")
	}
	if len(it.Thumbnail) > MaxThumbnailBytes {
		t.Errorf("thumbnail is %d bytes, above the cap", len(it.Thumbnail))
	}
	// JPEG magic
	if it.Thumbnail[0] != 0xff || it.Thumbnail[1] != 0xd8 {
		t.Error("fallback thumbnail is not a JPEG")
	}
}

func TestEnrichSkipsItemsWithoutThumbnailNeed(t *testing.T) {
	tool := &fakeTool{frame: []byte{1}}
	it := &media.Item{
		Path: "/pics/small.jpg",
		Kind: mediatypes.KindPhoto,
		Mime: "image/jpeg",
	}
	NewGenerator(tool).Enrich(context.Background(), it)

	if it.HasThumbnail() || len(tool.extracts) != 0 {
		t.Error("regular photos should not be enriched")
	}
}
