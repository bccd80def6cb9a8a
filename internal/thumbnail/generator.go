package thumbnail

import (
	"bytes"
	"context"
	"errors"
	"image/jpeg"
	"math/rand"
	"strings"
	"time"

	"github.com/najahiiii/telebot-send/internal/logging"
	"github.com/najahiiii/telebot-send/internal/media"

	// Decoders for the pure-Go photo fallback
	_ "image/gif"
	_ "image/png"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp" // WebP format support
)

const (
	// thumbSize bounds the longer edge of generated previews.
	thumbSize = 320
	// toolTimeout bounds each subprocess invocation.
	toolTimeout = 20 * time.Second
)

// Generator enriches items with subprocess-derived metadata and preview
// thumbnails. Every operation is best-effort: a missing tool, a timeout or
// unusable output leaves the item untouched and never fails the pipeline.
type Generator struct {
	tool Tool
}

// NewGenerator wires a Generator to an external tool implementation.
func NewGenerator(tool Tool) *Generator {
	return &Generator{tool: tool}
}

// Enrich fills in video metadata and, where the classifier asked for one,
// a thumbnail. Items are mutated in place.
func (g *Generator) Enrich(ctx context.Context, it *media.Item) {
	if strings.HasPrefix(it.Mime, "video/") {
		g.enrichVideo(ctx, it)
		return
	}
	if it.WantsThumbnail && strings.HasPrefix(it.Mime, "image/") {
		g.enrichPhoto(ctx, it)
	}
}

func (g *Generator) enrichVideo(ctx context.Context, it *media.Item) {
	probeCtx, cancel := context.WithTimeout(ctx, toolTimeout)
	defer cancel()

	meta, err := g.tool.ProbeVideo(probeCtx, it.Path)
	if err != nil {
		if errors.Is(err, ErrToolUnavailable) {
			logging.Debug("skipping video metadata for %s: %v", it.Path, err)
		} else {
			logging.Error("Failed to extract video metadata for %s: %v", it.Path, err)
		}
	} else {
		logging.Info("Video metadata extracted for %s (%dx%d, %ds)", it.Path, meta.Width, meta.Height, meta.Duration)
		it.Meta = meta
	}

	if !it.WantsThumbnail {
		return
	}

	// Grab the frame from a random position so repeated sends of the same
	// clip do not all show its first frame.
	var offset float64
	if it.Meta != nil && it.Meta.Duration > 1 {
		offset = rand.Float64() * float64(it.Meta.Duration)
	}

	frameCtx, cancel := context.WithTimeout(ctx, toolTimeout)
	defer cancel()

	frame, err := g.tool.ExtractFrame(frameCtx, it.Path, offset)
	if err != nil {
		logging.Debug("skipping video thumbnail for %s: %v", it.Path, err)
		return
	}
	it.Thumbnail = frame
}

func (g *Generator) enrichPhoto(ctx context.Context, it *media.Item) {
	frameCtx, cancel := context.WithTimeout(ctx, toolTimeout)
	defer cancel()

	frame, err := g.tool.ExtractFrame(frameCtx, it.Path, 0)
	if err == nil && frame != nil {
		it.Thumbnail = frame
		return
	}
	if err != nil {
		logging.Debug("tool thumbnail for %s failed: %v; trying in-process resize", it.Path, err)
	}

	// Pure-Go fallback so demoted photos still carry a preview on hosts
	// without ffmpeg.
	thumb, err := fallbackImageThumbnail(it.Path)
	if err != nil {
		logging.Debug("fallback thumbnail for %s failed: %v", it.Path, err)
		return
	}
	it.Thumbnail = thumb
}

// fallbackImageThumbnail decodes and downscales an image in-process.
func fallbackImageThumbnail(path string) ([]byte, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, err
	}

	thumb := imaging.Fit(img, thumbSize, thumbSize, imaging.Lanczos)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, thumb, &jpeg.Options{Quality: 80}); err != nil {
		return nil, err
	}
	if buf.Len() > MaxThumbnailBytes {
		logging.Debug("fallback thumbnail for %s is %d bytes, above the %d limit; discarding", path, buf.Len(), MaxThumbnailBytes)
		return nil, nil
	}
	return buf.Bytes(), nil
}
