package thumbnail

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strconv"

	"github.com/najahiiii/telebot-send/internal/logging"
	"github.com/najahiiii/telebot-send/internal/media"
)

// ErrToolUnavailable means the external media tool is not on PATH. It is a
// soft condition: callers proceed without metadata or thumbnails.
var ErrToolUnavailable = errors.New("media tool unavailable")

// MaxThumbnailBytes caps generated previews; the Bot API rejects thumbnails
// above 200 kB.
const MaxThumbnailBytes = 200_000

// Tool is the external metadata/thumbnail capability. The pipeline only
// ever talks to this interface, so tests and tool-less hosts swap in their
// own implementations without the pipeline branching on tool presence.
type Tool interface {
	// ProbeVideo extracts duration and dimensions from a video stream.
	ProbeVideo(ctx context.Context, path string) (*media.Metadata, error)
	// ExtractFrame renders one JPEG frame at the given offset, scaled to
	// fit 320x320. A nil slice with nil error means the tool ran but the
	// output was unusable.
	ExtractFrame(ctx context.Context, path string, offsetSeconds float64) ([]byte, error)
}

// FFmpeg runs the ffprobe and ffmpeg binaries. Each capability degrades
// independently when its binary is missing.
type FFmpeg struct {
	ffprobePath string
	ffmpegPath  string
}

// NewFFmpeg locates the ffprobe and ffmpeg binaries on PATH. Missing
// binaries are noted, not fatal.
func NewFFmpeg() *FFmpeg {
	t := &FFmpeg{}
	if path, err := exec.LookPath("ffprobe"); err == nil {
		t.ffprobePath = path
	} else {
		logging.Debug("ffprobe not found; video metadata extraction disabled")
	}
	if path, err := exec.LookPath("ffmpeg"); err == nil {
		t.ffmpegPath = path
	} else {
		logging.Debug("ffmpeg not found; thumbnail generation disabled")
	}
	return t
}

// ffprobe's JSON output; durations arrive as strings.
type probeOutput struct {
	Streams []struct {
		Width    int    `json:"width"`
		Height   int    `json:"height"`
		Duration string `json:"duration"`
	} `json:"streams"`
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// ProbeVideo shells out to ffprobe and parses its JSON report for the
// first video stream.
func (t *FFmpeg) ProbeVideo(ctx context.Context, path string) (*media.Metadata, error) {
	if t.ffprobePath == "" {
		return nil, ErrToolUnavailable
	}

	cmd := exec.CommandContext(ctx, t.ffprobePath,
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=width,height,duration",
		"-show_entries", "format=duration",
		"-of", "json",
		path,
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffprobe failed for %s: %w (%s)", path, err, stderr.String())
	}

	var out probeOutput
	if err := json.Unmarshal(stdout.Bytes(), &out); err != nil {
		return nil, fmt.Errorf("parsing ffprobe output for %s: %w", path, err)
	}
	if len(out.Streams) == 0 {
		return nil, fmt.Errorf("no video stream in %s", path)
	}

	stream := out.Streams[0]
	duration := parseDuration(stream.Duration)
	if duration <= 0 {
		duration = parseDuration(out.Format.Duration)
	}
	if duration < 0 {
		duration = 0
	}

	return &media.Metadata{
		Duration: int(duration),
		Width:    stream.Width,
		Height:   stream.Height,
	}, nil
}

func parseDuration(s string) float64 {
	if s == "" {
		return 0
	}
	d, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return d
}

// ExtractFrame shells out to ffmpeg for a single scaled MJPEG frame on
// stdout. Oversized or empty output is discarded rather than reported as
// an error, matching the tool's strictly-additive role.
func (t *FFmpeg) ExtractFrame(ctx context.Context, path string, offsetSeconds float64) ([]byte, error) {
	if t.ffmpegPath == "" {
		return nil, ErrToolUnavailable
	}
	if offsetSeconds < 0 {
		offsetSeconds = 0
	}

	cmd := exec.CommandContext(ctx, t.ffmpegPath,
		"-v", "error",
		"-ss", fmt.Sprintf("%.2f", offsetSeconds),
		"-i", path,
		"-frames:v", "1",
		"-vf", "scale=320:320:force_original_aspect_ratio=decrease",
		"-f", "mjpeg",
		"pipe:1",
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffmpeg failed for %s: %w (%s)", path, err, stderr.String())
	}

	frame := stdout.Bytes()
	if len(frame) == 0 {
		logging.Debug("ffmpeg produced an empty thumbnail for %s", path)
		return nil, nil
	}
	if len(frame) > MaxThumbnailBytes {
		logging.Debug("thumbnail for %s is %d bytes, above the %d limit; discarding", path, len(frame), MaxThumbnailBytes)
		return nil, nil
	}
	return frame, nil
}

// Unavailable is the no-tool implementation used on hosts without ffmpeg
// and in tests.
type Unavailable struct{}

// ProbeVideo always reports the tool as missing.
func (Unavailable) ProbeVideo(context.Context, string) (*media.Metadata, error) {
	return nil, ErrToolUnavailable
}

// ExtractFrame always reports the tool as missing.
func (Unavailable) ExtractFrame(context.Context, string, float64) ([]byte, error) {
	return nil, ErrToolUnavailable
}
