package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/najahiiii/telebot-send/internal/encode"
	"github.com/najahiiii/telebot-send/internal/logging"
	"github.com/najahiiii/telebot-send/internal/media"
	"github.com/najahiiii/telebot-send/internal/progress"
	"github.com/najahiiii/telebot-send/internal/thumbnail"
	"github.com/najahiiii/telebot-send/internal/workers"
)

// maxPrepareWorkers caps the media preparation pool; each worker may hold
// an ffmpeg subprocess.
const maxPrepareWorkers = 8

// Transport is the slice of the Telegram client the pipeline drives.
type Transport interface {
	SendMessage(ctx context.Context, text string, silent bool, replyMarkup string) (int, error)
	SendAlbum(ctx context.Context, body *encode.Body) ([]int, error)
	SendSingle(ctx context.Context, method string, body *encode.Body) (int, error)
	SendChatAction(ctx context.Context, action string)
	ResolveChatName(ctx context.Context) string
	Check(ctx context.Context) (time.Duration, error)
	BaseFields(silent bool, replyMarkup string) encode.Fields
}

// Options carries the per-invocation sending knobs.
type Options struct {
	Paths       []string
	Caption     string
	Spoiler     bool
	AsFile      bool
	NoGroup     bool
	Silent      bool
	ReplyMarkup string
}

// Result aggregates what a media run accomplished. Skipped counts inputs
// that never became sendable items; Failed counts sends the API rejected.
type Result struct {
	Sent       int
	Skipped    int
	Failed     int
	MessageIDs []int
}

// ErrNothingSent is returned when a media run produces no delivered
// message at all.
var ErrNothingSent = errors.New("no media was sent")

// Pipeline wires probing, classification, thumbnail enrichment, batching
// and upload into one run.
type Pipeline struct {
	transport Transport
	tool      thumbnail.Tool
}

// New builds a pipeline. tool may be thumbnail.Unavailable when ffmpeg is
// not installed; enrichment degrades instead of failing.
func New(transport Transport, tool thumbnail.Tool) *Pipeline {
	return &Pipeline{transport: transport, tool: tool}
}

// SendText delivers a plain text message.
func (p *Pipeline) SendText(ctx context.Context, text string, silent bool, replyMarkup string) error {
	chatName := p.transport.ResolveChatName(ctx)
	if _, err := p.transport.SendMessage(ctx, text, silent, replyMarkup); err != nil {
		return err
	}
	logging.Info("Message sent to %s: %s", chatName, text)
	return nil
}

// Check measures a round trip against the API and logs the latency.
func (p *Pipeline) Check(ctx context.Context) error {
	rtt, err := p.transport.Check(ctx)
	if err != nil {
		return err
	}
	logging.Info("API response time: %d ms", rtt.Milliseconds())
	return nil
}

// SendMedia runs the full media flow: probe every path, classify, enrich
// with metadata and thumbnails, batch into albums and upload. Unreadable
// or unsupported inputs are skipped with a logged error; upload failures
// fail the affected album and the run moves on. The returned Result is
// valid even when an error is returned.
func (p *Pipeline) SendMedia(ctx context.Context, opts Options) (*Result, error) {
	result := &Result{}

	items := p.probeAll(opts.Paths, opts.AsFile, result)
	if len(items) == 0 {
		return result, errors.New("no sendable media among the given paths")
	}

	media.Classify(items, media.ClassifyOptions{AsFile: opts.AsFile, Spoiler: opts.Spoiler})
	p.enrichAll(ctx, items)

	albums := media.Batch(items, !opts.NoGroup, opts.Caption)
	chatName := p.transport.ResolveChatName(ctx)

	for i, album := range albums {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		var ids []int
		var err error
		if album.Single() {
			ids, err = p.sendSingle(ctx, album.Items[0], opts, chatName)
		} else {
			ids, err = p.sendAlbum(ctx, album, i+1, len(albums), opts, chatName)
		}
		if err != nil {
			result.Failed++
			logging.Error("Failed to send media: %v", err)
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return result, err
			}
			continue
		}
		result.Sent += len(album.Items)
		result.MessageIDs = append(result.MessageIDs, ids...)
	}

	if result.Sent == 0 {
		return result, ErrNothingSent
	}
	if result.Failed > 0 {
		return result, fmt.Errorf("%d of %d batches failed", result.Failed, len(albums))
	}
	return result, nil
}

// probeAll turns paths into media items, skipping inputs that cannot be
// sent and keeping the command-line order.
func (p *Pipeline) probeAll(paths []string, asFile bool, result *Result) []*media.Item {
	items := make([]*media.Item, 0, len(paths))
	for _, path := range paths {
		it, err := media.Probe(path, asFile)
		if err != nil {
			result.Skipped++
			logging.Error("Skipping %s: %v", path, err)
			continue
		}
		items = append(items, it)
	}
	return items
}

// enrichAll attaches metadata and thumbnails concurrently. Enrichment is
// best-effort throughout; a failure leaves the item sendable without
// extras.
func (p *Pipeline) enrichAll(ctx context.Context, items []*media.Item) {
	gen := thumbnail.NewGenerator(p.tool)
	sem := make(chan struct{}, workers.ForMixed(maxPrepareWorkers))

	var wg sync.WaitGroup
	for _, it := range items {
		wg.Add(1)
		sem <- struct{}{}
		go func(it *media.Item) {
			defer wg.Done()
			defer func() { <-sem }()
			gen.Enrich(ctx, it)
		}(it)
	}
	wg.Wait()
}

func (p *Pipeline) sendSingle(ctx context.Context, it *media.Item, opts Options, chatName string) ([]int, error) {
	p.transport.SendChatAction(ctx, it.Kind.UploadAction())

	fields := p.transport.BaseFields(opts.Silent, opts.ReplyMarkup)
	tracker := progress.New(it.Name, it.Size+int64(len(it.Thumbnail)))
	defer tracker.Abort()

	body, err := encode.Single(it, fields, tracker)
	if err != nil {
		return nil, err
	}

	id, err := p.transport.SendSingle(ctx, it.Kind.SendMethod(), body)
	if err != nil {
		return nil, err
	}
	tracker.Finish()

	logging.Info("Single media file sent to %s: %s", chatName, it.Name)
	return []int{id}, nil
}

func (p *Pipeline) sendAlbum(ctx context.Context, album media.Album, seq, total int, opts Options, chatName string) ([]int, error) {
	p.transport.SendChatAction(ctx, album.Items[0].Kind.UploadAction())

	fields := p.transport.BaseFields(opts.Silent, opts.ReplyMarkup)
	label := fmt.Sprintf("album %d/%d", seq, total)
	tracker := progress.New(label, albumBytes(album))
	defer tracker.Abort()

	body, err := encode.Album(album, fields, tracker)
	if err != nil {
		return nil, err
	}

	ids, err := p.transport.SendAlbum(ctx, body)
	if err != nil {
		return nil, err
	}
	tracker.Finish()

	logging.Info("%d items sent to %s as media group", len(album.Items), chatName)
	return ids, nil
}

func albumBytes(album media.Album) int64 {
	var total int64
	for _, it := range album.Items {
		total += it.Size + int64(len(it.Thumbnail))
	}
	return total
}
