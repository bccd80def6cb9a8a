package progress

import (
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/najahiiii/telebot-send/internal/logging"
	"github.com/schollz/progressbar/v3"
	"golang.org/x/term"
)

const (
	// renderInterval bounds how often the display refreshes. The transfer
	// only touches an atomic counter; rendering happens over here.
	renderInterval = 100 * time.Millisecond
	// labelWidth keeps the bar stable for long filenames.
	labelWidth = 24
)

// Tracker observes bytes moving through an upload and renders a live bar.
//
// The write path calls Add, which is a single atomic increment and never
// blocks. A separate goroutine polls the counter at renderInterval and
// drives the terminal display, so a slow or absent terminal imposes no
// backpressure on the transfer. The same goroutine watches for the byte
// count reaching the expected total and announces that the server is now
// processing the upload; on self-hosted API servers the exchange can
// outlive the byte transfer by a while, and the notice must appear while
// that wait is happening, not after the response lands.
type Tracker struct {
	label string
	total int64

	sent int64 // atomic

	bar    *progressbar.ProgressBar
	done   chan struct{}
	loop   sync.WaitGroup
	finish sync.Once
	notice sync.Once
}

// New starts a tracker for one transfer. Rendering is suppressed when
// stdout is not a terminal; counting still works so tests and piped runs
// behave identically.
func New(label string, total int64) *Tracker {
	interactive := term.IsTerminal(int(os.Stdout.Fd()))
	return newTracker(label, total, os.Stdout, interactive)
}

func newTracker(label string, total int64, out io.Writer, interactive bool) *Tracker {
	t := &Tracker{
		label: truncateLabel(label, labelWidth),
		total: total,
		done:  make(chan struct{}),
	}

	if interactive && total > 0 {
		t.bar = progressbar.NewOptions64(total,
			progressbar.OptionSetDescription(t.label),
			progressbar.OptionSetWriter(out),
			progressbar.OptionShowBytes(true),
			progressbar.OptionSetWidth(25),
			progressbar.OptionThrottle(renderInterval),
			progressbar.OptionClearOnFinish(),
			progressbar.OptionSetRenderBlankState(true),
		)
	}
	// The loop runs even without a terminal: it is what notices byte
	// completion and emits the server-wait message.
	if total > 0 {
		t.loop.Add(1)
		go t.renderLoop()
	}
	return t
}

// Add records n transferred bytes. Safe for concurrent use, never blocks.
func (t *Tracker) Add(n int64) {
	atomic.AddInt64(&t.sent, n)
}

// Sent returns the bytes counted so far.
func (t *Tracker) Sent() int64 {
	return atomic.LoadInt64(&t.sent)
}

// Total returns the expected byte count for this transfer.
func (t *Tracker) Total() int64 {
	return t.total
}

// Finish stops rendering and clears the bar once the exchange is over.
// The server-wait notice normally fired already, when the bytes completed;
// Finish emits it as a fallback for transfers that finished between render
// ticks. Safe to call more than once.
func (t *Tracker) Finish() {
	t.finish.Do(func() {
		t.stop()
		if t.total > 0 {
			t.emitWaiting()
		}
	})
}

// Abort stops rendering without the server-wait notice. Used when the
// transfer failed; calling it after Finish is a no-op.
func (t *Tracker) Abort() {
	t.finish.Do(func() {
		t.notice.Do(func() {}) // claim the notice so it can no longer fire
		t.stop()
	})
}

func (t *Tracker) stop() {
	close(t.done)
	t.loop.Wait()
	if t.bar != nil {
		_ = t.bar.Finish()
	}
}

// emitWaiting announces, once, that the body is fully handed off and the
// run is now waiting on the server's verdict.
func (t *Tracker) emitWaiting() {
	t.notice.Do(func() {
		if t.bar != nil {
			_ = t.bar.Finish()
		}
		logging.Info("Waiting for the server to process %s", t.label)
	})
}

func (t *Tracker) renderLoop() {
	defer t.loop.Done()
	ticker := time.NewTicker(renderInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			t.update()
		case <-t.done:
			t.update()
			return
		}
	}
}

// update refreshes the bar and fires the server-wait notice as soon as the
// counted bytes reach the expected total, while the request is still in
// flight.
func (t *Tracker) update() {
	sent := t.Sent()
	if t.bar != nil {
		_ = t.bar.Set64(sent)
	}
	if sent >= t.total {
		t.emitWaiting()
	}
}

func truncateLabel(label string, maxChars int) string {
	runes := []rune(label)
	if len(runes) <= maxChars {
		return label
	}
	return string(runes[:maxChars-1]) + "…"
}
