package collect

import (
	"context"
	"time"

	"github.com/versetool/versepane/internal/event"
	"github.com/versetool/versepane/internal/pane"
	"github.com/versetool/versepane/internal/service"
)

// DefaultInterItemDelay is the pause inserted between two translations of
// one batch. It paces the translation collaborator and keeps per-verse
// feedback visually distinct.
const DefaultInterItemDelay = 150 * time.Millisecond

// translateTimeout bounds a single translation call.
const translateTimeout = 30 * time.Second

// Logger is the logging surface delivery needs. *app.Logger satisfies it.
type Logger interface {
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

// Options configures a Deliverer.
type Options struct {
	// Registry resolves drop-target pane IDs.
	Registry *pane.Registry

	// Translator renders batch items into the target pane's resource.
	Translator service.Translator

	// Bus, when set, receives a batch.dropped event per delivery.
	Bus *event.Bus

	// Log receives delivery diagnostics. Defaults to a no-op logger.
	Log Logger

	// InterItemDelay is the pause between two items of one batch. Zero
	// uses DefaultInterItemDelay; negative disables the pause.
	InterItemDelay time.Duration
}

// Deliverer applies a collected batch to a drop target. Items are matched
// to target cells by verse index; matched verses are translated strictly
// one at a time, in batch order, with a pause between calls.
type Deliverer struct {
	registry   *pane.Registry
	translator service.Translator
	bus        *event.Bus
	log        Logger
	delay      time.Duration

	// sleep is swapped in tests to avoid real waits.
	sleep func(ctx context.Context, d time.Duration)
}

// NewDeliverer creates a deliverer.
func NewDeliverer(opts Options) (*Deliverer, error) {
	if opts.Translator == nil {
		return nil, ErrNoTranslator
	}
	if opts.Log == nil {
		opts.Log = nopLogger{}
	}
	if opts.InterItemDelay == 0 {
		opts.InterItemDelay = DefaultInterItemDelay
	}
	if opts.InterItemDelay < 0 {
		opts.InterItemDelay = 0
	}
	return &Deliverer{
		registry:   opts.Registry,
		translator: opts.Translator,
		bus:        opts.Bus,
		log:        opts.Log,
		delay:      opts.InterItemDelay,
		sleep:      sleepCtx,
	}, nil
}

// DropTo resolves targetPaneID through the registry and delivers the
// batch. An unknown pane drops the batch silently; the gesture already
// ended and there is nothing sensible to put it back into.
func (d *Deliverer) DropTo(ctx context.Context, targetPaneID string, batch []Item) int {
	if d.registry == nil {
		return 0
	}
	target, ok := d.registry.Get(targetPaneID)
	if !ok {
		d.log.Warn("batch drop on unknown pane", "pane", targetPaneID, "items", len(batch))
		return 0
	}
	n, err := d.Drop(ctx, target, batch)
	if err != nil {
		d.log.Error("batch drop failed", "pane", targetPaneID, "error", err)
	}
	return n
}

// Drop delivers a batch onto target. Items whose verse index has no cell
// in the target are skipped; a batch with no matches is a no-op. Each
// matched verse is marked pending, translated, and written through the
// surface's user-edit path so the normal dirty and analysis machinery
// runs. The first context cancellation stops the remainder of the batch.
//
// Drop returns the number of verses that received a translation.
func (d *Deliverer) Drop(ctx context.Context, target *pane.Pane, batch []Item) (int, error) {
	if target == nil {
		return 0, ErrNoPane
	}

	matched := make([]deliverable, 0, len(batch))
	for _, item := range batch {
		cell, ok := target.CellAt(item.VerseIndex)
		if !ok {
			continue
		}
		matched = append(matched, deliverable{item: item, cell: cell})
	}

	delivered := 0
	var failed error
	for i, m := range matched {
		if i > 0 && d.delay > 0 {
			d.sleep(ctx, d.delay)
		}
		if err := ctx.Err(); err != nil {
			failed = err
			break
		}
		if err := d.deliverOne(ctx, target, m); err != nil {
			d.log.Warn("verse delivery failed",
				"pane", target.ID, "verse", m.item.VerseIndex, "error", err)
			failed = err
			continue
		}
		delivered++
	}

	if d.bus != nil {
		d.bus.Publish(event.New(event.TopicBatchDropped, event.BatchDropped{
			TargetPaneID: target.ID,
			Items:        len(batch),
			Matched:      len(matched),
		}, "collect"))
	}
	return delivered, failed
}

type deliverable struct {
	item Item
	cell *pane.VerseCell
}

func (d *Deliverer) deliverOne(ctx context.Context, target *pane.Pane, m deliverable) error {
	m.cell.SetPending(true)
	defer m.cell.SetPending(false)

	tctx, cancel := context.WithTimeout(ctx, translateTimeout)
	defer cancel()

	text, err := d.translator.Translate(tctx, service.TranslateRequest{
		SourceText:   m.item.Text,
		SourcePaneID: m.item.SourcePaneID,
		TargetPaneID: target.ID,
		VerseIndex:   m.item.VerseIndex,
	})
	if err != nil {
		m.cell.SetFlash(pane.FlashError)
		return err
	}

	// Input, not SetValue: delivered text is a user-visible edit and must
	// flow through change observers like any keystroke.
	m.cell.Surface().Input(text)
	m.cell.SetFlash(pane.FlashSuccess)
	return nil
}

func sleepCtx(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
