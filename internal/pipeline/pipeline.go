// Package pipeline connects the transcript tailer to the playback controller
// and keeps the whole narrator running.
package pipeline

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/dgnsrekt/narrator/internal/playback"
	"github.com/dgnsrekt/narrator/internal/transcript"
)

// Runner is a long-lived component driven by the pipeline's lifecycle.
type Runner interface {
	Run(ctx context.Context) error
}

// request is one candidate narration.
type request struct {
	seq  int64
	text string
}

// Pipeline ties the tailer, extractor, and controller together. Narrations
// are serialized through a single-slot mailbox: when a new one arrives while
// another is queued, the stale one is dropped. The assistant's newest words
// always win over its older ones.
type Pipeline struct {
	tailer    *transcript.Tailer
	extractor *transcript.Extractor
	ctrl      *playback.Controller
	control   Runner // optional; nil when the control channel is disabled
	limiter   *rate.Limiter
	log       *log.Logger

	requests chan request
	seq      atomic.Int64
}

// New creates a pipeline. gap is the minimum pause between narrations;
// control may be nil.
func New(tailer *transcript.Tailer, extractor *transcript.Extractor, ctrl *playback.Controller, control Runner, gap time.Duration, logger *log.Logger) *Pipeline {
	if logger == nil {
		logger = log.Default()
	}

	limit := rate.Inf
	if gap > 0 {
		limit = rate.Every(gap)
	}

	return &Pipeline{
		tailer:    tailer,
		extractor: extractor,
		ctrl:      ctrl,
		control:   control,
		limiter:   rate.NewLimiter(limit, 1),
		log:       logger.With("component", "pipeline"),
		requests:  make(chan request, 1),
	}
}

// Run drives all components until the context ends or one of them fails.
func (p *Pipeline) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return p.tailer.Run(ctx, p.onEntries)
	})

	g.Go(func() error {
		return p.narrate(ctx)
	})

	if p.control != nil {
		g.Go(func() error {
			return p.control.Run(ctx)
		})
	}

	return g.Wait()
}

// onEntries converts a batch of new transcript entries into narration
// requests.
func (p *Pipeline) onEntries(entries []transcript.Entry) {
	for _, text := range p.extractor.Extract(entries) {
		p.submit(text)
	}
}

// submit queues text for narration, displacing any narration still waiting
// its turn.
func (p *Pipeline) submit(text string) {
	req := request{seq: p.seq.Add(1), text: text}
	for {
		select {
		case p.requests <- req:
			return
		default:
		}
		select {
		case stale := <-p.requests:
			p.log.Debug("dropping stale narration", "seq", stale.seq, "chars", len(stale.text))
		default:
		}
	}
}

// narrate consumes the mailbox, pacing narrations so consecutive messages
// don't blur together.
func (p *Pipeline) narrate(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case req := <-p.requests:
			if err := p.limiter.Wait(ctx); err != nil {
				return err
			}
			if err := p.ctrl.Speak(ctx, req.text); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				// One failed narration never stops the pipeline.
				p.log.Warn("narration failed", "seq", req.seq, "error", err)
			}
		}
	}
}
