// Package coordinator turns recognized text into translated text. It keeps a
// cache scoped to the active language pair and enforces a request timeout
// measured in frame time rather than wall-clock time.
//
// A Coordinator is owned by one goroutine. Collaborator calls run on their
// own goroutines and hand results back over a channel; results are delivered
// to callers only from Advance, on the owning goroutine.
package coordinator

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"lenslation/packages/go/backend/observability"
	"lenslation/packages/go/backend/translation"
)

var (
	// ErrEmptyInput marks text that was blank and never looked up.
	ErrEmptyInput = errors.New("coordinator: empty input")
	// ErrTranslationFailed wraps a failure reported by the collaborator.
	ErrTranslationFailed = errors.New("coordinator: translation failed")
	// ErrTranslationTimedOut marks a request abandoned at its deadline.
	ErrTranslationTimedOut = errors.New("coordinator: translation timed out")
	// ErrClosed is reported for requests made or pending after Close.
	ErrClosed = errors.New("coordinator: closed")
	// ErrNegativeDelta rejects time moving backwards.
	ErrNegativeDelta = errors.New("coordinator: negative time delta")
	// ErrInvalidConfig rejects non-positive timeouts.
	ErrInvalidConfig = errors.New("coordinator: invalid config")
)

// Outcome classifies how a Translate call ended.
type Outcome int

const (
	Translated Outcome = iota
	Cached
	Skipped
	Failed
	TimedOut
)

func (o Outcome) String() string {
	switch o {
	case Translated:
		return "translated"
	case Cached:
		return "cached"
	case Skipped:
		return "skipped"
	case Failed:
		return "failed"
	case TimedOut:
		return "timed_out"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// Result is the terminal answer for one Translate call.
type Result struct {
	Text       string
	Translated string
	Pair       translation.LanguagePair
	Outcome    Outcome
	Err        error
}

// OK reports whether Translated holds usable text.
func (r Result) OK() bool {
	return r.Outcome == Translated || r.Outcome == Cached
}

// Config controls request handling.
type Config struct {
	// RequestTimeout is measured from issuance in frame time.
	RequestTimeout time.Duration
	// CompletionBuffer sizes the channel collaborator goroutines report on.
	CompletionBuffer int
}

// DefaultConfig returns the reference settings.
func DefaultConfig() Config {
	return Config{
		RequestTimeout:   5 * time.Second,
		CompletionBuffer: 64,
	}
}

type request struct {
	id         uint64
	text       string
	pair       translation.LanguagePair
	generation uint64
	issuedAt   time.Duration
	done       func(Result)
}

type completion struct {
	id         uint64
	translated string
	err        error
}

// Coordinator owns the cache and in-flight bookkeeping.
type Coordinator struct {
	translator translation.Translator
	config     Config
	logger     *zap.SugaredLogger

	pair       translation.LanguagePair
	generation uint64
	cache      *Cache

	now     time.Duration
	nextID  uint64
	pending map[uint64]*request

	completions chan completion
	ready       chan struct{}
	ctx         context.Context
	cancel      context.CancelFunc
	inflight    sync.WaitGroup
	closed      bool
}

// New creates a coordinator for the given initial language pair.
func New(translator translation.Translator, pair translation.LanguagePair, config Config, logger *zap.SugaredLogger) (*Coordinator, error) {
	if translator == nil {
		return nil, fmt.Errorf("%w: translator is required", ErrInvalidConfig)
	}
	if config.RequestTimeout <= 0 {
		return nil, fmt.Errorf("%w: request timeout must be positive", ErrInvalidConfig)
	}
	if config.CompletionBuffer <= 0 {
		config.CompletionBuffer = DefaultConfig().CompletionBuffer
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Coordinator{
		translator:  translator,
		config:      config,
		logger:      logger,
		pair:        pair,
		cache:       NewCache(),
		pending:     make(map[uint64]*request),
		completions: make(chan completion, config.CompletionBuffer),
		ready:       make(chan struct{}, 1),
		ctx:         ctx,
		cancel:      cancel,
	}, nil
}

// Pair returns the active language pair.
func (c *Coordinator) Pair() translation.LanguagePair {
	return c.pair
}

// SetLanguagePair activates pair and clears the whole cache. It reports
// false and does nothing when pair is already active.
func (c *Coordinator) SetLanguagePair(pair translation.LanguagePair) bool {
	if pair == c.pair {
		c.logger.Debugw("language pair unchanged", "pair", pair.String())
		return false
	}

	previous := c.pair
	dropped := c.cache.Len()
	c.pair = pair
	c.generation++
	c.cache.Clear()

	observability.RecordLanguageChange()
	observability.SetCacheEntries(0)
	c.logger.Infow("language pair changed",
		"from", previous.String(),
		"to", pair.String(),
		"cacheEntriesDropped", dropped,
	)
	return true
}

// SwapLanguages reverses the active pair.
func (c *Coordinator) SwapLanguages() bool {
	return c.SetLanguagePair(c.pair.Swapped())
}

// Translate resolves text under the active pair. Skipped and cached results
// are delivered before Translate returns; everything else is delivered from
// a later Advance.
func (c *Coordinator) Translate(text string, done func(Result)) {
	if done == nil {
		done = func(Result) {}
	}

	pair := c.pair
	if c.closed {
		c.finish(done, Result{Text: text, Pair: pair, Outcome: Failed, Err: ErrClosed})
		return
	}

	if strings.TrimSpace(text) == "" {
		c.logger.Debugw("translation skipped", "reason", "empty input")
		c.finish(done, Result{Text: text, Pair: pair, Outcome: Skipped, Err: ErrEmptyInput})
		return
	}

	key := CacheKey{Text: text, Pair: pair}
	if translated, ok := c.cache.Get(key); ok {
		c.finish(done, Result{Text: text, Translated: translated, Pair: pair, Outcome: Cached})
		return
	}

	c.nextID++
	req := &request{
		id:         c.nextID,
		text:       text,
		pair:       pair,
		generation: c.generation,
		issuedAt:   c.now,
		done:       done,
	}
	c.pending[req.id] = req
	observability.SetPendingRequests(len(c.pending))

	c.inflight.Add(1)
	go c.call(req.id, text, pair)
}

func (c *Coordinator) call(id uint64, text string, pair translation.LanguagePair) {
	defer c.inflight.Done()

	result, err := c.translator.Translate(c.ctx, text, pair.Source.Code(), pair.Target.Code())
	done := completion{id: id, translated: result.TranslatedText, err: err}

	select {
	case c.completions <- done:
	case <-c.ctx.Done():
		return
	}
	select {
	case c.ready <- struct{}{}:
	default:
	}
}

// Ready signals that at least one collaborator result is waiting to be
// delivered by Advance.
func (c *Coordinator) Ready() <-chan struct{} {
	return c.ready
}

// Advance moves frame time forward by delta, delivers results that have
// arrived, then times out requests whose deadline has passed.
func (c *Coordinator) Advance(delta time.Duration) error {
	if delta < 0 {
		return fmt.Errorf("%w: %v", ErrNegativeDelta, delta)
	}
	c.now += delta
	c.deliver()
	c.expire()
	return nil
}

func (c *Coordinator) deliver() {
	for {
		select {
		case done := <-c.completions:
			c.complete(done)
		default:
			return
		}
	}
}

func (c *Coordinator) complete(done completion) {
	req, ok := c.pending[done.id]
	if !ok {
		observability.RecordLateResult()
		c.logger.Debugw("discarding late translation result", "requestId", done.id)
		return
	}
	delete(c.pending, done.id)
	observability.SetPendingRequests(len(c.pending))

	err := done.err
	if err == nil && done.translated == "" {
		err = translation.ErrEmptyTranslation
	}
	if err != nil {
		c.logger.Warnw("translation failed",
			"text", req.text,
			"pair", req.pair.String(),
			"error", err,
		)
		c.finish(req.done, Result{
			Text:    req.text,
			Pair:    req.pair,
			Outcome: Failed,
			Err:     fmt.Errorf("%w: %w", ErrTranslationFailed, err),
		})
		return
	}

	if req.generation == c.generation {
		c.cache.Put(CacheKey{Text: req.text, Pair: req.pair}, done.translated)
		observability.SetCacheEntries(c.cache.Len())
	}
	c.finish(req.done, Result{
		Text:       req.text,
		Translated: done.translated,
		Pair:       req.pair,
		Outcome:    Translated,
	})
}

func (c *Coordinator) expire() {
	var expired []uint64
	for id, req := range c.pending {
		if c.now-req.issuedAt >= c.config.RequestTimeout {
			expired = append(expired, id)
		}
	}
	if len(expired) == 0 {
		return
	}
	slices.Sort(expired)

	for _, id := range expired {
		req := c.pending[id]
		delete(c.pending, id)
		c.logger.Warnw("translation timed out",
			"text", req.text,
			"pair", req.pair.String(),
			"timeout", c.config.RequestTimeout,
		)
		c.finish(req.done, Result{
			Text:    req.text,
			Pair:    req.pair,
			Outcome: TimedOut,
			Err:     ErrTranslationTimedOut,
		})
	}
	observability.SetPendingRequests(len(c.pending))
}

func (c *Coordinator) finish(done func(Result), result Result) {
	observability.RecordTranslation(result.Outcome.String())
	done(result)
}

// Now returns the accumulated frame time.
func (c *Coordinator) Now() time.Duration {
	return c.now
}

// Pending returns the number of requests awaiting a result.
func (c *Coordinator) Pending() int {
	return len(c.pending)
}

// CacheLen returns the number of cached translations.
func (c *Coordinator) CacheLen() int {
	return c.cache.Len()
}

// Close cancels collaborator calls and fails every pending request with
// ErrClosed. It does not wait for collaborators that ignore cancellation.
func (c *Coordinator) Close() {
	if c.closed {
		return
	}
	c.closed = true
	c.cancel()

	ids := make([]uint64, 0, len(c.pending))
	for id := range c.pending {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	for _, id := range ids {
		req := c.pending[id]
		delete(c.pending, id)
		c.finish(req.done, Result{Text: req.text, Pair: req.pair, Outcome: Failed, Err: ErrClosed})
	}
	observability.SetPendingRequests(0)
}

// Wait blocks until every collaborator goroutine has returned or ctx ends.
func (c *Coordinator) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		c.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
