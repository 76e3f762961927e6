// Package preview keeps a live rendering of a customization that is being
// edited. Updates are resolved in the background and the latest completed
// rendering is published to subscribers.
package preview

import (
	"context"
	"reflect"
	"sync"
	"time"

	"github.com/cristianadrielbraun/qrstudio/internal/customization"
	"github.com/cristianadrielbraun/qrstudio/internal/logger"
	"github.com/cristianadrielbraun/qrstudio/internal/render"
)

// DefaultDebounce is how long publishing waits for further commits.
const DefaultDebounce = 50 * time.Millisecond

// Composer renders a customization. *render.Composer implements it.
type Composer interface {
	Compose(ctx context.Context, data customization.Data, content string) (*render.Result, error)
}

// State is a completed rendering.
type State struct {
	SVG        string             `json:"svg"`
	Generation uint64             `json:"generation"`
	Loading    bool               `json:"loading"`
	Options    render.Options     `json:"options"`
	Data       customization.Data `json:"customization"`
	Degraded   bool               `json:"degraded,omitempty"`
	Err        string             `json:"error,omitempty"`
}

// Previewer holds the rendering of one customization.
type Previewer struct {
	composer       Composer
	lggr           logger.Logger
	debounce       time.Duration
	defaultContent string

	mu       sync.Mutex
	data     customization.Data
	content  string
	accepted bool
	gen      uint64
	state    State
	cancel   context.CancelFunc
	idle     chan struct{}
	timer    *time.Timer
	closed   bool

	obsMu     sync.RWMutex
	observers []chan State
}

// New returns a Previewer rendering content until SetContent replaces it. A zero debounce uses
// DefaultDebounce.
func New(composer Composer, content string, lggr logger.Logger, debounce time.Duration) *Previewer {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	idle := make(chan struct{})
	close(idle)
	return &Previewer{
		composer:       composer,
		lggr:           lggr.Named("Preview"),
		debounce:       debounce,
		defaultContent: content,
		content:        content,
		idle:           idle,
	}
}

// Update accepts data for rendering. It reports false when data is
// structurally equal to the last accepted value, in which case nothing
// happens.
func (p *Previewer) Update(data customization.Data) bool {
	data = data.Normalize()

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return false
	}
	if p.accepted && reflect.DeepEqual(p.data, data) {
		return false
	}
	p.data = data
	p.accepted = true
	p.startLocked()
	return true
}

// DefaultContent is the content the Previewer was created with.
func (p *Previewer) DefaultContent() string {
	return p.defaultContent
}

// SetContent changes the encoded payload and renders again when it differs.
func (p *Previewer) SetContent(content string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed || content == p.content {
		return false
	}
	p.content = content
	if p.accepted {
		p.startLocked()
	}
	return true
}

// startLocked cancels the in-flight resolution and starts a new generation.
func (p *Previewer) startLocked() {
	if p.cancel != nil {
		p.cancel()
	}
	p.gen++
	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel

	if !p.state.Loading {
		p.idle = make(chan struct{})
	}
	p.state.Loading = true

	go p.resolve(ctx, p.gen, p.data, p.content)
}

func (p *Previewer) resolve(ctx context.Context, gen uint64, data customization.Data, content string) {
	res, err := p.composer.Compose(ctx, data, content)

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed || gen != p.gen {
		// a newer update owns the state
		return
	}
	p.cancel = nil

	if err != nil {
		p.lggr.Errorw("Failed to render preview", "generation", gen, "error", err)
		p.state.Err = err.Error()
	} else {
		p.state = State{
			SVG:      res.SVG,
			Options:  res.Options,
			Data:     data,
			Degraded: len(res.Degraded) > 0,
		}
	}
	p.state.Generation = gen
	p.state.Loading = false
	close(p.idle)

	p.scheduleLocked()
}

// scheduleLocked (re)arms the debounce timer.
func (p *Previewer) scheduleLocked() {
	if p.timer != nil {
		p.timer.Reset(p.debounce)
		return
	}
	p.timer = time.AfterFunc(p.debounce, p.flush)
}

func (p *Previewer) flush() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	st := p.state
	p.mu.Unlock()

	p.notifyObservers(st)
}

// State returns the latest completed rendering. Loading is set while a newer
// update is being resolved.
func (p *Previewer) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Wait blocks until no resolution is in flight and returns the state.
func (p *Previewer) Wait(ctx context.Context) (State, error) {
	for {
		p.mu.Lock()
		idle := p.idle
		if !p.state.Loading {
			st := p.state
			p.mu.Unlock()
			return st, nil
		}
		p.mu.Unlock()

		select {
		case <-idle:
		case <-ctx.Done():
			return State{}, ctx.Err()
		}
	}
}

// Subscribe returns a channel receiving debounced snapshots. Slow subscribers
// miss intermediate snapshots but always get the latest one.
func (p *Previewer) Subscribe() chan State {
	ch := make(chan State, 1)
	p.obsMu.Lock()
	defer p.obsMu.Unlock()
	p.mu.Lock()
	closed := p.closed
	p.mu.Unlock()
	if closed {
		close(ch)
		return ch
	}
	p.observers = append(p.observers, ch)
	return ch
}

// Unsubscribe removes and closes ch.
func (p *Previewer) Unsubscribe(ch chan State) {
	p.obsMu.Lock()
	defer p.obsMu.Unlock()
	for i, obs := range p.observers {
		if obs == ch {
			p.observers = append(p.observers[:i], p.observers[i+1:]...)
			close(ch)
			return
		}
	}
}

func (p *Previewer) notifyObservers(st State) {
	p.obsMu.RLock()
	defer p.obsMu.RUnlock()
	for _, obs := range p.observers {
		// replace an unread snapshot with the newer one
		select {
		case <-obs:
		default:
		}
		select {
		case obs <- st:
		default:
		}
	}
}

// Close cancels in-flight work, stops the debounce timer and closes every
// subscriber channel. Later updates are ignored.
func (p *Previewer) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	if p.timer != nil {
		p.timer.Stop()
	}
	if p.state.Loading {
		p.state.Loading = false
		close(p.idle)
	}
	p.mu.Unlock()

	p.obsMu.Lock()
	for _, obs := range p.observers {
		close(obs)
	}
	p.observers = nil
	p.obsMu.Unlock()
}
