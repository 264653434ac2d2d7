// Package terminal renders a particles.Engine as coloured cells in a text
// terminal using termbox.
package terminal

import (
	"context"
	"fmt"
	"hash/fnv"
	"log/slog"
	"strings"
	"time"

	"github.com/nsf/termbox-go"

	"github.com/olivierh59500/particle-life-engine/internal/particles"
)

const (
	DefaultInterval = 50 * time.Millisecond
	particleRune    = '•'
	statusRows      = 1
)

var namedColors = map[string]termbox.Attribute{
	"black":   termbox.ColorBlack,
	"red":     termbox.ColorRed,
	"green":   termbox.ColorGreen,
	"yellow":  termbox.ColorYellow,
	"blue":    termbox.ColorBlue,
	"magenta": termbox.ColorMagenta,
	"cyan":    termbox.ColorCyan,
	"white":   termbox.ColorWhite,
}

var fallbackColors = []termbox.Attribute{
	termbox.ColorRed, termbox.ColorGreen, termbox.ColorYellow,
	termbox.ColorBlue, termbox.ColorMagenta, termbox.ColorCyan,
}

// Terminal is a termbox front end that ticks its engine on a fixed interval
// and draws each group in a terminal colour.
type Terminal struct {
	engine   *particles.Engine
	logger   *slog.Logger
	interval time.Duration

	backbuf  []termbox.Cell
	bbw, bbh int
	paused   bool
	snap     particles.Snapshot
	status   string
}

// New returns a renderer for engine. A nil logger uses slog.Default and a
// non-positive interval uses DefaultInterval.
func New(engine *particles.Engine, logger *slog.Logger, interval time.Duration) *Terminal {
	if logger == nil {
		logger = slog.Default()
	}
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Terminal{engine: engine, logger: logger, interval: interval}
}

// Run takes over the terminal until q or Esc is pressed or ctx is done.
func (t *Terminal) Run(ctx context.Context) error {
	snap, err := t.engine.Init()
	if err != nil {
		return err
	}
	t.snap = snap

	if err := termbox.Init(); err != nil {
		return fmt.Errorf("init terminal: %w", err)
	}
	defer termbox.Close()
	termbox.SetInputMode(termbox.InputEsc)
	t.reallocBackBuffer(termbox.Size())

	events := make(chan termbox.Event)
	go func() {
		for {
			ev := termbox.PollEvent()
			if ev.Type == termbox.EventInterrupt {
				close(events)
				return
			}
			events <- ev
		}
	}()
	// PollEvent only returns once interrupted, so drain until it does.
	defer func() {
		termbox.Interrupt()
		for range events {
		}
	}()

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	t.redraw()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-events:
			quit, err := t.handleEvent(ev)
			if err != nil || quit {
				return err
			}
		case <-ticker.C:
			if err := t.advance(); err != nil {
				return err
			}
		}
		t.redraw()
	}
}

func (t *Terminal) handleEvent(ev termbox.Event) (bool, error) {
	switch ev.Type {
	case termbox.EventKey:
		switch {
		case ev.Key == termbox.KeyEsc, ev.Ch == 'q':
			return true, nil
		case ev.Key == termbox.KeySpace:
			t.paused = !t.paused
		case ev.Ch == 'r':
			if _, err := t.engine.RandomizeRules(); err != nil {
				t.status = err.Error()
			} else {
				t.status = "rules randomized"
			}
		}
	case termbox.EventResize:
		t.reallocBackBuffer(ev.Width, ev.Height)
	case termbox.EventError:
		return true, ev.Err
	}
	return false, nil
}

// advance steps once unless paused. A missing rule pauses; an unusable
// engine stops the renderer.
func (t *Terminal) advance() error {
	if t.paused {
		return nil
	}
	snap, err := t.engine.Step()
	if err != nil {
		if particles.IsUnusable(err) {
			return err
		}
		t.paused = true
		t.status = err.Error()
		t.logger.Warn("step failed, pausing", "error", err)
		return nil
	}
	t.snap = snap
	return nil
}

func (t *Terminal) reallocBackBuffer(w, h int) {
	t.bbw, t.bbh = w, h
	t.backbuf = make([]termbox.Cell, w*h)
}

func (t *Terminal) redraw() {
	termbox.Clear(termbox.ColorDefault, termbox.ColorDefault)
	rasterize(t.backbuf, t.bbw, t.bbh, t.snap, t.engine.Config())
	copy(termbox.CellBuffer(), t.backbuf)

	line := fmt.Sprintf("tick %d  particles %d", t.snap.Tick, t.snap.Len())
	if t.paused {
		line += "  [paused]"
	}
	if t.status != "" {
		line += "  " + t.status
	}
	printAt(0, t.bbh-1, line)
	termbox.Flush()
}

func printAt(x, y int, s string) {
	for _, r := range s {
		termbox.SetCell(x, y, r, termbox.ColorWhite, termbox.ColorDefault)
		x++
	}
}

// rasterize clears buf and plots every particle into the w*h grid, keeping
// the bottom row free for the status line. Later groups overwrite earlier
// ones sharing a cell.
func rasterize(buf []termbox.Cell, w, h int, snap particles.Snapshot, cfg particles.Config) {
	for i := range buf {
		buf[i] = termbox.Cell{Ch: ' '}
	}
	for _, label := range snap.Labels() {
		fg := colorFor(label)
		ps, _ := snap.Group(label)
		for _, p := range ps {
			col, row, ok := project(p.X, p.Y, cfg.Width, cfg.Height, w, h-statusRows)
			if !ok {
				continue
			}
			buf[row*w+col] = termbox.Cell{Ch: particleRune, Fg: fg}
		}
	}
}

// project scales a position in the width x height area to a cell in a
// cols x rows grid. Positions outside the area are not drawn.
func project(x, y, width, height, cols, rows int) (int, int, bool) {
	if cols <= 0 || rows <= 0 || x < 0 || y < 0 || x >= width || y >= height {
		return 0, 0, false
	}
	return x * cols / width, y * rows / height, true
}

// colorFor maps a label to one of the eight terminal colours.
func colorFor(label string) termbox.Attribute {
	if c, ok := namedColors[strings.ToLower(label)]; ok {
		return c
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(label))
	return fallbackColors[h.Sum32()%uint32(len(fallbackColors))]
}
