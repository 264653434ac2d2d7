// Package viewer draws a particles.Engine in an ebiten window and ticks it
// once per frame.
package viewer

import (
	"fmt"
	"image/color"
	"log/slog"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/olivierh59500/particle-life-engine/internal/particles"
)

const (
	ParticleSize = 2.5
	MinZoom      = 0.25
	MaxZoom      = 8.0
	resizeStep   = 10
)

// Options tunes the window, not the simulation.
type Options struct {
	TPS       int
	RulesFile string
}

// Game implements ebiten.Game on top of an engine it does not own.
type Game struct {
	engine *particles.Engine
	logger *slog.Logger
	opts   Options

	snap      particles.Snapshot
	groupSize int
	paused    bool
	stepOnce  bool
	status    string

	cam            camera
	prevMX, prevMY float64
}

// NewGame initialises the engine population and returns the game.
func NewGame(engine *particles.Engine, logger *slog.Logger, opts Options) (*Game, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.RulesFile == "" {
		opts.RulesFile = "rules.json"
	}
	snap, err := engine.Init()
	if err != nil {
		return nil, err
	}
	return &Game{
		engine:    engine,
		logger:    logger,
		opts:      opts,
		snap:      snap,
		groupSize: engine.Config().GroupSize,
		cam:       camera{zoom: 1},
	}, nil
}

// Run opens the window and blocks until it is closed.
func Run(engine *particles.Engine, logger *slog.Logger, opts Options) error {
	g, err := NewGame(engine, logger, opts)
	if err != nil {
		return err
	}
	cfg := engine.Config()
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	ebiten.SetWindowTitle("Particle Life")
	if opts.TPS > 0 {
		ebiten.SetTPS(opts.TPS)
	}
	return ebiten.RunGame(g)
}

// Update is called each tick by Ebitengine
func (g *Game) Update() error {
	g.handleInput()
	return g.advance()
}

// advance steps the engine unless paused. Only an unusable engine ends the
// game; other step errors pause it and show the message.
func (g *Game) advance() error {
	if g.paused && !g.stepOnce {
		return nil
	}
	g.stepOnce = false

	snap, err := g.engine.Step()
	if err != nil {
		if particles.IsUnusable(err) {
			return err
		}
		g.paused = true
		g.status = err.Error()
		g.logger.Warn("step failed, pausing", "error", err)
		return nil
	}
	g.snap = snap
	return nil
}

// Draw is called each frame by Ebitengine
func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(color.Black)
	w, h := screen.Bounds().Dx(), screen.Bounds().Dy()
	r := float32(ParticleSize * g.cam.zoom)

	for _, label := range g.snap.Labels() {
		col := colorFor(label)
		ps, _ := g.snap.Group(label)
		for _, p := range ps {
			sx, sy := g.cam.toScreen(float64(p.X), float64(p.Y))
			if !g.cam.visible(sx, sy, float64(w), float64(h), float64(r)) {
				continue
			}
			vector.DrawFilledCircle(screen, float32(sx), float32(sy), r, col, true)
		}
	}

	hud := fmt.Sprintf("tick %d  particles %d  group %d  TPS %.0f", g.snap.Tick, g.snap.Len(), g.groupSize, ebiten.ActualTPS())
	if g.paused {
		hud += "  [paused]"
	}
	ebitenutil.DebugPrintAt(screen, hud, 4, 4)
	if g.status != "" {
		ebitenutil.DebugPrintAt(screen, g.status, 4, 20)
	}
}

// Layout returns the screen size
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	cfg := g.engine.Config()
	return cfg.Width, cfg.Height
}

// handleInput processes keyboard and mouse input
func (g *Game) handleInput() {
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		g.paused = !g.paused
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyN) && g.paused {
		g.stepOnce = true
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		g.randomizeRules()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowUp) {
		g.resize(g.groupSize + resizeStep)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowDown) {
		g.resize(nextSmaller(g.groupSize))
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyS) {
		g.saveRules()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyL) {
		g.loadRules()
	}

	// Zoom
	_, wheelY := ebiten.Wheel()
	g.cam.zoomBy(wheelY * 0.1)

	// Pan (drag)
	mx, my := ebiten.CursorPosition()
	if ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
		g.cam.pan(float64(mx)-g.prevMX, float64(my)-g.prevMY)
	}
	g.prevMX = float64(mx)
	g.prevMY = float64(my)
}

func nextSmaller(n int) int {
	if n <= resizeStep {
		return 0
	}
	return n - resizeStep
}

func (g *Game) randomizeRules() {
	if _, err := g.engine.RandomizeRules(); err != nil {
		g.status = err.Error()
		return
	}
	g.status = "rules randomized"
}

func (g *Game) resize(n int) {
	snap, err := g.engine.Resize(n)
	if err != nil {
		g.status = err.Error()
		return
	}
	g.snap = snap
	g.groupSize = n
	g.status = fmt.Sprintf("resized to %d per group", n)
}

func (g *Game) saveRules() {
	rm, err := g.engine.Rules()
	if err == nil {
		err = particles.SaveRules(g.opts.RulesFile, rm)
	}
	if err != nil {
		g.status = err.Error()
		return
	}
	g.status = "rules saved to " + g.opts.RulesFile
}

func (g *Game) loadRules() {
	rm, err := particles.LoadRules(g.opts.RulesFile)
	if err == nil {
		err = g.engine.SetRules(rm)
	}
	if err != nil {
		g.status = err.Error()
		return
	}
	g.status = "rules loaded from " + g.opts.RulesFile
}
