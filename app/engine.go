// Package app is a small garage service showing every injection point the
// container supports: a qualified constructor argument, inject fields, inject
// methods on a base level, a pooled scope and a provider breaking a cycle.
package app

import (
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/km-arc/go-inject/framework/config"
	"github.com/km-arc/go-inject/framework/container"
)

var serials atomic.Int64

// Cylinder fires once per engine start.
type Cylinder interface {
	Fire() string
	Serial() int64
}

// V8Cylinder is bound as @Named("v8") in the pooled scope.
type V8Cylinder struct {
	serial int64
}

func NewV8Cylinder() *V8Cylinder { return &V8Cylinder{serial: serials.Add(1)} }

func (c *V8Cylinder) Fire() string  { return fmt.Sprintf("vroom (cylinder #%d)", c.serial) }
func (c *V8Cylinder) Serial() int64 { return c.serial }

// ── Engine ───────────────────────────────────────────────────────────────────

// Engine parks itself in the garage on start. The garage depends on an
// engine too, so the engine only holds a provider for it.
type Engine struct {
	Cylinder Cylinder
	Logger   *zap.Logger `inject:""`
	garage   container.Provider[*Garage]
}

func NewEngine(c Cylinder) *Engine { return &Engine{Cylinder: c} }

// InstallIn is an inject method.
func (e *Engine) InstallIn(garage container.Provider[*Garage]) {
	e.garage = garage
}

// Start fires the cylinder and parks the engine.
func (e *Engine) Start() (string, error) {
	g, err := e.garage.Get()
	if err != nil {
		return "", err
	}
	parked := g.Park()
	e.Logger.Debug("engine started", zap.String("garage", g.Name), zap.Int64("parked", parked))
	return e.Cylinder.Fire(), nil
}

// ── Garage ───────────────────────────────────────────────────────────────────

// Workshop is the base level of Garage. It is opened before any Garage
// field is injected.
type Workshop struct {
	Name   string
	Logger *zap.Logger `inject:""`
}

// Open is an inject method.
func (w *Workshop) Open(conf *config.Config) {
	w.Name = conf.App.Name + " workshop"
	w.Logger.Info("workshop opened", zap.String("name", w.Name))
}

// Garage is a singleton through its type-level annotation.
type Garage struct {
	Workshop
	Engine *Engine `inject:""`
	parked atomic.Int64
}

// Park records one parked engine and returns the total.
func (g *Garage) Park() int64 { return g.parked.Add(1) }

// Parked returns the number of parked engines.
func (g *Garage) Parked() int64 { return g.parked.Load() }
