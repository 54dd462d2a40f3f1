package global

import (
	"context"
	"sync"

	"github.com/seventv/BackgroundKeyer/src/configure"
)

// Context carries the process wide config and clients through a batch run.
type Context interface {
	context.Context
	Instances() *Instances
	Config() *configure.Config
	// Track marks one file as in flight until the returned func is called,
	// Wait blocks on every tracked file.
	Track() func()
	Wait()
}

type GlobalContext struct {
	context.Context
	Insts *Instances
	Cfg   *configure.Config
	wg    *sync.WaitGroup
}

func New(ctx context.Context, config *configure.Config) Context {
	return &GlobalContext{
		Context: ctx,
		Insts:   &Instances{},
		Cfg:     config,
		wg:      &sync.WaitGroup{},
	}
}

func (g *GlobalContext) Instances() *Instances {
	return g.Insts
}

func (g *GlobalContext) Config() *configure.Config {
	return g.Cfg
}

func (g *GlobalContext) Track() func() {
	g.wg.Add(1)

	var once sync.Once
	return func() {
		once.Do(g.wg.Done)
	}
}

func (g *GlobalContext) Wait() {
	g.wg.Wait()
}
