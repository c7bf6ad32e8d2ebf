package app

import (
	"context"
	"io"

	"github.com/spf13/pflag"

	"github.com/xxxsen/modslug/internal/config"
)

// Env carries what a runner needs from the CLI layer.
type Env struct {
	Config *config.Config
	In     io.Reader
	Out    io.Writer
}

// IRunner represents a runnable command in the application layer.
type IRunner interface {
	Name() string
	Desc() string
	Init(f *pflag.FlagSet)
	PreRun(ctx context.Context, env *Env) error
	Run(ctx context.Context) error
	PostRun(ctx context.Context) error
}
