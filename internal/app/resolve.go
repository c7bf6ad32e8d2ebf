package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/modslug/internal/capability"
	"github.com/xxxsen/modslug/internal/scan"
)

// ResolveCommand resolves a single identifier without scanning a folder.
type ResolveCommand struct {
	id   string
	name string

	env      *Env
	resolver scan.Resolver
	release  func()
	slug     string
}

func (c *ResolveCommand) Name() string { return "resolve" }

func (c *ResolveCommand) Desc() string {
	return "Resolve one mod ID (and optional display name) to its Modrinth slug"
}

func NewResolveCommand() *ResolveCommand { return &ResolveCommand{} }

func (c *ResolveCommand) Init(f *pflag.FlagSet) {
	f.StringVar(&c.id, "id", "", "internal mod ID to resolve")
	f.StringVar(&c.name, "name", "", "display name used to disambiguate search hits")
}

func (c *ResolveCommand) PreRun(ctx context.Context, env *Env) error {
	c.id = strings.TrimSpace(c.id)
	c.name = strings.TrimSpace(c.name)
	if c.id == "" {
		return errors.New("resolve requires --id")
	}
	c.env = env

	caps := capability.Detect(env.Config, false)
	if !caps.Registry {
		return errors.New("registry lookup is disabled in config")
	}
	r, release, err := buildResolver(ctx, env.Config)
	if err != nil {
		return err
	}
	c.resolver = r
	c.release = release

	logutil.GetLogger(ctx).Info("starting resolve",
		zap.String("id", c.id),
		zap.String("name", c.name),
	)
	return nil
}

func (c *ResolveCommand) Run(ctx context.Context) error {
	slug, ok := c.resolver.Resolve(ctx, c.id, c.name)
	c.release()
	if !ok {
		return fmt.Errorf("no matching Modrinth project for %q", c.id)
	}
	c.slug = slug
	fmt.Fprintln(c.env.Out, slug)
	return nil
}

func (c *ResolveCommand) PostRun(ctx context.Context) error {
	logutil.GetLogger(ctx).Info("resolve completed", zap.String("slug", c.slug))
	return nil
}

func init() {
	RegisterRunner("resolve", func() IRunner { return NewResolveCommand() })
}
