package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"

	"github.com/xxxsen/modslug/internal/capability"
	"github.com/xxxsen/modslug/internal/manifest"
)

// InspectCommand prints the manifest record of a single archive.
type InspectCommand struct {
	file string

	env       *Env
	extractor *manifest.Extractor
}

func (c *InspectCommand) Name() string { return "inspect" }

func (c *InspectCommand) Desc() string {
	return "Print the mod ID and display name embedded in one jar"
}

func NewInspectCommand() *InspectCommand { return &InspectCommand{} }

func (c *InspectCommand) Init(f *pflag.FlagSet) {
	f.StringVar(&c.file, "file", "", "jar file to inspect")
}

func (c *InspectCommand) PreRun(ctx context.Context, env *Env) error {
	if strings.TrimSpace(c.file) == "" {
		return errors.New("inspect requires --file")
	}
	c.env = env
	c.extractor = manifest.NewExtractor(capability.Detect(env.Config, true))
	return nil
}

func (c *InspectCommand) Run(ctx context.Context) error {
	rec, err := c.extractor.Extract(ctx, c.file)
	if err != nil {
		return err
	}
	if rec == nil {
		fmt.Fprintln(c.env.Out, "no known manifest found")
		return nil
	}
	fmt.Fprintf(c.env.Out, "format: %s\n", rec.Format)
	fmt.Fprintf(c.env.Out, "id:     %s\n", displayOrDash(rec.ModID))
	fmt.Fprintf(c.env.Out, "name:   %s\n", displayOrDash(rec.DisplayName))
	return nil
}

func (c *InspectCommand) PostRun(ctx context.Context) error { return nil }

func displayOrDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func init() {
	RegisterRunner("inspect", func() IRunner { return NewInspectCommand() })
}
