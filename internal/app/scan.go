package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/modslug/internal/capability"
	"github.com/xxxsen/modslug/internal/export"
	"github.com/xxxsen/modslug/internal/manifest"
	"github.com/xxxsen/modslug/internal/model"
	"github.com/xxxsen/modslug/internal/scan"
)

type ScanCommand struct {
	dir     string
	offline bool
	out     string
	action  string
	pause   bool

	env      *Env
	caps     capability.Set
	act      export.Action
	picked   bool
	scanner  *scan.Scanner
	uploader export.Uploader
	release  func()
	summary  *model.Summary
}

func (c *ScanCommand) Name() string { return "scan" }

func (c *ScanCommand) Desc() string {
	return "Scan a mods folder and resolve every jar to its Modrinth slug"
}

func NewScanCommand() *ScanCommand { return &ScanCommand{} }

func (c *ScanCommand) Init(f *pflag.FlagSet) {
	f.StringVar(&c.dir, "dir", "", "mods folder to scan, a folder picker is shown when empty")
	f.BoolVar(&c.offline, "offline", false, "skip Modrinth lookups and list internal mod IDs")
	f.StringVar(&c.out, "out", "", "file name for the saved slug list (default from config)")
	f.StringVar(&c.action, "action", "", "export action without prompting: copy, save or none")
	f.BoolVar(&c.pause, "pause", false, "wait for Enter before exiting")
}

func (c *ScanCommand) PreRun(ctx context.Context, env *Env) error {
	logger := logutil.GetLogger(ctx)
	c.env = env

	if strings.TrimSpace(c.action) != "" {
		act, err := export.ParseAction(c.action)
		if err != nil {
			return err
		}
		c.act = act
	}
	if strings.TrimSpace(c.out) == "" {
		c.out = env.Config.Output.File
	}

	c.caps = capability.Detect(env.Config, c.offline)
	announceCapabilities(ctx, env.Out, c.caps)

	if strings.TrimSpace(c.dir) == "" {
		fmt.Fprintln(env.Out, "\nPlease select your mods folder...")
		dir, err := pickFolder()
		if err != nil {
			return fmt.Errorf("open folder picker (use --dir instead): %w", err)
		}
		if dir == "" {
			return errors.New("no folder selected")
		}
		c.dir = dir
		c.picked = true
	}

	uploader, err := newUploader(ctx, env.Config)
	if err != nil {
		return err
	}
	c.uploader = uploader

	var res scan.Resolver
	c.release = func() {}
	if c.caps.Registry {
		r, release, err := buildResolver(ctx, env.Config)
		if err != nil {
			return err
		}
		res = r
		c.release = release
	}
	c.scanner = scan.New(manifest.NewExtractor(c.caps), res, &consoleObserver{out: env.Out, offline: res == nil})

	logger.Info("starting scan",
		zap.String("dir", c.dir),
		zap.Bool("registry", c.caps.Registry),
		zap.String("action", string(c.act)),
		zap.Bool("upload", c.uploader != nil),
	)
	return nil
}

func (c *ScanCommand) Run(ctx context.Context) error {
	fmt.Fprintf(c.env.Out, "Scanning folder: %s\n", c.dir)
	summary, err := c.scanner.Scan(ctx, c.dir)
	c.release()
	if err != nil {
		return fmt.Errorf("scan folder %s: %w", c.dir, err)
	}
	c.summary = summary
	export.Render(c.env.Out, summary)
	return nil
}

func (c *ScanCommand) PostRun(ctx context.Context) error {
	if err := c.export(ctx); err != nil {
		return err
	}
	if c.pause || (c.picked && isTerminal(c.env.In)) {
		waitForEnter(c.env.In, c.env.Out)
	}
	return nil
}

func (c *ScanCommand) export(ctx context.Context) error {
	if len(c.summary.Slugs()) == 0 {
		fmt.Fprintln(c.env.Out, "\nNo list generated, nothing to copy or save.")
		return nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("resolve working directory: %w", err)
	}
	menu := export.NewMenu(c.summary, export.SystemClipboard(c.caps), wd, c.out, c.env.In, c.env.Out)
	if c.uploader != nil {
		menu.WithUploader(c.uploader)
	}
	if c.act != "" {
		return menu.Do(ctx, c.act)
	}
	return menu.Run(ctx)
}

// Summary returns the result gathered during Run.
func (c *ScanCommand) Summary() *model.Summary {
	return c.summary
}

type consoleObserver struct {
	out     io.Writer
	offline bool
}

func (o *consoleObserver) OnStart(dir string, total int) {
	fmt.Fprintf(o.out, "Found: %d .jar files.\n", total)
}

func (o *consoleObserver) OnItemStart(idx, total int, file string) {
	fmt.Fprintf(o.out, "\n[%d/%d] Checking: %s\n", idx, total, file)
}

func (o *consoleObserver) OnItemDone(idx, total int, outcome model.Outcome) {
	switch outcome.Kind {
	case model.ResolutionSlug:
		if o.offline {
			fmt.Fprintf(o.out, "  -> Internal ID: %s\n", outcome.Slug)
			return
		}
		fmt.Fprintf(o.out, "  -> Modrinth Slug found: %s\n", outcome.Slug)
	case model.ResolutionNoMatch:
		fmt.Fprintf(o.out, "  -> Could not find a matching Modrinth project for ID '%s'.\n", outcome.Record.ModID)
	default:
		fmt.Fprintln(o.out, "  -> No metadata (Mod ID) found in the JAR.")
	}
}

func init() {
	RegisterRunner("scan", func() IRunner { return NewScanCommand() })
}
