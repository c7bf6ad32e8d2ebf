package cli

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/modslug/internal/app"
)

const configFlag = "config"

var rootCmd = NewRootCommand()

// NewRootCommand builds the command tree from the registered runners.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "modslug",
		Short:         "Find the Modrinth slugs of the mods in a folder",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String(configFlag, "", "path to a json config file")

	for _, name := range app.RunnerList() {
		runner := app.MustResolveRunner(name)
		subcmd := &cobra.Command{
			Use:   runner.Name(),
			Short: runner.Desc(),
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				ctx := commandContext(cmd)
				cfgPath, _ := cmd.Flags().GetString(configFlag)
				cfg, err := LoadConfig(cfgPath)
				if err != nil {
					return err
				}
				env := &app.Env{
					Config: cfg,
					In:     cmd.InOrStdin(),
					Out:    cmd.OutOrStdout(),
				}
				if err := runner.PreRun(ctx, env); err != nil {
					return err
				}
				if err := runner.Run(ctx); err != nil {
					return err
				}
				return runner.PostRun(ctx)
			},
		}
		runner.Init(subcmd.Flags())
		root.AddCommand(subcmd)
	}
	return root
}

// Execute runs the CLI.
func Execute() error {
	return ExecuteContext(context.Background())
}

// ExecuteContext runs the CLI with the given context.
func ExecuteContext(ctx context.Context) error {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		logutil.GetLogger(ctx).Error("exec cmd failed", zap.Error(err))
		return err
	}
	return nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
