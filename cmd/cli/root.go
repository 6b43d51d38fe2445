// Package cli is the command line front end of the GEARHEAD client.
package cli

import (
	"context"
	"io"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"gearhead/internal/app"
	"gearhead/pkg/config"
	"gearhead/pkg/kvstore"
)

var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
)

// SetBuildInfo records values injected at link time.
func SetBuildInfo(v, c, bt string) {
	version = v
	commit = c
	buildTime = bt
}

type rootOptions struct {
	verbose   bool
	dev       bool
	ephemeral bool
	noColor   bool
}

// NewRootCommand builds a fresh command tree.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "gearhead",
		Short: "GEARHEAD BR community client",
		Long: `gearhead talks to the GEARHEAD BR backend: sign in, keep your profile and
garage up to date, create events and browse the FIPE vehicle catalog.

Example usage:
  gearhead devserver &               # local backend and identity emulator
  gearhead --dev register --name Jane --email jane@example.com
  gearhead --dev profile show
  gearhead catalog models honda civic`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if opts.verbose {
				log.SetOutput(cmd.ErrOrStderr())
			} else {
				log.SetOutput(io.Discard)
			}
		},
	}

	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log requests and cache activity to stderr")
	root.PersistentFlags().BoolVar(&opts.dev, "dev", false, "use the local devserver (DEVSERVER_ADDR) for the backend and identity")
	root.PersistentFlags().BoolVar(&opts.ephemeral, "ephemeral", false, "keep session and cache in memory only")
	root.PersistentFlags().BoolVar(&opts.noColor, "no-color", false, "disable colored output")

	root.AddCommand(
		newLoginCommand(opts),
		newRegisterCommand(opts),
		newForgotPasswordCommand(opts),
		newLogoutCommand(opts),
		newWhoamiCommand(opts),
		newImpersonateCommand(opts),
		newProfileCommand(opts),
		newGarageCommand(opts),
		newEventCommand(opts),
		newCatalogCommand(opts),
		newDevServerCommand(opts),
		newVersionCommand(),
	)
	return root
}

// Execute runs the CLI against os.Args and returns the process exit code.
func Execute() int {
	root := NewRootCommand()
	if err := root.Execute(); err != nil {
		noColor, _ := root.PersistentFlags().GetBool("no-color")
		newPrinter(os.Stdout, os.Stderr, noColor).Error("%s", describe(err))
		return 1
	}
	return 0
}

func (o *rootOptions) config() *config.Config {
	cfg := config.Load()
	if o.dev {
		cfg.UseDevServer(devServerURL(cfg.DevServerAddr))
	}
	if o.ephemeral {
		cfg.StoreDriver = kvstore.DriverMemory
	}
	return cfg
}

// withApp opens the application for the duration of fn.
func (o *rootOptions) withApp(fn func(ctx context.Context, cmd *cobra.Command, a *app.App, p *printer) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		a, err := app.New(ctx, o.config())
		if err != nil {
			return err
		}
		a.DevMode = o.dev
		defer func() {
			if err := a.Close(); err != nil {
				log.Printf("[CLI] Failed to close store: %v", err)
			}
		}()
		return fn(ctx, cmd, a, o.printer(cmd))
	}
}

func (o *rootOptions) printer(cmd *cobra.Command) *printer {
	return newPrinter(cmd.OutOrStdout(), cmd.ErrOrStderr(), o.noColor)
}

func devServerURL(addr string) string {
	if strings.HasPrefix(addr, "http://") || strings.HasPrefix(addr, "https://") {
		return strings.TrimRight(addr, "/")
	}
	if strings.HasPrefix(addr, ":") {
		addr = "localhost" + addr
	}
	return "http://" + addr
}
