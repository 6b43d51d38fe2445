package cli

import (
	"log"

	"github.com/spf13/cobra"

	"gearhead/internal/devserver"
)

func newDevServerCommand(opts *rootOptions) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "devserver",
		Short: "Run the in-memory backend and identity emulator",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := opts.config()
			if addr == "" {
				addr = cfg.DevServerAddr
			}
			// The server log is the point of this command.
			log.SetOutput(cmd.ErrOrStderr())
			opts.printer(cmd).Success("Dev server on %s, use --dev with DEVSERVER_ADDR=%s", devServerURL(addr), addr)
			return devserver.New(cfg.DevServerSecret).Run(addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default DEVSERVER_ADDR)")
	return cmd
}
