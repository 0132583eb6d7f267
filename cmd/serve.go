package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oakwood-commons/propdash/internal/server"
	"github.com/oakwood-commons/propdash/internal/transform"
)

func newServeCommand() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the web dashboard and JSON API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			numbers, err := transform.NewNumberFormatter(cfg.Display.Locale)
			if err != nil {
				return err
			}

			log := logFromContext(cmd)
			srv, err := server.New(cfg, newSource(cfg, log),
				server.WithBuilder(transform.NewBuilder(transform.WithNumberFormatter(numbers))),
				server.WithLogger(log.WithName("server")),
			)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			cmd.Printf("Serving %s on %s\n", cfg.App.About.Name, cfg.Server.Addr)
			return srv.ListenAndServe(ctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	return cmd
}
