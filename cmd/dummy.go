package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"fgharness/internal/config"
	"fgharness/internal/dummy"
	"fgharness/internal/logging"
)

var dummyCmd = &cobra.Command{
	Use:   "dummy",
	Short: "Run a local connectivity check endpoint",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(v)
		if err != nil {
			return err
		}
		log := logging.New(cfg.Log)
		defer log.Sync()

		port, _ := cmd.Flags().GetInt("port")
		srv := dummy.Start(dummy.ServerConfig{Port: port}, log)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	},
}

func init() {
	dummyCmd.Flags().IntP("port", "p", 8080, "Port to run dummy server on")
}
