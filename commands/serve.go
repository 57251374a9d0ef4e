package commands

import (
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/neurovision/emotion-pipeline/metrics"
	"github.com/neurovision/emotion-pipeline/orchestrator"
	"github.com/neurovision/emotion-pipeline/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the web page and the analyze API",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := loadConfig()
		if err != nil {
			return err
		}
		if serveAddr != "" {
			c.Server.Addr = serveAddr
		}
		if err := c.Validate(); err != nil {
			return err
		}

		metrics.Register()
		p := orchestrator.NewPipeline(c)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		log.WithFields(log.Fields{
			"service": c.Pipeline.Name,
			"version": rootCmd.Version,
		}).Info("starting")
		return server.New(c, p).Run(ctx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides server.addr)")
}
