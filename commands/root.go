// Package commands implements the neurovision command line.
package commands

import (
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/neurovision/emotion-pipeline/config"
	"github.com/neurovision/emotion-pipeline/version"
)

var (
	configPath string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "neurovision",
	Short: "Emotion diagnosis from a face photo and a voice clip",
	Long: `neurovision classifies the facial emotion in a photo, transcribes a voice
clip with sentiment analysis and asks a chat model for a short psychological
diagnosis in the speaker's language (Arabic or English).

Configuration is read from --config, or from config/<CONFIG_ENV>/config.yaml
when present. API keys come from the environment:
  HUGGINGFACE_API_KEY, ASSEMBLYAI_API_KEY, OPENAI_API_KEY

Examples:
  # Serve the web page and the analyze API
  neurovision serve

  # Analyze a pair of local files
  neurovision analyze --image face.jpg --audio voice.wav`,
	Version:       version.Get("neurovision").Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config.yaml")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override pipeline.log_level (debug, info, warn, error)")

	rootCmd.AddCommand(serveCmd, analyzeCmd, configCmd)
}

// loadConfig reads the configuration and applies its logging settings.
func loadConfig() (*config.Root, error) {
	c, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		c.Pipeline.LogLvl = logLevel
	}
	setupLogging(c)
	return c, nil
}

func setupLogging(c *config.Root) {
	log.SetOutput(os.Stderr)
	if c.Pipeline.LogFormat == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
	lvl, err := log.ParseLevel(c.Pipeline.LogLvl)
	if err != nil {
		log.WithField("log_level", c.Pipeline.LogLvl).Warn("unknown log level, using info")
		lvl = log.InfoLevel
	}
	log.SetLevel(lvl)
}
