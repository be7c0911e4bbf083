package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rtfactory/rtfactory/internal/app"
	"github.com/rtfactory/rtfactory/internal/config"
	"github.com/rtfactory/rtfactory/internal/logger"
	"github.com/rtfactory/rtfactory/pkg/artifactory"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	v   = viper.New()
	cfg *config.Config
	log logger.Logger = &logger.NopLogger{}
)

var rootCmd = &cobra.Command{
	Use:           "rtfactory",
	Short:         "Provision and query an Artifactory instance",
	Long:          "Apply provisioning plans (repositories, groups, users, permission targets) and resolve, tag or download artifacts.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		loaded, err := config.LoadWith(v)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = loaded

		zl, err := logger.Init(cfg.LogLevel)
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		log = zl
		return nil
	},
	PersistentPostRun: func(*cobra.Command, []string) {
		_ = logger.Close()
	},
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintf(os.Stderr, "rtfactory: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("url", "", "Artifactory API root (env ARTIFACTORY_URL)")
	flags.String("api-key", "", "API key sent as X-JFrog-Art-Api (env ARTIFACTORY_API_KEY)")
	flags.String("log-level", "", "log level: debug, info, warn, error (env LOG_LEVEL)")

	_ = v.BindPFlag("artifactory_url", flags.Lookup("url"))
	_ = v.BindPFlag("artifactory_api_key", flags.Lookup("api-key"))
	_ = v.BindPFlag("log_level", flags.Lookup("log-level"))
}

// newClient returns a client for the loaded configuration.
func newClient() *artifactory.Client {
	return app.NewClient(cfg, log)
}
