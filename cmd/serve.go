package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/devpulse/devpulse/internal/cachestore"
	"github.com/devpulse/devpulse/internal/config"
	"github.com/devpulse/devpulse/internal/gateway"
	"github.com/devpulse/devpulse/internal/logging"
	"github.com/devpulse/devpulse/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Runs the dashboard HTTP API",
	Long: `Starts the HTTP server exposing the commit aggregation pipeline behind
the response cache layer. Configuration comes from the environment (see
internal/config) and an optional YAML cache-rules file.`,
	Run: func(cmd *cobra.Command, args []string) {
		verbose, _ := cmd.InheritedFlags().GetBool("verbose")
		rulesPath, _ := cmd.Flags().GetString("cache-rules")

		// Load the environment variables from the .env file when present.
		if err := godotenv.Load(); err != nil {
			fmt.Fprintf(os.Stderr, "No dot env file loaded, continuing with existing environment: %v\n", err)
		}

		cfg, err := config.Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
			os.Exit(1)
		}

		logger, err := logging.New(cfg.Development || verbose)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
			os.Exit(1)
		}
		//nolint:errcheck
		defer logger.Sync()

		rules, err := config.LoadCacheRules(rulesPath)
		if err != nil {
			logger.Fatalw("failed to load cache rules", "error", err)
		}

		cred := gateway.Credential{
			OAuthToken:        cfg.GitHubToken,
			InstallationToken: cfg.GitHubInstallationToken,
			InstallationID:    cfg.GitHubInstallationID,
		}
		logger.Infow("initializing GitHub gateway",
			"installation", cred.InstallationToken != "",
			"token", logging.RedactToken(cfg.GitHubToken),
		)
		client, err := gateway.NewGitHubGateway(cred, logger)
		if err != nil {
			logger.Fatalw("failed to create GitHub gateway", "error", err)
		}

		var store cachestore.Store
		if cfg.RedisAddr != "" {
			logger.Infow("using redis cache store", "addr", cfg.RedisAddr)
			redisStore, err := cachestore.NewRedisStore(cachestore.RedisConfig{
				Addr:     cfg.RedisAddr,
				Username: cfg.RedisUsername,
				Password: cfg.RedisPassword,
				Database: cfg.RedisDatabase,
			})
			if err != nil {
				logger.Fatalw("failed to connect to redis", "error", err)
			}
			defer redisStore.Close()
			store = redisStore
		} else {
			logger.Info("using in-memory cache store")
			store = cachestore.NewMemoryStore()
		}

		fingerprint := server.CredentialFingerprint(cfg.GitHubToken + cfg.GitHubInstallationToken)
		srv := server.New(client, store, rules, fingerprint, cfg.CORSAllowedOrigins, logger)
		if err := srv.Run(cfg.Addr()); err != nil {
			logger.Fatalw("server stopped", "error", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("cache-rules", "", "Path to a YAML file overriding per-namespace cache TTLs")
}
