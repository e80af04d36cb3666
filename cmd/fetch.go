package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/devpulse/devpulse/internal/domain"
	"github.com/devpulse/devpulse/internal/gateway"
	"github.com/devpulse/devpulse/internal/usecase"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Aggregates commit activity and outputs it as JSON",
	Long: `Aggregates commits across the given repositories (or every repository the
credential can reach when none are given) within a date window, applying the
author-identity fallback, and prints the result in JSON format.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		verbose, _ := cmd.InheritedFlags().GetBool("verbose")
		logger := zap.NewNop().Sugar()
		if verbose {
			devLogger, err := zap.NewDevelopment()
			if err != nil {
				fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
				os.Exit(1)
			}
			logger = devLogger.Sugar()
		}

		repos, _ := cmd.Flags().GetStringSlice("repos")
		author, _ := cmd.Flags().GetString("author")
		fromStr, _ := cmd.Flags().GetString("from")
		toStr, _ := cmd.Flags().GetString("to")

		token := os.Getenv("GITHUB_TOKEN")
		if token == "" {
			fmt.Fprintln(os.Stderr, "Error: GITHUB_TOKEN environment variable is not set.")
			os.Exit(1)
		}

		window, err := domain.ParseWindow(fromStr, toStr)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid date window: %v\n", err)
			os.Exit(1)
		}

		client, err := gateway.NewGitHubGateway(gateway.Credential{OAuthToken: token}, logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create GitHub gateway: %v\n", err)
			os.Exit(1)
		}

		guard := usecase.NewGuard(client, logger)
		guard.CheckBudget(ctx)
		if err := guard.CheckScopes(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "Credential check failed: %v\n", err)
			os.Exit(1)
		}

		if len(repos) == 0 {
			discovered, err := usecase.NewDiscoverer(client, logger).Discover(ctx)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Failed to discover repositories: %v\n", err)
				os.Exit(1)
			}
			for _, repo := range discovered {
				repos = append(repos, repo.FullName)
			}
		}

		commits, err := usecase.NewAggregator(client, logger).Aggregate(ctx, repos, window, author)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to aggregate commits: %v\n", err)
			os.Exit(1)
		}

		jsonData, err := json.MarshalIndent(commits, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to marshal results to JSON: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(string(jsonData))
	},
}

func init() {
	rootCmd.AddCommand(fetchCmd)
	fetchCmd.Flags().StringSlice("repos", nil, "Repositories to aggregate as owner/name (default: all reachable)")
	fetchCmd.Flags().StringP("author", "a", "", "Author login to filter commits by")
	fetchCmd.Flags().String("from", "", "Start of the date window (RFC 3339 or YYYY-MM-DD, required)")
	fetchCmd.Flags().String("to", "", "End of the date window (RFC 3339 or YYYY-MM-DD, required)")
	fetchCmd.MarkFlagRequired("from")
	fetchCmd.MarkFlagRequired("to")
}
