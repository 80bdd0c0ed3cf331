// Package cli wires the reviewer commands.
package cli

import (
	"context"
	"log"
	"time"

	"github.com/spf13/cobra"

	"github.com/DifanaDAP/ai-reviewer/internal/config"
	"github.com/DifanaDAP/ai-reviewer/internal/engine"
	"github.com/DifanaDAP/ai-reviewer/internal/github"
	"github.com/DifanaDAP/ai-reviewer/internal/llm"
	"github.com/DifanaDAP/ai-reviewer/internal/storage"
)

var rootCmd = &cobra.Command{
	Use:   "aireview",
	Short: "AI-assisted pull request reviewer",
	Long: `aireview analyzes pull requests with rule-based checks and an LLM
pass, then posts the combined review back to the pull request.

Configuration comes from environment variables (GITHUB_TOKEN,
OPENAI_API_KEY, REPO, PR_NUMBER) and an optional .ai-reviewer.yml file.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(reviewCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// buildEngine assembles the engine for one PR from the loaded config,
// attaching storage collaborators when enabled.
func buildEngine(cfg config.Config, prNumber int) *engine.Engine {
	cfg.PRNumber = prNumber

	host := github.NewClient(cfg.GitHubToken, cfg.RepoOwner(), cfg.RepoName())
	ai := llm.NewClient(cfg.OpenAIKey, cfg.OpenAIModel, cfg.MaxTokens)
	eng := engine.New(cfg, host, ai)

	if cfg.EnableStorage {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		store, err := storage.NewMongoStore(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			log.Printf("warning: storage disabled: %v", err)
		} else {
			eng.WithStorage(store, storage.NewRedisQueue(cfg.RedisAddr, cfg.RedisPassword))
		}
	}

	return eng
}
