// Package cli provides the command-line interface for innkeep.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tavernworks/innkeep/internal/config"
	"github.com/tavernworks/innkeep/internal/engine"
	"github.com/tavernworks/innkeep/internal/llm"
	"github.com/tavernworks/innkeep/internal/store"
)

var (
	// Version is set at build time.
	Version = "0.1.0"

	// Global flags
	verbose bool

	// Global config and store client
	cfg         config.Config
	storeClient *store.Client

	// Lazy-initialized chat engine
	chatEngine *engine.Engine
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "innkeep",
	Short: "Persona-driven NPC conversation engine",
	Long: `Innkeep runs persona-driven NPC conversations: each persona carries its
own system prompt, personality sliders, long-term memory, and quest log.

Every chat turn retrieves relevant memories, talks to the configured
language model, extracts new facts worth remembering, and may generate a
quest when the conversation calls for one. Personas and everything they
remember are persisted in SurrealDB.`,
	Version: Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip DB connection for version and help commands
		if cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}

		cfg = config.Load()

		ctx := context.Background()
		storeCfg := store.Config{
			URL:       cfg.SurrealDBURL,
			Namespace: cfg.SurrealDBNamespace,
			Database:  cfg.SurrealDBDatabase,
			Username:  cfg.SurrealDBUser,
			Password:  cfg.SurrealDBPass,
			AuthLevel: cfg.SurrealDBAuthLevel,
		}

		var err error
		storeClient, err = store.NewClient(ctx, storeCfg, nil)
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}

		if err := storeClient.InitSchema(ctx); err != nil {
			return fmt.Errorf("initialize schema: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if storeClient != nil {
			if err := storeClient.Close(context.Background()); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to close database: %v\n", err)
			}
		}
	},
}

// getEngine creates the chat engine with lazy model initialization.
// Only commands that actually talk to the model pay the setup cost.
func getEngine() (*engine.Engine, error) {
	if chatEngine == nil {
		model, err := llm.NewModel(cfg)
		if err != nil {
			return nil, fmt.Errorf("init model: %w", err)
		}
		chatEngine = engine.New(model, cfg.MaxRetries, nil)
	}
	return chatEngine, nil
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// Add subcommands
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(personaCmd)
	rootCmd.AddCommand(memoryCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the innkeep version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("innkeep %s\n", Version)
	},
}
