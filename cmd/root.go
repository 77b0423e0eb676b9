package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mockboard/iv/internal/evaluate"
	"github.com/mockboard/iv/internal/llm"
	"github.com/mockboard/iv/internal/output"
	"github.com/mockboard/iv/internal/question"
	"github.com/mockboard/iv/internal/registry"
	"github.com/mockboard/iv/internal/store"
)

// Package-level shared dependencies, initialized in cobra.OnInitialize.
var (
	ui        *output.UI
	dataStore store.Store

	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "iv",
	Short: "Interview practice - timed mock interviews with AI feedback",
	Long: `iv runs timed mock interviews for technical and non-technical roles.
It asks role-specific questions, evaluates answers, offers hints when
you are stuck, and produces a performance report at the end.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	DisableAutoGenTag: true,
}

// Execute is the main entry point called from main.go.
func Execute(version, commit, date string) {
	buildVersion = version
	buildCommit = commit
	buildDate = date

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig, initDeps)

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().String("config", "", "Config file (default ~/.config/iv/config.yaml)")
}

func initConfig() {
	// If --config is explicitly set, use that file
	if cfgFile, _ := rootCmd.PersistentFlags().GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: cannot find home directory: %v\n", err)
			os.Exit(1)
		}

		configDir := filepath.Join(home, ".config", "iv")
		viper.AddConfigPath(configDir)
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("IV")
	viper.AutomaticEnv()

	// Defaults via viper.SetDefault()
	home, _ := os.UserHomeDir()
	defaultConfigDir := filepath.Join(home, ".config", "iv")

	viper.SetDefault("state_dir", defaultConfigDir)
	viper.SetDefault("db_path", filepath.Join(defaultConfigDir, "iv.db"))
	viper.SetDefault("anthropic.api_key", "")
	viper.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")
	viper.SetDefault("interview.category", "technical")
	viper.SetDefault("interview.role", "python_developer")
	viper.SetDefault("interview.difficulty", "medium")
	viper.SetDefault("interview.questions", 0)
	viper.SetDefault("interview.duration", 0)
	viper.SetDefault("serve.port", 8733)

	// Read config file if it exists (optional)
	_ = viper.ReadInConfig()
}

func initDeps() {
	ui = output.New()
	ui.Verbose = verbose

	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	// The store is initialized lazily so config/version commands can run
	// without touching the db.
}

// getStore returns the shared store, initializing it on first call.
func getStore() (store.Store, error) {
	if dataStore != nil {
		return dataStore, nil
	}

	dbPath := viper.GetString("db_path")
	s, err := store.NewSQLiteStore(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := s.Migrate(rootCmd.Context()); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	dataStore = s
	return dataStore, nil
}

// getLLM returns the shared Anthropic client, or nil when no API key is
// configured. Callers operate offline in that case: built-in question
// banks and unscored evaluation.
func getLLM() *llm.Client {
	apiKey := viper.GetString("anthropic.api_key")
	if apiKey == "" {
		return nil
	}
	return llm.NewClient(apiKey, viper.GetString("anthropic.model"))
}

// getRegistry wires generator, evaluator, narrator, and store into a
// session registry. Persistence is best-effort: a store failure logs a
// warning and the registry runs in-memory only.
func getRegistry() *registry.Registry {
	client := getLLM()
	if client == nil {
		ui.Warning("no Anthropic API key configured; using built-in question banks (run 'iv config' to set one)")
	}
	gen := question.NewLLMGenerator(client)
	eval := evaluate.NewLLMEvaluator(client)

	opts := []registry.Option{registry.WithNarrator(eval)}
	if s, err := getStore(); err == nil {
		opts = append(opts, registry.WithStore(s))
	} else {
		slog.Warn("report persistence disabled", "error", err)
	}
	return registry.New(gen, eval, opts...)
}
