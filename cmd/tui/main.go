package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"debatearena/config"
	"debatearena/internal/debate"
	"debatearena/locale"
	"debatearena/logger"
	"debatearena/services"
	"debatearena/tui"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	configPath string
	langFlag   string
	modelFlag  string
)

var rootCmd = &cobra.Command{
	Use:   "arena-tui",
	Short: "Debate the AI from the terminal",
	Long:  `Pick a topic and a side, argue against the Gemini debater, then read your coach report.`,
	RunE:  runTUI,
}

func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "./config/config.yml", "path to the YAML config file")
	rootCmd.Flags().StringVarP(&langFlag, "lang", "l", "", "interface language (tr or en)")
	rootCmd.Flags().StringVarP(&modelFlag, "model", "m", "", "Gemini model, overrides the config file")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runTUI(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if modelFlag != "" {
		cfg.Gemini.Model = modelFlag
	}

	// The terminal belongs to the UI; log only when a file is configured.
	lg := zap.NewNop()
	if cfg.Log.File != "" {
		lg, err = logger.New(cfg.Log.Level, cfg.Log.File)
		if err != nil {
			return fmt.Errorf("failed to init logger: %w", err)
		}
		defer lg.Sync()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	gemini, err := services.NewGeminiClient(ctx, services.GeminiOptions{
		APIKey:  cfg.Gemini.ApiKey,
		Model:   cfg.Gemini.Model,
		BaseURL: cfg.Gemini.BaseURL,
	}, lg.Named("gemini"))
	if err != nil {
		return fmt.Errorf("failed to create Gemini client: %w", err)
	}

	lang := locale.Parse(cfg.Locale.Default, locale.Turkish)
	if langFlag != "" {
		lang = locale.Parse(langFlag, lang)
	}
	machine := debate.NewMachine(uuid.NewString(), lang, gemini, lg.Named("debate"))

	if err := tui.Run(ctx, machine); err != nil && ctx.Err() == nil {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}
