package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"sjt-studio/internal/config"
	"sjt-studio/internal/logger"
)

var rootCmd = &cobra.Command{
	Use:   "sjtgen",
	Short: "Generate situational judgement tests from a competency workbook",
	Long: `sjtgen reads competencies and their behavioural indicators from an .xlsx
workbook, asks a language model for one SJT per attempt and writes the
results to Generated_SJTs_<run>.xlsx.

Profiles select the input columns, the prompt and the attempts per
competency. Run 'sjtgen profiles' to list them.`,
	SilenceUsage: true,
}

func main() {
	addPersistentFlags()
	registerCommands()
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func addPersistentFlags() {
	rootCmd.PersistentFlags().StringP("profile", "p", "", "input profile (default from batch.profile)")
	rootCmd.PersistentFlags().String("provider", "", "llm provider: gemini, openai or ollama")
	rootCmd.PersistentFlags().String("log-level", "", "log level")
	_ = viper.BindPFlag("batch.profile", rootCmd.PersistentFlags().Lookup("profile"))
	_ = viper.BindPFlag("llm.provider", rootCmd.PersistentFlags().Lookup("provider"))
	_ = viper.BindPFlag("logger.level", rootCmd.PersistentFlags().Lookup("log-level"))
}

func registerCommands() {
	rootCmd.AddCommand(generateCmd())
	rootCmd.AddCommand(sampleCmd())
	rootCmd.AddCommand(profilesCmd())
}

// setup loads configuration and starts the logger.
func setup() (*config.Config, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	if err := logger.Initialize(cfg.Logger); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return cfg, nil
}
