package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"sjt-studio/internal/adapter"
	"sjt-studio/internal/adapter/sjtgen"
	"sjt-studio/internal/cache"
	"sjt-studio/internal/domain"
	"sjt-studio/internal/logger"
	"sjt-studio/internal/service"
)

func generateCmd() *cobra.Command {
	var (
		outputDir string
		dryRun    bool
	)
	cmd := &cobra.Command{
		Use:   "generate <input.xlsx>",
		Short: "Generate SJTs for every competency in the workbook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := setup()
			if err != nil {
				return err
			}
			defer logger.Sync()
			log := logger.Get()

			input, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open input: %w", err)
			}
			defer input.Close()

			if dryRun {
				studio := service.NewStudioService(nil, cfg, log)
				run, err := studio.Prepare(cfg.Batch.Profile, input)
				if err != nil {
					return err
				}
				printPreview(cmd.OutOrStdout(), run)
				return nil
			}

			if err := cfg.Validate(); err != nil {
				return err
			}
			ctx := cmd.Context()

			var replyCache domain.Cache
			redisClient, err := cache.NewRedisClient(ctx, cfg.Redis)
			if err != nil {
				return err
			}
			if redisClient != nil {
				defer redisClient.Close()
				replyCache = adapter.NewRedisCacheAdapter(redisClient)
			}

			generator, err := sjtgen.New(ctx, cfg, replyCache, log)
			if err != nil {
				return err
			}
			studio := service.NewStudioService(service.NewBatchService(generator, cfg, log), cfg, log)

			run, err := studio.Prepare(cfg.Batch.Profile, input)
			if err != nil {
				return err
			}
			result, err := studio.Run(ctx, run, newConsoleObserver(cmd.ErrOrStderr()))
			if result != nil && result.Report != nil {
				printReport(cmd.OutOrStdout(), result.Report)
			}
			if err != nil {
				return err
			}

			path := filepath.Join(outputDir, result.FileName)
			if err := os.WriteFile(path, result.Workbook.Bytes(), 0o644); err != nil {
				return fmt.Errorf("failed to write result workbook: %w", err)
			}
			log.Info("Result workbook written", zap.String("path", path))
			fmt.Fprintf(cmd.OutOrStdout(), "Saved %d SJTs to %s\n", len(result.Report.Rows), path)
			return nil
		},
	}
	cmd.Flags().StringVarP(&outputDir, "output", "o", ".", "directory for the result workbook")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "load the input and render one prompt without calling the model")
	cmd.Flags().Int("attempts", 0, "attempts per competency (default from the profile)")
	cmd.Flags().Duration("delay", 0, "pause after each model call (default from batch.call_delay)")
	cmd.Flags().String("sheet", "", "input sheet name (default: first sheet)")
	_ = viper.BindPFlag("batch.attempts", cmd.Flags().Lookup("attempts"))
	_ = viper.BindPFlag("batch.call_delay", cmd.Flags().Lookup("delay"))
	_ = viper.BindPFlag("batch.sheet", cmd.Flags().Lookup("sheet"))
	return cmd
}

func sampleCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "sample [profile]",
		Short: "Write an example input workbook for a profile",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := setup()
			if err != nil {
				return err
			}
			defer logger.Sync()

			name := cfg.Batch.Profile
			if len(args) == 1 {
				name = args[0]
			}
			buf, err := service.NewStudioService(nil, cfg, logger.Get()).Sample(name)
			if err != nil {
				return err
			}
			if output == "" {
				output = "Sample_" + name + ".xlsx"
			}
			if err := os.WriteFile(output, buf.Bytes(), 0o644); err != nil {
				return fmt.Errorf("failed to write sample workbook: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default Sample_<profile>.xlsx)")
	return cmd
}

func profilesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "profiles",
		Short: "List input profiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := setup()
			if err != nil {
				return err
			}
			defer logger.Sync()
			printProfiles(cmd.OutOrStdout(), service.NewStudioService(nil, cfg, logger.Get()).Profiles(), cfg.Batch.Profile)
			return nil
		},
	}
}
