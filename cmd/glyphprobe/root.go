package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/glyphprobe/glyphprobe/internal/adapters/attack"
	"github.com/glyphprobe/glyphprobe/internal/adapters/recon"
	"github.com/glyphprobe/glyphprobe/internal/adapters/report"
	"github.com/glyphprobe/glyphprobe/internal/adapters/storage"
	"github.com/glyphprobe/glyphprobe/internal/application"
	"github.com/glyphprobe/glyphprobe/internal/config"
	"github.com/glyphprobe/glyphprobe/internal/domain"
	"github.com/glyphprobe/glyphprobe/internal/domain/variant"
	"github.com/glyphprobe/glyphprobe/internal/logger"
	"github.com/glyphprobe/glyphprobe/internal/ports"
)

const version = "1.0.0"

// variantPreviewLimit caps console output in variants-only mode
const variantPreviewLimit = 20

func newRootCmd() *cobra.Command {
	var (
		cfgFile      string
		variantsOnly bool
		scanOnly     bool
		verbose      bool
		quiet        bool
	)

	cmd := &cobra.Command{
		Use:   "glyphprobe",
		Short: "Unicode confusable assessment for account-recovery flows",
		Long: `glyphprobe probes a target web application for password-reset and OAuth
endpoints, generates visually-deceptive Unicode variants of a target email
address, submits those variants against the discovered endpoints and
classifies the responses.

For authorized security assessment only.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			v := viper.New()
			config.SetDefaults(v)
			if cfgFile != "" {
				v.SetConfigFile(cfgFile)
			} else {
				v.SetConfigName("glyphprobe")
				v.SetConfigType("yaml")
				v.AddConfigPath(".")
			}

			for flag, key := range map[string]string{
				"target":       "target",
				"email":        "email",
				"threads":      "threads",
				"delay":        "delay",
				"timeout":      "timeout",
				"proxy":        "proxy",
				"random-agent": "random_agent",
				"max-variants": "max_variants",
				"output":       "output",
				"format":       "format",
				"no-report":    "no_report",
				"database-url": "database_url",
			} {
				if err := v.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
					return err
				}
			}

			cfg, err := config.Load(v)
			if err != nil {
				return err
			}
			if verbose {
				cfg.LogLevel = "debug"
			}

			log, err := logger.New(cfg.LogLevel, cfg.LogFormat)
			if err != nil {
				return err
			}
			defer log.Sync()

			if !quiet {
				printBanner()
			}

			switch {
			case variantsOnly:
				return runVariantsOnly(cfg, log)
			case scanOnly:
				return runScanOnly(cmd.Context(), cfg, log)
			default:
				return runFullAssessment(cmd.Context(), cfg, log)
			}
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&cfgFile, "config", "c", "", "config file (default ./glyphprobe.yaml)")
	flags.StringP("target", "t", "", "target URL (required unless --variants-only)")
	flags.StringP("email", "e", "", "target email address (required)")
	flags.Int("threads", 5, "concurrent attack requests")
	flags.Duration("delay", time.Second, "delay between requests")
	flags.Duration("timeout", 30*time.Second, "request timeout")
	flags.String("proxy", "", "proxy URL (http://host:port)")
	flags.Bool("random-agent", false, "rotate browser user agents")
	flags.Int("max-variants", 100, "maximum variants to generate")
	flags.StringP("output", "o", "results", "report output directory")
	flags.String("format", "all", "report format: html, json, csv or all")
	flags.Bool("no-report", false, "disable report generation")
	flags.String("database-url", "", "PostgreSQL DSN for persisting runs (optional)")
	flags.BoolVar(&variantsOnly, "variants-only", false, "generate variants without attacking")
	flags.BoolVar(&scanOnly, "scan-only", false, "reconnaissance only, no attack")
	flags.BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	flags.BoolVarP(&quiet, "quiet", "q", false, "suppress banner")

	return cmd
}

func runVariantsOnly(cfg *config.Config, log *zap.SugaredLogger) error {
	if !config.ValidateEmail(cfg.TargetEmail) {
		return fmt.Errorf("invalid email format: %q", cfg.TargetEmail)
	}

	engine := variant.NewEngine(log)
	variants, err := engine.GenerateAll(cfg.TargetEmail, cfg.MaxVariants)
	if err != nil {
		if errors.Is(err, variant.ErrInvalidEmailFormat) {
			return fmt.Errorf("no variants could be generated: %w", err)
		}
		return err
	}

	color.Green("\n✓ Generated %d variants:\n", len(variants))
	for i, v := range variants {
		if i >= variantPreviewLimit {
			fmt.Printf("\n... and %d more variants\n", len(variants)-variantPreviewLimit)
			break
		}
		fmt.Printf("%3d. %s (%s)\n", i+1, v.Variant, v.Technique)
	}

	printVariantSummary(variant.Stats(variants))
	return nil
}

func runScanOnly(ctx context.Context, cfg *config.Config, log *zap.SugaredLogger) error {
	if cfg.TargetURL == "" {
		return errors.New("target URL is required for scanning")
	}
	if !config.ValidateURL(config.NormalizeURL(cfg.TargetURL)) {
		return fmt.Errorf("invalid target URL: %q", cfg.TargetURL)
	}

	scanner, err := recon.NewHTTPScanner(config.NormalizeURL(cfg.TargetURL), cfg.Proxy, cfg.Timeout, log)
	if err != nil {
		return err
	}

	scan, err := scanner.Scan(ctx)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	printScanSummary(scan)
	return nil
}

func runFullAssessment(ctx context.Context, cfg *config.Config, log *zap.SugaredLogger) error {
	if !config.ValidateEmail(cfg.TargetEmail) {
		return fmt.Errorf("invalid email format: %q", cfg.TargetEmail)
	}
	if cfg.TargetURL == "" {
		return errors.New("target URL is required for a full assessment")
	}
	cfg.TargetURL = config.NormalizeURL(cfg.TargetURL)
	if !config.ValidateURL(cfg.TargetURL) {
		return fmt.Errorf("invalid target URL: %q", cfg.TargetURL)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	scanner, err := recon.NewHTTPScanner(cfg.TargetURL, cfg.Proxy, cfg.Timeout, log)
	if err != nil {
		return err
	}

	executor, err := attack.NewHTTPExecutor(attack.Options{
		BaseURL:     cfg.TargetURL,
		Proxy:       cfg.Proxy,
		Timeout:     cfg.Timeout,
		Delay:       cfg.Delay,
		Threads:     cfg.Threads,
		RandomAgent: cfg.RandomAgent,
	}, log)
	if err != nil {
		return err
	}

	reporter, err := report.NewFileReporter(cfg.OutputDir, log)
	if err != nil {
		return err
	}

	var store ports.Storage
	if cfg.DatabaseURL != "" {
		pg, err := storage.NewPostgresStore(cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("failed to connect to result store: %w", err)
		}
		defer pg.Close()
		if err := pg.InitSchema(); err != nil {
			return fmt.Errorf("failed to initialize result store: %w", err)
		}
		store = pg
	}

	service := application.NewAssessmentService(
		cfg.TargetURL,
		variant.NewEngine(log),
		scanner,
		executor,
		reporter,
		store,
		log,
	)

	started := time.Now()
	results, err := service.RunFullAssessment(ctx, cfg.TargetEmail, cfg.MaxVariants)
	if err != nil {
		return err
	}

	if results.Scan != nil {
		printScanSummary(results.Scan)
	}
	printVariantSummary(results.VariantStats)
	printAttackSummary(results.AttackStats)

	if !cfg.NoReport {
		for _, path := range service.WriteReports(results, cfg.ReportFormat) {
			color.Green("✓ Report: %s", path)
		}
	}

	color.Green("\n✓ Assessment complete in %s", time.Since(started).Round(time.Millisecond))
	return nil
}

func printBanner() {
	color.Cyan(`
  glyphprobe %s :: Unicode confusable assessment
  homograph · zero-width · mixed · punycode
  authorized testing only
`, version)
}

func printScanSummary(scan *domain.ScanReport) {
	color.Yellow("\nReconnaissance")
	fmt.Printf("  Password reset endpoints: %d\n", len(scan.ForgotPasswordEndpoints))
	for _, endpoint := range scan.ForgotPasswordEndpoints {
		fmt.Printf("    • %s\n", endpoint)
	}
	fmt.Printf("  OAuth providers: %d\n", len(scan.OAuthProviders))
	fmt.Printf("  Server: %s\n", scan.Technology.Server)
	fmt.Printf("  Framework: %s\n", scan.Technology.Framework)
}

func printVariantSummary(stats domain.VariantStats) {
	color.Yellow("\nVariant generation")
	fmt.Printf("  Total variants: %d\n", stats.Total)
	fmt.Printf("  Avg similarity: %.2f\n", stats.AvgSimilarity)
	fmt.Printf("  Distinct code points: %d\n", stats.UniqueUnicodePoints)
	for _, technique := range []domain.Technique{
		domain.TechniqueHomograph,
		domain.TechniqueZeroWidth,
		domain.TechniqueMixed,
		domain.TechniquePunycode,
	} {
		if count := stats.ByTechnique[technique]; count > 0 {
			fmt.Printf("    • %s: %d\n", technique, count)
		}
	}
}

func printAttackSummary(stats domain.AttackStats) {
	color.Yellow("\nAttack campaign")
	fmt.Printf("  Total attacks: %d\n", stats.TotalAttacks)
	fmt.Printf("  Successful: %d\n", stats.Successful)
	fmt.Printf("  Failed: %d\n", stats.Failed)
	fmt.Printf("  Success rate: %.2f%%\n", stats.SuccessRate)
	fmt.Printf("  Avg response time: %s\n", stats.AvgResponseTime.Round(time.Millisecond))

	for technique, outcome := range stats.ByTechnique {
		rate := 0.0
		if outcome.Total > 0 {
			rate = float64(outcome.Success) / float64(outcome.Total) * 100
		}
		fmt.Printf("    • %s: %d/%d (%.1f%%)\n", technique, outcome.Success, outcome.Total, rate)
	}
}
