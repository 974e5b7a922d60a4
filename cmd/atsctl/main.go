package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"alfredoptarigan/ats-analyzer/internal/config"
	"alfredoptarigan/ats-analyzer/internal/logger"
	"alfredoptarigan/ats-analyzer/internal/services"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "atsctl",
		Short: "Score PDF resumes from the command line",
	}

	var withInsights, verbose bool
	scoreCmd := &cobra.Command{
		Use:   "score <resume.pdf>...",
		Short: "Print deterministic ATS scores for local PDF resumes",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScore(cmd.Context(), args, withInsights, verbose)
		},
	}
	scoreCmd.Flags().BoolVar(&withInsights, "insights", false, "also request AI feedback from Gemini")
	scoreCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "list matched keywords")

	rootCmd.AddCommand(scoreCmd)

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func runScore(ctx context.Context, paths []string, withInsights, verbose bool) error {
	cfg := config.Load()
	pdfParser := services.NewPDFParserService()
	scorer := services.NewScorer()

	var gemini services.GeminiService
	if withInsights {
		if err := cfg.Validate(); err != nil {
			return err
		}
		log, err := logger.New(false, cfg.Log.Debug)
		if err != nil {
			return err
		}
		defer log.Sync()

		gemini, err = services.NewGeminiService(ctx, cfg.Gemini.APIKey, services.GeminiOptions{
			Model:          cfg.Gemini.Model,
			Timeout:        cfg.Gemini.Timeout,
			MaxAttempts:    cfg.Gemini.MaxAttempts,
			InitialBackoff: cfg.Gemini.InitialBackoff,
		}, log.WithOptions(zap.IncreaseLevel(zap.WarnLevel)))
		if err != nil {
			return err
		}
	}

	successCount := 0
	failCount := 0

	for _, path := range paths {
		fmt.Printf("\n%s %s\n", color.CyanString("📄"), path)

		if !strings.HasSuffix(strings.ToLower(path), ".pdf") {
			fmt.Printf("   %s not a PDF file, skipping\n", color.YellowString("⚠"))
			failCount++
			continue
		}

		content, err := pdfParser.ExtractTextWithMetaData(path)
		if err != nil {
			fmt.Printf("   %s %v\n", color.RedString("✗"), err)
			failCount++
			continue
		}

		chars := len([]rune(strings.TrimSpace(content.Text)))
		fmt.Printf("   %d pages, %d characters\n", content.PageCount, chars)
		if chars < cfg.Analysis.MinResumeChars {
			fmt.Printf("   %s resume text too short or unreadable\n", color.RedString("✗"))
			failCount++
			continue
		}

		scores := scorer.Score(content.Text)
		fmt.Printf("   ATS score:        %s\n", color.GreenString("%d", services.OverallScore(scores)))
		fmt.Printf("   Keyword score:    %d\n", scores.KeywordScore)
		fmt.Printf("   Formatting score: %d\n", scores.FormattingScore)
		fmt.Printf("   Technical score:  %d\n", scores.TechnicalScore)

		if verbose {
			hits := scorer.Hits(content.Text)
			fmt.Printf("   keywords:  %s\n", strings.Join(hits.Keywords, ", "))
			fmt.Printf("   sections:  %s\n", strings.Join(hits.Sections, ", "))
			fmt.Printf("   technical: %s\n", strings.Join(hits.Technical, ", "))
		}

		if gemini != nil {
			insights, err := gemini.GenerateInsights(ctx, content.Text)
			if err != nil {
				fmt.Printf("   %s insights: %v\n", color.RedString("✗"), err)
				failCount++
				continue
			}
			printList("Strengths", insights.Strengths)
			printList("ATS improvements", insights.ATSImprovements)
			printList("Technical improvements", insights.TechnicalImprovements)
			printList("Recommended roles", insights.RecommendedJobRoles)
			fmt.Printf("   Summary: %s\n", insights.OverallSummary)
		}

		successCount++
	}

	fmt.Println("\n" + strings.Repeat("=", 40))
	fmt.Printf("%s %d scored, %s %d failed\n",
		color.GreenString("✓"), successCount, color.RedString("✗"), failCount)

	if failCount > 0 {
		return fmt.Errorf("%d of %d resumes failed", failCount, len(paths))
	}
	return nil
}

func printList(title string, items []string) {
	fmt.Printf("   %s:\n", color.New(color.Bold).Sprint(title))
	for _, item := range items {
		fmt.Printf("     - %s\n", item)
	}
}
