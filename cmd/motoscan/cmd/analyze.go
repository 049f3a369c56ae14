package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/motoforense/motoscan/internal/pipeline"
	"github.com/motoforense/motoscan/internal/utils"
)

const (
	outputFormatJSON = "json"
	outputFormatText = "text"
)

// analyzeCmd represents the analyze command.
var analyzeCmd = &cobra.Command{
	Use:   "analyze <image>",
	Short: "Analyze an engraving photograph for tampering",
	Long: `Analyze a photograph of an engraved engine identification code.

The declared model year is required: it determines which engraving
technique (stamped or laser) the factory would have used.

Supported formats: JPEG, PNG, BMP

Examples:
  motoscan analyze engraving.jpg --year 2020
  motoscan analyze engraving.png --year 2008 --model "CG 125 Titan" --format json
  motoscan analyze engraving.jpg --year 2020 --force-secondary`,
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		year, _ := cmd.Flags().GetInt("year")
		if year == 0 {
			return errors.New("the declared model year is required (--year)")
		}
		model, _ := cmd.Flags().GetString("model")
		force, _ := cmd.Flags().GetBool("force-secondary")
		format, _ := cmd.Flags().GetString("format")
		if format != outputFormatText && format != outputFormatJSON {
			return fmt.Errorf("invalid output format: %s (must be text or json)", format)
		}

		img, meta, err := utils.LoadImage(args[0])
		if err != nil {
			return err
		}
		slog.Debug("image loaded", "path", meta.Path, "format", meta.Format,
			"width", meta.Width, "height", meta.Height)

		cfg := GetConfig()
		pl, err := pipeline.NewBuilder().WithConfig(cfg.ToPipelineConfig()).Build()
		if err != nil {
			return fmt.Errorf("initialize pipeline: %w", err)
		}
		defer func() { _ = pl.Close() }()

		result, err := pl.Analyze(context.Background(), img, pipeline.Meta{
			Year:           year,
			Model:          model,
			ForceSecondary: force,
		})
		if err != nil {
			return err
		}

		if format == outputFormatJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		}
		printResult(cmd, result)
		return nil
	},
}

func printResult(cmd *cobra.Command, result *pipeline.Result) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Code:     %s\n", result.Code.Corrected)
	if result.Code.Prefix != "" {
		fmt.Fprintf(out, "Prefix:   %s (%s)\n", result.Code.Prefix, result.ExpectedModel)
	}
	if len(result.Code.CorrectionApplied) > 0 {
		fmt.Fprintf(out, "Corrections: %s\n", strings.Join(result.Code.CorrectionApplied, ", "))
	}
	fmt.Fprintf(out, "Score:    %d\n", result.Assessment.Score)
	fmt.Fprintf(out, "Verdict:  %s\n", result.Assessment.Verdict)
	for _, line := range result.Assessment.Explanation {
		fmt.Fprintf(out, "  - %s\n", line)
	}
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().Int("year", 0, "declared model year of the motorcycle (required)")
	analyzeCmd.Flags().String("model", "", "declared motorcycle model")
	analyzeCmd.Flags().Bool("force-secondary", false, "always confirm the reading with the secondary recognizer")
	analyzeCmd.Flags().String("format", outputFormatText, "output format (text, json)")
	_ = analyzeCmd.MarkFlagRequired("year")
}
