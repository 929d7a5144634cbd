package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/nikogura/resume-forge/pkg/config"
	"github.com/nikogura/resume-forge/pkg/jd"
	"github.com/nikogura/resume-forge/pkg/keywords"
	"github.com/nikogura/resume-forge/pkg/resume"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var keywordsJSON bool

//nolint:gochecknoglobals // Cobra boilerplate
var keywordsCmd = &cobra.Command{
	Use:   "keywords <jd-file-or-url>",
	Short: "Analyze keyword coverage between your resume and a job description",
	Long: `Analyze how well your resume covers the keywords a job description asks
for. Reports which terms are present, which are missing, and where the
missing ones could be added.

Example:
  resume-forge keywords jd.txt
  resume-forge keywords https://example.com/jobs/123 --json`,
	Args: cobra.ExactArgs(1),
	RunE: runKeywords,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(keywordsCmd)
	keywordsCmd.Flags().BoolVar(&keywordsJSON, "json", false, "Output the report as JSON")
}

func runKeywords(cmd *cobra.Command, args []string) (err error) {
	ctx := context.Background()
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	var cfg config.Config
	cfg, err = config.Load(getConfigFile())
	if err != nil {
		return err
	}

	var jobDescription string
	jobDescription, err = jd.FetchWithContext(ctx, args[0])
	if err != nil {
		return err
	}

	var resumeText string
	resumeText, err = resume.LoadText(cfg.ResumeLocation)
	if err != nil {
		return err
	}

	// Include structured resume data in the analyzed text when configured
	if cfg.ResumeDataLocation != "" {
		var data resume.Data
		data, err = resume.LoadData(cfg.ResumeDataLocation)
		if err != nil {
			return err
		}

		resumeText = resumeText + " " + data.AllText()
	}

	report := keywords.Analyze(jobDescription, resumeText)

	if keywordsJSON {
		var out []byte
		out, err = json.MarshalIndent(report, "", "  ")
		if err != nil {
			err = errors.Wrap(err, "failed to marshal keyword report")
			return err
		}

		fmt.Println(string(out))

		return err
	}

	printKeywordReport(jobDescription, report)

	return err
}

func printKeywordReport(jobDescription string, report keywords.Report) {
	title, company := jd.ExtractDetails(jobDescription)
	if title != "" || company != "" {
		fmt.Printf("Position: %s at %s\n", title, company)
	}

	fmt.Printf("Keyword density score: %d/100 (%d present, %d missing)\n\n", report.DensityScore, report.PresentCount, report.MissingCount)

	for _, info := range report.TopKeywords {
		marker := "MISSING"
		if info.Present {
			marker = fmt.Sprintf("x%d", info.Count)
		}

		fmt.Printf("  %-20s %-8s %s", info.Keyword, info.Importance, marker)

		if !info.Present && len(info.SuggestedSections) > 0 {
			fmt.Printf("  (add to: %s)", strings.Join(info.SuggestedSections, ", "))
		}

		fmt.Println()
	}

	if len(report.Suggestions) > 0 {
		fmt.Println("\nSuggestions:")
		for _, s := range report.Suggestions {
			fmt.Printf("  - %s\n", s)
		}
	}
}
