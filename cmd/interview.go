package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/nikogura/resume-forge/pkg/artifact"
	"github.com/nikogura/resume-forge/pkg/config"
	"github.com/nikogura/resume-forge/pkg/jd"
	"github.com/nikogura/resume-forge/pkg/resume"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var interviewVariant string

//nolint:gochecknoglobals // Cobra boilerplate
var interviewOutputDir string

//nolint:gochecknoglobals // Cobra boilerplate
var interviewCandidates int

//nolint:gochecknoglobals // Cobra boilerplate
var interviewNoJudge bool

//nolint:gochecknoglobals // Cobra boilerplate
var interviewCmd = &cobra.Command{
	Use:   "interview <jd-file-or-url>",
	Short: "Generate interview preparation questions",
	Long: `Generate likely interview questions with suggested answers based on a job
description and your resume.

Example:
  resume-forge interview jd.txt
  resume-forge interview https://example.com/jobs/123 --variant "system design"`,
	Args: cobra.ExactArgs(1),
	RunE: runInterview,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(interviewCmd)
	interviewCmd.Flags().StringVar(&interviewVariant, "variant", "", "Emphasis for the question set (e.g., 'system design')")
	interviewCmd.Flags().StringVar(&interviewOutputDir, "output-dir", "", "Write the question set as JSON to this directory")
	interviewCmd.Flags().IntVar(&interviewCandidates, "candidates", 0, "Number of question sets to generate (default from config)")
	interviewCmd.Flags().BoolVar(&interviewNoJudge, "no-judge", false, "Generate a single question set without judging")
}

func runInterview(cmd *cobra.Command, args []string) (err error) {
	ctx := context.Background()
	ctx, cancel := context.WithTimeout(ctx, 10*time.Minute)
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

	var baseResume string
	baseResume, err = resume.LoadText(cfg.ResumeLocation)
	if err != nil {
		return err
	}

	gen := newArtifactGenerator(cfg, interviewCandidates, interviewNoJudge)

	set, res, err := gen.GenerateInterviewQuestions(ctx, artifact.InterviewRequest{
		JobDescription: jobDescription,
		ResumeContext:  baseResume,
		Variant:        interviewVariant,
	})
	if err != nil {
		err = errors.Wrap(err, "interview question generation failed")
		return err
	}

	reportResult("interview questions", res)

	printQuestionSet(set)

	if interviewOutputDir != "" {
		err = writeQuestionSet(set, interviewOutputDir)
		if err != nil {
			return err
		}
	}

	return err
}

func printQuestionSet(set artifact.InterviewQuestionSet) {
	fmt.Printf("\nRole type: %s", set.JobAnalysis.RoleType)
	if set.JobAnalysis.SeniorityLevel != "" {
		fmt.Printf(" (%s)", set.JobAnalysis.SeniorityLevel)
	}
	fmt.Println()

	if len(set.JobAnalysis.KeyTechnologies) > 0 {
		fmt.Printf("Key technologies: %s\n", strings.Join(set.JobAnalysis.KeyTechnologies, ", "))
	}

	printQuestionGroup("Technical questions", set.TechnicalQuestions)
	printQuestionGroup("Behavioral questions", set.BehavioralQuestions)
	printQuestionGroup("System design questions", set.SystemDesignQuestions)

	if len(set.PreparationTips) > 0 {
		fmt.Println("\nPreparation tips:")
		for _, tip := range set.PreparationTips {
			fmt.Printf("  - %s\n", tip)
		}
	}
}

func printQuestionGroup(title string, questions []artifact.InterviewQuestion) {
	if len(questions) == 0 {
		return
	}

	fmt.Printf("\n%s:\n", title)

	for i, q := range questions {
		fmt.Printf("  %d. %s", i+1, q.Question)
		if q.Priority != "" {
			fmt.Printf(" [%s]", q.Priority)
		}
		fmt.Println()

		if q.Answer != "" {
			fmt.Printf("     Suggested answer: %s\n", q.Answer)
		}
	}
}

func writeQuestionSet(set artifact.InterviewQuestionSet, dir string) (err error) {
	var data []byte
	data, err = json.MarshalIndent(set, "", "  ")
	if err != nil {
		err = errors.Wrap(err, "failed to marshal question set")
		return err
	}

	path := filepath.Join(dir, "interview-questions.json")
	err = writeArtifactFile(path, string(data)+"\n")
	if err != nil {
		return err
	}

	fmt.Printf("Question set written to %s\n", path)

	return err
}
