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
	"github.com/nikogura/resume-forge/pkg/keywords"
	"github.com/nikogura/resume-forge/pkg/pipeline"
	"github.com/nikogura/resume-forge/pkg/resume"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var company string

//nolint:gochecknoglobals // Cobra boilerplate
var role string

//nolint:gochecknoglobals // Cobra boilerplate
var variant string

//nolint:gochecknoglobals // Cobra boilerplate
var outputDir string

//nolint:gochecknoglobals // Cobra boilerplate
var candidateCount int

//nolint:gochecknoglobals // Cobra boilerplate
var noJudge bool

//nolint:gochecknoglobals // Cobra boilerplate
var skipCoverLetter bool

//nolint:gochecknoglobals // Cobra boilerplate
var generateCmd = &cobra.Command{
	Use:   "generate <jd-file-or-url>",
	Short: "Generate tailored resume and cover letter",
	Long: `Generate a tailored resume and cover letter based on a job description.

The job description can be provided as:
- A file path (e.g., jd.txt)
- A URL (e.g., https://example.com/jobs/123)

Each artifact is generated several times and a judge picks the strongest
version. Use --no-judge to generate a single version per artifact.

Example:
  resume-forge generate jd.txt --company "Acme Corp" --role "Staff Engineer"
  resume-forge generate https://example.com/jobs/123 --company "Acme" --role "SRE"
  resume-forge generate jd.txt --candidates 5 --variant leadership`,
	Args: cobra.ExactArgs(1),
	RunE: runGenerate,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(generateCmd)
	generateCmd.Flags().StringVar(&company, "company", "", "Company name (extracted from JD if not provided)")
	generateCmd.Flags().StringVar(&role, "role", "", "Role title (extracted from JD if not provided)")
	generateCmd.Flags().StringVar(&variant, "variant", "", "Style variant applied to all artifacts (e.g., 'technical', 'leadership')")
	generateCmd.Flags().StringVar(&outputDir, "output-dir", "", "Output directory (default from config)")
	generateCmd.Flags().IntVar(&candidateCount, "candidates", 0, "Number of versions to generate per artifact (default from config)")
	generateCmd.Flags().BoolVar(&noJudge, "no-judge", false, "Generate a single version per artifact without judging")
	generateCmd.Flags().BoolVar(&skipCoverLetter, "skip-cover-letter", false, "Skip cover letter generation")
}

func runGenerate(cmd *cobra.Command, args []string) (err error) {
	ctx := context.Background()
	ctx, cancel := context.WithTimeout(ctx, 10*time.Minute)
	defer cancel()

	// Setup: load config, fetch JD, load resume
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

	finalCompany, finalRole := resolveCompanyAndRole(company, role, jobDescription)

	var outDir string
	outDir, err = createCompanyOutputDir(getOutputDir(outputDir, cfg.Defaults.OutputDir), finalCompany)
	if err != nil {
		return err
	}

	gen := newArtifactGenerator(cfg, candidateCount, noJudge)

	// Keyword analysis drives the tailoring hints and gets written alongside
	// the artifacts.
	report := keywords.Analyze(jobDescription, baseResume)

	fmt.Printf("Generating application for %s / %s\n", finalCompany, finalRole)

	err = generateResumeArtifacts(ctx, gen, cfg, baseResume, jobDescription, report, outDir, finalCompany, finalRole)
	if err != nil {
		return err
	}

	if !skipCoverLetter {
		err = generateCoverLetterArtifact(ctx, gen, cfg, baseResume, jobDescription, outDir, finalCompany, finalRole)
		if err != nil {
			return err
		}
	}

	err = writeSupportingFiles(jobDescription, report, outDir)
	if err != nil {
		return err
	}

	fmt.Printf("Done. Artifacts written to %s\n", outDir)

	return err
}

func generateResumeArtifacts(ctx context.Context, gen *artifact.Generator, cfg config.Config, baseResume, jobDescription string, report keywords.Report, outDir, finalCompany, finalRole string) (err error) {
	var tailored string
	var res pipeline.Result
	tailored, res, err = gen.TailorResume(ctx, baseResume, jobDescription, missingHighPriority(report), variant)
	if err != nil {
		err = errors.Wrap(err, "resume tailoring failed")
		return err
	}

	reportResult("resume", res)

	resumePath := filepath.Join(outDir, artifactFilename(cfg.Name, finalCompany, finalRole, "resume.txt"))
	err = writeArtifactFile(resumePath, tailored+"\n")
	if err != nil {
		return err
	}

	// Structured resume customization is optional and only runs when resume
	// data is configured.
	if cfg.ResumeDataLocation == "" {
		return err
	}

	err = generateDataCustomization(ctx, gen, cfg, jobDescription, outDir, finalCompany, finalRole)

	return err
}

func generateDataCustomization(ctx context.Context, gen *artifact.Generator, cfg config.Config, jobDescription, outDir, finalCompany, finalRole string) (err error) {
	var data resume.Data
	data, err = resume.LoadData(cfg.ResumeDataLocation)
	if err != nil {
		return err
	}

	var dataJSON []byte
	dataJSON, err = json.Marshal(data)
	if err != nil {
		err = errors.Wrap(err, "failed to marshal resume data")
		return err
	}

	var cust artifact.ResumeCustomization
	var res pipeline.Result
	cust, res, err = gen.CustomizeResumeData(ctx, string(dataJSON), jobDescription, variant)
	if err != nil {
		err = errors.Wrap(err, "resume data customization failed")
		return err
	}

	reportResult("resume data", res)

	data.ApplyCustomization(cust.BulletReorder, cust.ProfessionalSummary)

	var customized []byte
	customized, err = json.MarshalIndent(data, "", "  ")
	if err != nil {
		err = errors.Wrap(err, "failed to marshal customized resume data")
		return err
	}

	dataPath := filepath.Join(outDir, artifactFilename(cfg.Name, finalCompany, finalRole, "resume-data.json"))
	err = writeArtifactFile(dataPath, string(customized)+"\n")

	return err
}

func generateCoverLetterArtifact(ctx context.Context, gen *artifact.Generator, cfg config.Config, baseResume, jobDescription, outDir, finalCompany, finalRole string) (err error) {
	var letter artifact.CoverLetterSections
	var res pipeline.Result
	letter, res, err = gen.GenerateCoverLetter(ctx, artifact.CoverLetterRequest{
		JobDescription: jobDescription,
		Company:        finalCompany,
		Role:           finalRole,
		ResumeContext:  baseResume,
		Variant:        variant,
	})
	if err != nil {
		err = errors.Wrap(err, "cover letter generation failed")
		return err
	}

	reportResult("cover letter", res)

	letterPath := filepath.Join(outDir, artifactFilename(cfg.Name, finalCompany, finalRole, "cover-letter.txt"))
	err = writeArtifactFile(letterPath, formatCoverLetter(letter, cfg.Name))

	return err
}

func writeSupportingFiles(jobDescription string, report keywords.Report, outDir string) (err error) {
	err = writeArtifactFile(filepath.Join(outDir, "jd.txt"), jobDescription)
	if err != nil {
		return err
	}

	var reportJSON []byte
	reportJSON, err = json.MarshalIndent(report, "", "  ")
	if err != nil {
		err = errors.Wrap(err, "failed to marshal keyword report")
		return err
	}

	err = writeArtifactFile(filepath.Join(outDir, "keyword-report.json"), string(reportJSON)+"\n")

	return err
}

// missingHighPriority returns the high-importance keywords the resume does
// not mention yet, to steer tailoring.
func missingHighPriority(report keywords.Report) (terms []string) {
	for _, info := range report.TopKeywords {
		if !info.Present && info.Importance == keywords.ImportanceHigh {
			terms = append(terms, info.Keyword)
		}
	}
	return terms
}

func artifactFilename(name, company, role, suffix string) (filename string) {
	parts := []string{sanitizeFilename(name), sanitizeFilename(company), sanitizeFilename(role), suffix}
	filename = strings.Join(parts, "-")
	return filename
}

// formatCoverLetter assembles the generated sections into letter text.
func formatCoverLetter(letter artifact.CoverLetterSections, name string) (text string) {
	var b strings.Builder

	writeSection := func(s string) {
		if s != "" {
			b.WriteString(s)
			b.WriteString("\n\n")
		}
	}

	writeSection(letter.OpeningHook)
	writeSection(letter.ProfessionalSummary)

	for _, achievement := range letter.KeyAchievements {
		fmt.Fprintf(&b, "- %s\n", achievement)
	}
	if len(letter.KeyAchievements) > 0 {
		b.WriteString("\n")
	}

	if len(letter.SkillsHighlight) > 0 {
		fmt.Fprintf(&b, "Relevant skills: %s\n\n", strings.Join(letter.SkillsHighlight, ", "))
	}

	writeSection(letter.CompanyAlignment)
	writeSection(letter.Closing)

	fmt.Fprintf(&b, "Sincerely,\n%s\n", name)

	text = b.String()

	return text
}

func reportResult(artifactName string, res pipeline.Result) {
	fmt.Printf("  %s: %s\n", artifactName, res.Source)

	if getVerbose() && res.Justification != "" {
		fmt.Printf("    %s\n", res.Justification)
	}
}
