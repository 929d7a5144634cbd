package cmd

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/nikogura/resume-forge/pkg/artifact"
	"github.com/nikogura/resume-forge/pkg/config"
	"github.com/nikogura/resume-forge/pkg/jd"
	"github.com/nikogura/resume-forge/pkg/llm"
	"github.com/nikogura/resume-forge/pkg/pipeline"
	"github.com/pkg/errors"
)

// newArtifactGenerator wires the Claude client into the candidate pipeline
// using the configured generation settings.
func newArtifactGenerator(cfg config.Config, candidates int, noJudge bool) (gen *artifact.Generator) {
	client := llm.NewClient(cfg.AnthropicAPIKey, cfg.GetGenerationModel())
	client.SetMaxTokens(cfg.GetMaxTokens())
	client.SetTemperature(cfg.GetTemperature())

	// The judge gets its own client so models.judge takes effect
	judgeClient := llm.NewClient(cfg.AnthropicAPIKey, cfg.GetJudgeModel())
	judgeClient.SetMaxTokens(cfg.GetMaxTokens())

	if candidates <= 0 {
		candidates = cfg.GetNumGenerations()
	}

	gen = artifact.NewGenerator(client.Complete, artifact.Options{
		CandidateCount: candidates,
		DisableJudging: noJudge || cfg.AI.DisableJudge,
		Pipeline: pipeline.Options{
			MaxParallel:   cfg.GetMaxParallel(),
			Timeout:       cfg.GetRequestTimeout(),
			Logger:        newLogger(),
			JudgeComplete: judgeClient.Complete,
		},
	})

	return gen
}

// resolveCompanyAndRole prefers the flag values and falls back to details
// extracted from the job description.
func resolveCompanyAndRole(flagCompany, flagRole, jobDescription string) (company string, role string) {
	extractedTitle, extractedCompany := jd.ExtractDetails(jobDescription)

	company = flagCompany
	if company == "" {
		company = extractedCompany
	}
	if company == "" {
		company = "Unknown Company"
	}

	role = flagRole
	if role == "" {
		role = extractedTitle
	}
	if role == "" {
		role = "Unknown Position"
	}

	return company, role
}

func getOutputDir(flagValue, configValue string) (outDir string) {
	outDir = flagValue
	if outDir == "" {
		outDir = configValue
	}
	return outDir
}

func createCompanyOutputDir(baseOutDir, company string) (outDir string, err error) {
	companyDir := sanitizeFilename(company)
	outDir = filepath.Join(baseOutDir, companyDir)
	err = os.MkdirAll(outDir, 0755)
	if err != nil {
		err = errors.Wrapf(err, "failed to create output directory: %s", outDir)
		return outDir, err
	}
	return outDir, err
}

// sanitizeFilename converts a display name into a safe filename component.
func sanitizeFilename(name string) (sanitized string) {
	// Remove common company suffixes
	suffixes := []string{
		" LLC", " llc",
		" Inc.", " inc.",
		" Inc", " inc",
		" Corporation", " corporation",
		" Corp.", " corp.",
		" Corp", " corp",
		" Limited", " limited",
		" Ltd.", " ltd.",
		" Ltd", " ltd",
		" Co.", " co.",
		" Co", " co",
		", LLC", ", llc",
		", Inc.", ", inc.",
		", Inc", ", inc",
	}

	sanitized = name
	for _, suffix := range suffixes {
		sanitized = strings.TrimSuffix(sanitized, suffix)
	}

	// Convert to lowercase
	sanitized = strings.ToLower(sanitized)

	// Replace spaces and special chars with hyphens
	sanitized = strings.Map(func(r rune) (result rune) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			result = r
			return result
		}
		result = '-'
		return result
	}, sanitized)

	// Collapse repeated hyphens
	for strings.Contains(sanitized, "--") {
		sanitized = strings.ReplaceAll(sanitized, "--", "-")
	}

	sanitized = strings.Trim(sanitized, "-")

	if sanitized == "" {
		sanitized = "application"
	}

	return sanitized
}

func writeArtifactFile(path, content string) (err error) {
	err = os.WriteFile(path, []byte(content), 0644)
	if err != nil {
		err = errors.Wrapf(err, "failed to write file: %s", path)
		return err
	}
	return err
}
