// Package keywords analyzes how well resume content covers the terms a job
// description asks for. Extraction works from a fixed table of common
// technical and soft-skill terms so it needs no network access and produces
// the same report for the same inputs.
package keywords

import (
	"fmt"
	"regexp"
	"strings"
)

// Importance levels for keywords.
const (
	ImportanceHigh   = "high"
	ImportanceMedium = "medium"
	ImportanceLow    = "low"
)

// Keyword is a term extracted from a job description.
type Keyword struct {
	Term       string
	Importance string
}

// Info describes one keyword's presence in the resume.
type Info struct {
	Keyword           string   `json:"keyword"`
	Importance        string   `json:"importance"`
	Count             int      `json:"count"`
	Present           bool     `json:"is_present"`
	SuggestedSections []string `json:"suggested_sections"`
}

// Report is the complete keyword density analysis.
type Report struct {
	TopKeywords  []Info   `json:"top_keywords"`
	DensityScore int      `json:"density_score"`
	PresentCount int      `json:"present_count"`
	MissingCount int      `json:"missing_count"`
	Suggestions  []string `json:"suggestions"`
}

// commonKeywords is a curated table of terms that show up in software job
// postings, with how strongly a posting mentioning one usually requires it.
var commonKeywords = []Keyword{
	{"python", ImportanceHigh},
	{"javascript", ImportanceHigh},
	{"typescript", ImportanceHigh},
	{"react", ImportanceHigh},
	{"vue", ImportanceMedium},
	{"angular", ImportanceMedium},
	{"node.js", ImportanceHigh},
	{"django", ImportanceMedium},
	{"flask", ImportanceMedium},
	{"fastapi", ImportanceMedium},
	{"kubernetes", ImportanceHigh},
	{"docker", ImportanceHigh},
	{"aws", ImportanceHigh},
	{"gcp", ImportanceMedium},
	{"azure", ImportanceMedium},
	{"sql", ImportanceHigh},
	{"mongodb", ImportanceMedium},
	{"postgresql", ImportanceMedium},
	{"redis", ImportanceMedium},
	{"ci/cd", ImportanceHigh},
	{"devops", ImportanceHigh},
	{"machine learning", ImportanceHigh},
	{"ai", ImportanceHigh},
	{"llm", ImportanceHigh},
	{"pytorch", ImportanceMedium},
	{"tensorflow", ImportanceMedium},
	{"react native", ImportanceMedium},
	{"graphql", ImportanceMedium},
	{"rest api", ImportanceHigh},
	{"microservices", ImportanceHigh},
	{"java", ImportanceHigh},
	{"go", ImportanceMedium},
	{"rust", ImportanceMedium},
	{"c++", ImportanceMedium},
	{"c#", ImportanceMedium},
	{".net", ImportanceMedium},
	{"spring", ImportanceMedium},
	{"hibernate", ImportanceMedium},
	{"agile", ImportanceHigh},
	{"scrum", ImportanceMedium},
	{"kanban", ImportanceMedium},
	{"leadership", ImportanceHigh},
	{"communication", ImportanceHigh},
	{"teamwork", ImportanceMedium},
}

// techTerms marks table entries that belong in a skills section rather than
// soft-skill phrasing.
var techTerms = map[string]bool{
	"python": true, "javascript": true, "typescript": true, "react": true,
	"vue": true, "angular": true, "node.js": true, "django": true,
	"flask": true, "fastapi": true, "kubernetes": true, "docker": true,
	"aws": true, "gcp": true, "azure": true, "sql": true, "mongodb": true,
	"postgresql": true, "redis": true, "ci/cd": true, "devops": true,
	"machine learning": true, "ai": true, "llm": true, "pytorch": true,
	"tensorflow": true, "react native": true, "graphql": true,
	"rest api": true, "microservices": true, "java": true, "go": true,
	"rust": true, "c++": true, "c#": true, ".net": true, "spring": true,
	"hibernate": true,
}

// Extract returns the table keywords that appear in the job description, in
// table order.
func Extract(jobDescription string) (found []Keyword) {
	jdLower := strings.ToLower(jobDescription)

	for _, kw := range commonKeywords {
		if strings.Contains(jdLower, kw.Term) {
			found = append(found, kw)
		}
	}

	return found
}

// Analyze extracts keywords from the job description, counts their
// occurrences in the resume text, and returns a density report.
func Analyze(jobDescription string, resumeText string) (report Report) {
	extracted := Extract(jobDescription)

	var missing []Info

	for _, kw := range extracted {
		count := countOccurrences(resumeText, kw.Term)
		info := Info{
			Keyword:    kw.Term,
			Importance: kw.Importance,
			Count:      count,
			Present:    count > 0,
		}

		if info.Present {
			report.PresentCount++
		} else {
			report.MissingCount++
			info.SuggestedSections = suggestSections(kw.Term)
			missing = append(missing, info)
		}

		report.TopKeywords = append(report.TopKeywords, info)
	}

	if len(extracted) > 0 {
		report.DensityScore = report.PresentCount * 100 / len(extracted)
	}

	report.Suggestions = buildSuggestions(missing)

	return report
}

// countOccurrences counts case-insensitive whole-word matches of term. The
// boundary assertions are only applied next to word characters so terms like
// "c++" and ".net" still match.
func countOccurrences(text string, term string) (count int) {
	pattern := regexp.QuoteMeta(term)

	if isWordChar(term[0]) {
		pattern = `\b` + pattern
	}

	if isWordChar(term[len(term)-1]) {
		pattern += `\b`
	}

	re, err := regexp.Compile(`(?i)` + pattern)
	if err != nil {
		return 0
	}

	return len(re.FindAllStringIndex(text, -1))
}

func isWordChar(c byte) (ok bool) {
	return c == '_' ||
		(c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9')
}

func suggestSections(term string) (sections []string) {
	if techTerms[term] {
		return []string{"Skills section", "Work experience bullets"}
	}

	return []string{"Skills or experience section"}
}

// buildSuggestions turns the missing keywords into actionable advice, leading
// with the high-importance ones.
func buildSuggestions(missing []Info) (suggestions []string) {
	var high, medium []string

	for _, kw := range missing {
		switch kw.Importance {
		case ImportanceHigh:
			high = append(high, kw.Keyword)
		case ImportanceMedium:
			medium = append(medium, kw.Keyword)
		}
	}

	if len(high) > 0 {
		suggestions = append(suggestions, fmt.Sprintf("Add these high-priority keywords to skills or experience: %s", strings.Join(capStrings(high, 3), ", ")))
	}

	if len(medium) > 0 {
		suggestions = append(suggestions, fmt.Sprintf("Consider adding these keywords: %s", strings.Join(capStrings(medium, 3), ", ")))
	}

	return suggestions
}

func capStrings(in []string, n int) (out []string) {
	if len(in) <= n {
		return in
	}

	return in[:n]
}
