package artifact

// ResumeCustomization is the structured output of the resume data
// customization task.
type ResumeCustomization struct {
	Keywords            []string            `json:"keywords"`
	BulletReorder       map[string][]string `json:"bullet_reorder"`
	ProfessionalSummary string              `json:"professional_summary,omitempty"`
}

// CoverLetterSections holds the generated cover letter, section by section.
type CoverLetterSections struct {
	OpeningHook         string   `json:"opening_hook"`
	ProfessionalSummary string   `json:"professional_summary"`
	KeyAchievements     []string `json:"key_achievements"`
	SkillsHighlight     []string `json:"skills_highlight"`
	CompanyAlignment    string   `json:"company_alignment,omitempty"`
	Closing             string   `json:"closing,omitempty"`
}

// JobAnalysis summarizes what an interview question set was built around.
type JobAnalysis struct {
	RoleType        string   `json:"role_type"`
	SeniorityLevel  string   `json:"seniority_level,omitempty"`
	KeyTechnologies []string `json:"key_technologies"`
}

// InterviewQuestion is one prepared question with a suggested answer.
type InterviewQuestion struct {
	Question string `json:"question"`
	Answer   string `json:"answer,omitempty"`
	Priority string `json:"priority,omitempty"`
}

// InterviewQuestionSet is the generated interview preparation package.
type InterviewQuestionSet struct {
	JobAnalysis           JobAnalysis         `json:"job_analysis"`
	TechnicalQuestions    []InterviewQuestion `json:"technical_questions"`
	BehavioralQuestions   []InterviewQuestion `json:"behavioral_questions"`
	SystemDesignQuestions []InterviewQuestion `json:"system_design_questions,omitempty"`
	PreparationTips       []string            `json:"preparation_tips,omitempty"`
}

// CoverLetterRequest carries the inputs for cover letter generation.
type CoverLetterRequest struct {
	JobDescription string
	Company        string
	Role           string
	ResumeContext  string
	Variant        string
}

// InterviewRequest carries the inputs for interview question generation.
type InterviewRequest struct {
	JobDescription string
	ResumeContext  string
	Variant        string
}
