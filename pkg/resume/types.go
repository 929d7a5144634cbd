package resume

// Data represents the structured resume data used for customization.
type Data struct {
	Profile    Profile      `json:"profile"`
	Summary    string       `json:"summary"`
	Experience []Experience `json:"experience"`
	Skills     Skills       `json:"skills"`
	Education  []Education  `json:"education,omitempty"`
	Projects   []Project    `json:"projects,omitempty"`
}

// Profile represents personal information.
type Profile struct {
	Name     string            `json:"name"`
	Title    string            `json:"title"`
	Location string            `json:"location"`
	Email    string            `json:"email,omitempty"`
	Profiles map[string]string `json:"profiles,omitempty"`
}

// Experience represents a single position.
type Experience struct {
	ID      string   `json:"id"`
	Company string   `json:"company"`
	Role    string   `json:"role"`
	Dates   string   `json:"dates"`
	Bullets []string `json:"bullets"`
}

// Skills represents organized skill categories.
type Skills struct {
	Languages  []string `json:"languages,omitempty"`
	Cloud      []string `json:"cloud,omitempty"`
	Databases  []string `json:"databases,omitempty"`
	Tools      []string `json:"tools,omitempty"`
	Leadership []string `json:"leadership,omitempty"`
}

// Education represents a degree or certification.
type Education struct {
	Institution string `json:"institution"`
	Degree      string `json:"degree"`
	Dates       string `json:"dates,omitempty"`
}

// Project represents a personal or open source project.
type Project struct {
	Name        string `json:"name"`
	URL         string `json:"url,omitempty"`
	Description string `json:"description"`
}
