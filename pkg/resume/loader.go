package resume

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/pkg/errors"
)

// LoadText reads the plain-text base resume.
func LoadText(path string) (text string, err error) {
	var fileData []byte
	fileData, err = os.ReadFile(path)
	if err != nil {
		err = errors.Wrapf(err, "failed to read resume file: %s", path)
		return text, err
	}

	text = strings.TrimSpace(string(fileData))
	if text == "" {
		err = errors.Errorf("resume file is empty: %s", path)
		return text, err
	}

	return text, err
}

// LoadData reads the structured resume data from a JSON file.
func LoadData(path string) (data Data, err error) {
	// Read file
	var fileData []byte
	fileData, err = os.ReadFile(path)
	if err != nil {
		err = errors.Wrapf(err, "failed to read resume data file: %s", path)
		return data, err
	}

	// Parse JSON
	err = json.Unmarshal(fileData, &data)
	if err != nil {
		err = errors.Wrapf(err, "failed to parse resume data JSON: %s", path)
		return data, err
	}

	// Validate data
	err = data.Validate()
	if err != nil {
		err = errors.Wrap(err, "resume data validation failed")
		return data, err
	}

	return data, err
}

// Validate checks that the resume data is well-formed.
func (d *Data) Validate() (err error) {
	if d.Profile.Name == "" {
		err = errors.New("profile name is required")
		return err
	}

	if len(d.Experience) == 0 {
		err = errors.New("no experience entries found in resume data")
		return err
	}

	// Validate each experience entry has required fields
	for i, exp := range d.Experience {
		if exp.ID == "" {
			err = errors.Errorf("experience at index %d missing ID", i)
			return err
		}
		if exp.Company == "" {
			err = errors.Errorf("experience %s missing company", exp.ID)
			return err
		}
		if exp.Role == "" {
			err = errors.Errorf("experience %s missing role", exp.ID)
			return err
		}
	}

	return err
}

// AllText flattens the resume data into one string for keyword analysis.
func (d *Data) AllText() (text string) {
	var parts []string

	parts = append(parts, d.Profile.Name, d.Profile.Title, d.Summary)

	for _, exp := range d.Experience {
		parts = append(parts, exp.Company, exp.Role)
		parts = append(parts, exp.Bullets...)
	}

	parts = append(parts, d.Skills.Languages...)
	parts = append(parts, d.Skills.Cloud...)
	parts = append(parts, d.Skills.Databases...)
	parts = append(parts, d.Skills.Tools...)
	parts = append(parts, d.Skills.Leadership...)

	for _, edu := range d.Education {
		parts = append(parts, edu.Institution, edu.Degree)
	}

	for _, proj := range d.Projects {
		parts = append(parts, proj.Name, proj.Description)
	}

	return strings.Join(parts, " ")
}

// ApplyCustomization reorders experience bullets per the customization plan
// and swaps in the rewritten summary when one is provided. Bullet text the
// plan names that does not exist in the entry is skipped, and existing
// bullets the plan omits are kept after the reordered ones. Bullets are
// matched by count, so repeated identical bullets all survive.
func (d *Data) ApplyCustomization(bulletReorder map[string][]string, summary string) {
	if summary != "" {
		d.Summary = summary
	}

	for i, exp := range d.Experience {
		order, ok := bulletReorder[exp.ID]
		if !ok {
			continue
		}

		remaining := make(map[string]int, len(exp.Bullets))
		for _, b := range exp.Bullets {
			remaining[b]++
		}

		var reordered []string

		for _, b := range order {
			if remaining[b] > 0 {
				reordered = append(reordered, b)
				remaining[b]--
			}
		}

		for _, b := range exp.Bullets {
			if remaining[b] > 0 {
				reordered = append(reordered, b)
				remaining[b]--
			}
		}

		d.Experience[i].Bullets = reordered
	}
}
