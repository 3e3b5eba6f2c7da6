package resume

import (
	"bytes"
	"encoding/json"
	"math"
	"strings"
)

// ExperienceItem описывает одно место работы.
type ExperienceItem struct {
	Role        *string `json:"role"`
	Company     *string `json:"company"`
	Start       *string `json:"start"` // free text, as written in the resume
	End         *string `json:"end"`
	Description *string `json:"description"`
}

type EducationItem struct {
	Degree      *string `json:"degree"`
	Institution *string `json:"institution"`
	Start       *string `json:"start"`
	End         *string `json:"end"`
	Notes       *string `json:"notes"`
}

type ProjectItem struct {
	Name         *string  `json:"name"`
	Description  *string  `json:"description"`
	Technologies []string `json:"technologies"`
}

// Extraction is the typed view of a recovered model reply. Every field has
// already been defaulted: absent or ill-typed strings are nil, absent lists
// are empty, Rating is an integer in [0, 10] or nil.
type Extraction struct {
	Name            *string
	Email           *string
	Phone           *string
	LinkedIn        *string
	Summary         *string
	WorkExperience  []ExperienceItem
	Education       []EducationItem
	Projects        []ProjectItem
	Certifications  []string
	TechnicalSkills []string
	SoftSkills      []string
	Rating          *int
	// Feedback is improvement_areas joined with "; ".
	Feedback        *string
	SuggestedSkills []string
}

// ParseExtraction maps a recovered JSON value onto Extraction. Values that are
// not objects yield an all-default view.
func ParseExtraction(raw json.RawMessage) Extraction {
	root := object(raw)
	personal := object(root["personal"])
	feedback := object(root["ai_feedback"])

	return Extraction{
		Name:            text(personal["name"]),
		Email:           text(personal["email"]),
		Phone:           text(personal["phone"]),
		LinkedIn:        text(personal["linkedin"]),
		Summary:         text(root["summary"]),
		WorkExperience:  objects(root["work_experience"], experienceItem),
		Education:       objects(root["education"], educationItem),
		Projects:        objects(root["projects"], projectItem),
		Certifications:  strList(root["certifications"]),
		TechnicalSkills: strList(root["technical_skills"]),
		SoftSkills:      strList(root["soft_skills"]),
		Rating:          rating(feedback["rating_out_of_10"]),
		Feedback:        joined(feedback["improvement_areas"]),
		SuggestedSkills: strList(feedback["suggested_skills_to_learn"]),
	}
}

// Record builds the record to persist. rawText is the extracted PDF text.
func (e Extraction) Record(fileName, rawText string) Record {
	r := Record{
		Name:            e.Name,
		Email:           e.Email,
		Phone:           e.Phone,
		LinkedIn:        e.LinkedIn,
		Summary:         e.Summary,
		WorkExperience:  e.WorkExperience,
		Education:       e.Education,
		Projects:        e.Projects,
		Certifications:  e.Certifications,
		TechnicalSkills: e.TechnicalSkills,
		SoftSkills:      e.SoftSkills,
		Rating:          e.Rating,
		Feedback:        e.Feedback,
		SuggestedSkills: e.SuggestedSkills,
		FileName:        fileName,
		RawText:         rawText,
	}
	r.Normalize()
	return r
}

func experienceItem(m map[string]json.RawMessage) ExperienceItem {
	return ExperienceItem{
		Role:        text(m["role"]),
		Company:     text(m["company"]),
		Start:       text(m["start"]),
		End:         text(m["end"]),
		Description: text(m["description"]),
	}
}

func educationItem(m map[string]json.RawMessage) EducationItem {
	return EducationItem{
		Degree:      text(m["degree"]),
		Institution: text(m["institution"]),
		Start:       text(m["start"]),
		End:         text(m["end"]),
		Notes:       text(m["notes"]),
	}
}

func projectItem(m map[string]json.RawMessage) ProjectItem {
	return ProjectItem{
		Name:         text(m["name"]),
		Description:  text(m["description"]),
		Technologies: strList(m["technologies"]),
	}
}

// object decodes raw as a JSON object; anything else gives nil.
func object(raw json.RawMessage) map[string]json.RawMessage {
	if len(raw) == 0 {
		return nil
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil
	}
	return m
}

// objects decodes a JSON array of objects, skipping elements that are not objects.
func objects[T any](raw json.RawMessage, build func(map[string]json.RawMessage) T) []T {
	out := []T{}
	var items []json.RawMessage
	if len(raw) == 0 || json.Unmarshal(raw, &items) != nil {
		return out
	}
	for _, it := range items {
		m := object(it)
		if m == nil {
			continue
		}
		out = append(out, build(m))
	}
	return out
}

// text returns non-empty strings as is and numbers in their literal form.
func text(raw json.RawMessage) *string {
	if len(raw) == 0 {
		return nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if s == "" {
			return nil
		}
		return &s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		lit := n.String()
		return &lit
	}
	return nil
}

// strList decodes an array into strings. Nulls and nested values are dropped,
// numbers and booleans keep their literal form.
func strList(raw json.RawMessage) []string {
	out := []string{}
	var items []json.RawMessage
	if len(raw) == 0 || json.Unmarshal(raw, &items) != nil {
		return out
	}
	for _, it := range items {
		if s, ok := scalar(it); ok {
			out = append(out, s)
		}
	}
	return out
}

func scalar(raw json.RawMessage) (string, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return "", false
	}
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", false
		}
		return s, true
	case '{', '[', 'n':
		return "", false
	default:
		return string(raw), true
	}
}

func rating(raw json.RawMessage) *int {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || (raw[0] != '-' && (raw[0] < '0' || raw[0] > '9')) {
		return nil
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil
	}
	n := int(math.Round(f))
	if n < 0 || n > 10 {
		return nil
	}
	return &n
}

// joined flattens improvement areas: arrays are joined with "; ", other
// values go through text.
func joined(raw json.RawMessage) *string {
	raw = bytes.TrimSpace(raw)
	var items []json.RawMessage
	if len(raw) > 0 && raw[0] == '[' && json.Unmarshal(raw, &items) == nil {
		parts := make([]string, 0, len(items))
		for _, it := range items {
			s, _ := scalar(it)
			parts = append(parts, s)
		}
		s := strings.Join(parts, "; ")
		return &s
	}
	return text(raw)
}
