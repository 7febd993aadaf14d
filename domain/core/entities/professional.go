package entities

import (
	"strings"

	pkgerrors "profnet/pkg/errors"
)

// InterestIDPrefix namespaces interest node identifiers. Professional IDs may
// not start with it, which keeps the two node kinds from colliding in a graph.
const InterestIDPrefix = "interest-"

// UnknownName is shown when a record carries no display name.
const UnknownName = "未知"

// PersonalInfo holds identity and contact details.
type PersonalInfo struct {
	Name      string `json:"name" dynamodbav:"name"`
	Gender    string `json:"gender,omitempty" dynamodbav:"gender,omitempty"`
	DOB       string `json:"dob,omitempty" dynamodbav:"dob,omitempty"`
	Ethnicity string `json:"ethnicity,omitempty" dynamodbav:"ethnicity,omitempty"`
	Email     string `json:"email,omitempty" dynamodbav:"email,omitempty"`
	Phone     string `json:"phone,omitempty" dynamodbav:"phone,omitempty"`
}

// ProfessionalInfo holds employment details.
type ProfessionalInfo struct {
	Title       string `json:"title,omitempty" dynamodbav:"title,omitempty"`
	Affiliation string `json:"affiliation,omitempty" dynamodbav:"affiliation,omitempty"`
	Party       string `json:"party,omitempty" dynamodbav:"party,omitempty"`
	Origin      string `json:"origin,omitempty" dynamodbav:"origin,omitempty"`
	SocietyRole string `json:"society_role,omitempty" dynamodbav:"society_role,omitempty"`
}

// AcademicInfo holds research details. ResearchInterests is kept exactly as
// stored; use Professional.ResearchInterests for the normalized list.
type AcademicInfo struct {
	ResearchInterests []string `json:"research_interests,omitempty" dynamodbav:"research_interests,omitempty"`
	CV                string   `json:"cv,omitempty" dynamodbav:"cv,omitempty"`
	Achievements      []string `json:"achievements,omitempty" dynamodbav:"achievements,omitempty"`
}

// Professional is a single directory record.
type Professional struct {
	ID               string           `json:"_id" dynamodbav:"id"`
	PersonalInfo     PersonalInfo     `json:"personal_info" dynamodbav:"personal_info"`
	ProfessionalInfo ProfessionalInfo `json:"professional_info" dynamodbav:"professional_info"`
	AcademicInfo     AcademicInfo     `json:"academic_info" dynamodbav:"academic_info"`
}

// Name returns the display name, falling back to UnknownName.
func (p *Professional) Name() string {
	if name := strings.TrimSpace(p.PersonalInfo.Name); name != "" {
		return name
	}
	return UnknownName
}

func (p *Professional) Affiliation() string {
	return strings.TrimSpace(p.ProfessionalInfo.Affiliation)
}

func (p *Professional) Title() string {
	return strings.TrimSpace(p.ProfessionalInfo.Title)
}

// ResearchInterests returns the trimmed, non-empty interests in their stored
// order. Duplicates are preserved.
func (p *Professional) ResearchInterests() []string {
	interests := make([]string, 0, len(p.AcademicInfo.ResearchInterests))
	for _, raw := range p.AcademicInfo.ResearchInterests {
		if interest := strings.TrimSpace(raw); interest != "" {
			interests = append(interests, interest)
		}
	}
	return interests
}

// Matches reports whether q occurs, case-insensitively, in the name,
// affiliation, title or any research interest.
func (p *Professional) Matches(q string) bool {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return true
	}
	return strings.Contains(p.SearchText(), q)
}

// SearchText is the lowercased haystack used by Matches and by stores that
// filter server side.
func (p *Professional) SearchText() string {
	parts := []string{p.PersonalInfo.Name, p.ProfessionalInfo.Affiliation, p.ProfessionalInfo.Title}
	parts = append(parts, p.AcademicInfo.ResearchInterests...)
	return strings.ToLower(strings.Join(parts, "\n"))
}

// Validate checks the invariants required before a record is persisted.
func (p *Professional) Validate() error {
	id := strings.TrimSpace(p.ID)
	if id == "" {
		return pkgerrors.NewValidationError("professional id cannot be empty")
	}
	if id != p.ID {
		return pkgerrors.NewValidationError("professional id cannot have surrounding whitespace")
	}
	if strings.HasPrefix(id, InterestIDPrefix) {
		return pkgerrors.NewValidationError("professional id cannot start with " + InterestIDPrefix)
	}
	return nil
}
