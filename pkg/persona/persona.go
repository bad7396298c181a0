// Package persona maps a visitor type to a static content-emphasis profile.
// Profiles bias how project scores are presented; they never alter the
// scores themselves.
package persona

// VisitorType is a coarse persona tag chosen by the visitor.
type VisitorType string

const (
	VisitorHR        VisitorType = "hr"
	VisitorBusiness  VisitorType = "business"
	VisitorTechnical VisitorType = "technical"
	VisitorGeneral   VisitorType = "general"
)

// Profile is a fixed content-emphasis record for one visitor type.
type Profile struct {
	Type        VisitorType `json:"type"`
	Label       string      `json:"label"`
	Description string      `json:"description"`
	FocusAreas  []string    `json:"focus_areas"`
	Metrics     []string    `json:"metrics"`
	Tone        string      `json:"tone"`
}

var profiles = map[VisitorType]Profile{
	VisitorHR: {
		Type:        VisitorHR,
		Label:       "HR Professional",
		Description: "Focus on skills, experience, and team collaboration",
		FocusAreas:  []string{"skills", "experience", "team collaboration", "cultural fit"},
		Metrics:     []string{"technical_skills", "collaboration", "communication", "leadership"},
		Tone:        "professional, assessment-oriented",
	},
	VisitorBusiness: {
		Type:        VisitorBusiness,
		Label:       "Business Professional",
		Description: "Focus on ROI, business value, and market impact",
		FocusAreas:  []string{"ROI", "business value", "market impact", "scalability"},
		Metrics:     []string{"business_value", "market_potential", "scalability", "cost_effectiveness"},
		Tone:        "professional, executive-level",
	},
	VisitorTechnical: {
		Type:        VisitorTechnical,
		Label:       "Technical Professional",
		Description: "Focus on code quality, architecture, and best practices",
		FocusAreas:  []string{"code quality", "architecture", "technical complexity", "best practices"},
		Metrics:     []string{"code_quality", "architecture", "performance", "security"},
		Tone:        "technical, detailed",
	},
	VisitorGeneral: {
		Type:        VisitorGeneral,
		Label:       "General Visitor",
		Description: "Focus on overview, impact, and user experience",
		FocusAreas:  []string{"overview", "impact", "user experience", "accessibility"},
		Metrics:     []string{"user_experience", "accessibility", "impact", "innovation"},
		Tone:        "friendly, accessible",
	},
}

// Select returns the profile for a visitor type tag. Lookup is exact and
// case-sensitive; any unrecognized tag (including "") falls back to the
// general profile, so Select is total over all strings.
func Select(visitorType string) Profile {
	if p, ok := profiles[VisitorType(visitorType)]; ok {
		return p
	}
	return profiles[VisitorGeneral]
}

// All returns the four profiles in a fixed presentation order.
func All() []Profile {
	return []Profile{
		profiles[VisitorBusiness],
		profiles[VisitorHR],
		profiles[VisitorTechnical],
		profiles[VisitorGeneral],
	}
}
