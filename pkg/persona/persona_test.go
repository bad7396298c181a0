package persona

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSelect(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  VisitorType
	}{
		{"hr", "hr", VisitorHR},
		{"business", "business", VisitorBusiness},
		{"technical", "technical", VisitorTechnical},
		{"general", "general", VisitorGeneral},
		{"empty falls back", "", VisitorGeneral},
		{"unknown falls back", "recruiter", VisitorGeneral},
		{"lookup is case-sensitive", "HR", VisitorGeneral},
		{"whitespace is not trimmed", " hr", VisitorGeneral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Select(tt.input)
			assert.Equal(t, tt.want, got.Type)
			assert.NotEmpty(t, got.Label)
			assert.NotEmpty(t, got.FocusAreas)
			assert.NotEmpty(t, got.Tone)
		})
	}
}

func TestAll(t *testing.T) {
	all := All()
	assert.Len(t, all, 4)

	order := make([]VisitorType, len(all))
	for i, p := range all {
		order[i] = p.Type
	}
	assert.Equal(t, []VisitorType{VisitorBusiness, VisitorHR, VisitorTechnical, VisitorGeneral}, order)
}
