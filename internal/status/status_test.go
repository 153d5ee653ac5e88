package status

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLookup(t *testing.T) {
	tests := []struct {
		token string
		label string
		tone  Tone
	}{
		{"approved", "Approved", ToneSuccess},
		{"passed", "Passed", ToneSuccess},
		{"pending", "Pending", ToneWarning},
		{"pending_review", "Pending Review", ToneWarning},
		{"pending_government_approval", "Pending Government Approval", ToneWarning},
		{"rejected", "Rejected", ToneDanger},
		{"failed", "Failed", ToneDanger},
		{"APPROVED", "Approved", ToneSuccess},
		{"  Rejected ", "Rejected", ToneDanger},
		{"Pending Review", "Pending Review", ToneWarning},
		{"pending government approval", "Pending Government Approval", ToneWarning},
		{"PENDING\t GOVERNMENT  APPROVAL", "Pending Government Approval", ToneWarning},
		{"under_inspection", "Under inspection", ToneNeutral},
		{"under inspection", "Under inspection", ToneNeutral},
		{"", "", ToneNeutral},
	}
	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			b := Lookup(tt.token)
			assert.Equal(t, tt.label, b.Label)
			assert.Equal(t, tt.tone, b.Tone)
		})
	}
}

func TestLookupWithLabel(t *testing.T) {
	b := LookupWithLabel("approved", "Licensed")
	assert.Equal(t, "Licensed", b.Label)
	assert.Equal(t, ToneSuccess, b.Tone)

	assert.Equal(t, "Pending Review", LookupWithLabel("pending_review", "").Label)
}

func TestClassName(t *testing.T) {
	assert.Equal(t, "badge badge-danger", Lookup("failed").ClassName())
	assert.Equal(t, "badge badge-neutral", Lookup("draft").ClassName())
}
