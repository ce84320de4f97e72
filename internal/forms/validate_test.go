package forms

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateAnswersMatchesWizardSemantics(t *testing.T) {
	groups := []FormInputGroup{
		{
			Name: "Personal details",
			Entries: []GroupEntry{
				{Input: FormInput{InputCode: "fname", NameEnglish: "First Name", Type: InputType{ID: 1}, Mandatory: "YES"}},
				{Input: FormInput{InputCode: "note", NameEnglish: "Note", Type: InputType{ID: 17}, Mandatory: "YES"}},
				{Input: FormInput{InputCode: "email", NameEnglish: "Email", Type: InputType{ID: 5}, Mandatory: "YES"}},
				{Input: FormInput{InputCode: "org", NameEnglish: "Organization", Type: InputType{ID: 1}, Mandatory: "NO"}},
			},
		},
	}

	// Paragraphs and optional inputs never produce errors; mandatory ones
	// report in input order.
	missing := ValidateAnswers(groups, []AnswerField{
		{InputCode: "email", InputValue: "   "},
	})
	assert.Equal(t, []string{"First Name is required", "Email is required"}, missing)

	missing = ValidateAnswers(groups, []AnswerField{
		{InputCode: "fname", InputValue: "Awa"},
		{InputCode: "email", InputValue: "awa@example.org"},
	})
	assert.Empty(t, missing)
}
