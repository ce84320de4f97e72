package registrations

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/events-factory/mededafrica-abstract-submission-sub000/internal/forms"
)

func TestContactFromAnswers(t *testing.T) {
	answers := []forms.AnswerField{
		{InputCode: "fname", InputType: 1, InputValue: "Awa"},
		{InputCode: "email", InputType: 5, InputValue: "awa@example.org"},
		{InputCode: "alt_email", InputType: 5, InputValue: "other@example.org"},
	}
	email, name := contactFromAnswers(answers)
	assert.Equal(t, "awa@example.org", email)
	assert.Equal(t, "Awa", name)
}

func TestContactFromAnswersDefaults(t *testing.T) {
	email, name := contactFromAnswers(nil)
	assert.Equal(t, "", email)
	assert.Equal(t, "delegate", name)
}

func TestSetAnswerRewritesOrAppends(t *testing.T) {
	input := forms.FormInput{InputCode: "cv", NameEnglish: "CV", Type: forms.InputType{ID: 6}}

	answers := setAnswer([]forms.AnswerField{
		{InputCode: "cv", InputType: 6, InputValue: "placeholder"},
	}, input, "form-uploads/ord/cv/file.pdf")
	assert.Equal(t, "form-uploads/ord/cv/file.pdf", answers[0].InputValue)

	answers = setAnswer(nil, input, "form-uploads/ord/cv/file.pdf")
	assert.Len(t, answers, 1)
	assert.Equal(t, "cv", answers[0].InputCode)
	assert.Equal(t, "CV", answers[0].InputName)
}
