package forms

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func textInput(code, name string, mandatory bool) GroupEntry {
	m := "NO"
	if mandatory {
		m = "YES"
	}
	return GroupEntry{Input: FormInput{
		InputCode:   code,
		NameEnglish: name,
		Type:        InputType{ID: 1},
		Mandatory:   m,
		AllowOther:  "NO",
	}}
}

func selectInput(code, name string, mandatory, allowOther bool, options ...string) GroupEntry {
	m, o := "NO", "NO"
	if mandatory {
		m = "YES"
	}
	if allowOther {
		o = "YES"
	}
	opts := make([]InputOption, len(options))
	for i, s := range options {
		opts[i] = InputOption{ID: i + 1, ContentEnglish: s}
	}
	return GroupEntry{
		Input: FormInput{
			InputCode:   code,
			NameEnglish: name,
			Type:        InputType{ID: 2},
			Mandatory:   m,
			AllowOther:  o,
		},
		Options: opts,
	}
}

func checkboxInput(code, name string, mandatory bool, options ...string) GroupEntry {
	m := "NO"
	if mandatory {
		m = "YES"
	}
	opts := make([]InputOption, len(options))
	for i, s := range options {
		opts[i] = InputOption{ID: i + 1, ContentEnglish: s}
	}
	return GroupEntry{
		Input: FormInput{
			InputCode:   code,
			NameEnglish: name,
			Type:        InputType{ID: 16},
			Mandatory:   m,
			AllowOther:  "YES",
		},
		Options: opts,
	}
}

func twoStepSchema() []FormInputGroup {
	return []FormInputGroup{
		{
			Name: "Personal details",
			Entries: []GroupEntry{
				textInput("first_name", "First Name", true),
				textInput("last_name", "Last Name", true),
				textInput("middle_name", "Middle Name", false),
			},
		},
		{
			Name: "Affiliation",
			Entries: []GroupEntry{
				selectInput("organization_type", "Organization Type", true, true, "University", "Hospital", "Other"),
				textInput("country", "Country", true),
			},
		},
	}
}

func TestNextBlocksOnMissingMandatoryFields(t *testing.T) {
	w := NewWizard(twoStepSchema())

	err := w.Next()
	require.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, []string{"First Name is required", "Last Name is required"}, w.Errors())
	assert.Equal(t, 0, w.Step())

	w.SetValue("first_name", TextValue("Awa"))
	err = w.Next()
	require.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, []string{"Last Name is required"}, w.Errors())
	assert.Equal(t, 0, w.Step())

	w.SetValue("last_name", TextValue("Diop"))
	require.NoError(t, w.Next())
	assert.Equal(t, 1, w.Step())
	assert.Empty(t, w.Errors())
}

func TestNextIgnoresOptionalAndParagraphInputs(t *testing.T) {
	schema := []FormInputGroup{
		{
			Name: "Intro",
			Entries: []GroupEntry{
				{Input: FormInput{InputCode: "intro_text", NameEnglish: "Welcome", Type: InputType{ID: 17}, Mandatory: "YES"}},
				textInput("nickname", "Nickname", false),
			},
		},
	}
	w := NewWizard(schema)
	require.NoError(t, w.Next())

	// Paragraph inputs never enter the value map even if set.
	w.SetValue("intro_text", TextValue("hello"))
	_, ok := w.Values()["intro_text"]
	assert.False(t, ok)
}

func TestMultiSelectRequiresNonEmptyList(t *testing.T) {
	schema := []FormInputGroup{
		{
			Name: "Topics",
			Entries: []GroupEntry{
				checkboxInput("topics", "Topics of Interest", true, "Surgery", "Oncology", "Other"),
			},
		},
	}
	w := NewWizard(schema)

	w.SetValue("topics", ListValue())
	err := w.Next()
	require.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, []string{"Topics of Interest is required"}, w.Errors())

	w.SetValue("topics", ListValue("Surgery"))
	require.NoError(t, w.Next())
}

func TestPrevAndGoTo(t *testing.T) {
	w := NewWizard(twoStepSchema())
	w.SetValue("first_name", TextValue("Awa"))
	w.SetValue("last_name", TextValue("Diop"))
	require.NoError(t, w.Next())
	require.Equal(t, 1, w.Step())

	// Jumping ahead past the current step is refused.
	require.ErrorIs(t, w.GoTo(1+1), ErrStepNotCompleted)

	w.Prev()
	assert.Equal(t, 0, w.Step())
	w.Prev()
	assert.Equal(t, 0, w.Step())

	// After completing step 0 again, direct jump back to it is allowed.
	require.NoError(t, w.Next())
	require.NoError(t, w.GoTo(0))
	assert.Equal(t, 0, w.Step())
}

func TestOtherCompanionGating(t *testing.T) {
	w := NewWizard(twoStepSchema())
	w.SetValue("first_name", TextValue("Awa"))
	w.SetValue("last_name", TextValue("Diop"))
	require.NoError(t, w.Next())

	w.SetValue("organization_type", TextValue("University"))
	assert.False(t, w.OtherActive("organization_type"))

	// Companion input is ignored while hidden.
	w.SetOtherValue("organization_type", "should be dropped")
	_, ok := w.Values()[OtherKey("organization_type")]
	assert.False(t, ok)

	// Visibility check is case-insensitive.
	w.SetValue("organization_type", TextValue("OTHER"))
	assert.True(t, w.OtherActive("organization_type"))

	w.SetValue("country", TextValue("Senegal"))
	err := w.Next()
	require.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, []string{"Organization Type (Other) is required"}, w.Errors())

	w.SetOtherValue("organization_type", "NGO")
	require.NoError(t, w.Next())

	// Moving the selection away from Other clears the companion value.
	w.SetValue("organization_type", TextValue("Hospital"))
	_, ok = w.Values()[OtherKey("organization_type")]
	assert.False(t, ok)
}

func TestOtherActiveForCheckboxMembership(t *testing.T) {
	schema := []FormInputGroup{
		{
			Name: "Topics",
			Entries: []GroupEntry{
				checkboxInput("topics", "Topics of Interest", true, "Surgery", "Oncology", "Other"),
			},
		},
	}
	w := NewWizard(schema)

	w.SetValue("topics", ListValue("Surgery"))
	assert.False(t, w.OtherActive("topics"))

	w.SetValue("topics", ListValue("Surgery", "other"))
	assert.True(t, w.OtherActive("topics"))
}

func TestSubmitOnlyFromLastStep(t *testing.T) {
	w := NewWizard(twoStepSchema())
	w.SetValue("first_name", TextValue("Awa"))
	w.SetValue("last_name", TextValue("Diop"))

	_, err := w.Submit()
	require.ErrorIs(t, err, ErrNotLastStep)

	require.NoError(t, w.Next())
	w.SetValue("organization_type", TextValue("University"))

	// Final step is re-validated on submit.
	_, err = w.Submit()
	require.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, []string{"Country is required"}, w.Errors())

	w.SetValue("country", TextValue("Senegal"))
	answers, err := w.Submit()
	require.NoError(t, err)
	assert.Equal(t, []AnswerField{
		{InputCode: "first_name", InputType: 1, InputValue: "Awa", InputName: "First Name"},
		{InputCode: "last_name", InputType: 1, InputValue: "Diop", InputName: "Last Name"},
		{InputCode: "organization_type", InputType: 2, InputValue: "University", InputName: "Organization Type"},
		{InputCode: "country", InputType: 1, InputValue: "Senegal", InputName: "Country"},
	}, answers)
}

func TestSubmitIncludesOtherCompanion(t *testing.T) {
	w := NewWizard(twoStepSchema())
	w.SetValue("first_name", TextValue("Awa"))
	w.SetValue("last_name", TextValue("Diop"))
	require.NoError(t, w.Next())

	w.SetValue("organization_type", TextValue("Other"))
	w.SetOtherValue("organization_type", "NGO")
	w.SetValue("country", TextValue("Senegal"))

	answers, err := w.Submit()
	require.NoError(t, err)
	assert.Equal(t, []AnswerField{
		{InputCode: "first_name", InputType: 1, InputValue: "Awa", InputName: "First Name"},
		{InputCode: "last_name", InputType: 1, InputValue: "Diop", InputName: "Last Name"},
		{InputCode: "organization_type", InputType: 2, InputValue: "Other", InputName: "Organization Type"},
		{InputCode: "organization_type_other", InputType: 1, InputValue: "NGO", InputName: "Organization Type (Other)"},
		{InputCode: "country", InputType: 1, InputValue: "Senegal", InputName: "Country"},
	}, answers)
}

func TestNewWizardSeedsPrefilledValues(t *testing.T) {
	schema := twoStepSchema()
	v := TextValue("Mariam")
	schema[0].Entries[0].Value = &v
	w := NewWizard(schema)

	got, ok := w.Values()["first_name"]
	require.True(t, ok)
	assert.Equal(t, "Mariam", got.Text)
}

func TestMultiValueSerializesJoined(t *testing.T) {
	schema := []FormInputGroup{
		{
			Name: "Topics",
			Entries: []GroupEntry{
				checkboxInput("topics", "Topics of Interest", true, "Surgery", "Oncology", "Other"),
			},
		},
	}
	w := NewWizard(schema)
	w.SetValue("topics", ListValue("Surgery", "Oncology"))

	answers, err := w.Submit()
	require.NoError(t, err)
	require.Len(t, answers, 1)
	assert.Equal(t, "Surgery, Oncology", answers[0].InputValue)
	assert.Equal(t, 16, answers[0].InputType)
}

func TestUnknownInputTypeFallsBackToText(t *testing.T) {
	assert.Equal(t, KindText, InputType{ID: 99}.Kind())
	assert.Equal(t, KindText, InputType{ID: 11}.Kind())
	assert.Equal(t, KindParagraph, InputType{ID: 17}.Kind())
}
