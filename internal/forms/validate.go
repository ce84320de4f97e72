package forms

import "strings"

// ValidateAnswers re-checks a submitted answer array against the stored
// schema, server-side. Returns one message per missing mandatory input, in
// input order, matching the wizard's step validation.
func ValidateAnswers(groups []FormInputGroup, answers []AnswerField) []string {
	byCode := make(map[string]string, len(answers))
	for _, a := range answers {
		byCode[a.InputCode] = strings.TrimSpace(a.InputValue)
	}

	var missing []string
	for _, group := range groups {
		for _, entry := range group.Entries {
			input := entry.Input
			if input.Type.Kind() == KindParagraph {
				continue
			}
			if input.IsMandatory() && byCode[input.InputCode] == "" {
				missing = append(missing, input.NameEnglish+" is required")
			}
		}
	}
	return missing
}
