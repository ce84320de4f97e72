package forms

import (
	"errors"
	"strings"
)

// The "Other" sentinel option. Comparison is case-insensitive throughout,
// for both visibility and value checks.
const otherSentinel = "Other"

var (
	// ErrNotLastStep is returned when Submit is called before the final step.
	ErrNotLastStep = errors.New("submit is only available from the last step")
	// ErrStepNotCompleted is returned when jumping ahead past the current step.
	ErrStepNotCompleted = errors.New("cannot jump to a step that has not been completed")
	// ErrValidation is returned when the current step has missing answers.
	ErrValidation = errors.New("step validation failed")
)

// Wizard walks a grouped form schema one step at a time, holding a single
// flat value map across all steps. Values for hidden "Other" companions are
// cleared the moment their parent selection moves away from "Other".
type Wizard struct {
	groups []FormInputGroup
	values FormValues
	step   int
	errors []string
}

// NewWizard builds a wizard over the schema groups, seeding values from any
// pre-filled entry values (edit/resume flows).
func NewWizard(groups []FormInputGroup) *Wizard {
	w := &Wizard{
		groups: groups,
		values: make(FormValues),
	}
	for _, g := range groups {
		for _, e := range g.Entries {
			if e.Value != nil && !e.Value.Empty() && e.Input.Type.Kind() != KindParagraph {
				w.values[e.Input.InputCode] = *e.Value
			}
		}
	}
	return w
}

// Step returns the current zero-based step index.
func (w *Wizard) Step() int { return w.step }

// Steps returns the total number of steps.
func (w *Wizard) Steps() int { return len(w.groups) }

// Errors returns the validation messages from the last failed advance.
func (w *Wizard) Errors() []string { return w.errors }

// Values returns the flat value map.
func (w *Wizard) Values() FormValues { return w.values }

// SetValue records an answer. Paragraph inputs are display-only and never
// enter the value map. Setting a choice value away from "Other" clears the
// companion free-text value.
func (w *Wizard) SetValue(inputCode string, v Value) {
	input, ok := w.findInput(inputCode)
	if ok && input.Type.Kind() == KindParagraph {
		return
	}
	if v.Empty() {
		delete(w.values, inputCode)
	} else {
		w.values[inputCode] = v
	}
	if ok && input.AllowsOther() && !w.OtherActive(inputCode) {
		delete(w.values, OtherKey(inputCode))
	}
}

// SetOtherValue records the free-text companion of a choice input. It is
// ignored while the companion is hidden.
func (w *Wizard) SetOtherValue(inputCode, text string) {
	if !w.OtherActive(inputCode) {
		return
	}
	if text == "" {
		delete(w.values, OtherKey(inputCode))
		return
	}
	w.values[OtherKey(inputCode)] = TextValue(text)
}

// OtherActive reports whether the "Other" companion of an input is visible:
// the input allows other and its current selection is (or contains) "Other".
func (w *Wizard) OtherActive(inputCode string) bool {
	input, ok := w.findInput(inputCode)
	if !ok || !input.AllowsOther() {
		return false
	}
	v, ok := w.values[inputCode]
	if !ok {
		return false
	}
	return v.Contains(otherSentinel, strings.EqualFold)
}

// Next validates the current step and advances on success. On failure it
// returns ErrValidation and leaves the ordered messages in Errors().
func (w *Wizard) Next() error {
	errs := w.validateStep(w.step)
	if len(errs) > 0 {
		w.errors = errs
		return ErrValidation
	}
	w.errors = nil
	if w.step < len(w.groups)-1 {
		w.step++
	}
	return nil
}

// Prev steps back without re-validating.
func (w *Wizard) Prev() {
	if w.step > 0 {
		w.step--
	}
}

// GoTo jumps directly to an already-completed step. Jumping ahead is not
// allowed; steps beyond the current one have not been validated.
func (w *Wizard) GoTo(step int) error {
	if step < 0 || step >= len(w.groups) {
		return ErrStepNotCompleted
	}
	if step >= w.step {
		if step == w.step {
			return nil
		}
		return ErrStepNotCompleted
	}
	w.step = step
	return nil
}

// Submit re-validates the final step and serializes every recorded answer
// (plus non-empty "Other" companions) into the flat submission array, in
// schema order. Only valid from the last step.
func (w *Wizard) Submit() ([]AnswerField, error) {
	if w.step != len(w.groups)-1 {
		return nil, ErrNotLastStep
	}
	errs := w.validateStep(w.step)
	if len(errs) > 0 {
		w.errors = errs
		return nil, ErrValidation
	}
	w.errors = nil
	return w.serialize(), nil
}

// validateStep checks only the given step: every mandatory input needs a
// non-empty answer, and a visible "Other" companion needs its free text.
// Messages come back in input order, one per missing field.
func (w *Wizard) validateStep(step int) []string {
	if step < 0 || step >= len(w.groups) {
		return nil
	}
	var errs []string
	for _, e := range w.groups[step].Entries {
		input := e.Input
		if input.Type.Kind() == KindParagraph {
			continue
		}
		v, ok := w.values[input.InputCode]
		missing := !ok || v.Empty()
		if input.IsMandatory() && missing {
			errs = append(errs, input.NameEnglish+" is required")
			continue
		}
		if w.OtherActive(input.InputCode) {
			ov, ok := w.values[OtherKey(input.InputCode)]
			if !ok || ov.Empty() {
				errs = append(errs, input.NameEnglish+" (Other) is required")
			}
		}
	}
	return errs
}

func (w *Wizard) serialize() []AnswerField {
	var out []AnswerField
	for _, g := range w.groups {
		for _, e := range g.Entries {
			input := e.Input
			if input.Type.Kind() == KindParagraph {
				continue
			}
			v, ok := w.values[input.InputCode]
			if !ok || v.Empty() {
				continue
			}
			out = append(out, AnswerField{
				InputCode:  input.InputCode,
				InputType:  input.Type.ID,
				InputValue: v.String(),
				InputName:  input.NameEnglish,
			})
			if w.OtherActive(input.InputCode) {
				if ov, ok := w.values[OtherKey(input.InputCode)]; ok && !ov.Empty() {
					out = append(out, AnswerField{
						InputCode:  OtherKey(input.InputCode),
						InputType:  1,
						InputValue: ov.String(),
						InputName:  input.NameEnglish + " (Other)",
					})
				}
			}
		}
	}
	return out
}

func (w *Wizard) findInput(inputCode string) (FormInput, bool) {
	for _, g := range w.groups {
		for _, e := range g.Entries {
			if e.Input.InputCode == inputCode {
				return e.Input, true
			}
		}
	}
	return FormInput{}, false
}
