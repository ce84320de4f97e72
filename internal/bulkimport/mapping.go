package bulkimport

import "strings"

// Logical delegate fields a spreadsheet column can map onto.
const (
	FieldEmail     = "email"
	FieldFirstName = "firstName"
	FieldLastName  = "lastName"
)

// fieldOrder fixes the auto-detection order so a header matching two fields
// is claimed deterministically.
var fieldOrder = []string{FieldEmail, FieldFirstName, FieldLastName}

// headerSynonyms are ordered, normalized patterns per logical field.
// Earlier patterns win. Patterns are compared post-normalization, so
// "e-mail" and "email address" are covered by "email" and "emailaddress".
var headerSynonyms = map[string][]string{
	FieldEmail:     {"email", "emailaddress", "mail", "courriel"},
	FieldFirstName: {"firstname", "first", "givenname", "prenom", "fname"},
	FieldLastName:  {"lastname", "last", "surname", "familyname", "nom", "lname"},
}

// ColumnMapping maps logical delegate fields to source column headers.
type ColumnMapping struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// Complete reports whether all three fields have a mapped column.
func (m ColumnMapping) Complete() bool {
	return m.Email != "" && m.FirstName != "" && m.LastName != ""
}

// get returns the mapped column for a logical field.
func (m ColumnMapping) get(field string) string {
	switch field {
	case FieldEmail:
		return m.Email
	case FieldFirstName:
		return m.FirstName
	case FieldLastName:
		return m.LastName
	}
	return ""
}

func (m *ColumnMapping) set(field, column string) {
	switch field {
	case FieldEmail:
		m.Email = column
	case FieldFirstName:
		m.FirstName = column
	case FieldLastName:
		m.LastName = column
	}
}

// normalizeHeader lowercases a header and strips whitespace, hyphens and
// underscores, so "E-Mail Address" and "email_address" compare equal.
func normalizeHeader(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch r {
		case ' ', '\t', '-', '_':
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// GuessMapping pre-fills a mapping from column headers. Best effort only:
// it never fails, and a column claimed by one field is not offered to the
// next.
func GuessMapping(columns []string) ColumnMapping {
	normalized := make([]string, len(columns))
	for i, c := range columns {
		normalized[i] = normalizeHeader(c)
	}

	var m ColumnMapping
	used := make(map[string]struct{})
	for _, field := range fieldOrder {
	patterns:
		for _, pattern := range headerSynonyms[field] {
			for i, col := range columns {
				if _, taken := used[col]; taken {
					continue
				}
				if normalized[i] == pattern {
					m.set(field, col)
					used[col] = struct{}{}
					break patterns
				}
			}
		}
	}
	return m
}

// AvailableColumns returns the columns a field's dropdown may offer: every
// column not mapped by the *other* fields, plus the field's own current
// selection.
func AvailableColumns(m ColumnMapping, field string, columns []string) []string {
	own := m.get(field)
	usedByOthers := make(map[string]struct{})
	for _, f := range fieldOrder {
		if f == field {
			continue
		}
		if col := m.get(f); col != "" {
			usedByOthers[col] = struct{}{}
		}
	}

	out := make([]string, 0, len(columns))
	for _, col := range columns {
		if _, taken := usedByOthers[col]; taken && col != own {
			continue
		}
		out = append(out, col)
	}
	return out
}
