package bulkimport

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGuessMappingCommonHeaders(t *testing.T) {
	tests := []struct {
		name    string
		columns []string
		want    ColumnMapping
	}{
		{
			name:    "exact headers",
			columns: []string{"Email", "First Name", "Last Name"},
			want:    ColumnMapping{Email: "Email", FirstName: "First Name", LastName: "Last Name"},
		},
		{
			name:    "hyphenated and underscored",
			columns: []string{"E-Mail", "first_name", "last_name", "Organization"},
			want:    ColumnMapping{Email: "E-Mail", FirstName: "first_name", LastName: "last_name"},
		},
		{
			name:    "french headers",
			columns: []string{"Courriel", "Prenom", "Nom"},
			want:    ColumnMapping{Email: "Courriel", FirstName: "Prenom", LastName: "Nom"},
		},
		{
			name:    "synonym priority",
			columns: []string{"Mail", "Given Name", "Surname"},
			want:    ColumnMapping{Email: "Mail", FirstName: "Given Name", LastName: "Surname"},
		},
		{
			name:    "nothing recognizable",
			columns: []string{"Badge", "Country", "Dietary"},
			want:    ColumnMapping{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GuessMapping(tt.columns))
		})
	}
}

func TestGuessMappingNeverAssignsColumnTwice(t *testing.T) {
	// Once a column is claimed it is withheld from later fields, so two
	// fields never auto-map to the same header.
	m := GuessMapping([]string{"Email", "First", "Surname"})
	assert.Equal(t, "Email", m.Email)
	assert.Equal(t, "First", m.FirstName)
	assert.Equal(t, "Surname", m.LastName)
	assert.NotEqual(t, m.Email, m.FirstName)
	assert.NotEqual(t, m.FirstName, m.LastName)
}

func TestGuessMappingIsBestEffort(t *testing.T) {
	m := GuessMapping([]string{"Email Address"})
	assert.Equal(t, "Email Address", m.Email)
	assert.False(t, m.Complete())
}

func TestAvailableColumnsExcludesOtherFieldsSelections(t *testing.T) {
	columns := []string{"Email", "First Name", "Last Name", "Country"}
	m := ColumnMapping{Email: "Email", FirstName: "First Name"}

	// lastName may not take columns held by email or firstName.
	assert.Equal(t, []string{"Last Name", "Country"}, AvailableColumns(m, FieldLastName, columns))

	// A field always keeps its own selection in its list.
	assert.Equal(t, []string{"Email", "Last Name", "Country"}, AvailableColumns(m, FieldEmail, columns))
}

func TestMappingComplete(t *testing.T) {
	assert.False(t, ColumnMapping{}.Complete())
	assert.False(t, ColumnMapping{Email: "Email", FirstName: "First"}.Complete())
	assert.True(t, ColumnMapping{Email: "Email", FirstName: "First", LastName: "Last"}.Complete())
}

func TestNormalizeHeader(t *testing.T) {
	assert.Equal(t, "emailaddress", normalizeHeader("E-Mail_Address"))
	assert.Equal(t, "firstname", normalizeHeader("  First Name "))
	assert.Equal(t, "courriel", normalizeHeader("COURRIEL"))
}
