package bulkimport

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestParseCSV(t *testing.T) {
	csv := "Email,First Name,Last Name\n" +
		"awa@example.org,Awa,Diop\n" +
		"kofi@example.org,Kofi,\n"

	table, err := Parse("delegates.csv", strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, []string{"Email", "First Name", "Last Name"}, table.Columns)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "awa@example.org", table.Rows[0]["Email"])
	assert.Equal(t, "", table.Rows[1]["Last Name"])
}

func TestParseCSVPadsRaggedRows(t *testing.T) {
	csv := "Email,First Name,Last Name\n" +
		"awa@example.org,Awa\n"

	table, err := Parse("delegates.csv", strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, "", table.Rows[0]["Last Name"])
}

func TestParseCSVNoDataRows(t *testing.T) {
	_, err := Parse("delegates.csv", strings.NewReader("Email,First Name,Last Name\n"))
	assert.ErrorIs(t, err, ErrNoRows)

	_, err = Parse("delegates.csv", strings.NewReader(""))
	assert.ErrorIs(t, err, ErrNoRows)
}

func TestParseUnsupportedExtension(t *testing.T) {
	_, err := Parse("delegates.pdf", strings.NewReader("whatever"))
	assert.ErrorIs(t, err, ErrUnsupportedFile)
}

func TestParseXLSXFirstSheetOnly(t *testing.T) {
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]string{"Email", "First Name", "Last Name"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]string{"awa@example.org", "Awa", "Diop"}))
	_, err := f.NewSheet("Extras")
	require.NoError(t, err)
	require.NoError(t, f.SetSheetRow("Extras", "A1", &[]string{"ignored"}))

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	table, err := Parse("delegates.xlsx", &buf)
	require.NoError(t, err)
	assert.Equal(t, []string{"Email", "First Name", "Last Name"}, table.Columns)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, "Diop", table.Rows[0]["Last Name"])
}

func TestParseXLSRoutesToBIFFReader(t *testing.T) {
	// A legacy .xls must not be handed to the OOXML reader. Malformed
	// BIFF content surfaces the xls reader's error, not a zip error.
	olePrefix := append([]byte{0xd0, 0xcf, 0x11, 0xe0, 0xa1, 0xb1, 0x1a, 0xe1}, make([]byte, 512)...)
	_, err := Parse("delegates.xls", bytes.NewReader(olePrefix))
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "workbook file format")

	_, err = Parse("delegates.xls", strings.NewReader("Email,First,Last\n"))
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "workbook file format")
}
