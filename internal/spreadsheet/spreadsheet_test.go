package spreadsheet

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/phillip-england/employeems/internal/employee"
)

func sample() []employee.Employee {
	salary := decimal.NewFromInt(4200)
	return []employee.Employee{
		{ID: "1", Name: "Ada Lovelace", Email: "ada@example.com", Gender: employee.GenderFemale, Birthday: "1990-05-01T00:00:00.000Z", Department: "IT", Salary: &salary},
		{ID: "2", Name: "Grace Hopper", Email: "grace@example.com", City: "Arlington"},
	}
}

func TestExportThenImport(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ExportEmployees(&buf, sample()))

	rows, err := ReadEmployees(bytes.NewReader(buf.Bytes()), "employees.xlsx")
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, 2, rows[0].Line)
	assert.Equal(t, "Ada Lovelace", rows[0].Input.Name)
	assert.Equal(t, "female", rows[0].Input.Gender)
	assert.Equal(t, "1990-05-01", rows[0].Input.Birthday)
	assert.Equal(t, "4200", rows[0].Input.Salary)
	assert.Equal(t, "Arlington", rows[1].Input.City)
}

func TestImportMapsHeadersAndSerialDates(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]any{"  EMAIL ", "Full Name", "Birth Date", "Ignored"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]any{"ada@example.com", "Ada", "32994", "x"}))
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]any{"", "", "", ""}))
	require.NoError(t, f.SetSheetRow(sheet, "A4", &[]any{"grace@example.com", "Grace", "1906-12-09", ""}))
	var buf bytes.Buffer
	_, err := f.WriteTo(&buf)
	require.NoError(t, err)

	rows, err := ReadEmployees(&buf, "people.xlsx")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Ada", rows[0].Input.Name)
	assert.Equal(t, "1990-05-01", rows[0].Input.Birthday)
	assert.Equal(t, "1906-12-09", rows[1].Input.Birthday)
}

func TestImportRequiresNameAndEmail(t *testing.T) {
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow(f.GetSheetName(0), "A1", &[]any{"Phone"}))
	var buf bytes.Buffer
	_, err := f.WriteTo(&buf)
	require.NoError(t, err)

	_, err = ReadEmployees(&buf, "bad.xlsx")
	require.ErrorIs(t, err, ErrMissingColumns)

	_, err = ReadEmployees(bytes.NewReader([]byte("not a workbook")), "bad.xlsx")
	require.Error(t, err)
}

func TestArchiveRoundTrip(t *testing.T) {
	now := time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC)
	var buf bytes.Buffer
	require.NoError(t, WriteArchive(&buf, sample(), now))

	a, err := ReadArchive(&buf)
	require.NoError(t, err)
	assert.Equal(t, 2, a.Count)
	assert.Equal(t, now, a.ExportedAt)
	assert.Equal(t, "grace@example.com", a.Employees[1].Email)
}
