// Package spreadsheet moves employee records in and out of workbooks and
// compressed snapshots.
package spreadsheet

import (
	"io"

	"github.com/go-faster/errors"
	"github.com/xuri/excelize/v2"

	"github.com/phillip-england/employeems/internal/employee"
)

const sheetName = "Employees"

// Columns is the header row shared by export and import.
var Columns = []string{
	"Name", "Email", "Phone", "Address", "City", "Gender", "Birthday",
	"Position", "Department", "Hire Date", "Salary",
}

func row(e employee.Employee) []any {
	return []any{
		e.Name,
		e.Email,
		e.Phone,
		e.Address,
		e.City,
		string(e.Gender),
		employee.DateInput(e.Birthday),
		e.Position,
		string(e.Department),
		employee.DateInput(e.HireDate),
		e.SalaryInput(),
	}
}

// ExportEmployees writes an xlsx workbook with one sheet of employees.
func ExportEmployees(w io.Writer, employees []employee.Employee) error {
	file := excelize.NewFile()
	defer func() { _ = file.Close() }()

	if err := file.SetSheetName("Sheet1", sheetName); err != nil {
		return errors.Wrap(err, "name sheet")
	}
	header := make([]any, len(Columns))
	for i, c := range Columns {
		header[i] = c
	}
	if err := file.SetSheetRow(sheetName, "A1", &header); err != nil {
		return errors.Wrap(err, "write header")
	}
	for i, e := range employees {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := row(e)
		if err := file.SetSheetRow(sheetName, cell, &values); err != nil {
			return errors.Wrapf(err, "write row %d", i+2)
		}
	}
	if _, err := file.WriteTo(w); err != nil {
		return errors.Wrap(err, "write workbook")
	}
	return nil
}
