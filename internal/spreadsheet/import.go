package spreadsheet

import (
	"bytes"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/extrame/xls"
	"github.com/go-faster/errors"
	"github.com/xuri/excelize/v2"

	"github.com/phillip-england/employeems/internal/forms"
)

var (
	ErrNoWorksheet    = errors.New("no worksheet found")
	ErrEmptyWorksheet = errors.New("worksheet is empty")
	ErrMissingColumns = errors.New("name and email columns are required")
)

// Row is one imported record with its 1-based sheet row number.
type Row struct {
	Line  int
	Input forms.Employee
}

// headerAliases maps normalised header text to form field names.
var headerAliases = map[string]string{
	"name":       "name",
	"full name":  "name",
	"email":      "email",
	"phone":      "phone",
	"address":    "address",
	"city":       "city",
	"gender":     "gender",
	"birthday":   "birthday",
	"birth date": "birthday",
	"position":   "position",
	"title":      "position",
	"department": "department",
	"hire date":  "hireDate",
	"hiredate":   "hireDate",
	"salary":     "salary",
}

// ReadEmployees parses an .xlsx or .xls upload. Columns are matched by header
// text; rows without any value are skipped.
func ReadEmployees(r io.Reader, filename string) ([]Row, error) {
	rows, err := readRows(r, filename)
	if err != nil {
		return nil, err
	}
	index := map[string]int{}
	for i, h := range rows[0] {
		if field, ok := headerAliases[normalizeHeader(h)]; ok {
			if _, dup := index[field]; !dup {
				index[field] = i
			}
		}
	}
	if _, ok := index["name"]; !ok {
		return nil, ErrMissingColumns
	}
	if _, ok := index["email"]; !ok {
		return nil, ErrMissingColumns
	}

	get := func(row []string, field string) string {
		idx, ok := index[field]
		if !ok {
			return ""
		}
		return cellValue(row, idx)
	}

	out := make([]Row, 0, len(rows)-1)
	for i, raw := range rows[1:] {
		if blank(raw) {
			continue
		}
		in := forms.Employee{
			Name:       get(raw, "name"),
			Email:      get(raw, "email"),
			Phone:      get(raw, "phone"),
			Address:    get(raw, "address"),
			City:       get(raw, "city"),
			Gender:     strings.ToLower(get(raw, "gender")),
			Birthday:   normalizeDate(get(raw, "birthday")),
			Position:   get(raw, "position"),
			Department: get(raw, "department"),
			HireDate:   normalizeDate(get(raw, "hireDate")),
			Salary:     get(raw, "salary"),
		}
		out = append(out, Row{Line: i + 2, Input: in})
	}
	return out, nil
}

func readRows(reader io.Reader, filename string) ([][]string, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, errors.Wrap(err, "read upload")
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xls":
		workbook, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
		if err != nil {
			return nil, errors.Wrap(err, "open xls")
		}
		if workbook.NumSheets() == 0 {
			return nil, ErrNoWorksheet
		}
		rows := workbook.ReadAllCells(100000)
		if len(rows) == 0 {
			return nil, ErrEmptyWorksheet
		}
		return rows, nil
	default:
		file, err := excelize.OpenReader(bytes.NewReader(data))
		if err != nil {
			return nil, errors.Wrap(err, "open xlsx")
		}
		defer func() { _ = file.Close() }()

		name := file.GetSheetName(0)
		if name == "" {
			return nil, ErrNoWorksheet
		}
		rows, err := file.GetRows(name)
		if err != nil {
			return nil, errors.Wrap(err, "read rows")
		}
		if len(rows) == 0 {
			return nil, ErrEmptyWorksheet
		}
		return rows, nil
	}
}

func normalizeHeader(header string) string {
	return strings.ToLower(strings.Join(strings.Fields(header), " "))
}

func cellValue(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func blank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// normalizeDate turns Excel serial dates into yyyy-mm-dd and leaves other
// values for the date parser downstream.
func normalizeDate(value string) string {
	if serial, err := strconv.ParseFloat(value, 64); err == nil && serial >= 1 && serial <= 80000 {
		if parsed, err := excelize.ExcelDateToTime(serial, false); err == nil {
			return parsed.Format("2006-01-02")
		}
	}
	return value
}
