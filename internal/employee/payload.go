package employee

import (
	"strings"
	"time"

	"github.com/go-faster/errors"
)

var ErrMissingRequired = errors.New("name and email are required")

// isoMillis is the layout browsers produce for Date.toISOString.
const isoMillis = "2006-01-02T15:04:05.000Z"

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
}

type Field struct {
	Name  string
	Value string
}

// NormalizeDate converts a date or timestamp into the UTC millisecond ISO
// form the API expects. Date-only values are read as UTC midnight.
func NormalizeDate(value string) (string, error) {
	t, ok := parseDate(value)
	if !ok {
		return "", errors.Errorf("invalid date %q", value)
	}
	return t.UTC().Format(isoMillis), nil
}

// DateInput renders a stored date for an <input type="date">.
func DateInput(value string) string {
	t, ok := parseDate(value)
	if !ok {
		return ""
	}
	return t.UTC().Format("2006-01-02")
}

func DateDisplay(value string) string {
	t, ok := parseDate(value)
	if !ok {
		return strings.TrimSpace(value)
	}
	return t.UTC().Format("Jan 2, 2006")
}

func DateTimeDisplay(value string) string {
	t, ok := parseDate(value)
	if !ok {
		return strings.TrimSpace(value)
	}
	return t.Local().Format("Jan 2, 2006 3:04 PM")
}

func parseDate(value string) (time.Time, bool) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, trimmed); err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}

// ValidateRequired blocks create/update submissions without a name or email.
func ValidateRequired(e Employee) error {
	if strings.TrimSpace(e.Name) == "" || strings.TrimSpace(e.Email) == "" {
		return ErrMissingRequired
	}
	return nil
}

// Fields serialises every non-empty submittable field in a stable order.
// Empty strings are omitted; a salary that was explicitly set is sent even
// when it is zero. Timestamps, image and role are owned by the API and never
// submitted.
func (e Employee) Fields() ([]Field, error) {
	fields := make([]Field, 0, 12)
	add := func(name, value string) {
		if strings.TrimSpace(value) == "" {
			return
		}
		fields = append(fields, Field{Name: name, Value: value})
	}
	addDate := func(name, value string) error {
		if strings.TrimSpace(value) == "" {
			return nil
		}
		normalized, err := NormalizeDate(value)
		if err != nil {
			return errors.Wrap(err, name)
		}
		fields = append(fields, Field{Name: name, Value: normalized})
		return nil
	}

	add("id", e.ID)
	add("name", e.Name)
	add("email", e.Email)
	add("phone", e.Phone)
	add("address", e.Address)
	add("city", e.City)
	add("gender", string(e.Gender))
	if err := addDate("birthday", e.Birthday); err != nil {
		return nil, err
	}
	add("position", e.Position)
	add("department", string(e.Department))
	if err := addDate("hireDate", e.HireDate); err != nil {
		return nil, err
	}
	if e.Salary != nil {
		fields = append(fields, Field{Name: "salary", Value: e.Salary.String()})
	}
	return fields, nil
}
