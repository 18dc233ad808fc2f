package employee

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fieldMap(fields []Field) map[string]string {
	out := make(map[string]string, len(fields))
	for _, f := range fields {
		out[f.Name] = f.Value
	}
	return out
}

func TestFieldsOmitsEmptyValues(t *testing.T) {
	e := Employee{ID: "e1", Name: "Ada", Email: "ada@example.com", Phone: "", City: "  "}

	fields, err := e.Fields()
	require.NoError(t, err)

	got := fieldMap(fields)
	assert.Equal(t, map[string]string{"id": "e1", "name": "Ada", "email": "ada@example.com"}, got)
}

func TestFieldsKeepsExplicitZeroSalary(t *testing.T) {
	zero := decimal.Zero
	e := Employee{Name: "Ada", Email: "ada@example.com", Salary: &zero}

	fields, err := e.Fields()
	require.NoError(t, err)
	assert.Equal(t, "0", fieldMap(fields)["salary"])

	e.Salary = nil
	fields, err = e.Fields()
	require.NoError(t, err)
	_, ok := fieldMap(fields)["salary"]
	assert.False(t, ok)
}

func TestFieldsNormalizesDates(t *testing.T) {
	e := Employee{Name: "Ada", Email: "ada@example.com", Birthday: "1990-05-01", HireDate: "2020-01-15T10:30:00Z"}

	fields, err := e.Fields()
	require.NoError(t, err)

	got := fieldMap(fields)
	assert.Equal(t, "1990-05-01T00:00:00.000Z", got["birthday"])
	assert.Equal(t, "2020-01-15T10:30:00.000Z", got["hireDate"])
}

func TestFieldsRejectsInvalidDate(t *testing.T) {
	_, err := Employee{Name: "Ada", Email: "a@b.co", Birthday: "yesterday"}.Fields()
	require.Error(t, err)
}

func TestFieldsOrderIsStable(t *testing.T) {
	salary := decimal.NewFromInt(5000)
	e := Employee{
		ID: "1", Name: "n", Email: "e", Phone: "p", Address: "a", City: "c",
		Gender: GenderFemale, Birthday: "2000-01-01", Position: "dev",
		Department: "IT", HireDate: "2021-02-03", Salary: &salary,
		Image: "http://img", Role: RoleManager,
	}
	fields, err := e.Fields()
	require.NoError(t, err)

	names := make([]string, 0, len(fields))
	for _, f := range fields {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{
		"id", "name", "email", "phone", "address", "city", "gender",
		"birthday", "position", "department", "hireDate", "salary",
	}, names)
}

func TestValidateRequired(t *testing.T) {
	require.ErrorIs(t, ValidateRequired(Employee{Email: "a@b.co"}), ErrMissingRequired)
	require.ErrorIs(t, ValidateRequired(Employee{Name: "Ada", Email: " "}), ErrMissingRequired)
	require.NoError(t, ValidateRequired(Employee{Name: "Ada", Email: "a@b.co"}))
}

func TestRoleGates(t *testing.T) {
	assert.True(t, CanDelete("manager"))
	assert.False(t, CanDelete("employee"))
	assert.False(t, CanDelete(""))

	assert.False(t, CanCreate("user"))
	assert.True(t, CanCreate("manager"))
	assert.True(t, CanCreate(""))
}

func TestUnmarshalAcceptsDocumentID(t *testing.T) {
	var e Employee
	require.NoError(t, json.Unmarshal([]byte(`{"_id":"abc","name":"Ada","salary":1200.5}`), &e))
	assert.Equal(t, "abc", e.ID)
	assert.Equal(t, "Ada", e.Name)
	require.NotNil(t, e.Salary)
	assert.Equal(t, "1200.5", e.Salary.String())

	var u UserProfile
	require.NoError(t, json.Unmarshal([]byte(`{"_id":"u1","firstName":"Ada","lastName":"Lovelace"}`), &u))
	assert.Equal(t, "u1", u.ID)
	assert.Equal(t, "Ada Lovelace", u.FullName())
	assert.Equal(t, "Employee", u.RoleLabel())
}

func TestUnmarshalToleratesBlankSalary(t *testing.T) {
	cases := map[string]string{
		"empty string": `{"id":"1","salary":""}`,
		"null":         `{"id":"1","salary":null}`,
		"garbage":      `{"id":"1","salary":"n/a"}`,
		"absent":       `{"id":"1"}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			var e Employee
			require.NoError(t, json.Unmarshal([]byte(body), &e))
			assert.Equal(t, "1", e.ID)
			assert.Nil(t, e.Salary)
		})
	}

	var e Employee
	require.NoError(t, json.Unmarshal([]byte(`{"id":"1","salary":"42.5"}`), &e))
	require.NotNil(t, e.Salary)
	assert.Equal(t, "42.5", e.Salary.String())
}

func TestDisplayHelpers(t *testing.T) {
	salary := decimal.RequireFromString("1234.5")
	e := Employee{Name: "ada", Gender: GenderMale, Salary: &salary, Birthday: "1990-05-01T00:00:00.000Z"}

	assert.Equal(t, "$1,234.50", e.SalaryDisplay())
	assert.Equal(t, "Male", e.GenderLabel())
	assert.Equal(t, "1990-05-01", e.BirthdayInput())
	assert.Equal(t, "A", e.Initial())
	assert.Equal(t, "May 1, 1990", DateDisplay(e.Birthday))
	assert.True(t, IsDepartment("Customer Support"))
	assert.False(t, IsDepartment("Legal"))
}

func TestEditStateKeepsCanonicalRecord(t *testing.T) {
	record := Employee{ID: "e1", Name: "Ada", Email: "ada@example.com", Role: RoleManager}
	editing := View(record).BeginEdit(nil)
	assert.Equal(t, record, editing.Draft)
	assert.False(t, editing.Dirty())

	edited := editing.Draft
	edited.Name = "Ada L."
	edited.Role = "user"
	editing = editing.Update(edited)

	assert.Equal(t, "Ada", editing.Record.Name)
	assert.Equal(t, "Ada L.", editing.Current().Name)
	assert.Equal(t, RoleManager, editing.Draft.Role)

	changes, err := editing.Changes()
	require.NoError(t, err)
	assert.Equal(t, []string{"/name"}, changes)
}

func TestEditStateCancel(t *testing.T) {
	record := Employee{ID: "e1", Name: "Ada", Email: "ada@example.com"}
	editing := View(record).BeginEdit(nil)
	draft := editing.Draft
	draft.City = "London"
	editing = editing.Update(draft)

	viewing, kept := editing.Cancel(false)
	assert.Equal(t, record, viewing.Record)
	require.NotNil(t, kept)
	assert.Equal(t, "London", kept.City)

	resumed := viewing.BeginEdit(kept)
	assert.Equal(t, "London", resumed.Draft.City)

	_, kept = resumed.Cancel(true)
	assert.Nil(t, kept)

	other := Employee{ID: "other", City: "Paris"}
	fresh := viewing.BeginEdit(&other)
	assert.Equal(t, record, fresh.Draft)
}

func TestEditStateCommit(t *testing.T) {
	editing := View(Employee{ID: "e1", Name: "Ada"}).BeginEdit(nil)
	saved := Employee{ID: "e1", Name: "Ada Lovelace", UpdatedAt: "2024-01-01T00:00:00Z"}

	viewing := editing.Commit(saved)
	assert.Equal(t, saved, viewing.Current())

	var state EditState = viewing
	_, ok := state.(Viewing)
	assert.True(t, ok)
}
