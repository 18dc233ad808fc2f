package employee

import (
	"encoding/json"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

var Genders = []Gender{GenderMale, GenderFemale}

type Department string

var Departments = []Department{
	"HR",
	"IT",
	"Finance",
	"Marketing",
	"Sales",
	"Operations",
	"Customer Support",
	"Management",
}

func IsDepartment(value string) bool {
	for _, d := range Departments {
		if string(d) == value {
			return true
		}
	}
	return false
}

const (
	RoleManager = "manager"
	RoleUser    = "user"
)

// CanDelete gates the delete control on the role carried by the fetched record.
func CanDelete(role string) bool {
	return role == RoleManager
}

// CanCreate hides the add-employee entry points from plain users.
func CanCreate(role string) bool {
	return role != RoleUser
}

type Employee struct {
	ID         string           `json:"id,omitempty"`
	Name       string           `json:"name,omitempty"`
	Email      string           `json:"email,omitempty"`
	Phone      string           `json:"phone,omitempty"`
	Address    string           `json:"address,omitempty"`
	City       string           `json:"city,omitempty"`
	Gender     Gender           `json:"gender,omitempty"`
	Birthday   string           `json:"birthday,omitempty"`
	Position   string           `json:"position,omitempty"`
	Department Department       `json:"department,omitempty"`
	HireDate   string           `json:"hireDate,omitempty"`
	Salary     *decimal.Decimal `json:"salary,omitempty"`
	Image      string           `json:"image,omitempty"`
	Role       string           `json:"role,omitempty"`
	CreatedAt  string           `json:"createdAt,omitempty"`
	UpdatedAt  string           `json:"updatedAt,omitempty"`
}

// UnmarshalJSON accepts both "id" and the document-store style "_id". A blank
// or unparseable salary decodes as unset instead of failing the record.
func (e *Employee) UnmarshalJSON(data []byte) error {
	type plain Employee
	var raw struct {
		plain
		DocumentID string          `json:"_id"`
		Salary     json.RawMessage `json:"salary"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*e = Employee(raw.plain)
	if e.ID == "" {
		e.ID = raw.DocumentID
	}
	e.Salary = parseSalary(raw.Salary)
	return nil
}

func parseSalary(raw json.RawMessage) *decimal.Decimal {
	text := strings.Trim(strings.TrimSpace(string(raw)), `"`)
	if text == "" || text == "null" {
		return nil
	}
	value, err := decimal.NewFromString(strings.TrimSpace(text))
	if err != nil {
		return nil
	}
	return &value
}

func (e Employee) SalaryDisplay() string {
	if e.Salary == nil {
		return ""
	}
	return money.New(e.Salary.Shift(2).Round(0).IntPart(), money.USD).Display()
}

func (e Employee) SalaryInput() string {
	if e.Salary == nil {
		return ""
	}
	return e.Salary.String()
}

func (e Employee) GenderLabel() string {
	return titleCase(string(e.Gender))
}

func (e Employee) BirthdayInput() string {
	return DateInput(e.Birthday)
}

func (e Employee) HireDateInput() string {
	return DateInput(e.HireDate)
}

func (e Employee) Initial() string {
	name := strings.TrimSpace(e.Name)
	if name == "" {
		return "?"
	}
	return strings.ToUpper(string([]rune(name)[:1]))
}

type UserProfile struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Image     string `json:"image,omitempty"`
	Role      string `json:"role"`
}

func (u *UserProfile) UnmarshalJSON(data []byte) error {
	type plain UserProfile
	var raw struct {
		plain
		DocumentID string `json:"_id"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*u = UserProfile(raw.plain)
	if u.ID == "" {
		u.ID = raw.DocumentID
	}
	return nil
}

func (u UserProfile) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

func (u UserProfile) RoleLabel() string {
	if strings.TrimSpace(u.Role) == "" {
		return "Employee"
	}
	return titleCase(u.Role)
}

type HomeStats struct {
	UsersCount     int    `json:"usersCount"`
	EmployeesCount int    `json:"employeesCount"`
	Role           string `json:"role"`
	Avatar         string `json:"avatar"`
}

func titleCase(value string) string {
	return cases.Title(language.English).String(strings.TrimSpace(value))
}
