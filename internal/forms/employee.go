package forms

import (
	"strings"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/phillip-england/employeems/internal/employee"
)

// Employee is the create/edit form. Create validates every rule; updates
// only require name and email (see ValidateUpdate).
type Employee struct {
	ID         string `form:"id"`
	Name       string `form:"name" validate:"required"`
	Email      string `form:"email" validate:"required"`
	Phone      string `form:"phone" validate:"required"`
	Address    string `form:"address" validate:"required"`
	City       string `form:"city" validate:"required"`
	Gender     string `form:"gender" validate:"required,oneof=male female"`
	Birthday   string `form:"birthday" validate:"required"`
	Position   string `form:"position" validate:"required"`
	Department string `form:"department" validate:"required,department"`
	Salary     string `form:"salary" validate:"required,numeric"`
	HireDate   string `form:"hireDate"`
	// Image is the stored avatar URL, echoed back so edits keep it.
	Image string `form:"image"`
}

func (Employee) messages() messages {
	return messages{
		"gender.oneof":          "Select a gender",
		"department.department": "Select a department",
		"salary.numeric":        "Salary must be a number",
	}
}

func (e Employee) ValidateCreate() Errors {
	return Validate(e)
}

func (e Employee) ValidateUpdate() Errors {
	return Validate(e, "Name", "Email")
}

// FromEmployee fills the form from a stored record.
func FromEmployee(rec employee.Employee) Employee {
	return Employee{
		ID:         rec.ID,
		Name:       rec.Name,
		Email:      rec.Email,
		Phone:      rec.Phone,
		Address:    rec.Address,
		City:       rec.City,
		Gender:     string(rec.Gender),
		Birthday:   rec.BirthdayInput(),
		Position:   rec.Position,
		Department: string(rec.Department),
		Salary:     rec.SalaryInput(),
		HireDate:   rec.HireDateInput(),
		Image:      rec.Image,
	}
}

// Record converts the form into an Employee. A blank salary stays unset so it
// is left out of the submission; "0" is kept.
func (e Employee) Record() (employee.Employee, error) {
	rec := employee.Employee{
		ID:         e.ID,
		Name:       e.Name,
		Email:      e.Email,
		Phone:      e.Phone,
		Address:    e.Address,
		City:       e.City,
		Gender:     employee.Gender(e.Gender),
		Birthday:   e.Birthday,
		Position:   e.Position,
		Department: employee.Department(e.Department),
		HireDate:   e.HireDate,
		Image:      e.Image,
	}
	if raw := strings.TrimSpace(e.Salary); raw != "" {
		salary, err := decimal.NewFromString(raw)
		if err != nil {
			return employee.Employee{}, errors.Wrap(err, "salary")
		}
		rec.Salary = &salary
	}
	return rec, nil
}
