package apistub

import (
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/phillip-england/employeems/internal/employee"
	"github.com/phillip-england/employeems/internal/security"
)

func salary(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

var demoEmployees = []employee.Employee{
	{Name: "Ada Lovelace", Email: "ada@example.com", Phone: "555-0101", Address: "12 Analytical Way", City: "London", Gender: employee.GenderFemale, Birthday: "1990-12-10T00:00:00.000Z", Position: "Lead Engineer", Department: "IT", HireDate: "2019-03-01T00:00:00.000Z", Salary: salary(132000)},
	{Name: "Grace Hopper", Email: "grace@example.com", Phone: "555-0102", Address: "1 Compiler Ct", City: "Arlington", Gender: employee.GenderFemale, Birthday: "1986-12-09T00:00:00.000Z", Position: "Operations Director", Department: "Operations", HireDate: "2017-06-15T00:00:00.000Z", Salary: salary(145000)},
	{Name: "Alan Turing", Email: "alan@example.com", Phone: "555-0103", Address: "7 Enigma Rd", City: "Manchester", Gender: employee.GenderMale, Birthday: "1992-06-23T00:00:00.000Z", Position: "Analyst", Department: "Finance", HireDate: "2021-01-11T00:00:00.000Z", Salary: salary(98000)},
	{Name: "Katherine Johnson", Email: "katherine@example.com", Phone: "555-0104", Address: "3 Orbit Ave", City: "Hampton", Gender: employee.GenderFemale, Birthday: "1988-08-26T00:00:00.000Z", Position: "Account Manager", Department: "Sales", HireDate: "2020-09-01T00:00:00.000Z", Salary: salary(87000)},
	{Name: "Linus Torvalds", Email: "linus@example.com", Phone: "555-0105", Address: "28 Kernel St", City: "Portland", Gender: employee.GenderMale, Birthday: "1993-12-28T00:00:00.000Z", Position: "Support Engineer", Department: "Customer Support", Salary: salary(72000)},
}

// Seed creates a manager account and a handful of employees. Seeding an
// existing account is a no-op for the account.
func (s *Server) Seed(adminEmail, adminPassword string) error {
	if adminEmail != "" {
		if _, exists := s.store.userByEmail(adminEmail); !exists {
			hash, err := security.HashPassword(adminPassword)
			if err != nil {
				return errors.Wrap(err, "hash admin password")
			}
			s.store.addUser(user{
				FirstName:    "Admin",
				LastName:     "User",
				Email:        adminEmail,
				PasswordHash: hash,
				Role:         employee.RoleManager,
			})
		}
	}
	if s.store.employeeCount() > 0 {
		return nil
	}
	for _, e := range demoEmployees {
		s.store.createEmployee(e)
	}
	return nil
}
