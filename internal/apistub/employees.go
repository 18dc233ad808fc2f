package apistub

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/phillip-england/employeems/internal/employee"
)

func (s *Server) listEmployees(w http.ResponseWriter, r *http.Request) {
	u := currentUser(r.Context())
	writeJSON(w, http.StatusOK, envelope{
		Status: statusSuccess,
		Data:   s.store.listEmployees(""),
		Role:   u.Role,
	})
}

func (s *Server) searchEmployees(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")
	if strings.TrimSpace(query) == "" {
		writeFail(w, http.StatusBadRequest, "Search query is required")
		return
	}
	writeJSON(w, http.StatusOK, envelope{Status: statusSuccess, Data: s.store.listEmployees(query)})
}

func (s *Server) homeStats(w http.ResponseWriter, r *http.Request) {
	u := currentUser(r.Context())
	writeJSON(w, http.StatusOK, envelope{
		Status: statusSuccess,
		Data: employee.HomeStats{
			UsersCount:     s.store.userCount(),
			EmployeesCount: s.store.employeeCount(),
			Role:           u.Role,
			Avatar:         u.Image,
		},
	})
}

func (s *Server) getEmployee(w http.ResponseWriter, r *http.Request) {
	e, ok := s.store.employee(mux.Vars(r)["id"])
	if !ok {
		writeFail(w, http.StatusNotFound, "Employee not found")
		return
	}
	// The record carries the viewer's role so the client can gate deletes.
	e.Role = currentUser(r.Context()).Role
	writeJSON(w, http.StatusOK, envelope{Status: statusSuccess, Data: e})
}

func (s *Server) createEmployee(w http.ResponseWriter, r *http.Request) {
	if err := s.parseForm(r); err != nil {
		writeFail(w, http.StatusBadRequest, "Invalid form data")
		return
	}
	e, msg := employeeFromForm(r)
	if msg != "" {
		writeFail(w, http.StatusBadRequest, msg)
		return
	}
	if err := employee.ValidateRequired(e); err != nil {
		writeFail(w, http.StatusBadRequest, "Name and email are required")
		return
	}
	image, err := s.storeAvatar(r)
	if err != nil {
		writeFail(w, http.StatusBadRequest, avatarMessage(err))
		return
	}
	if image != "" {
		e.Image = image
	}
	created := s.store.createEmployee(e)
	writeJSON(w, http.StatusCreated, envelope{Status: statusSuccess, Data: created, Message: "Employee created"})
}

func (s *Server) updateEmployee(w http.ResponseWriter, r *http.Request) {
	if err := s.parseForm(r); err != nil {
		writeFail(w, http.StatusBadRequest, "Invalid form data")
		return
	}
	e, msg := employeeFromForm(r)
	if msg != "" {
		writeFail(w, http.StatusBadRequest, msg)
		return
	}
	e.ID = strings.TrimSpace(r.FormValue("id"))
	if e.ID == "" {
		writeFail(w, http.StatusBadRequest, "Employee id is required")
		return
	}
	if err := employee.ValidateRequired(e); err != nil {
		writeFail(w, http.StatusBadRequest, "Name and email are required")
		return
	}
	current, ok := s.store.employee(e.ID)
	if !ok {
		writeFail(w, http.StatusNotFound, "Employee not found")
		return
	}
	image, err := s.storeAvatar(r)
	if err != nil {
		writeFail(w, http.StatusBadRequest, avatarMessage(err))
		return
	}
	switch {
	case image != "":
		e.Image = image
	case e.Image == "":
		e.Image = current.Image
	}
	saved, ok := s.store.saveEmployee(e)
	if !ok {
		writeFail(w, http.StatusNotFound, "Employee not found")
		return
	}
	writeJSON(w, http.StatusOK, envelope{Status: statusSuccess, Data: saved, Message: "Employee updated"})
}

func (s *Server) deleteEmployee(w http.ResponseWriter, r *http.Request) {
	if currentUser(r.Context()).Role != employee.RoleManager {
		writeFail(w, http.StatusForbidden, "Only managers can delete employees")
		return
	}
	if !s.store.deleteEmployee(mux.Vars(r)["id"]) {
		writeFail(w, http.StatusNotFound, "Employee not found")
		return
	}
	writeJSON(w, http.StatusOK, envelope{Status: statusSuccess, Message: "Employee deleted"})
}

// employeeFromForm reads the multipart fields; a non-empty message reports a
// field the stub could not accept.
func employeeFromForm(r *http.Request) (employee.Employee, string) {
	field := func(name string) string { return strings.TrimSpace(r.FormValue(name)) }
	e := employee.Employee{
		Name:       field("name"),
		Email:      field("email"),
		Phone:      field("phone"),
		Address:    field("address"),
		City:       field("city"),
		Gender:     employee.Gender(field("gender")),
		Birthday:   field("birthday"),
		Position:   field("position"),
		Department: employee.Department(field("department")),
		HireDate:   field("hireDate"),
		Image:      field("image"),
	}
	if e.Gender != "" && e.Gender != employee.GenderMale && e.Gender != employee.GenderFemale {
		return e, "Gender must be male or female"
	}
	if e.Department != "" && !employee.IsDepartment(string(e.Department)) {
		return e, "Unknown department"
	}
	if raw := field("salary"); raw != "" {
		salary, err := decimal.NewFromString(raw)
		if err != nil || salary.IsNegative() {
			return e, "Salary must be a positive number"
		}
		e.Salary = &salary
	}
	return e, ""
}
