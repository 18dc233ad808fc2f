package apiclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/phillip-england/employeems/internal/employee"
)

// Employees wraps the /employee endpoints.
type Employees struct {
	c *Client
}

func (e Employees) List(ctx context.Context, token string) (Outcome[[]employee.Employee], error) {
	return call[[]employee.Employee](ctx, e.c, request{endpoint: "employee.list", method: http.MethodGet, path: "/employee", token: token})
}

// Search forwards the raw query; blank queries are the caller's concern.
func (e Employees) Search(ctx context.Context, token, query string) (Outcome[[]employee.Employee], error) {
	path := "/employee/search?query=" + url.QueryEscape(query)
	return call[[]employee.Employee](ctx, e.c, request{endpoint: "employee.search", method: http.MethodGet, path: path, token: token})
}

func (e Employees) Get(ctx context.Context, token, id string) (Outcome[employee.Employee], error) {
	path := "/employee/" + url.PathEscape(id)
	return call[employee.Employee](ctx, e.c, request{endpoint: "employee.get", method: http.MethodGet, path: path, token: token})
}

func (e Employees) Create(ctx context.Context, token string, form Form) (Outcome[employee.Employee], error) {
	req, err := formRequest("employee.create", http.MethodPost, "/employee/create", token, form)
	if err != nil {
		return nil, err
	}
	return call[employee.Employee](ctx, e.c, req)
}

// Update submits the full record; form must carry the id field.
func (e Employees) Update(ctx context.Context, token string, form Form) (Outcome[employee.Employee], error) {
	req, err := formRequest("employee.update", http.MethodPut, "/employee/update", token, form)
	if err != nil {
		return nil, err
	}
	return call[employee.Employee](ctx, e.c, req)
}

func (e Employees) Delete(ctx context.Context, token, id string) (Outcome[json.RawMessage], error) {
	path := "/employee/" + url.PathEscape(id)
	return call[json.RawMessage](ctx, e.c, request{endpoint: "employee.delete", method: http.MethodDelete, path: path, token: token})
}

func (e Employees) HomeStats(ctx context.Context, token string) (Outcome[employee.HomeStats], error) {
	return call[employee.HomeStats](ctx, e.c, request{endpoint: "employee.home_stats", method: http.MethodGet, path: "/employee/home_stats", token: token})
}

// Bound pins a token so the listing can pull pages for one browser session.
func (e Employees) Bound(token string) BoundEmployees {
	return BoundEmployees{employees: e, token: token}
}

type BoundEmployees struct {
	employees Employees
	token     string
}

func (b BoundEmployees) List(ctx context.Context) (Outcome[[]employee.Employee], error) {
	return b.employees.List(ctx, b.token)
}

func (b BoundEmployees) Search(ctx context.Context, query string) (Outcome[[]employee.Employee], error) {
	return b.employees.Search(ctx, b.token, query)
}
