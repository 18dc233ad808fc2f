// Package listing implements the employee directory: one fetched collection,
// an optional search filter, and client-side pagination over the result.
package listing

import (
	"context"
	"strings"

	"github.com/phillip-england/employeems/internal/apiclient"
	"github.com/phillip-england/employeems/internal/employee"
	"github.com/phillip-england/employeems/internal/notify"
)

const (
	DefaultPageSize = 3

	unreachable = "Cannot connect to server"
)

// Source fetches the collection for one session.
type Source interface {
	List(ctx context.Context) (apiclient.Outcome[[]employee.Employee], error)
	Search(ctx context.Context, query string) (apiclient.Outcome[[]employee.Employee], error)
}

type Options struct {
	PageSize int
	// UnifyTransportSeverity reports search transport failures as errors
	// instead of warnings.
	UnifyTransportSeverity bool
}

type Directory struct {
	source   Source
	pageSize int
	unify    bool

	items []employee.Employee
	page  int
	role  string
	query string
}

func New(source Source, opts Options) *Directory {
	size := opts.PageSize
	if size <= 0 {
		size = DefaultPageSize
	}
	return &Directory{source: source, pageSize: size, unify: opts.UnifyTransportSeverity, page: 1}
}

// Load fetches the full collection. Notifications are returned rather than
// shown so the caller decides how to render them.
func (d *Directory) Load(ctx context.Context) (notify.Notification, bool) {
	d.query = ""
	outcome, err := d.source.List(ctx)
	if err != nil {
		return notify.Notification{Level: notify.Error, Title: "Error", Text: unreachable}, true
	}
	if success, ok := outcome.(apiclient.Success[[]employee.Employee]); ok {
		d.role = success.Role
	}
	return d.apply(outcome)
}

// Search filters through the API. A blank query is a Load.
func (d *Directory) Search(ctx context.Context, query string) (notify.Notification, bool) {
	if strings.TrimSpace(query) == "" {
		return d.Load(ctx)
	}
	d.query = query
	outcome, err := d.source.Search(ctx, query)
	if err != nil {
		if d.unify {
			return notify.Notification{Level: notify.Error, Title: "Error", Text: unreachable}, true
		}
		return notify.Notification{Level: notify.Warning, Title: "Warning", Text: unreachable}, true
	}
	return d.apply(outcome)
}

func (d *Directory) apply(outcome apiclient.Outcome[[]employee.Employee]) (notify.Notification, bool) {
	d.page = 1
	if success, ok := outcome.(apiclient.Success[[]employee.Employee]); ok {
		d.items = success.Data
		return notify.Notification{}, false
	}
	d.items = nil
	return notify.Notification{
		Level: notify.Info,
		Title: "Unknown",
		Text:  apiclient.MessageOr(outcome, apiclient.FallbackMessage),
	}, true
}

// GoTo moves to page k. Out of range requests are ignored.
func (d *Directory) GoTo(k int) bool {
	if k < 1 || k > d.TotalPages() {
		return false
	}
	d.page = k
	return true
}

func (d *Directory) Next() bool { return d.GoTo(d.page + 1) }
func (d *Directory) Prev() bool { return d.GoTo(d.page - 1) }

func (d *Directory) Page() int     { return d.page }
func (d *Directory) PageSize() int { return d.pageSize }
func (d *Directory) Role() string  { return d.role }
func (d *Directory) Query() string { return d.query }
func (d *Directory) Len() int      { return len(d.items) }

func (d *Directory) TotalPages() int {
	return (len(d.items) + d.pageSize - 1) / d.pageSize
}

func (d *Directory) Items() []employee.Employee {
	return d.items
}

// Visible is the slice of the collection on the current page.
func (d *Directory) Visible() []employee.Employee {
	start := (d.page - 1) * d.pageSize
	if start >= len(d.items) {
		return nil
	}
	end := min(start+d.pageSize, len(d.items))
	return d.items[start:end]
}

// Pages lists the page numbers for the pager.
func (d *Directory) Pages() []int {
	pages := make([]int, d.TotalPages())
	for i := range pages {
		pages[i] = i + 1
	}
	return pages
}
