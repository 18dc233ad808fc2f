package clientapp

import (
	"bytes"
	"embed"
	"html/template"
	"io/fs"
	"net/http"
	"strings"

	"github.com/benbjohnson/hashfs"
	"github.com/go-faster/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/phillip-england/employeems/internal/employee"
	"github.com/phillip-england/employeems/internal/forms"
	"github.com/phillip-england/employeems/internal/listing"
	"github.com/phillip-england/employeems/internal/middleware"
	"github.com/phillip-england/employeems/internal/notify"
	"github.com/phillip-england/employeems/internal/security"
	"github.com/phillip-england/employeems/internal/session"
)

//go:embed templates/*.html assets/app.css
var templatesFS embed.FS

var pageFiles = []string{
	"home.html",
	"employees.html",
	"employee.html",
	"employee_new.html",
	"login.html",
	"register.html",
	"forgot_password.html",
	"reset_password.html",
	"profile.html",
	"profile_edit.html",
	"not_found.html",
}

type templateSet struct {
	tmpl *template.Template
}

func newAssets() (*hashfs.FS, error) {
	sub, err := fs.Sub(templatesFS, "assets")
	if err != nil {
		return nil, errors.Wrap(err, "open assets")
	}
	return hashfs.NewFS(sub), nil
}

func parsePages(assets *hashfs.FS) (map[string]*templateSet, error) {
	funcs := template.FuncMap{
		"asset":           func(name string) string { return "/assets/" + assets.HashName(name) },
		"add":             func(a, b int) int { return a + b },
		"sub":             func(a, b int) int { return a - b },
		"join":            strings.Join,
		"title":           func(v string) string { return cases.Title(language.English).String(v) },
		"dateDisplay":     employee.DateDisplay,
		"dateTimeDisplay": employee.DateTimeDisplay,
	}
	pages := make(map[string]*templateSet, len(pageFiles))
	for _, name := range pageFiles {
		tmpl, err := template.New(name).Funcs(funcs).ParseFS(templatesFS,
			"templates/layout.html",
			"templates/partials.html",
			"templates/"+name,
		)
		if err != nil {
			return nil, errors.Wrapf(err, "parse %s", name)
		}
		pages[name] = &templateSet{tmpl: tmpl}
	}
	return pages, nil
}

type pageData struct {
	Title         string
	Path          string
	CSRF          string
	Theme         string
	Authenticated bool
	Avatar        string
	Role          string
	Notifications []notify.Notification
	Errors        forms.Errors

	Stats        *employee.HomeStats
	Directory    *listing.Directory
	Employee     *employee.Employee
	EmployeeForm forms.Employee
	Editing      bool
	Changes      []string
	Preview      template.URL
	Profile      *employee.UserProfile
	Form         any

	Departments []employee.Department
	Genders     []employee.Gender
}

func (p pageData) CanCreate() bool { return employee.CanCreate(p.Role) }

func (p pageData) CanDelete() bool {
	return p.Employee != nil && !p.Editing && employee.CanDelete(p.Employee.Role)
}

func (s *Server) newPage(r *http.Request, title string) pageData {
	data := pageData{
		Title:       title,
		Path:        r.URL.Path,
		CSRF:        security.CSRFToken(r.Context()),
		Theme:       session.ThemeLight,
		Departments: employee.Departments,
		Genders:     employee.Genders,
	}
	if sess := session.FromContext(r.Context()); sess != nil {
		data.Theme = sess.Theme()
		data.Authenticated = sess.Authenticated()
	}
	return data
}

// notify appends an inline notification to the page about to render.
func (p *pageData) notify(notes ...notify.Notification) {
	p.Notifications = append(p.Notifications, notes...)
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, page string, data pageData) {
	s.renderStatus(w, r, http.StatusOK, page, data)
}

func (s *Server) renderStatus(w http.ResponseWriter, r *http.Request, status int, page string, data pageData) {
	data.Notifications = append(notify.Pop(w, r), data.Notifications...)
	set, ok := s.pages[page]
	if !ok {
		http.Error(w, "template render failed", http.StatusInternalServerError)
		return
	}
	if err := renderHTMLTemplate(w, set.tmpl, status, data); err != nil {
		http.Error(w, "template render failed", http.StatusInternalServerError)
		middleware.UseLogger(r.Context()).WithError(err).WithField("page", page).Error("template render failed")
	}
}

func renderHTMLTemplate(w http.ResponseWriter, tmpl *template.Template, status int, data pageData) error {
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := w.Write(buf.Bytes())
	return err
}

// redirect finishes a POST with a flash and a 303 to the next page.
func redirect(w http.ResponseWriter, r *http.Request, path string, notes ...notify.Notification) {
	notify.Push(w, notes...)
	status := http.StatusFound
	if r.Method != http.MethodGet {
		status = http.StatusSeeOther
	}
	http.Redirect(w, r, path, status)
}

func (s *Server) log(r *http.Request) *logrus.Entry {
	return middleware.UseLogger(r.Context())
}

func (s *Server) notFound(w http.ResponseWriter, r *http.Request) {
	s.renderStatus(w, r, http.StatusNotFound, "not_found.html", s.newPage(r, "Not found"))
}

// safeReturn keeps theme-toggle redirects on this site.
func safeReturn(path string) string {
	if !strings.HasPrefix(path, "/") || strings.HasPrefix(path, "//") || strings.HasPrefix(path, "/\\") {
		return "/"
	}
	return path
}

// parseForm reads urlencoded and multipart bodies alike. Files beyond the
// in-memory limit spill to disk.
func parseForm(r *http.Request, maxUpload int64) error {
	err := r.ParseMultipartForm(maxUpload + 1<<20)
	if err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return err
	}
	return nil
}

// decodeForm parses the request body and decodes it into dst.
func decodeForm(r *http.Request, maxUpload int64, dst any) error {
	if err := parseForm(r, maxUpload); err != nil {
		return err
	}
	return forms.Decode(dst, r.PostForm)
}

// rejectForm answers a body that could not be read or decoded.
func (s *Server) rejectForm(w http.ResponseWriter, r *http.Request, name string, data pageData, err error) {
	s.log(r).WithError(err).Info("unreadable form")
	data.notify(notify.Warnf(msgInvalidForm))
	s.renderStatus(w, r, http.StatusBadRequest, name, data)
}
