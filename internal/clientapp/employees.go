package clientapp

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-faster/errors"

	"github.com/phillip-england/employeems/internal/apiclient"
	"github.com/phillip-england/employeems/internal/listing"
	"github.com/phillip-england/employeems/internal/notify"
	"github.com/phillip-england/employeems/internal/session"
	"github.com/phillip-england/employeems/internal/spreadsheet"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func (s *Server) directory(r *http.Request) *listing.Directory {
	sess := session.FromContext(r.Context())
	return listing.New(s.api.Employees().Bound(sess.Token()), listing.Options{
		PageSize:               s.cfg.PageSize,
		UnifyTransportSeverity: s.cfg.UnifyTransportSeverity,
	})
}

// employeesPage fetches the collection (or the search result for q) and then
// restores the current page "at" before moving to the requested "page".
// Either value out of range leaves the page where it was.
func (s *Server) employeesPage(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	dir := s.directory(r)
	data := s.newPage(r, "All employees")
	if n, failed := dir.Search(r.Context(), query.Get("q")); failed {
		data.notify(n)
	}
	dir.GoTo(parsePositiveInt(query.Get("at"), 1))
	dir.GoTo(parsePositiveInt(query.Get("page"), 0))

	data.Directory = dir
	data.Role = dir.Role()
	s.render(w, r, "employees.html", data)
}

func (s *Server) exportEmployees(w http.ResponseWriter, r *http.Request) {
	dir := s.directory(r)
	if n, failed := dir.Search(r.Context(), r.URL.Query().Get("q")); failed {
		data := s.newPage(r, "All employees")
		data.Path = "/employees"
		data.Directory = dir
		data.notify(n)
		s.render(w, r, "employees.html", data)
		return
	}

	var buf bytes.Buffer
	if err := spreadsheet.ExportEmployees(&buf, dir.Items()); err != nil {
		s.log(r).WithError(err).Error("export employees")
		redirect(w, r, "/employees", notify.Errorf("Export failed"))
		return
	}
	filename := fmt.Sprintf("employees-%s.xlsx", s.now().Format("20060102"))
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	_, _ = w.Write(buf.Bytes())
}

// importEmployees creates one employee per spreadsheet row through the API.
// Rows without a name or email are skipped; a lost connection stops the run.
func (s *Server) importEmployees(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("file")
	if err != nil {
		redirect(w, r, "/employees", notify.Warnf("Choose a spreadsheet to import"))
		return
	}
	defer file.Close()

	rows, err := spreadsheet.ReadEmployees(io.LimitReader(file, s.cfg.MaxUploadSize), header.Filename)
	if err != nil {
		s.log(r).WithError(err).Warn("read import")
		redirect(w, r, "/employees", notify.Errorf(importMessage(err)))
		return
	}

	token := session.FromContext(r.Context()).Token()
	created := 0
	var skipped []string
	for _, row := range rows {
		if errs := row.Input.ValidateUpdate(); errs.Any() {
			skipped = append(skipped, fmt.Sprintf("row %d: name and email are required", row.Line))
			continue
		}
		rec, err := row.Input.Record()
		if err != nil {
			skipped = append(skipped, fmt.Sprintf("row %d: invalid salary", row.Line))
			continue
		}
		form, err := apiclient.EmployeeForm(rec, nil)
		if err != nil {
			skipped = append(skipped, fmt.Sprintf("row %d: invalid date", row.Line))
			continue
		}
		outcome, err := s.api.Employees().Create(r.Context(), token, form)
		if err != nil {
			s.log(r).WithError(err).Error("import aborted")
			notes := []notify.Notification{notify.Errorf(notify.NetworkError)}
			if created > 0 {
				notes = append(notes, notify.Infof(fmt.Sprintf("Imported %d employees before the connection was lost", created)))
			}
			redirect(w, r, "/employees", notes...)
			return
		}
		if apiclient.IsSuccess(outcome) {
			created++
			continue
		}
		skipped = append(skipped, fmt.Sprintf("row %d: %s", row.Line, apiclient.MessageOr(outcome, apiclient.FallbackMessage)))
	}

	var notes []notify.Notification
	if created > 0 {
		notes = append(notes, notify.Successf(fmt.Sprintf("Imported %d employees", created)))
	}
	if len(skipped) > 0 {
		notes = append(notes, notify.Warnf("Skipped "+summarize(skipped, 5)))
	}
	if len(notes) == 0 {
		notes = append(notes, notify.Infof("No employees found in the spreadsheet"))
	}
	redirect(w, r, "/employees", notes...)
}

func importMessage(err error) string {
	switch {
	case errors.Is(err, spreadsheet.ErrMissingColumns):
		return "The spreadsheet needs name and email columns"
	case errors.Is(err, spreadsheet.ErrEmptyWorksheet), errors.Is(err, spreadsheet.ErrNoWorksheet):
		return "The spreadsheet is empty"
	default:
		return "Could not read the spreadsheet"
	}
}

// summarize keeps flash cookies small when many rows fail.
func summarize(items []string, limit int) string {
	if len(items) <= limit {
		return strings.Join(items, "; ")
	}
	return fmt.Sprintf("%s; and %d more", strings.Join(items[:limit], "; "), len(items)-limit)
}
