package clientapp

import (
	"html/template"
	"net/http"
	"strings"

	"github.com/go-faster/errors"
	"github.com/gorilla/mux"

	"github.com/phillip-england/employeems/internal/apiclient"
	"github.com/phillip-england/employeems/internal/avatar"
	"github.com/phillip-england/employeems/internal/drafts"
	"github.com/phillip-england/employeems/internal/employee"
	"github.com/phillip-england/employeems/internal/forms"
	"github.com/phillip-england/employeems/internal/notify"
	"github.com/phillip-england/employeems/internal/session"
)

const (
	msgCheckFields    = "Please check required fields."
	msgInvalidForm    = "Invalid form submission"
	msgUpdateFailed   = "Update failed"
	msgUpdated        = "Employee updated successfully"
	msgCreated        = "Employee created successfully"
	msgCreateFailed   = "Failed to create employee. Please try again."
	msgDeleted        = "Employee has been deleted."
	msgDeleteFailed   = "Failed to delete employee."
	msgLoadFailed     = "Failed to load employee"
	msgChooseImage    = "Choose an image first"
	msgAvatarTooLarge = "Image is too large"
	msgAvatarType     = "Please choose a PNG, JPEG, GIF or WebP image"
)

func (s *Server) draftKey(r *http.Request, record string) drafts.Key {
	return drafts.Key{BrowserID: session.FromContext(r.Context()).BrowserID(), Record: record}
}

func employeePath(id string) string {
	return "/employees/" + id
}

// employeePage renders a record read-only, or in edit mode with ?edit=1. Edit
// mode resumes a draft kept from an earlier visit.
func (s *Server) employeePage(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	data := s.newPage(r, "Employee")
	record, ok := s.fetchEmployee(r, id, &data)
	if !ok {
		s.render(w, r, "employee.html", data)
		return
	}
	if r.URL.Query().Get("edit") == "" {
		data.Employee = &record
		data.Role = record.Role
		s.render(w, r, "employee.html", data)
		return
	}

	key := s.draftKey(r, id)
	previous, err := s.drafts.Draft(r.Context(), key)
	if err != nil {
		s.log(r).WithError(err).Warn("load draft")
	}
	editing := employee.View(record).BeginEdit(previous)
	editing = editing.Update(editing.Draft)
	s.renderEditing(w, r, http.StatusOK, data, editing, key, nil)
}

func (s *Server) fetchEmployee(r *http.Request, id string, data *pageData) (employee.Employee, bool) {
	token := session.FromContext(r.Context()).Token()
	outcome, err := s.api.Employees().Get(r.Context(), token, id)
	if success, ok := outcome.(apiclient.Success[employee.Employee]); ok && err == nil {
		return success.Data, true
	}
	n, _ := notify.FromOutcome(outcome, err, msgLoadFailed)
	n.Level = notify.Error
	data.notify(n)
	return employee.Employee{}, false
}

func (s *Server) renderEditing(w http.ResponseWriter, r *http.Request, status int, data pageData, editing employee.Editing, key drafts.Key, errs forms.Errors) {
	draft := editing.Draft
	data.Employee = &draft
	data.Role = editing.Record.Role
	data.Editing = true
	data.EmployeeForm = forms.FromEmployee(draft)
	data.Errors = errs
	if changes, err := editing.Changes(); err == nil {
		for _, path := range changes {
			data.Changes = append(data.Changes, strings.TrimPrefix(path, "/"))
		}
	}
	if pending := s.pendingAvatar(r, key); pending != nil {
		data.Preview = s.preview(r, *pending)
	}
	s.renderStatus(w, r, status, "employee.html", data)
}

// saveEmployee submits the edited record. Failures keep edit mode and the
// draft; success drops both and returns to the read-only view.
func (s *Server) saveEmployee(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	key := s.draftKey(r, id)
	data := s.newPage(r, "Employee")

	form, errs := s.decodeEmployee(r)
	form.ID = id
	if !errs.Any() {
		errs = form.ValidateUpdate()
	}
	draft, recErr := form.Record()
	if recErr != nil {
		errs = withError(errs, "salary", "Salary must be a number")
		draft, _ = forms.Employee{ID: id, Name: form.Name, Email: form.Email, Image: form.Image}.Record()
	}
	draft = normalizeDates(draft)
	editing := employee.Editing{Record: draft, Draft: draft}

	upload, warning := s.avatarFromRequest(r, key)
	if warning != nil {
		data.notify(*warning)
	}
	if errs.Any() {
		s.keepDraft(r, key, draft)
		data.notify(notify.Warnf(msgCheckFields))
		s.renderEditing(w, r, http.StatusUnprocessableEntity, data, editing, key, errs)
		return
	}

	payload, err := apiclient.EmployeeForm(draft, toFile(upload))
	if err != nil {
		s.keepDraft(r, key, draft)
		data.notify(notify.Warnf(msgCheckFields))
		s.renderEditing(w, r, http.StatusUnprocessableEntity, data, editing, key, forms.Errors{"birthday": "Enter a valid date"})
		return
	}
	token := session.FromContext(r.Context()).Token()
	outcome, err := s.api.Employees().Update(r.Context(), token, payload)
	if err == nil && apiclient.IsSuccess(outcome) {
		if err := s.drafts.Discard(r.Context(), key); err != nil {
			s.log(r).WithError(err).Warn("discard draft")
		}
		redirect(w, r, employeePath(id), notify.Successf(msgUpdated))
		return
	}

	s.log(r).WithError(err).WithField("employee", id).Warn("update rejected")
	n, _ := notify.FromOutcome(outcome, err, msgUpdateFailed)
	data.notify(n)
	s.keepDraft(r, key, draft)
	s.renderEditing(w, r, http.StatusOK, data, editing, key, nil)
}

// cancelEdit leaves edit mode. The posted values are kept as a draft unless
// CANCEL_RESETS_DRAFT is set or they match the stored record.
func (s *Server) cancelEdit(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	key := s.draftKey(r, id)
	form, _ := s.decodeEmployee(r)
	form.ID = id
	draft, err := form.Record()
	if err != nil {
		draft, _ = forms.Employee{ID: id, Name: form.Name, Email: form.Email, Image: form.Image}.Record()
	}
	draft = normalizeDates(draft)

	reset := s.cfg.CancelResetsDraft
	var kept *employee.Employee
	var scratch pageData
	if record, ok := s.fetchEmployee(r, id, &scratch); ok {
		_, kept = employee.View(record).BeginEdit(nil).Update(draft).Cancel(reset)
	} else if !reset {
		kept = &draft
	}

	ctx := r.Context()
	switch {
	case reset:
		err = s.drafts.Discard(ctx, key)
	case kept == nil:
		err = s.drafts.DeleteDraft(ctx, key)
	default:
		err = s.drafts.SaveDraft(ctx, key, *kept)
	}
	if err != nil {
		s.log(r).WithError(err).Warn("update draft on cancel")
	}
	redirect(w, r, employeePath(id))
}

// selectAvatar stashes a chosen image as pending and shows its preview. The
// other posted fields are kept as a draft so nothing typed is lost.
func (s *Server) selectAvatar(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	key := s.draftKey(r, id)
	back := employeePath(id) + "?edit=1"
	form, _ := s.decodeEmployee(r)
	if id == drafts.NewRecord {
		back = "/employees/new"
	} else {
		form.ID = id
	}
	if draft, err := form.Record(); err == nil {
		s.keepDraft(r, key, normalizeDates(draft))
	}

	var notes []notify.Notification
	if _, _, err := r.FormFile("avatar"); err != nil {
		notes = append(notes, notify.Warnf(msgChooseImage))
	} else if _, warning := s.avatarFromRequest(r, key); warning != nil {
		notes = append(notes, *warning)
	}
	redirect(w, r, back, notes...)
}

// deleteEmployee only acts when the fetched record grants the manager role.
func (s *Server) deleteEmployee(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var scratch pageData
	record, ok := s.fetchEmployee(r, id, &scratch)
	if !ok {
		redirect(w, r, employeePath(id), scratch.Notifications...)
		return
	}
	if !employee.CanDelete(record.Role) {
		redirect(w, r, employeePath(id))
		return
	}

	token := session.FromContext(r.Context()).Token()
	outcome, err := s.api.Employees().Delete(r.Context(), token, id)
	if err == nil && apiclient.IsSuccess(outcome) {
		if err := s.drafts.Discard(r.Context(), s.draftKey(r, id)); err != nil {
			s.log(r).WithError(err).Warn("discard draft")
		}
		redirect(w, r, "/employees", notify.Successf(msgDeleted))
		return
	}
	s.log(r).WithError(err).WithField("employee", id).Warn("delete rejected")
	n, _ := notify.FromOutcome(outcome, err, msgDeleteFailed)
	redirect(w, r, employeePath(id), n)
}

func (s *Server) newEmployeePage(w http.ResponseWriter, r *http.Request) {
	key := s.draftKey(r, drafts.NewRecord)
	data := s.newPage(r, "Add employee")
	draft, err := s.drafts.Draft(r.Context(), key)
	if err != nil {
		s.log(r).WithError(err).Warn("load draft")
	}
	if draft != nil {
		data.EmployeeForm = forms.FromEmployee(*draft)
	}
	if pending := s.pendingAvatar(r, key); pending != nil {
		data.Preview = s.preview(r, *pending)
	}
	s.render(w, r, "employee_new.html", data)
}

// createEmployee validates every field before calling the API. On success the
// form is reset; on failure the values stay in place.
func (s *Server) createEmployee(w http.ResponseWriter, r *http.Request) {
	key := s.draftKey(r, drafts.NewRecord)
	data := s.newPage(r, "Add employee")
	form, errs := s.decodeEmployee(r)
	form.ID = ""
	if !errs.Any() {
		errs = form.ValidateCreate()
	}
	data.EmployeeForm = form
	data.Errors = errs

	upload, warning := s.avatarFromRequest(r, key)
	if warning != nil {
		data.notify(*warning)
	}
	if upload != nil {
		data.Preview = s.preview(r, *upload)
	}
	if errs.Any() {
		s.renderStatus(w, r, http.StatusUnprocessableEntity, "employee_new.html", data)
		return
	}

	rec, err := form.Record()
	if err != nil {
		data.notify(notify.Warnf(msgCheckFields))
		s.renderStatus(w, r, http.StatusUnprocessableEntity, "employee_new.html", data)
		return
	}
	payload, err := apiclient.EmployeeForm(rec, toFile(upload))
	if err != nil {
		data.Errors = forms.Errors{"birthday": "Enter a valid date"}
		data.notify(notify.Warnf(msgCheckFields))
		s.renderStatus(w, r, http.StatusUnprocessableEntity, "employee_new.html", data)
		return
	}

	token := session.FromContext(r.Context()).Token()
	outcome, err := s.api.Employees().Create(r.Context(), token, payload)
	if err == nil && apiclient.IsSuccess(outcome) {
		if err := s.drafts.Discard(r.Context(), key); err != nil {
			s.log(r).WithError(err).Warn("discard draft")
		}
		redirect(w, r, "/employees/new", notify.Successf(msgCreated))
		return
	}
	s.log(r).WithError(err).Warn("create rejected")
	n, _ := notify.FromOutcome(outcome, err, msgCreateFailed)
	data.notify(n)
	s.render(w, r, "employee_new.html", data)
}

func (s *Server) decodeEmployee(r *http.Request) (forms.Employee, forms.Errors) {
	var form forms.Employee
	if err := decodeForm(r, s.cfg.MaxUploadSize, &form); err != nil {
		s.log(r).WithError(err).Info("unreadable form")
		return form, forms.Errors{"_": msgInvalidForm}
	}
	return form, nil
}

func withError(errs forms.Errors, field, msg string) forms.Errors {
	if errs == nil {
		errs = forms.Errors{}
	}
	if !errs.Has(field) {
		errs[field] = msg
	}
	return errs
}

// normalizeDates stores dates the way the API returns them so a draft only
// differs from its record where the user changed something.
func normalizeDates(e employee.Employee) employee.Employee {
	if v, err := employee.NormalizeDate(e.Birthday); err == nil {
		e.Birthday = v
	}
	if v, err := employee.NormalizeDate(e.HireDate); err == nil {
		e.HireDate = v
	}
	return e
}

func (s *Server) keepDraft(r *http.Request, key drafts.Key, draft employee.Employee) {
	if err := s.drafts.SaveDraft(r.Context(), key, draft); err != nil {
		s.log(r).WithError(err).Warn("save draft")
	}
}

// avatarFromRequest returns the image posted with this request, stashing it
// as pending, or else the image stashed earlier. A rejected upload yields a
// warning and falls back to the stashed image.
func (s *Server) avatarFromRequest(r *http.Request, key drafts.Key) (*avatar.Pending, *notify.Notification) {
	upload, warning := s.avatarUpload(r)
	if upload == nil {
		return s.pendingAvatar(r, key), warning
	}
	if err := s.drafts.SaveAvatar(r.Context(), key, *upload); err != nil {
		s.log(r).WithError(err).Warn("save pending avatar")
	}
	return upload, nil
}

func (s *Server) pendingAvatar(r *http.Request, key drafts.Key) *avatar.Pending {
	p, err := s.drafts.LoadAvatar(r.Context(), key)
	if err != nil {
		if !errors.Is(err, drafts.ErrNotFound) {
			s.log(r).WithError(err).Warn("load pending avatar")
		}
		return nil
	}
	return &p
}

// preview returns the thumbnail data URL, trusted for use in an img src.
func (s *Server) preview(r *http.Request, p avatar.Pending) template.URL {
	url, err := avatar.Preview(p)
	if err != nil {
		s.log(r).WithError(err).Warn("render avatar preview")
		return ""
	}
	return template.URL(url)
}

func toFile(p *avatar.Pending) *apiclient.File {
	if p == nil {
		return nil
	}
	return &apiclient.File{Field: "avatar", Filename: p.Filename, ContentType: p.ContentType, Data: p.Data}
}

func avatarMessage(err error) string {
	if errors.Is(err, avatar.ErrTooLarge) {
		return msgAvatarTooLarge
	}
	return msgAvatarType
}
