package clientapp

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-faster/errors"

	"github.com/phillip-england/employeems/internal/apiclient"
	"github.com/phillip-england/employeems/internal/avatar"
	"github.com/phillip-england/employeems/internal/forms"
	"github.com/phillip-england/employeems/internal/notify"
	"github.com/phillip-england/employeems/internal/session"
)

// dataText reads a success payload that is a plain JSON string.
func dataText(raw json.RawMessage, fallback string) string {
	var text string
	if err := json.Unmarshal(raw, &text); err != nil || strings.TrimSpace(text) == "" {
		return fallback
	}
	return text
}

// checkSession asks the API whether a stored token is still valid. A valid
// token sends the visitor home; an invalid one is dropped silently.
func (s *Server) checkSession(w http.ResponseWriter, r *http.Request) bool {
	sess := session.FromContext(r.Context())
	if !sess.Authenticated() {
		return false
	}
	outcome, err := s.api.Users().Check(r.Context(), sess.Token())
	if success, ok := outcome.(apiclient.Success[json.RawMessage]); ok && err == nil {
		redirect(w, r, "/", notify.Infof(dataText(success.Data, "You are already logged in")))
		return true
	}
	sess.ClearToken()
	return false
}

func (s *Server) loginPage(w http.ResponseWriter, r *http.Request) {
	if s.checkSession(w, r) {
		return
	}
	data := s.newPage(r, "Login")
	data.Form = forms.Login{}
	s.render(w, r, "login.html", data)
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	data := s.newPage(r, "Login")
	var form forms.Login
	if err := decodeForm(r, 0, &form); err != nil {
		data.Form = forms.Login{}
		s.rejectForm(w, r, "login.html", data, err)
		return
	}
	data.Form = forms.Login{Email: form.Email}
	if errs := forms.Validate(form); errs.Any() {
		data.notify(notify.Warnf("Please fill all fields"))
		s.renderStatus(w, r, http.StatusUnprocessableEntity, "login.html", data)
		return
	}

	outcome, err := s.api.Users().Login(r.Context(), apiclient.Credentials{Email: form.Email, Password: form.Password})
	if success, ok := outcome.(apiclient.Success[json.RawMessage]); ok && err == nil && success.Token != "" {
		session.FromContext(r.Context()).SetToken(success.Token)
		redirect(w, r, "/", notify.Successf(dataText(success.Data, "Login successful")))
		return
	}

	s.log(r).WithError(err).WithField("email", form.Email).Info("login rejected")
	n, failed := notify.FromOutcome(outcome, err, "Login failed")
	if !failed {
		n = notify.Warnf("Login failed")
	}
	if _, isError := outcome.(apiclient.Error[json.RawMessage]); isError && err == nil {
		n = notify.Errorf("Login error")
	}
	data.notify(n)
	s.renderStatus(w, r, http.StatusUnauthorized, "login.html", data)
}

func (s *Server) registerPage(w http.ResponseWriter, r *http.Request) {
	if s.checkSession(w, r) {
		return
	}
	data := s.newPage(r, "Register")
	data.Form = forms.Register{}
	s.render(w, r, "register.html", data)
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	data := s.newPage(r, "Register")
	var form forms.Register
	if err := decodeForm(r, s.cfg.MaxUploadSize, &form); err != nil {
		data.Form = forms.Register{}
		s.rejectForm(w, r, "register.html", data, err)
		return
	}
	data.Form = forms.Register{FirstName: form.FirstName, LastName: form.LastName, Email: form.Email}
	data.Errors = forms.Validate(form)

	upload, warning := s.avatarUpload(r)
	if warning != nil {
		data.notify(*warning)
	}
	if data.Errors.Any() || warning != nil {
		s.renderStatus(w, r, http.StatusUnprocessableEntity, "register.html", data)
		return
	}

	var payload apiclient.Form
	payload.Add("firstName", form.FirstName)
	payload.Add("lastName", form.LastName)
	payload.Add("email", form.Email)
	payload.Add("password", form.Password)
	payload.File = toFile(upload)

	outcome, err := s.api.Users().Register(r.Context(), payload)
	if err == nil && apiclient.IsSuccess(outcome) {
		redirect(w, r, "/login", notify.Successf("Account created successfully!"))
		return
	}
	s.log(r).WithError(err).Info("registration rejected")
	n, _ := notify.FromOutcome(outcome, err, "Registration failed")
	data.notify(n)
	s.render(w, r, "register.html", data)
}

func (s *Server) forgotPasswordPage(w http.ResponseWriter, r *http.Request) {
	if s.checkSession(w, r) {
		return
	}
	data := s.newPage(r, "Forgot password")
	data.Form = forms.ForgotPassword{}
	s.render(w, r, "forgot_password.html", data)
}

func (s *Server) forgotPassword(w http.ResponseWriter, r *http.Request) {
	data := s.newPage(r, "Forgot password")
	var form forms.ForgotPassword
	if err := decodeForm(r, 0, &form); err != nil {
		data.Form = forms.ForgotPassword{}
		s.rejectForm(w, r, "forgot_password.html", data, err)
		return
	}
	data.Form = form
	if data.Errors = forms.Validate(form); data.Errors.Any() {
		s.renderStatus(w, r, http.StatusUnprocessableEntity, "forgot_password.html", data)
		return
	}

	outcome, err := s.api.Users().ForgotPassword(r.Context(), form.Email)
	if err == nil && apiclient.IsSuccess(outcome) {
		redirect(w, r, "/reset-password?email="+url.QueryEscape(form.Email),
			notify.Successf(apiclient.MessageOr(outcome, "Reset code sent successfully")))
		return
	}
	n, _ := notify.FromOutcome(outcome, err, "Failed to send email")
	if _, isError := outcome.(apiclient.Error[json.RawMessage]); isError && err == nil {
		n = notify.Errorf(notify.ServerError)
	}
	data.notify(n)
	s.render(w, r, "forgot_password.html", data)
}

func (s *Server) resetPasswordPage(w http.ResponseWriter, r *http.Request) {
	if s.checkSession(w, r) {
		return
	}
	data := s.newPage(r, "Reset password")
	data.Form = forms.ResetPassword{Email: r.URL.Query().Get("email")}
	s.render(w, r, "reset_password.html", data)
}

func (s *Server) resetPassword(w http.ResponseWriter, r *http.Request) {
	data := s.newPage(r, "Reset password")
	var form forms.ResetPassword
	if err := decodeForm(r, 0, &form); err != nil {
		data.Form = forms.ResetPassword{}
		s.rejectForm(w, r, "reset_password.html", data, err)
		return
	}
	data.Form = forms.ResetPassword{Email: form.Email, Code: form.Code}
	if data.Errors = forms.Validate(form); data.Errors.Any() {
		s.renderStatus(w, r, http.StatusUnprocessableEntity, "reset_password.html", data)
		return
	}

	outcome, err := s.api.Users().ResetPassword(r.Context(), form.Code, form.NewPassword)
	if err == nil && apiclient.IsSuccess(outcome) {
		redirect(w, r, "/login", notify.Successf(apiclient.MessageOr(outcome, "Password reset successfully!")))
		return
	}
	n, _ := notify.FromOutcome(outcome, err, "Invalid reset code")
	data.notify(n)
	s.render(w, r, "reset_password.html", data)
}

// avatarUpload reads an optional "avatar" file. A rejected file yields a
// warning instead of an error page.
func (s *Server) avatarUpload(r *http.Request) (*avatar.Pending, *notify.Notification) {
	file, header, err := r.FormFile("avatar")
	if err != nil {
		if !errors.Is(err, http.ErrMissingFile) && !errors.Is(err, http.ErrNotMultipart) {
			s.log(r).WithError(err).Warn("read avatar field")
		}
		return nil, nil
	}
	defer file.Close()
	pending, err := avatar.Read(file, header.Filename, s.cfg.MaxUploadSize)
	if err != nil {
		n := notify.Warnf(avatarMessage(err))
		return nil, &n
	}
	return &pending, nil
}
