package clientapp

import (
	"net/http"

	"github.com/phillip-england/employeems/internal/apiclient"
	"github.com/phillip-england/employeems/internal/employee"
	"github.com/phillip-england/employeems/internal/forms"
	"github.com/phillip-england/employeems/internal/notify"
	"github.com/phillip-england/employeems/internal/session"
)

func (s *Server) loadProfile(r *http.Request, data *pageData) bool {
	token := session.FromContext(r.Context()).Token()
	outcome, err := s.api.Users().Profile(r.Context(), token)
	if success, ok := outcome.(apiclient.Success[employee.UserProfile]); ok && err == nil {
		profile := success.Data
		data.Profile = &profile
		data.Role = profile.Role
		data.Avatar = profile.Image
		return true
	}
	s.log(r).WithError(err).Warn("load profile")
	n, _ := notify.FromOutcome(outcome, err, "Failed to load profile")
	if err == nil {
		n = notify.Errorf("Failed to load profile")
	}
	data.notify(n)
	return false
}

func (s *Server) profilePage(w http.ResponseWriter, r *http.Request) {
	data := s.newPage(r, "Profile")
	s.loadProfile(r, &data)
	s.render(w, r, "profile.html", data)
}

func (s *Server) editProfilePage(w http.ResponseWriter, r *http.Request) {
	data := s.newPage(r, "Edit profile")
	data.Form = forms.Profile{}
	if s.loadProfile(r, &data) {
		data.Form = forms.Profile{FirstName: data.Profile.FirstName, LastName: data.Profile.LastName, Email: data.Profile.Email}
	}
	s.render(w, r, "profile_edit.html", data)
}

func (s *Server) updateProfile(w http.ResponseWriter, r *http.Request) {
	data := s.newPage(r, "Edit profile")
	var form forms.Profile
	if err := decodeForm(r, s.cfg.MaxUploadSize, &form); err != nil {
		data.Form = forms.Profile{}
		s.rejectForm(w, r, "profile_edit.html", data, err)
		return
	}
	data.Form = form
	data.Errors = forms.Validate(form)

	upload, warning := s.avatarUpload(r)
	if warning != nil {
		data.notify(*warning)
	}
	if data.Errors.Any() || warning != nil {
		s.renderStatus(w, r, http.StatusUnprocessableEntity, "profile_edit.html", data)
		return
	}

	var payload apiclient.Form
	payload.Add("firstName", form.FirstName)
	payload.Add("lastName", form.LastName)
	payload.Add("email", form.Email)
	payload.File = toFile(upload)

	token := session.FromContext(r.Context()).Token()
	outcome, err := s.api.Users().UpdateProfile(r.Context(), token, payload)
	if err == nil && apiclient.IsSuccess(outcome) {
		redirect(w, r, "/profile", notify.Successf("Profile updated successfully"))
		return
	}
	s.log(r).WithError(err).Warn("profile update rejected")
	n, _ := notify.FromOutcome(outcome, err, "Update failed")
	data.notify(n)
	s.render(w, r, "profile_edit.html", data)
}

// logout revokes the token upstream first; the cookie is only cleared once
// the API accepts the logout.
func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())
	outcome, err := s.api.Users().Logout(r.Context(), sess.Token())
	if err == nil && apiclient.IsSuccess(outcome) {
		sess.ClearToken()
		redirect(w, r, "/login", notify.Notification{
			Level: notify.Success,
			Title: "Logged out!",
			Text:  "You have been logged out successfully.",
		})
		return
	}
	s.log(r).WithError(err).Warn("logout rejected")
	redirect(w, r, "/profile", notify.Errorf("Something went wrong while logging out."))
}
