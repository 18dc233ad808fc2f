package clientapp

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/phillip-england/employeems/internal/apiclient"
	"github.com/phillip-england/employeems/internal/employee"
	"github.com/phillip-england/employeems/internal/notify"
	"github.com/phillip-england/employeems/internal/session"
)

func (s *Server) homePage(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())
	data := s.newPage(r, "Home")

	outcome, err := s.api.Employees().HomeStats(r.Context(), sess.Token())
	if n, failed := notify.FromOutcome(outcome, err, "Error fetching stats"); failed {
		s.log(r).WithError(err).Warn("home stats unavailable")
		if sess.Authenticated() {
			n.Level = notify.Error
			data.notify(n)
		}
	} else if success, ok := outcome.(apiclient.Success[employee.HomeStats]); ok {
		stats := success.Data
		data.Stats = &stats
		data.Role = stats.Role
		data.Avatar = stats.Avatar
	}
	s.render(w, r, "home.html", data)
}

func (s *Server) toggleTheme(w http.ResponseWriter, r *http.Request) {
	if sess := session.FromContext(r.Context()); sess != nil {
		sess.ToggleTheme()
	}
	http.Redirect(w, r, safeReturn(r.FormValue("return")), http.StatusSeeOther)
}

func parsePositiveInt(raw string, fallback int) int {
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}
