package apistub

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-faster/errors"

	"github.com/phillip-england/employeems/internal/avatar"
	"github.com/phillip-england/employeems/internal/security"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type forgotRequest struct {
	Email string `json:"email"`
}

type resetRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"newPassword"`
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	if err := s.parseForm(r); err != nil {
		writeFail(w, http.StatusBadRequest, "Invalid form data")
		return
	}
	u := user{
		FirstName: strings.TrimSpace(r.FormValue("firstName")),
		LastName:  strings.TrimSpace(r.FormValue("lastName")),
		Email:     strings.TrimSpace(r.FormValue("email")),
	}
	password := r.FormValue("password")
	if u.FirstName == "" || u.LastName == "" || u.Email == "" || password == "" {
		writeFail(w, http.StatusBadRequest, "All fields are required")
		return
	}
	if _, taken := s.store.userByEmail(u.Email); taken {
		writeFail(w, http.StatusConflict, "Email is already registered")
		return
	}
	hash, err := security.HashPassword(password)
	if err != nil {
		writeFail(w, http.StatusBadRequest, passwordMessage(err))
		return
	}
	u.PasswordHash = hash
	image, err := s.storeAvatar(r)
	if err != nil {
		writeFail(w, http.StatusBadRequest, avatarMessage(err))
		return
	}
	u.Image = image
	created, ok := s.store.addUser(u)
	if !ok {
		writeFail(w, http.StatusConflict, "Email is already registered")
		return
	}
	s.logger.WithField("user", created.ID).WithField("role", created.Role).Info("account registered")
	writeJSON(w, http.StatusCreated, envelope{Status: statusSuccess, Message: "Account created"})
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		writeFail(w, http.StatusBadRequest, "Email and password are required")
		return
	}
	u, ok := s.store.userByEmail(req.Email)
	if !ok || !security.VerifyPassword(req.Password, u.PasswordHash) {
		writeFail(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	token, err := s.issueToken(u)
	if err != nil {
		s.logger.WithError(err).Error("issue token")
		writeError(w, http.StatusInternalServerError, "Login failed")
		return
	}
	writeJSON(w, http.StatusOK, envelope{
		Status: statusSuccess,
		Data:   "Welcome back, " + u.FirstName + "!",
		Token:  token,
	})
}

func (s *Server) check(w http.ResponseWriter, r *http.Request) {
	u := currentUser(r.Context())
	writeJSON(w, http.StatusOK, envelope{Status: statusSuccess, Data: "You are already logged in as " + u.Email})
}

func (s *Server) profile(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, envelope{Status: statusSuccess, Data: currentUser(r.Context()).profile()})
}

func (s *Server) updateProfile(w http.ResponseWriter, r *http.Request) {
	if err := s.parseForm(r); err != nil {
		writeFail(w, http.StatusBadRequest, "Invalid form data")
		return
	}
	u := currentUser(r.Context())
	if v := strings.TrimSpace(r.FormValue("firstName")); v != "" {
		u.FirstName = v
	}
	if v := strings.TrimSpace(r.FormValue("lastName")); v != "" {
		u.LastName = v
	}
	if v := strings.TrimSpace(r.FormValue("email")); v != "" {
		u.Email = v
	}
	image, err := s.storeAvatar(r)
	if err != nil {
		writeFail(w, http.StatusBadRequest, avatarMessage(err))
		return
	}
	if image != "" {
		u.Image = image
	}
	if !s.store.updateUser(u) {
		writeFail(w, http.StatusConflict, "Email is already registered")
		return
	}
	writeJSON(w, http.StatusOK, envelope{Status: statusSuccess, Message: "Profile updated"})
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	if token, ok := r.Context().Value(tokenKey{}).(string); ok {
		s.store.revoke(token)
	}
	writeJSON(w, http.StatusOK, envelope{Status: statusSuccess, Message: "Logged out"})
}

func (s *Server) forgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	u, ok := s.store.userByEmail(req.Email)
	if !ok {
		writeFail(w, http.StatusNotFound, "No account found with that email")
		return
	}
	code, err := resetCode()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to send email")
		return
	}
	s.store.setResetCode(code, u.ID)
	s.onResetCode(u.Email, code)
	writeJSON(w, http.StatusOK, envelope{Status: statusSuccess, Message: "Reset code sent to " + u.Email})
}

func (s *Server) resetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := security.CheckPasswordStrength(req.NewPassword); err != nil {
		writeFail(w, http.StatusBadRequest, passwordMessage(err))
		return
	}
	userID, ok := s.store.takeResetCode(strings.TrimSpace(req.Token))
	if !ok {
		writeFail(w, http.StatusBadRequest, "Invalid reset code")
		return
	}
	u, ok := s.store.userByID(userID)
	if !ok {
		writeFail(w, http.StatusBadRequest, "Invalid reset code")
		return
	}
	hash, err := security.HashPassword(req.NewPassword)
	if err != nil {
		writeFail(w, http.StatusBadRequest, passwordMessage(err))
		return
	}
	u.PasswordHash = hash
	s.store.updateUser(u)
	writeJSON(w, http.StatusOK, envelope{Status: statusSuccess, Message: "Password has been reset"})
}

func passwordMessage(err error) string {
	switch {
	case errors.Is(err, security.ErrPasswordTooShort):
		return "Password must be at least 8 characters"
	case errors.Is(err, security.ErrPasswordComposition):
		return "Password must contain letters and numbers"
	default:
		return "Invalid password"
	}
}

func avatarMessage(err error) string {
	switch {
	case errors.Is(err, avatar.ErrTooLarge):
		return "Image is too large"
	case errors.Is(err, avatar.ErrUnsupported), errors.Is(err, avatar.ErrEmpty):
		return "Unsupported image"
	default:
		return "Invalid image"
	}
}
