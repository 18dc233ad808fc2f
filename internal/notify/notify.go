// Package notify carries user-facing notifications across redirects.
package notify

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"time"
)

type Level string

const (
	Success Level = "success"
	Info    Level = "info"
	Warning Level = "warning"
	Error   Level = "error"
)

type Notification struct {
	Level Level  `json:"level"`
	Title string `json:"title,omitempty"`
	Text  string `json:"text"`
}

func New(level Level, text string) Notification {
	return Notification{Level: level, Text: text}
}

func Successf(text string) Notification { return New(Success, text) }
func Infof(text string) Notification    { return New(Info, text) }
func Warnf(text string) Notification    { return New(Warning, text) }
func Errorf(text string) Notification   { return New(Error, text) }

// Heading is the toast title; it defaults to the level name.
func (n Notification) Heading() string {
	if n.Title != "" {
		return n.Title
	}
	switch n.Level {
	case Success:
		return "Success"
	case Warning:
		return "Warning"
	case Error:
		return "Error"
	default:
		return "Info"
	}
}

const cookieName = "ems_flash"

// Push queues notifications for the next rendered page.
func Push(w http.ResponseWriter, notes ...Notification) {
	if len(notes) == 0 {
		return
	}
	payload, err := json.Marshal(notes)
	if err != nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    base64.URLEncoding.EncodeToString(payload),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// Pop returns the queued notifications and expires the cookie.
func Pop(w http.ResponseWriter, r *http.Request) []Notification {
	cookie, err := r.Cookie(cookieName)
	if err != nil {
		return fromQuery(r)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(1, 0),
		HttpOnly: true,
	})
	raw, err := base64.URLEncoding.DecodeString(cookie.Value)
	if err != nil {
		return nil
	}
	var notes []Notification
	if err := json.Unmarshal(raw, &notes); err != nil {
		return nil
	}
	return notes
}

// fromQuery accepts ?error= and ?message= for links built outside a handler.
func fromQuery(r *http.Request) []Notification {
	var notes []Notification
	q := r.URL.Query()
	if msg := q.Get("error"); msg != "" {
		notes = append(notes, Errorf(msg))
	}
	if msg := q.Get("message"); msg != "" {
		notes = append(notes, Successf(msg))
	}
	return notes
}
