package apiclient

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/phillip-england/employeems/internal/employee"
)

// Users wraps the /user endpoints.
type Users struct {
	c *Client
}

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type resetPayload struct {
	Token       string `json:"token"`
	NewPassword string `json:"newPassword"`
}

func (u Users) Register(ctx context.Context, form Form) (Outcome[json.RawMessage], error) {
	req, err := formRequest("user.register", http.MethodPost, "/user/register", "", form)
	if err != nil {
		return nil, err
	}
	return call[json.RawMessage](ctx, u.c, req)
}

// Login yields the session token in Success.Token.
func (u Users) Login(ctx context.Context, creds Credentials) (Outcome[json.RawMessage], error) {
	req, err := jsonRequest("user.login", http.MethodPost, "/user/login", "", creds)
	if err != nil {
		return nil, err
	}
	return call[json.RawMessage](ctx, u.c, req)
}

func (u Users) Check(ctx context.Context, token string) (Outcome[json.RawMessage], error) {
	return call[json.RawMessage](ctx, u.c, request{endpoint: "user.check", method: http.MethodGet, path: "/user/check", token: token})
}

func (u Users) Profile(ctx context.Context, token string) (Outcome[employee.UserProfile], error) {
	return call[employee.UserProfile](ctx, u.c, request{endpoint: "user.profile", method: http.MethodGet, path: "/user/profile", token: token})
}

func (u Users) UpdateProfile(ctx context.Context, token string, form Form) (Outcome[json.RawMessage], error) {
	req, err := formRequest("user.profile_update", http.MethodPut, "/user/profile", token, form)
	if err != nil {
		return nil, err
	}
	return call[json.RawMessage](ctx, u.c, req)
}

func (u Users) Logout(ctx context.Context, token string) (Outcome[json.RawMessage], error) {
	return call[json.RawMessage](ctx, u.c, request{endpoint: "user.logout", method: http.MethodGet, path: "/user/logout", token: token})
}

func (u Users) ForgotPassword(ctx context.Context, email string) (Outcome[json.RawMessage], error) {
	req, err := jsonRequest("user.forgot_password", http.MethodPost, "/user/forgot-password", "", map[string]string{"email": email})
	if err != nil {
		return nil, err
	}
	return call[json.RawMessage](ctx, u.c, req)
}

// ResetPassword sends the emailed code as "token".
func (u Users) ResetPassword(ctx context.Context, code, newPassword string) (Outcome[json.RawMessage], error) {
	req, err := jsonRequest("user.reset_password", http.MethodPost, "/user/reset-password", "", resetPayload{Token: code, NewPassword: newPassword})
	if err != nil {
		return nil, err
	}
	return call[json.RawMessage](ctx, u.c, req)
}
