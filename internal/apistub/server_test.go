package apistub

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phillip-england/employeems/internal/apiclient"
	"github.com/phillip-england/employeems/internal/employee"
)

type harness struct {
	stub   *Server
	client *apiclient.Client
	codes  map[string]string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	logger, _ := test.NewNullLogger()
	h := &harness{codes: map[string]string{}}
	stub, err := New(Options{
		Logger:      logger,
		OnResetCode: func(email, code string) { h.codes[email] = code },
	})
	require.NoError(t, err)
	srv := httptest.NewServer(stub.Handler())
	t.Cleanup(srv.Close)
	h.stub = stub
	h.client = apiclient.New(srv.URL)
	return h
}

func (h *harness) register(t *testing.T, first, email, password string) {
	t.Helper()
	var form apiclient.Form
	form.Add("firstName", first)
	form.Add("lastName", "Tester")
	form.Add("email", email)
	form.Add("password", password)
	outcome, err := h.client.Users().Register(context.Background(), form)
	require.NoError(t, err)
	require.True(t, apiclient.IsSuccess(outcome), apiclient.MessageOr(outcome, ""))
}

func (h *harness) login(t *testing.T, email, password string) string {
	t.Helper()
	outcome, err := h.client.Users().Login(context.Background(), apiclient.Credentials{Email: email, Password: password})
	require.NoError(t, err)
	success, ok := outcome.(apiclient.Success[json.RawMessage])
	require.True(t, ok, apiclient.MessageOr(outcome, ""))
	require.NotEmpty(t, success.Token)
	return success.Token
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 40, 20))
	for x := 0; x < 40; x++ {
		for y := 0; y < 20; y++ {
			img.Set(x, y, color.RGBA{R: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestFirstAccountIsManager(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.register(t, "Mia", "mia@example.com", "secret123")
	h.register(t, "Uri", "uri@example.com", "secret123")

	managerToken := h.login(t, "mia@example.com", "secret123")
	userToken := h.login(t, "uri@example.com", "secret123")

	profile, err := h.client.Users().Profile(ctx, managerToken)
	require.NoError(t, err)
	require.IsType(t, apiclient.Success[employee.UserProfile]{}, profile)
	assert.Equal(t, employee.RoleManager, profile.(apiclient.Success[employee.UserProfile]).Data.Role)

	stats, err := h.client.Employees().HomeStats(ctx, userToken)
	require.NoError(t, err)
	data := stats.(apiclient.Success[employee.HomeStats]).Data
	assert.Equal(t, 2, data.UsersCount)
	assert.Equal(t, employee.RoleUser, data.Role)
}

func TestRegisterRejectsDuplicatesAndWeakPasswords(t *testing.T) {
	h := newHarness(t)
	h.register(t, "Mia", "mia@example.com", "secret123")

	var dup apiclient.Form
	dup.Add("firstName", "Mia")
	dup.Add("lastName", "Again")
	dup.Add("email", "MIA@example.com")
	dup.Add("password", "secret123")
	outcome, err := h.client.Users().Register(context.Background(), dup)
	require.NoError(t, err)
	assert.IsType(t, apiclient.Fail[json.RawMessage]{}, outcome)

	var weak apiclient.Form
	weak.Add("firstName", "Wes")
	weak.Add("lastName", "Weak")
	weak.Add("email", "wes@example.com")
	weak.Add("password", "short")
	outcome, err = h.client.Users().Register(context.Background(), weak)
	require.NoError(t, err)
	assert.Equal(t, "Password must be at least 8 characters", apiclient.MessageOr(outcome, ""))
}

func TestLoginFailure(t *testing.T) {
	h := newHarness(t)
	h.register(t, "Mia", "mia@example.com", "secret123")
	outcome, err := h.client.Users().Login(context.Background(), apiclient.Credentials{Email: "mia@example.com", Password: "wrong1234"})
	require.NoError(t, err)
	fail, ok := outcome.(apiclient.Fail[json.RawMessage])
	require.True(t, ok)
	assert.Equal(t, "Invalid email or password", fail.Msg)
}

func TestEmployeeLifecycle(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.register(t, "Mia", "mia@example.com", "secret123")
	h.register(t, "Uri", "uri@example.com", "secret123")
	manager := h.login(t, "mia@example.com", "secret123")
	plain := h.login(t, "uri@example.com", "secret123")

	form, err := apiclient.EmployeeForm(employee.Employee{
		Name:       "Ada Lovelace",
		Email:      "ada@example.com",
		Department: "IT",
		Birthday:   "1990-05-01",
	}, &apiclient.File{Filename: "ada.png", ContentType: "image/png", Data: pngBytes(t)})
	require.NoError(t, err)
	created, err := h.client.Employees().Create(ctx, manager, form)
	require.NoError(t, err)
	record := created.(apiclient.Success[employee.Employee]).Data
	require.NotEmpty(t, record.ID)
	assert.Equal(t, "1990-05-01T00:00:00.000Z", record.Birthday)
	require.NotEmpty(t, record.Image)

	resp, err := http.Get(record.Image)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))

	got, err := h.client.Employees().Get(ctx, plain, record.ID)
	require.NoError(t, err)
	assert.Equal(t, employee.RoleUser, got.(apiclient.Success[employee.Employee]).Data.Role)

	record.Name = "Ada King"
	update, err := apiclient.EmployeeForm(record, nil)
	require.NoError(t, err)
	updated, err := h.client.Employees().Update(ctx, plain, update)
	require.NoError(t, err)
	saved := updated.(apiclient.Success[employee.Employee]).Data
	assert.Equal(t, "Ada King", saved.Name)
	assert.Equal(t, record.Image, saved.Image)

	found, err := h.client.Employees().Search(ctx, plain, "king")
	require.NoError(t, err)
	assert.Len(t, found.(apiclient.Success[[]employee.Employee]).Data, 1)

	denied, err := h.client.Employees().Delete(ctx, plain, record.ID)
	require.NoError(t, err)
	assert.IsType(t, apiclient.Fail[json.RawMessage]{}, denied)

	deleted, err := h.client.Employees().Delete(ctx, manager, record.ID)
	require.NoError(t, err)
	assert.True(t, apiclient.IsSuccess(deleted))

	list, err := h.client.Employees().List(ctx, manager)
	require.NoError(t, err)
	success := list.(apiclient.Success[[]employee.Employee])
	assert.Empty(t, success.Data)
	assert.Equal(t, employee.RoleManager, success.Role)
}

func TestCreateRequiresNameAndEmail(t *testing.T) {
	h := newHarness(t)
	h.register(t, "Mia", "mia@example.com", "secret123")
	token := h.login(t, "mia@example.com", "secret123")

	var form apiclient.Form
	form.Add("name", "Nameless")
	outcome, err := h.client.Employees().Create(context.Background(), token, form)
	require.NoError(t, err)
	assert.Equal(t, "Name and email are required", apiclient.MessageOr(outcome, ""))
}

func TestPasswordReset(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.register(t, "Mia", "mia@example.com", "secret123")

	sent, err := h.client.Users().ForgotPassword(ctx, "mia@example.com")
	require.NoError(t, err)
	require.True(t, apiclient.IsSuccess(sent))
	code := h.codes["mia@example.com"]
	require.Len(t, code, 6)

	bad, err := h.client.Users().ResetPassword(ctx, "000000x", "newpass99")
	require.NoError(t, err)
	assert.Equal(t, "Invalid reset code", apiclient.MessageOr(bad, ""))

	ok, err := h.client.Users().ResetPassword(ctx, code, "newpass99")
	require.NoError(t, err)
	require.True(t, apiclient.IsSuccess(ok))

	h.login(t, "mia@example.com", "newpass99")

	reused, err := h.client.Users().ResetPassword(ctx, code, "another99")
	require.NoError(t, err)
	assert.False(t, apiclient.IsSuccess(reused))
}

func TestLogoutRevokesToken(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.register(t, "Mia", "mia@example.com", "secret123")
	token := h.login(t, "mia@example.com", "secret123")

	check, err := h.client.Users().Check(ctx, token)
	require.NoError(t, err)
	require.True(t, apiclient.IsSuccess(check))

	out, err := h.client.Users().Logout(ctx, token)
	require.NoError(t, err)
	require.True(t, apiclient.IsSuccess(out))

	check, err = h.client.Users().Check(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "Unauthorized", apiclient.MessageOr(check, ""))
}

func TestSeedAndSetRole(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.stub.Seed("admin@example.com", "admin12345"))
	require.NoError(t, h.stub.Seed("admin@example.com", "admin12345"))
	token := h.login(t, "admin@example.com", "admin12345")

	list, err := h.client.Employees().List(context.Background(), token)
	require.NoError(t, err)
	assert.Len(t, list.(apiclient.Success[[]employee.Employee]).Data, len(demoEmployees))

	assert.True(t, h.stub.SetRole("admin@example.com", employee.RoleUser))
	assert.False(t, h.stub.SetRole("nobody@example.com", employee.RoleUser))
}

func TestUnknownRouteUsesEnvelope(t *testing.T) {
	logger, _ := test.NewNullLogger()
	logger.SetLevel(logrus.PanicLevel)
	stub, err := New(Options{Logger: logger})
	require.NoError(t, err)
	rec := httptest.NewRecorder()
	stub.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"status":"fail","message":"Route not found"}`, rec.Body.String())
}
