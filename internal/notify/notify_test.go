package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phillip-england/employeems/internal/apiclient"
)

func TestPushPopRoundTrip(t *testing.T) {
	rec := httptest.NewRecorder()
	Push(rec, Successf("Employee created successfully"), Warnf("Please check required fields."))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}

	popRec := httptest.NewRecorder()
	notes := Pop(popRec, req)
	require.Len(t, notes, 2)
	assert.Equal(t, Success, notes[0].Level)
	assert.Equal(t, "Please check required fields.", notes[1].Text)
	assert.Equal(t, "Warning", notes[1].Heading())

	expired := popRec.Result().Cookies()
	require.Len(t, expired, 1)
	assert.Less(t, expired[0].MaxAge, 0)
}

func TestPopWithoutCookie(t *testing.T) {
	assert.Empty(t, Pop(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil)))

	notes := Pop(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/?error=Session+expired", nil))
	require.Len(t, notes, 1)
	assert.Equal(t, Error, notes[0].Level)
	assert.Equal(t, "Session expired", notes[0].Text)
}

func TestFromOutcome(t *testing.T) {
	_, ok := FromOutcome[json.RawMessage](apiclient.Success[json.RawMessage]{}, nil, "x")
	assert.False(t, ok)

	n, ok := FromOutcome[json.RawMessage](apiclient.Fail[json.RawMessage]{Msg: "Invalid code"}, nil, "x")
	require.True(t, ok)
	assert.Equal(t, Notification{Level: Warning, Text: "Invalid code"}, n)

	n, ok = FromOutcome[json.RawMessage](apiclient.Error[json.RawMessage]{}, nil, ServerError)
	require.True(t, ok)
	assert.Equal(t, Notification{Level: Error, Text: ServerError}, n)

	// A real transport failure from a closed server.
	srv := httptest.NewServer(http.NotFoundHandler())
	client := apiclient.New(srv.URL)
	srv.Close()
	outcome, err := client.Users().Check(context.Background(), "tok")
	n, ok = FromOutcome(outcome, err, "x")
	require.True(t, ok)
	assert.Equal(t, NetworkError, n.Text)

	n, ok = FromOutcome[json.RawMessage](nil, errors.New("build request"), "Update failed")
	require.True(t, ok)
	assert.Equal(t, "Update failed", n.Text)
}
