package apiclient

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/go-faster/errors"
)

const (
	StatusSuccess = "success"
	StatusFail    = "fail"
	StatusError   = "error"
)

// FallbackMessage is shown when the API answers without a usable message.
const FallbackMessage = "Unexpected server response"

var ErrTransport = errors.New("api unreachable")

// TransportError reports that no envelope could be obtained from the API.
type TransportError struct {
	Endpoint string
	Err      error
}

func (e *TransportError) Error() string {
	return "api " + e.Endpoint + ": " + e.Err.Error()
}

func (e *TransportError) Unwrap() error { return e.Err }

func (e *TransportError) Is(target error) bool { return target == ErrTransport }

// Outcome is the closed set of API results: Success, Fail or Error.
type Outcome[T any] interface {
	Message() string
	sealed(T)
}

type Success[T any] struct {
	Data  T
	Role  string
	Token string
	Msg   string
}

type Fail[T any] struct {
	Msg        string
	StatusCode int
}

type Error[T any] struct {
	Msg        string
	StatusCode int
}

func (Success[T]) sealed(T) {}
func (Fail[T]) sealed(T)    {}
func (Error[T]) sealed(T)   {}

func (s Success[T]) Message() string { return s.Msg }
func (f Fail[T]) Message() string    { return f.Msg }
func (e Error[T]) Message() string   { return e.Msg }

// Match folds an outcome into a single value; every branch must be supplied.
func Match[T, R any](o Outcome[T], onSuccess func(Success[T]) R, onFail func(Fail[T]) R, onError func(Error[T]) R) R {
	switch v := o.(type) {
	case Success[T]:
		return onSuccess(v)
	case Fail[T]:
		return onFail(v)
	case Error[T]:
		return onError(v)
	default:
		return onError(Error[T]{Msg: FallbackMessage})
	}
}

func IsSuccess[T any](o Outcome[T]) bool {
	_, ok := o.(Success[T])
	return ok
}

// MessageOr returns the outcome's message, or fallback when it is blank.
func MessageOr[T any](o Outcome[T], fallback string) string {
	if o == nil {
		return fallback
	}
	if msg := strings.TrimSpace(o.Message()); msg != "" {
		return msg
	}
	return fallback
}

type envelope struct {
	Status  string          `json:"status"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Role    string          `json:"role"`
	Token   string          `json:"token"`
}

// message prefers the envelope message and falls back to a string payload.
func (e envelope) message() string {
	if strings.TrimSpace(e.Message) != "" {
		return e.Message
	}
	var text string
	if len(e.Data) > 0 && json.Unmarshal(e.Data, &text) == nil {
		return text
	}
	return ""
}

func decodeOutcome[T any](resp *http.Response) (Outcome[T], error) {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "read response")
	}
	ok := resp.StatusCode >= 200 && resp.StatusCode < 300

	var env envelope
	if len(bytes.TrimSpace(body)) == 0 {
		if ok {
			return Success[T]{}, nil
		}
		return nil, errors.Errorf("empty response with status %d", resp.StatusCode)
	}
	if err := json.Unmarshal(body, &env); err != nil {
		if ok {
			return Error[T]{Msg: FallbackMessage, StatusCode: resp.StatusCode}, nil
		}
		return nil, errors.Wrapf(err, "decode response with status %d", resp.StatusCode)
	}

	status := strings.ToLower(strings.TrimSpace(env.Status))
	if status == "" && ok {
		status = StatusSuccess
	}
	switch status {
	case StatusSuccess:
		var data T
		if len(env.Data) > 0 && !bytes.Equal(env.Data, []byte("null")) {
			if err := json.Unmarshal(env.Data, &data); err != nil {
				return Error[T]{Msg: FallbackMessage, StatusCode: resp.StatusCode}, nil
			}
		}
		return Success[T]{Data: data, Role: env.Role, Token: env.Token, Msg: env.message()}, nil
	case StatusFail:
		return Fail[T]{Msg: env.message(), StatusCode: resp.StatusCode}, nil
	default:
		return Error[T]{Msg: env.message(), StatusCode: resp.StatusCode}, nil
	}
}
