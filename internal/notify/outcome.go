package notify

import (
	"github.com/go-faster/errors"

	"github.com/phillip-england/employeems/internal/apiclient"
)

const (
	NetworkError = "Network error"
	ServerError  = "Server error"
)

// FromOutcome maps a failed API call onto the notification taxonomy: fail is
// a warning, error is an error, a transport failure is a generic connectivity
// error. ok is false for successful outcomes.
func FromOutcome[T any](outcome apiclient.Outcome[T], err error, fallback string) (n Notification, ok bool) {
	if err != nil {
		if errors.Is(err, apiclient.ErrTransport) {
			return Errorf(NetworkError), true
		}
		return Errorf(fallback), true
	}
	return apiclient.Match(outcome,
		func(apiclient.Success[T]) result { return result{} },
		func(f apiclient.Fail[T]) result {
			return result{Warnf(apiclient.MessageOr[T](f, fallback)), true}
		},
		func(e apiclient.Error[T]) result {
			return result{Errorf(apiclient.MessageOr[T](e, fallback)), true}
		},
	).unpack()
}

type result struct {
	n  Notification
	ok bool
}

func (r result) unpack() (Notification, bool) { return r.n, r.ok }
