// Package drafts keeps unsaved edit drafts and pending avatar files per
// browser, so leaving edit mode does not lose them between requests.
package drafts

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-faster/errors"

	"github.com/phillip-england/employeems/internal/avatar"
	"github.com/phillip-england/employeems/internal/employee"
)

var ErrNotFound = errors.New("draft not found")

// NewRecord is the record key used by the create form.
const NewRecord = "new"

// Backend is a byte store with per-key expiry.
type Backend interface {
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Get returns ErrNotFound for missing or expired keys.
	Get(ctx context.Context, key string) ([]byte, error)
	Del(ctx context.Context, keys ...string) error
}

type Key struct {
	BrowserID string
	Record    string
}

func (k Key) draft() string  { return "ems:draft:" + k.BrowserID + ":" + k.Record }
func (k Key) avatar() string { return "ems:avatar:" + k.BrowserID + ":" + k.Record }

type Store struct {
	backend Backend
	ttl     time.Duration
}

func New(backend Backend, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &Store{backend: backend, ttl: ttl}
}

func (s *Store) SaveDraft(ctx context.Context, key Key, draft employee.Employee) error {
	return s.put(ctx, key.draft(), draft)
}

func (s *Store) LoadDraft(ctx context.Context, key Key) (employee.Employee, error) {
	var draft employee.Employee
	err := s.get(ctx, key.draft(), &draft)
	return draft, err
}

// Draft returns the stored draft or nil when there is none.
func (s *Store) Draft(ctx context.Context, key Key) (*employee.Employee, error) {
	draft, err := s.LoadDraft(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &draft, nil
}

func (s *Store) DeleteDraft(ctx context.Context, key Key) error {
	return s.backend.Del(ctx, key.draft())
}

func (s *Store) SaveAvatar(ctx context.Context, key Key, p avatar.Pending) error {
	return s.put(ctx, key.avatar(), p)
}

func (s *Store) LoadAvatar(ctx context.Context, key Key) (avatar.Pending, error) {
	var p avatar.Pending
	err := s.get(ctx, key.avatar(), &p)
	return p, err
}

func (s *Store) DeleteAvatar(ctx context.Context, key Key) error {
	return s.backend.Del(ctx, key.avatar())
}

// Discard drops both the draft and the pending avatar of a record.
func (s *Store) Discard(ctx context.Context, key Key) error {
	return s.backend.Del(ctx, key.draft(), key.avatar())
}

func (s *Store) put(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return errors.Wrap(err, "encode draft")
	}
	if err := s.backend.Set(ctx, key, raw, s.ttl); err != nil {
		return errors.Wrap(err, "store draft")
	}
	return nil
}

func (s *Store) get(ctx context.Context, key string, v any) error {
	raw, err := s.backend.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return errors.Wrap(err, "decode draft")
	}
	return nil
}
