package apistub

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/phillip-england/employeems/internal/employee"
)

type user struct {
	ID           string
	FirstName    string
	LastName     string
	Email        string
	PasswordHash string
	Role         string
	Image        string
}

func (u user) profile() employee.UserProfile {
	return employee.UserProfile{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Image:     u.Image,
		Role:      u.Role,
	}
}

type upload struct {
	contentType string
	data        []byte
}

// memoryStore holds everything the stub knows. It lives for the process.
type memoryStore struct {
	mu         sync.RWMutex
	users      map[string]user
	byEmail    map[string]string
	employees  map[string]employee.Employee
	revoked    map[string]struct{}
	resetCodes map[string]string
	uploads    map[string]upload
	now        func() time.Time
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		users:      make(map[string]user),
		byEmail:    make(map[string]string),
		employees:  make(map[string]employee.Employee),
		revoked:    make(map[string]struct{}),
		resetCodes: make(map[string]string),
		uploads:    make(map[string]upload),
		now:        time.Now,
	}
}

func emailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// addUser stores u and reports false when the email is taken. The first
// account becomes a manager.
func (s *memoryStore) addUser(u user) (user, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := emailKey(u.Email)
	if _, exists := s.byEmail[key]; exists {
		return user{}, false
	}
	u.ID = uuid.NewString()
	if u.Role == "" {
		if len(s.users) == 0 {
			u.Role = employee.RoleManager
		} else {
			u.Role = employee.RoleUser
		}
	}
	s.users[u.ID] = u
	s.byEmail[key] = u.ID
	return u, true
}

func (s *memoryStore) userByEmail(email string) (user, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byEmail[emailKey(email)]
	if !ok {
		return user{}, false
	}
	return s.users[id], true
}

func (s *memoryStore) userByID(id string) (user, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	return u, ok
}

func (s *memoryStore) updateUser(u user) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.users[u.ID]
	if !ok {
		return false
	}
	newKey := emailKey(u.Email)
	if oldKey := emailKey(current.Email); newKey != oldKey {
		if _, taken := s.byEmail[newKey]; taken {
			return false
		}
		delete(s.byEmail, oldKey)
		s.byEmail[newKey] = u.ID
	}
	s.users[u.ID] = u
	return true
}

func (s *memoryStore) userCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users)
}

func (s *memoryStore) revoke(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revoked[token] = struct{}{}
}

func (s *memoryStore) isRevoked(token string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.revoked[token]
	return ok
}

func (s *memoryStore) setResetCode(code, userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetCodes[code] = userID
}

// takeResetCode consumes a reset code.
func (s *memoryStore) takeResetCode(code string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	userID, ok := s.resetCodes[code]
	if ok {
		delete(s.resetCodes, code)
	}
	return userID, ok
}

func (s *memoryStore) putUpload(contentType string, data []byte) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.NewString()
	s.uploads[id] = upload{contentType: contentType, data: data}
	return id
}

func (s *memoryStore) getUpload(id string) (upload, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.uploads[id]
	return u, ok
}

func (s *memoryStore) createEmployee(e employee.Employee) employee.Employee {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now().UTC().Format(time.RFC3339Nano)
	e.ID = uuid.NewString()
	e.Role = ""
	e.CreatedAt = now
	e.UpdatedAt = now
	s.employees[e.ID] = e
	return e
}

func (s *memoryStore) employee(id string) (employee.Employee, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.employees[id]
	return e, ok
}

func (s *memoryStore) saveEmployee(e employee.Employee) (employee.Employee, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.employees[e.ID]
	if !ok {
		return employee.Employee{}, false
	}
	e.CreatedAt = current.CreatedAt
	e.UpdatedAt = s.now().UTC().Format(time.RFC3339Nano)
	e.Role = ""
	s.employees[e.ID] = e
	return e, true
}

func (s *memoryStore) deleteEmployee(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.employees[id]; !ok {
		return false
	}
	delete(s.employees, id)
	return true
}

// listEmployees returns employees in creation order, optionally filtered by
// a case-insensitive substring over the searchable fields.
func (s *memoryStore) listEmployees(query string) []employee.Employee {
	s.mu.RLock()
	defer s.mu.RUnlock()
	needle := strings.ToLower(strings.TrimSpace(query))
	out := make([]employee.Employee, 0, len(s.employees))
	for _, e := range s.employees {
		if needle != "" && !matches(e, needle) {
			continue
		}
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt == out[j].CreatedAt {
			return out[i].Name < out[j].Name
		}
		return out[i].CreatedAt < out[j].CreatedAt
	})
	return out
}

func (s *memoryStore) employeeCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.employees)
}

func matches(e employee.Employee, needle string) bool {
	for _, v := range []string{e.Name, e.Email, e.Position, string(e.Department), e.City, e.Phone} {
		if strings.Contains(strings.ToLower(v), needle) {
			return true
		}
	}
	return false
}
