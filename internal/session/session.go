// Package session holds the mutable per-login session record shared by
// the authenticator and the calendar initializer.
package session

import "sync"

// State is the single shared session record. The client facade owns
// it; the authenticator and calendar initializer mutate it in place
// through the same pointer. The login bootstrap writes its exported
// fields sequentially before any background work starts; the fields the
// calendar bootstrap and the prefetch goroutines touch concurrently
// live behind the mutex and are accessed through the methods below.
type State struct {
	// SessionID is the server-issued identifier embedded in every RPC
	// body. It comes from the portal page, never from the client.
	SessionID string

	// CSRFToken protects the login form post.
	CSRFToken string

	// BwpCSRFToken is echoed in a response header by the first connect
	// call and required on follow-up RPCs.
	BwpCSRFToken string

	// SessionCookie is threaded manually into every request; there is
	// no implicit cookie jar.
	SessionCookie string

	// CalendarContextID scopes the module presentation model call. It
	// is written inside the bootstrap's parallel phase but only read
	// after that phase has been waited on.
	CalendarContextID int

	mu sync.Mutex

	// employeeID is resolved from the global-service connect response.
	employeeID int

	// realEmployeeID comes from the intranet parameter response during
	// the calendar bootstrap. When set it is authoritative over
	// employeeID for data queries; the two extraction paths are kept
	// deliberately separate.
	realEmployeeID int

	calendarInitialized  bool
	navigationPrefetched bool
}

func (s *State) EmployeeID() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.employeeID
}

func (s *State) SetEmployeeID(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.employeeID = id
}

func (s *State) SetRealEmployeeID(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.realEmployeeID = id
}

// DataEmployeeID returns the id to use for data queries: the real id
// when known, the session id otherwise.
func (s *State) DataEmployeeID() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.realEmployeeID != 0 {
		return s.realEmployeeID
	}

	return s.employeeID
}

func (s *State) CalendarInitialized() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.calendarInitialized
}

func (s *State) SetCalendarInitialized() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calendarInitialized = true
}

func (s *State) NavigationPrefetched() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.navigationPrefetched
}

func (s *State) SetNavigationPrefetched() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.navigationPrefetched = true
}

// Authenticated reports whether the bootstrap reached the point where
// data queries can be issued.
func (s *State) Authenticated() bool {
	return s.SessionID != "" && s.BwpCSRFToken != ""
}

// Reset clears the record on logout. Callers must have stopped all
// background work first.
func (s *State) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.SessionID = ""
	s.CSRFToken = ""
	s.BwpCSRFToken = ""
	s.SessionCookie = ""
	s.CalendarContextID = 0
	s.employeeID = 0
	s.realEmployeeID = 0
	s.calendarInitialized = false
	s.navigationPrefetched = false
}
