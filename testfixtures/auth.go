package testfixtures

import (
	"context"
	"sync"

	"github.com/mindhaven/mindhaven/auth"
	"github.com/mindhaven/mindhaven/models"
)

// FakeAuth is an auth.AuthInterface for tests. The session it reports and
// the errors its operations return are set directly by the test, and Fire
// pushes a session change to every subscriber the way the real service does
// on sign-in and sign-out.
type FakeAuth struct {
	mu      sync.Mutex
	session *models.Session
	subs    map[int]auth.Handler
	nextID  int

	// Errors returned by the corresponding operations.
	CurrentSessionErr error
	SignInErr         error
	SignUpErr         error
	SignOutErr        error
	UpdatePasswordErr error

	// Recorded calls.
	SignInCalls         []string
	SignUpCalls         []string
	SignOutCalls        int
	UpdatePasswordCalls []string
}

// NewFakeAuth creates a FakeAuth with no session.
func NewFakeAuth() *FakeAuth {
	return &FakeAuth{subs: make(map[int]auth.Handler)}
}

// SetSession replaces the session CurrentSession reports, without notifying
// subscribers.
func (f *FakeAuth) SetSession(session *models.Session) {
	f.mu.Lock()
	f.session = session
	f.mu.Unlock()
}

// Fire sets the session and delivers the event to every subscriber, in the
// synchronous style of the real service.
func (f *FakeAuth) Fire(event auth.Event, session *models.Session) {
	f.mu.Lock()
	f.session = session
	handlers := make([]auth.Handler, 0, len(f.subs))
	for _, h := range f.subs {
		handlers = append(handlers, h)
	}
	f.mu.Unlock()

	for _, h := range handlers {
		h(event, session)
	}
}

// CurrentSession returns the configured session and error.
func (f *FakeAuth) CurrentSession(ctx context.Context) (*models.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.CurrentSessionErr != nil {
		return nil, f.CurrentSessionErr
	}
	return f.session, nil
}

// Subscribe registers a handler and returns its unsubscribe function.
func (f *FakeAuth) Subscribe(handler auth.Handler) func() {
	f.mu.Lock()
	id := f.nextID
	f.nextID++
	f.subs[id] = handler
	f.mu.Unlock()

	return func() {
		f.mu.Lock()
		delete(f.subs, id)
		f.mu.Unlock()
	}
}

// SignInWithPassword records the call and, on success, fires a sign-in event
// for the given email.
func (f *FakeAuth) SignInWithPassword(ctx context.Context, email, password string) error {
	f.mu.Lock()
	f.SignInCalls = append(f.SignInCalls, email)
	err := f.SignInErr
	f.mu.Unlock()
	if err != nil {
		return err
	}
	f.Fire(auth.EventSignedIn, &models.Session{UserID: "user-" + email, Email: email})
	return nil
}

// SignUp records the call and, on success, fires a sign-in event for the
// given email.
func (f *FakeAuth) SignUp(ctx context.Context, email, password string) error {
	f.mu.Lock()
	f.SignUpCalls = append(f.SignUpCalls, email)
	err := f.SignUpErr
	f.mu.Unlock()
	if err != nil {
		return err
	}
	f.Fire(auth.EventSignedIn, &models.Session{UserID: "user-" + email, Email: email})
	return nil
}

// SignOut records the call and, on success, fires a sign-out event.
func (f *FakeAuth) SignOut(ctx context.Context) error {
	f.mu.Lock()
	f.SignOutCalls++
	err := f.SignOutErr
	f.mu.Unlock()
	if err != nil {
		return err
	}
	f.Fire(auth.EventSignedOut, nil)
	return nil
}

// UpdatePassword records the call and returns the configured error.
func (f *FakeAuth) UpdatePassword(ctx context.Context, newPassword string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.UpdatePasswordCalls = append(f.UpdatePasswordCalls, newPassword)
	return f.UpdatePasswordErr
}
