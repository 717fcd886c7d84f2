package session

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/mindhaven/mindhaven/auth"
	"github.com/mindhaven/mindhaven/models"
	"github.com/mindhaven/mindhaven/storage"
)

// ViewState is the screen the app should render. Exactly one state results
// from any combination of the bootstrap's inputs.
type ViewState int

// The five screens plus the initial loading state, in priority order.
const (
	ViewLoading ViewState = iota
	ViewLanding
	ViewAuth
	ViewProfileSetup
	ViewGreeting
	ViewHome
)

// String returns the name of the view state.
func (v ViewState) String() string {
	switch v {
	case ViewLoading:
		return "LOADING"
	case ViewLanding:
		return "LANDING"
	case ViewAuth:
		return "AUTH"
	case ViewProfileSetup:
		return "PROFILE_SETUP"
	case ViewGreeting:
		return "GREETING"
	case ViewHome:
		return "HOME"
	default:
		return "UNKNOWN"
	}
}

// resolveView is the one place the screen decision is made. The branches are
// evaluated in fixed priority order; the final fallback covers contradictory
// state by sending the user back to the landing page.
func resolveView(loading, hasUser, showAuth, showProfileSetup, showGreeting bool) ViewState {
	switch {
	case loading:
		return ViewLoading
	case !hasUser && !showAuth:
		return ViewLanding
	case !hasUser && showAuth:
		return ViewAuth
	case hasUser && showProfileSetup:
		return ViewProfileSetup
	case hasUser && showGreeting:
		return ViewGreeting
	case hasUser:
		return ViewHome
	default:
		return ViewLanding
	}
}

// Bootstrap owns the authenticated identity, the user's profile row, and the
// flags that decide which screen to render. It translates raw session events
// from the auth service into view state, and exposes the profile lifecycle
// transitions. It starts in the loading state and runs for the lifetime of
// the app; there is no terminal state.
type Bootstrap struct {
	auth  auth.AuthInterface
	store storage.StoreInterface
	now   func() time.Time

	mu               sync.Mutex
	loading          bool
	user             *models.Session
	profile          *models.Profile
	showAuth         bool
	showProfileSetup bool
	showGreeting     bool

	// generation counts handled session events, so a stale initial
	// resolution can never overwrite state a newer event produced.
	generation uint64

	unsubscribe  func()
	onUserChange []func(userID string)
}

// NewBootstrap creates a Bootstrap over the given auth service and store.
// It does nothing until Start is called.
func NewBootstrap(authService auth.AuthInterface, store storage.StoreInterface) *Bootstrap {
	return &Bootstrap{
		auth:    authService,
		store:   store,
		now:     time.Now,
		loading: true,
	}
}

// OnUserChange registers a listener for user id transitions, including the
// transition to "" on sign-out. The data cache hangs off this: the bootstrap
// is the sole authority for who is logged in.
func (b *Bootstrap) OnUserChange(fn func(userID string)) {
	b.mu.Lock()
	b.onUserChange = append(b.onUserChange, fn)
	b.mu.Unlock()
}

// Start subscribes to session changes and then runs an eager session check.
// Both paths converge on the same handler, so an already-persisted session is
// picked up even if the subscription never fires for it.
func (b *Bootstrap) Start(ctx context.Context) {
	b.unsubscribe = b.auth.Subscribe(b.handleAuthEvent)

	session, err := b.auth.CurrentSession(ctx)
	if err != nil {
		log.Printf("error resolving initial session: %v", err)
		session = nil
	}
	b.resolveInitial(session)
}

// Stop removes the session change subscription. In-flight remote calls are
// not cancelled; their eventual results land on state nobody observes.
func (b *Bootstrap) Stop() {
	if b.unsubscribe != nil {
		b.unsubscribe()
	}
}

// resolveInitial feeds the eager session check into the shared handler, but
// only if no subscribed event has been handled yet.
func (b *Bootstrap) resolveInitial(session *models.Session) {
	b.apply(auth.EventInitialSession, session, true)
}

// handleAuthEvent is the single handler every session change runs through.
func (b *Bootstrap) handleAuthEvent(event auth.Event, session *models.Session) {
	b.apply(event, session, false)
}

// apply is where every session change lands. A present user triggers a
// profile load; an absent one clears the profile and all flags. Either way
// the event ends with loading=false, so the app can never be stuck on the
// loading screen by a failed branch.
//
// The staleness check for the initial resolution happens under the same lock
// that applies the state, so a subscribed event can never be overwritten by
// an initial check that raced it.
func (b *Bootstrap) apply(event auth.Event, session *models.Session, initial bool) {
	ctx := context.Background()

	b.mu.Lock()
	if initial && b.generation > 0 {
		b.mu.Unlock()
		return
	}
	b.generation++
	b.user = session
	if session != nil {
		b.loadProfile(ctx, session.UserID)
	} else {
		b.profile = nil
		b.showAuth = false
		b.showProfileSetup = false
		b.showGreeting = false
	}
	b.loading = false

	userID := ""
	if session != nil {
		userID = session.UserID
	}
	listeners := append([]func(string){}, b.onUserChange...)
	b.mu.Unlock()

	for _, fn := range listeners {
		fn(userID)
	}
}

// loadProfile queries the profile row for the user. Zero rows sends the user
// to profile setup; one row greets them. A failed query changes no flags: the
// view stalls where it is until a later event succeeds, which is preferable
// to guessing a screen. Called with b.mu held.
func (b *Bootstrap) loadProfile(ctx context.Context, userID string) {
	profile, err := b.store.FindProfile(ctx, userID)
	if err != nil {
		log.Printf("error loading profile: %v", err)
		return
	}

	if profile == nil {
		b.showProfileSetup = true
		return
	}

	b.profile = profile
	b.showGreeting = true
}

// Login exchanges credentials for a session. On success the auth screen is
// dismissed; on failure the error is returned for the caller to surface and
// no state changes. The loading flag is untouched either way.
func (b *Bootstrap) Login(ctx context.Context, email, password string) error {
	if err := b.auth.SignInWithPassword(ctx, email, password); err != nil {
		return err
	}

	b.mu.Lock()
	b.showAuth = false
	b.mu.Unlock()
	return nil
}

// Signup registers a new account. Behaves like Login on success and failure.
func (b *Bootstrap) Signup(ctx context.Context, email, password string) error {
	if err := b.auth.SignUp(ctx, email, password); err != nil {
		return err
	}

	b.mu.Lock()
	b.showAuth = false
	b.mu.Unlock()
	return nil
}

// Logout signs the user out. The local state reset happens via the session
// change callback, not here.
func (b *Bootstrap) Logout(ctx context.Context) error {
	return b.auth.SignOut(ctx)
}

// ChangePassword delegates to the auth service and propagates its error.
func (b *Bootstrap) ChangePassword(ctx context.Context, newPassword string) error {
	return b.auth.UpdatePassword(ctx, newPassword)
}

// SetShowAuth moves between the landing page and the auth screen while no
// user is signed in.
func (b *Bootstrap) SetShowAuth(value bool) {
	b.mu.Lock()
	b.showAuth = value
	b.mu.Unlock()
}

// CompleteGreeting dismisses the greeting screen. A pure local transition;
// no remote call is involved.
func (b *Bootstrap) CompleteGreeting() {
	b.mu.Lock()
	b.showGreeting = false
	b.mu.Unlock()
}

// UpdateProfile upserts the user's profile row keyed by the user id and, on
// the user's very first profile, seeds the default resources. An empty date
// of birth is stored as unset. On failure the error propagates and local
// state is unchanged. A missing user makes this a no-op.
func (b *Bootstrap) UpdateProfile(ctx context.Context, profile models.Profile) error {
	b.mu.Lock()
	user := b.user
	prior := b.profile
	b.mu.Unlock()

	if user == nil {
		return nil
	}

	profile.ID = user.UserID
	profile.UpdatedAt = b.now().UTC()
	if prior != nil {
		profile.CreatedAt = prior.CreatedAt
	}

	confirmed, err := b.store.UpsertProfile(ctx, &profile)
	if err != nil {
		return err
	}

	b.mu.Lock()
	b.profile = confirmed
	b.showProfileSetup = false
	b.showGreeting = true
	b.mu.Unlock()

	if prior == nil {
		b.seedDefaultResources(ctx, user.UserID)
	}
	return nil
}

// seedDefaultResources inserts the starter self-help library for a brand new
// user. Runs once, right after the first profile is created.
func (b *Bootstrap) seedDefaultResources(ctx context.Context, userID string) {
	defaults := []models.Resource{
		{
			UserID:   userID,
			Title:    "National Alliance Mental Illness",
			Type:     models.ResourceTypeLink,
			Content:  "https://www.nami.org/",
			Category: models.ResourceCategoryHealthcare,
		},
		{
			UserID:   userID,
			Title:    "Mental Health America",
			Type:     models.ResourceTypeLink,
			Content:  "https://mhanational.org/",
			Category: models.ResourceCategoryHealthcare,
		},
		{
			UserID:   userID,
			Title:    "Call/Text",
			Type:     models.ResourceTypeText,
			Content:  "988",
			Category: models.ResourceCategoryEmergency,
		},
		{
			UserID:   userID,
			Title:    "Call",
			Type:     models.ResourceTypeText,
			Content:  "1-800-950-6264 or 1-800-662-4357",
			Category: models.ResourceCategoryEmergency,
		},
	}

	if _, err := b.store.AddResources(ctx, defaults); err != nil {
		log.Printf("error seeding default resources: %v", err)
	}
}

// Resolve returns the screen the current state selects.
func (b *Bootstrap) Resolve() ViewState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return resolveView(b.loading, b.user != nil, b.showAuth, b.showProfileSetup, b.showGreeting)
}

// Loading reports whether the initial session resolution is still pending.
func (b *Bootstrap) Loading() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.loading
}

// User returns the current session, or nil when signed out.
func (b *Bootstrap) User() *models.Session {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.user
}

// Profile returns the loaded profile row, or nil when none exists yet.
func (b *Bootstrap) Profile() *models.Profile {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.profile
}
