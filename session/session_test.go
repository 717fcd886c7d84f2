package session

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mindhaven/mindhaven/auth"
	"github.com/mindhaven/mindhaven/models"
	"github.com/mindhaven/mindhaven/testfixtures"
)

func TestResolveViewPriority(t *testing.T) {
	cases := []struct {
		name                                             string
		loading, hasUser, showAuth, showSetup, showGreet bool
		want                                             ViewState
	}{
		{"loading wins over everything", true, true, true, true, true, ViewLoading},
		{"no user, no auth", false, false, false, false, false, ViewLanding},
		{"no user, auth requested", false, false, true, false, false, ViewAuth},
		{"user without profile", false, true, false, true, false, ViewProfileSetup},
		{"setup outranks greeting", false, true, false, true, true, ViewProfileSetup},
		{"user with fresh profile", false, true, false, false, true, ViewGreeting},
		{"settled user", false, true, false, false, false, ViewHome},
		{"auth flag is inert once signed in", false, true, true, false, false, ViewHome},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := resolveView(tc.loading, tc.hasUser, tc.showAuth, tc.showSetup, tc.showGreet)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestStartWithoutSession(t *testing.T) {
	fakeAuth := testfixtures.NewFakeAuth()
	store := testfixtures.NewMemoryStore()
	b := NewBootstrap(fakeAuth, store)

	assert.Equal(t, ViewLoading, b.Resolve(), "Loading until the initial check resolves")

	b.Start(context.Background())

	assert.False(t, b.Loading())
	assert.Equal(t, ViewLanding, b.Resolve())
	assert.Nil(t, b.User())
}

func TestStartWithSessionAndNoProfile(t *testing.T) {
	fakeAuth := testfixtures.NewFakeAuth()
	fakeAuth.SetSession(&models.Session{UserID: "u1", Email: "u1@example.com"})
	store := testfixtures.NewMemoryStore()
	b := NewBootstrap(fakeAuth, store)

	b.Start(context.Background())

	assert.Equal(t, ViewProfileSetup, b.Resolve())
	assert.Nil(t, b.Profile())
}

func TestStartWithSessionAndProfile(t *testing.T) {
	fakeAuth := testfixtures.NewFakeAuth()
	fakeAuth.SetSession(&models.Session{UserID: "u1", Email: "u1@example.com"})
	store := testfixtures.NewMemoryStore()
	_, err := store.UpsertProfile(context.Background(), &models.Profile{ID: "u1", Name: "Someone"})
	assert.NoError(t, err)

	b := NewBootstrap(fakeAuth, store)
	b.Start(context.Background())

	assert.Equal(t, ViewGreeting, b.Resolve())
	if assert.NotNil(t, b.Profile()) {
		assert.Equal(t, "Someone", b.Profile().Name)
	}

	b.CompleteGreeting()
	assert.Equal(t, ViewHome, b.Resolve())
}

func TestProfileLoadFailureLeavesFlags(t *testing.T) {
	fakeAuth := testfixtures.NewFakeAuth()
	fakeAuth.SetSession(&models.Session{UserID: "u1", Email: "u1@example.com"})
	store := testfixtures.NewMemoryStore()
	store.FailOn["FindProfile"] = errors.New("query failed")

	b := NewBootstrap(fakeAuth, store)
	b.Start(context.Background())

	// The user is in, the flags are untouched, and loading still ended.
	assert.False(t, b.Loading())
	assert.Equal(t, ViewHome, b.Resolve())
	assert.Nil(t, b.Profile())
}

func TestInitialCheckFailureResolvesToLanding(t *testing.T) {
	fakeAuth := testfixtures.NewFakeAuth()
	fakeAuth.CurrentSessionErr = errors.New("keyring unavailable")
	store := testfixtures.NewMemoryStore()

	b := NewBootstrap(fakeAuth, store)
	b.Start(context.Background())

	assert.False(t, b.Loading())
	assert.Equal(t, ViewLanding, b.Resolve())
}

func TestLoginFlow(t *testing.T) {
	fakeAuth := testfixtures.NewFakeAuth()
	store := testfixtures.NewMemoryStore()
	b := NewBootstrap(fakeAuth, store)
	b.Start(context.Background())

	b.SetShowAuth(true)
	assert.Equal(t, ViewAuth, b.Resolve())

	// A failed login changes nothing
	fakeAuth.SignInErr = errors.New("authentication failed")
	err := b.Login(context.Background(), "u1@example.com", "Test1234")
	assert.Error(t, err)
	assert.Equal(t, ViewAuth, b.Resolve())

	// A successful one lands the user and dismisses the auth screen
	fakeAuth.SignInErr = nil
	err = b.Login(context.Background(), "u1@example.com", "Test1234")
	assert.NoError(t, err)
	assert.NotNil(t, b.User())
	assert.Equal(t, ViewProfileSetup, b.Resolve())
}

func TestUpdateProfileCreatesAndSeedsResources(t *testing.T) {
	fakeAuth := testfixtures.NewFakeAuth()
	fakeAuth.SetSession(&models.Session{UserID: "u1", Email: "u1@example.com"})
	store := testfixtures.NewMemoryStore()
	b := NewBootstrap(fakeAuth, store)
	b.Start(context.Background())

	err := b.UpdateProfile(context.Background(), models.Profile{Name: "Someone"})
	assert.NoError(t, err)

	assert.Equal(t, ViewGreeting, b.Resolve())
	saved, err := store.FindProfile(context.Background(), "u1")
	assert.NoError(t, err)
	if assert.NotNil(t, saved) {
		assert.Equal(t, "u1", saved.ID, "The profile row is keyed by the user id")
		assert.Equal(t, "Someone", saved.Name)
	}

	resources, err := store.ListResources(context.Background(), "u1")
	assert.NoError(t, err)
	assert.Equal(t, 4, len(resources), "The starter library is seeded with the first profile")

	// A second save updates the profile without reseeding
	b.CompleteGreeting()
	err = b.UpdateProfile(context.Background(), models.Profile{Name: "Renamed"})
	assert.NoError(t, err)
	assert.Equal(t, ViewGreeting, b.Resolve())

	resources, err = store.ListResources(context.Background(), "u1")
	assert.NoError(t, err)
	assert.Equal(t, 4, len(resources))
}

func TestUpdateProfileFailure(t *testing.T) {
	fakeAuth := testfixtures.NewFakeAuth()
	fakeAuth.SetSession(&models.Session{UserID: "u1", Email: "u1@example.com"})
	store := testfixtures.NewMemoryStore()
	b := NewBootstrap(fakeAuth, store)
	b.Start(context.Background())

	store.FailOn["UpsertProfile"] = errors.New("write failed")
	err := b.UpdateProfile(context.Background(), models.Profile{Name: "Someone"})
	assert.Error(t, err)
	assert.Equal(t, ViewProfileSetup, b.Resolve(), "A failed save keeps the setup screen")
	assert.Nil(t, b.Profile())
}

func TestSignOutResetsState(t *testing.T) {
	fakeAuth := testfixtures.NewFakeAuth()
	fakeAuth.SetSession(&models.Session{UserID: "u1", Email: "u1@example.com"})
	store := testfixtures.NewMemoryStore()
	_, err := store.UpsertProfile(context.Background(), &models.Profile{ID: "u1", Name: "Someone"})
	assert.NoError(t, err)

	b := NewBootstrap(fakeAuth, store)

	var userChanges []string
	b.OnUserChange(func(userID string) {
		userChanges = append(userChanges, userID)
	})
	b.Start(context.Background())

	err = b.Logout(context.Background())
	assert.NoError(t, err)

	assert.Equal(t, ViewLanding, b.Resolve())
	assert.Nil(t, b.User())
	assert.Nil(t, b.Profile())
	assert.Equal(t, []string{"u1", ""}, userChanges)
}

func TestStaleInitialResolutionIsDiscarded(t *testing.T) {
	fakeAuth := testfixtures.NewFakeAuth()
	store := testfixtures.NewMemoryStore()
	b := NewBootstrap(fakeAuth, store)
	b.unsubscribe = fakeAuth.Subscribe(b.handleAuthEvent)

	// A subscribed event lands before the eager check completes
	fakeAuth.Fire(auth.EventSignedIn, &models.Session{UserID: "u2", Email: "u2@example.com"})
	assert.NotNil(t, b.User())

	// The late initial result carries an older truth and must not win
	b.resolveInitial(nil)
	if assert.NotNil(t, b.User()) {
		assert.Equal(t, "u2", b.User().UserID)
	}
}
