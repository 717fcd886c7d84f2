package auth_test

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/zalando/go-keyring"

	"github.com/mindhaven/mindhaven/auth"
	"github.com/mindhaven/mindhaven/models"
	"github.com/mindhaven/mindhaven/testfixtures"
)

// Test variables
var (
	testEmail1    = "testuser1@example.com"
	testPassword1 = "Test1234"

	testEmail2    = "testuser2@example.com"
	testPassword2 = "Test5678"
)

const (
	testKeyringService = "MindHavenTest"
	testTokenKey       = "auth_token"
	testRefreshKey     = "auth_token_refresh"
)

// TestMain swaps the system keyring for an in-memory mock so sessions never
// touch the real credential store.
func TestMain(m *testing.M) {
	keyring.MockInit()
	os.Exit(m.Run())
}

// newService builds an AuthService over a fresh in-memory store and a clean
// keyring.
func newService() (*auth.AuthService, *testfixtures.MemoryStore) {
	keyring.Delete(testKeyringService, testTokenKey)
	keyring.Delete(testKeyringService, testRefreshKey)
	store := testfixtures.NewMemoryStore()
	service := auth.NewAuthService(store, "test-signing-key", testKeyringService, testTokenKey, testRefreshKey)
	return service, store
}

func TestSignUpAndCurrentSession(t *testing.T) {
	service, _ := newService()
	ctx := context.Background()

	err := service.SignUp(ctx, testEmail1, testPassword1)
	assert.NoError(t, err)

	session, err := service.CurrentSession(ctx)
	assert.NoError(t, err)
	if assert.NotNil(t, session) {
		assert.Equal(t, testEmail1, session.Email)
		assert.NotEmpty(t, session.UserID)
	}
}

func TestSignUpValidation(t *testing.T) {
	service, _ := newService()
	ctx := context.Background()

	err := service.SignUp(ctx, "invalid_email", testPassword1)
	assert.Error(t, err)

	err = service.SignUp(ctx, testEmail1, "short")
	assert.Error(t, err)

	// Duplicate email
	err = service.SignUp(ctx, testEmail1, testPassword1)
	assert.NoError(t, err)
	err = service.SignUp(ctx, testEmail1, testPassword2)
	assert.Error(t, err)
}

func TestSignInWithPassword(t *testing.T) {
	service, _ := newService()
	ctx := context.Background()

	err := service.SignUp(ctx, testEmail2, testPassword2)
	assert.NoError(t, err)
	err = service.SignOut(ctx)
	assert.NoError(t, err)

	err = service.SignInWithPassword(ctx, testEmail2, testPassword2)
	assert.NoError(t, err)

	session, err := service.CurrentSession(ctx)
	assert.NoError(t, err)
	assert.NotNil(t, session)
}

func TestSignInWrongCredentials(t *testing.T) {
	service, _ := newService()
	ctx := context.Background()

	err := service.SignUp(ctx, testEmail1, testPassword1)
	assert.NoError(t, err)
	err = service.SignOut(ctx)
	assert.NoError(t, err)

	// Wrong password and unknown account fail with the same message, so a
	// caller cannot probe which emails exist.
	errWrongPassword := service.SignInWithPassword(ctx, testEmail1, "Wrong1234")
	assert.Error(t, errWrongPassword)

	errUnknownAccount := service.SignInWithPassword(ctx, "nobody@example.com", testPassword1)
	assert.Error(t, errUnknownAccount)

	assert.Equal(t, errWrongPassword.Error(), errUnknownAccount.Error())
}

func TestSignOutClearsSession(t *testing.T) {
	service, _ := newService()
	ctx := context.Background()

	err := service.SignUp(ctx, testEmail1, testPassword1)
	assert.NoError(t, err)

	err = service.SignOut(ctx)
	assert.NoError(t, err)

	session, err := service.CurrentSession(ctx)
	assert.NoError(t, err)
	assert.Nil(t, session, "No session after sign-out")
}

func TestCurrentSessionWithoutTokens(t *testing.T) {
	service, _ := newService()

	session, err := service.CurrentSession(context.Background())
	assert.NoError(t, err, "An absent session is not an error")
	assert.Nil(t, session)
}

func TestSubscribeDeliversEvents(t *testing.T) {
	service, _ := newService()
	ctx := context.Background()

	var events []auth.Event
	var sessions []*models.Session
	unsubscribe := service.Subscribe(func(event auth.Event, session *models.Session) {
		events = append(events, event)
		sessions = append(sessions, session)
	})

	err := service.SignUp(ctx, testEmail1, testPassword1)
	assert.NoError(t, err)
	err = service.SignOut(ctx)
	assert.NoError(t, err)

	if assert.Equal(t, 2, len(events)) {
		assert.Equal(t, auth.EventSignedIn, events[0])
		assert.NotNil(t, sessions[0])
		assert.Equal(t, auth.EventSignedOut, events[1])
		assert.Nil(t, sessions[1])
	}

	// After unsubscribing, nothing more arrives
	unsubscribe()
	err = service.SignInWithPassword(ctx, testEmail1, testPassword1)
	assert.NoError(t, err)
	assert.Equal(t, 2, len(events))
}

func TestUpdatePassword(t *testing.T) {
	service, _ := newService()
	ctx := context.Background()

	// Requires a signed-in user
	err := service.UpdatePassword(ctx, "NewPass123")
	assert.ErrorIs(t, err, auth.ErrNoSession)

	err = service.SignUp(ctx, testEmail1, testPassword1)
	assert.NoError(t, err)

	err = service.UpdatePassword(ctx, "short")
	assert.Error(t, err, "The new password must satisfy the password rules")

	err = service.UpdatePassword(ctx, "NewPass123")
	assert.NoError(t, err)

	// The old password no longer works, the new one does
	err = service.SignOut(ctx)
	assert.NoError(t, err)
	err = service.SignInWithPassword(ctx, testEmail1, testPassword1)
	assert.Error(t, err)
	err = service.SignInWithPassword(ctx, testEmail1, "NewPass123")
	assert.NoError(t, err)
}
