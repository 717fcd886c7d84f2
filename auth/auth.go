package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/form3tech-oss/jwt-go"
	"github.com/mindhaven/mindhaven/lib/utils"
	"github.com/mindhaven/mindhaven/models"
	"github.com/mindhaven/mindhaven/storage"
	"github.com/zalando/go-keyring"
	"golang.org/x/crypto/bcrypt"
)

// ErrNoSession is returned by operations that require a signed-in user when
// no session is present.
var ErrNoSession = errors.New("no user is currently signed in")

// Event identifies what changed about the session. Subscribers receive it
// together with the session the change produced (nil after sign-out).
type Event string

// Session change events.
const (
	EventInitialSession Event = "INITIAL_SESSION"
	EventSignedIn       Event = "SIGNED_IN"
	EventSignedOut      Event = "SIGNED_OUT"
	EventTokenRefreshed Event = "TOKEN_REFRESHED"
)

// Handler is the callback signature for session change subscriptions.
type Handler func(event Event, session *models.Session)

// AuthInterface defines the session service contract the rest of the app
// depends on. The service is the sole source of truth for who is signed in.
type AuthInterface interface {
	// Returns the current session, or (nil, nil) when no user is signed in.
	// An expired access token is transparently refreshed.
	CurrentSession(ctx context.Context) (*models.Session, error)
	// Registers a handler for session changes and returns its unsubscribe function.
	Subscribe(handler Handler) func()
	// Exchanges credentials for a session.
	SignInWithPassword(ctx context.Context, email, password string) error
	// Registers a new account and signs it in.
	SignUp(ctx context.Context, email, password string) error
	// Destroys the current session.
	SignOut(ctx context.Context) error
	// Replaces the signed-in user's password.
	UpdatePassword(ctx context.Context, newPassword string) error
}

// Token lifetimes. The access token is short-lived and silently reissued
// from the refresh token for as long as that one is valid.
const (
	accessTokenTTL  = 15 * time.Minute
	refreshTokenTTL = 30 * 24 * time.Hour
)

// AuthService implements AuthInterface against the account rows of the
// remote store. Credentials are verified with bcrypt, sessions are a signed
// JWT pair, and both tokens live in the system keyring so a session survives
// process restarts.
type AuthService struct {
	store      storage.StoreInterface
	signingKey string

	keyringService string
	tokenKey       string
	refreshKey     string

	mu     sync.RWMutex
	subs   map[int]Handler
	nextID int
}

// NewAuthService creates a new AuthService.
//
// It accepts four arguments:
// - store: The remote store holding the account rows.
// - signingKey: The key used to sign and verify session tokens.
// - keyringService: The service name under which tokens are stored in the system keyring.
// - tokenKey, refreshKey: The keyring entries for the access and refresh tokens.
func NewAuthService(store storage.StoreInterface, signingKey, keyringService, tokenKey, refreshKey string) *AuthService {
	return &AuthService{
		store:          store,
		signingKey:     signingKey,
		keyringService: keyringService,
		tokenKey:       tokenKey,
		refreshKey:     refreshKey,
		subs:           make(map[int]Handler),
	}
}

// Subscribe registers a handler for session changes. The returned function
// removes the subscription; calling it more than once is harmless.
func (a *AuthService) Subscribe(handler Handler) func() {
	a.mu.Lock()
	id := a.nextID
	a.nextID++
	a.subs[id] = handler
	a.mu.Unlock()

	return func() {
		a.mu.Lock()
		delete(a.subs, id)
		a.mu.Unlock()
	}
}

// notify invokes every subscribed handler with the given event and session.
// Handlers run synchronously so a subscriber observes events in the order
// they happened.
func (a *AuthService) notify(event Event, session *models.Session) {
	a.mu.RLock()
	handlers := make([]Handler, 0, len(a.subs))
	for _, h := range a.subs {
		handlers = append(handlers, h)
	}
	a.mu.RUnlock()

	for _, h := range handlers {
		h(event, session)
	}
}

// CurrentSession returns the session for the tokens currently held in the
// keyring, or (nil, nil) when no user is signed in. An expired access token
// is reissued from the refresh token; subscribers are told about the refresh.
func (a *AuthService) CurrentSession(ctx context.Context) (*models.Session, error) {
	tokenStr, err := keyring.Get(a.keyringService, a.tokenKey)
	if err != nil {
		if err == keyring.ErrNotFound {
			return nil, nil
		}
		return nil, errors.New("failed to access keyring: " + err.Error())
	}

	claims, err := decodeToken(tokenStr, a.signingKey)
	if err != nil {
		if isExpired(err) {
			return a.refreshSession(ctx)
		}
		return nil, err
	}

	return sessionFromClaims(claims)
}

// refreshSession mints a new token pair from a still-valid refresh token.
func (a *AuthService) refreshSession(ctx context.Context) (*models.Session, error) {
	refreshStr, err := keyring.Get(a.keyringService, a.refreshKey)
	if err != nil {
		return nil, errors.New("failed to access keyring: " + err.Error())
	}

	claims, err := decodeToken(refreshStr, a.signingKey)
	if err != nil {
		if isExpired(err) {
			return nil, errors.New("expired refresh token")
		}
		return nil, err
	}

	session, err := sessionFromClaims(claims)
	if err != nil {
		return nil, err
	}

	if err := a.storeTokens(session); err != nil {
		return nil, err
	}

	a.notify(EventTokenRefreshed, session)
	return session, nil
}

// SignInWithPassword authenticates a user by email and password.
//
// It finds the account row by email, compares the stored bcrypt hash with
// the given password, stores a fresh token pair in the keyring, and notifies
// subscribers. Any credential mismatch surfaces as the same generic error.
func (a *AuthService) SignInWithPassword(ctx context.Context, email, password string) error {
	if !utils.ValidateEmail(email) {
		return errors.New("invalid email format")
	}

	user, err := a.store.FindUserByEmail(ctx, email)
	if err != nil {
		return errors.New("authentication failed")
	}

	err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password))
	if err != nil {
		return errors.New("authentication failed")
	}

	session := &models.Session{UserID: user.ID, Email: user.Email}
	if err := a.storeTokens(session); err != nil {
		return err
	}

	a.notify(EventSignedIn, session)
	return nil
}

// SignUp registers a new account with the given email and password and signs
// it in. The email must not already be in use.
func (a *AuthService) SignUp(ctx context.Context, email, password string) error {
	if !utils.ValidateEmail(email) {
		return errors.New("invalid email format")
	}

	if !utils.ValidatePassword(password) {
		return errors.New("password must be at least 8 characters and contain both letters and numbers")
	}

	existing, err := a.store.FindUserByEmail(ctx, email)
	if err != nil && err != storage.ErrNotFound {
		return err
	}
	if existing != nil {
		return errors.New("an account with this email already exists")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	user := &models.User{
		Email:        email,
		PasswordHash: string(hashedPassword),
	}

	user, err = a.store.AddUser(ctx, user)
	if err != nil {
		return err
	}

	session := &models.Session{UserID: user.ID, Email: user.Email}
	if err := a.storeTokens(session); err != nil {
		return err
	}

	a.notify(EventSignedIn, session)
	return nil
}

// SignOut destroys the current session by clearing both tokens from the
// keyring, then notifies subscribers with a nil session.
func (a *AuthService) SignOut(ctx context.Context) error {
	if err := a.clearTokens(); err != nil {
		return err
	}

	a.notify(EventSignedOut, nil)
	return nil
}

// UpdatePassword replaces the signed-in user's password.
// Returns ErrNoSession when no user is signed in.
func (a *AuthService) UpdatePassword(ctx context.Context, newPassword string) error {
	session, err := a.CurrentSession(ctx)
	if err != nil {
		return err
	}
	if session == nil {
		return ErrNoSession
	}

	if !utils.ValidatePassword(newPassword) {
		return errors.New("password must be at least 8 characters and contain both letters and numbers")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	return a.store.UpdateUserPassword(ctx, session.UserID, string(hashedPassword))
}

// storeTokens mints a token pair for the session and saves both tokens in
// the keyring atomically: if storing the refresh token fails, the access
// token is removed again.
func (a *AuthService) storeTokens(session *models.Session) error {
	token, refreshToken, err := createTokens(session, a.signingKey)
	if err != nil {
		return err
	}

	if err := keyring.Set(a.keyringService, a.tokenKey, token); err != nil {
		return err
	}
	if err := keyring.Set(a.keyringService, a.refreshKey, refreshToken); err != nil {
		keyring.Delete(a.keyringService, a.tokenKey)
		return err
	}
	return nil
}

// clearTokens removes both tokens from the keyring atomically: if removing
// the refresh token fails, the access token is put back.
func (a *AuthService) clearTokens() error {
	accessToken, err := keyring.Get(a.keyringService, a.tokenKey)
	if err != nil {
		if err == keyring.ErrNotFound {
			return ErrNoSession
		}
		return errors.New("failed to access keyring: " + err.Error())
	}

	if err := keyring.Delete(a.keyringService, a.tokenKey); err != nil {
		return errors.New("failed to delete access token from keyring: " + err.Error())
	}
	if err := keyring.Delete(a.keyringService, a.refreshKey); err != nil {
		keyring.Set(a.keyringService, a.tokenKey, accessToken)
		return errors.New("failed to delete refresh token from keyring: " + err.Error())
	}
	return nil
}

// createTokens creates a signed access and refresh token pair carrying the
// session's user id and email.
func createTokens(session *models.Session, signingKey string) (string, string, error) {
	token, err := createToken(session, signingKey, accessTokenTTL)
	if err != nil {
		return "", "", errors.New("failed to create auth token")
	}

	refreshToken, err := createToken(session, signingKey, refreshTokenTTL)
	if err != nil {
		return "", "", errors.New("failed to create refresh token")
	}

	return token, refreshToken, nil
}

func createToken(session *models.Session, signingKey string, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"id":    session.UserID,
		"email": session.Email,
		"exp":   time.Now().Add(ttl).Unix(),
	}

	newToken := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return newToken.SignedString([]byte(signingKey))
}

// decodeToken decodes a signed token and returns the claims contained within
// it. It returns an error if the token is invalid or expired.
func decodeToken(tokenStr, signingKey string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(signingKey), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}

	return claims, nil
}

// isExpired reports whether a token decode failed solely because of expiry.
func isExpired(err error) bool {
	ve, ok := err.(*jwt.ValidationError)
	return ok && ve.Errors&jwt.ValidationErrorExpired != 0
}

func sessionFromClaims(claims jwt.MapClaims) (*models.Session, error) {
	id, ok := claims["id"].(string)
	if !ok || id == "" {
		return nil, errors.New("invalid token")
	}
	email, _ := claims["email"].(string)
	return &models.Session{UserID: id, Email: email}, nil
}
