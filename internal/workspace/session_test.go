package workspace

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/JohannVasquez/chatdeck/internal/gateway"
	"github.com/JohannVasquez/chatdeck/internal/localstore"
)

type fakeSessionGateway struct {
	loginResp    gateway.TokenResponse
	loginErr     error
	meResp       gateway.User
	meErr        error
	presenceErr  error
	token        string
	presenceSent []gateway.PresenceUpdate
}

func (f *fakeSessionGateway) Login(ctx context.Context, req gateway.LoginRequest) (gateway.TokenResponse, error) {
	return f.loginResp, f.loginErr
}

func (f *fakeSessionGateway) Register(ctx context.Context, req gateway.RegisterRequest) (gateway.User, error) {
	return gateway.User{ID: "u1", Username: req.Username, Email: req.Email}, nil
}

func (f *fakeSessionGateway) Me(ctx context.Context) (gateway.User, error) {
	return f.meResp, f.meErr
}

func (f *fakeSessionGateway) UpdatePresence(ctx context.Context, userID string, update gateway.PresenceUpdate) error {
	f.presenceSent = append(f.presenceSent, update)
	return f.presenceErr
}

func (f *fakeSessionGateway) SetToken(token string) { f.token = token }
func (f *fakeSessionGateway) ClearToken()           { f.token = "" }

type fakeRecords struct {
	values map[string][]byte
	setErr error
	delErr error
}

func newFakeRecords() *fakeRecords {
	return &fakeRecords{values: map[string][]byte{}}
}

func (f *fakeRecords) Get(ctx context.Context, key string) ([]byte, error) {
	value, ok := f.values[key]
	if !ok {
		return nil, localstore.ErrNotFound
	}
	return value, nil
}

func (f *fakeRecords) Set(ctx context.Context, key string, value []byte) error {
	if f.setErr != nil {
		return f.setErr
	}
	f.values[key] = value
	return nil
}

func (f *fakeRecords) Delete(ctx context.Context, key string) error {
	if f.delErr != nil {
		return f.delErr
	}
	delete(f.values, key)
	return nil
}

func TestLoginCommitsAndPersists(t *testing.T) {
	gw := &fakeSessionGateway{
		loginResp: gateway.TokenResponse{AccessToken: "tok-1"},
		meResp:    gateway.User{ID: "u1", Username: "johann"},
	}
	records := newFakeRecords()
	store := NewSessionStore(gw, records, nil)

	sess, err := store.Login(context.Background(), "johann", "secret")
	require.NoError(t, err)
	require.Equal(t, "tok-1", sess.Token)
	require.Equal(t, "johann", sess.User.Username)
	require.Equal(t, "tok-1", gw.token)

	current := store.Current()
	require.NotNil(t, current)
	require.Equal(t, "u1", current.User.ID)

	raw, ok := records.values[localstore.SessionKey]
	require.True(t, ok)
	var persisted Session
	require.NoError(t, json.Unmarshal(raw, &persisted))
	require.Equal(t, sess, persisted)
}

func TestLoginProfileFailureLeavesNoCredential(t *testing.T) {
	gw := &fakeSessionGateway{
		loginResp: gateway.TokenResponse{AccessToken: "tok-1"},
		meErr:     errors.New("users service down"),
	}
	store := NewSessionStore(gw, newFakeRecords(), nil)

	_, err := store.Login(context.Background(), "johann", "secret")
	require.Error(t, err)
	require.Empty(t, gw.token)
	require.Nil(t, store.Current())
}

func TestLoginBadCredentials(t *testing.T) {
	gw := &fakeSessionGateway{loginErr: gateway.ErrUnauthorized}
	store := NewSessionStore(gw, newFakeRecords(), nil)

	_, err := store.Login(context.Background(), "johann", "wrong")
	require.ErrorIs(t, err, gateway.ErrUnauthorized)
	require.Nil(t, store.Current())
}

func TestLoginSurvivesPersistFailure(t *testing.T) {
	gw := &fakeSessionGateway{
		loginResp: gateway.TokenResponse{AccessToken: "tok-1"},
		meResp:    gateway.User{ID: "u1", Username: "johann"},
	}
	records := newFakeRecords()
	records.setErr = errors.New("disk full")
	store := NewSessionStore(gw, records, nil)

	sess, err := store.Login(context.Background(), "johann", "secret")
	require.NoError(t, err)
	require.Equal(t, "tok-1", sess.Token)
	require.NotNil(t, store.Current())
}

func TestRestoreMissingRecord(t *testing.T) {
	store := NewSessionStore(&fakeSessionGateway{}, newFakeRecords(), nil)
	sess, err := store.Restore(context.Background())
	require.NoError(t, err)
	require.Nil(t, sess)
}

func TestRestoreCorruptRecord(t *testing.T) {
	gw := &fakeSessionGateway{}
	records := newFakeRecords()
	records.values[localstore.SessionKey] = []byte("{not json")
	store := NewSessionStore(gw, records, nil)

	sess, err := store.Restore(context.Background())
	require.NoError(t, err)
	require.Nil(t, sess)
	require.Empty(t, gw.token)
}

func TestRestorePartialRecord(t *testing.T) {
	gw := &fakeSessionGateway{}
	records := newFakeRecords()
	raw, _ := json.Marshal(Session{Token: "tok-1"})
	records.values[localstore.SessionKey] = raw
	store := NewSessionStore(gw, records, nil)

	sess, err := store.Restore(context.Background())
	require.NoError(t, err)
	require.Nil(t, sess)
	require.Empty(t, gw.token)
}

func TestRestoreExpiredToken(t *testing.T) {
	expired := signedToken(t, time.Now().Add(-time.Hour))
	gw := &fakeSessionGateway{}
	records := newFakeRecords()
	raw, _ := json.Marshal(Session{Token: expired, User: gateway.User{ID: "u1", Username: "johann"}})
	records.values[localstore.SessionKey] = raw
	store := NewSessionStore(gw, records, nil)

	sess, err := store.Restore(context.Background())
	require.NoError(t, err)
	require.Nil(t, sess)
	require.Empty(t, gw.token)
}

func TestRestoreInstallsCredential(t *testing.T) {
	live := signedToken(t, time.Now().Add(time.Hour))
	gw := &fakeSessionGateway{}
	records := newFakeRecords()
	raw, _ := json.Marshal(Session{Token: live, User: gateway.User{ID: "u1", Username: "johann"}})
	records.values[localstore.SessionKey] = raw
	store := NewSessionStore(gw, records, nil)

	sess, err := store.Restore(context.Background())
	require.NoError(t, err)
	require.NotNil(t, sess)
	require.Equal(t, "johann", sess.User.Username)
	require.Equal(t, live, gw.token)
	require.NotNil(t, store.Current())
}

func TestLogoutClearsEverything(t *testing.T) {
	gw := &fakeSessionGateway{
		loginResp: gateway.TokenResponse{AccessToken: "tok-1"},
		meResp:    gateway.User{ID: "u1", Username: "johann"},
	}
	records := newFakeRecords()
	store := NewSessionStore(gw, records, nil)
	_, err := store.Login(context.Background(), "johann", "secret")
	require.NoError(t, err)

	store.Logout(context.Background())
	require.Nil(t, store.Current())
	require.Empty(t, gw.token)
	require.NotContains(t, records.values, localstore.SessionKey)
	require.Len(t, gw.presenceSent, 1)
	require.Equal(t, "offline", gw.presenceSent[0].Status)
}

func TestLogoutBestEffort(t *testing.T) {
	gw := &fakeSessionGateway{
		loginResp:   gateway.TokenResponse{AccessToken: "tok-1"},
		meResp:      gateway.User{ID: "u1", Username: "johann"},
		presenceErr: errors.New("presence down"),
	}
	records := newFakeRecords()
	records.delErr = errors.New("disk gone")
	store := NewSessionStore(gw, records, nil)
	_, err := store.Login(context.Background(), "johann", "secret")
	require.NoError(t, err)

	// Neither failure may keep the user logged in.
	store.Logout(context.Background())
	require.Nil(t, store.Current())
	require.Empty(t, gw.token)
}

func TestTokenExpired(t *testing.T) {
	now := time.Now()
	require.True(t, tokenExpired(signedToken(t, now.Add(-time.Minute)), now))
	require.False(t, tokenExpired(signedToken(t, now.Add(time.Minute)), now))
	// Opaque tokens carry no exp claim and are assumed live.
	require.False(t, tokenExpired("opaque-token", now))
	require.False(t, tokenExpired("", now))
}

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	claims := jwt.MapClaims{"sub": "u1", "exp": exp.Unix()}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return token
}
