package workspace

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/JohannVasquez/chatdeck/internal/gateway"
	"github.com/JohannVasquez/chatdeck/internal/localstore"
)

// Session couples the bearer token with the profile it belongs to. A
// non-nil session always has both.
type Session struct {
	Token string       `json:"token"`
	User  gateway.User `json:"user"`
}

func (s Session) wellFormed() bool {
	return s.Token != "" && s.User.ID != ""
}

// sessionGateway is the slice of the gateway client the session store needs.
type sessionGateway interface {
	Login(ctx context.Context, req gateway.LoginRequest) (gateway.TokenResponse, error)
	Register(ctx context.Context, req gateway.RegisterRequest) (gateway.User, error)
	Me(ctx context.Context) (gateway.User, error)
	UpdatePresence(ctx context.Context, userID string, update gateway.PresenceUpdate) error
	SetToken(token string)
	ClearToken()
}

// sessionRecords is the slice of the local store the session store needs.
type sessionRecords interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// SessionStore owns the authenticated identity. It is the only writer of
// the transport credential and of the persisted session record.
type SessionStore struct {
	mu      sync.RWMutex
	gw      sessionGateway
	records sessionRecords
	log     *slog.Logger
	current *Session
}

// NewSessionStore builds a session store over the gateway and local records.
func NewSessionStore(gw sessionGateway, records sessionRecords, log *slog.Logger) *SessionStore {
	if log == nil {
		log = slog.Default()
	}
	return &SessionStore{gw: gw, records: records, log: log}
}

// Current returns a copy of the active session, or nil when logged out.
func (s *SessionStore) Current() *Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil
	}
	copied := *s.current
	return &copied
}

// Restore loads the persisted session, if any. Corrupt, partial, or expired
// records are treated as absent, never partially trusted. On success the
// transport credential is installed and the session returned.
func (s *SessionStore) Restore(ctx context.Context) (*Session, error) {
	raw, err := s.records.Get(ctx, localstore.SessionKey)
	if err != nil {
		if errors.Is(err, localstore.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	var sess Session
	if err := json.Unmarshal(raw, &sess); err != nil || !sess.wellFormed() {
		s.log.Debug("discarding unusable persisted session")
		return nil, nil
	}
	if tokenExpired(sess.Token, time.Now()) {
		s.log.Debug("discarding expired persisted session", "user", sess.User.Username)
		return nil, nil
	}

	s.mu.Lock()
	s.current = &sess
	s.mu.Unlock()
	s.gw.SetToken(sess.Token)

	copied := sess
	return &copied, nil
}

// Login exchanges credentials for a token, fetches the profile behind it,
// then commits the combined session atomically. No state in which a token
// exists without a user is ever observable either in memory or on the
// transport.
func (s *SessionStore) Login(ctx context.Context, usernameOrEmail, password string) (Session, error) {
	token, err := s.gw.Login(ctx, gateway.LoginRequest{
		UsernameOrEmail: usernameOrEmail,
		Password:        password,
	})
	if err != nil {
		return Session{}, err
	}

	s.gw.SetToken(token.AccessToken)
	user, err := s.gw.Me(ctx)
	if err != nil {
		s.gw.ClearToken()
		return Session{}, err
	}

	sess := Session{Token: token.AccessToken, User: user}
	s.mu.Lock()
	s.current = &sess
	s.mu.Unlock()

	if raw, err := json.Marshal(sess); err == nil {
		if err := s.records.Set(ctx, localstore.SessionKey, raw); err != nil {
			s.log.Warn("could not persist session", "err", err)
		}
	}
	return sess, nil
}

// Register creates an account. It does not log the user in; callers chain
// Login afterwards.
func (s *SessionStore) Register(ctx context.Context, req gateway.RegisterRequest) (gateway.User, error) {
	return s.gw.Register(ctx, req)
}

// Logout tears the session down. The presence offline notice is best-effort;
// the local session and the persisted record are always cleared.
func (s *SessionStore) Logout(ctx context.Context) {
	s.mu.Lock()
	current := s.current
	s.current = nil
	s.mu.Unlock()

	if current != nil {
		if err := s.gw.UpdatePresence(ctx, current.User.ID, gateway.PresenceUpdate{Status: "offline"}); err != nil {
			s.log.Debug("presence offline notice failed", "err", err)
		}
	}
	s.gw.ClearToken()
	if err := s.records.Delete(ctx, localstore.SessionKey); err != nil {
		s.log.Warn("could not erase persisted session", "err", err)
	}
}

// tokenExpired inspects the exp claim without verifying the signature; the
// client holds no signing secret. Opaque non-JWT tokens and tokens without
// an exp claim are assumed live.
func tokenExpired(token string, now time.Time) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(now)
}
