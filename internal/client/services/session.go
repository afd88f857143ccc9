// Package services contains the application services of the libapp client:
// the session store, the feed synchronizer, the polling scheduler, and book
// submission. Services talk to the backend exclusively through api.Client.
package services

import (
	"context"
	"database/sql"
	"encoding/base64"
	"encoding/json"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"libapp/internal/client/api"
	"libapp/internal/client/models"
	"libapp/internal/client/repositories/metadata"
	"libapp/internal/common"
	"libapp/internal/cryptox"
	"libapp/internal/dbx"
	"libapp/internal/logging"
)

const (
	// sessionStorageKey is the fixed metadata key holding the encrypted
	// session record, mirroring the browser client's local-storage key.
	sessionStorageKey = "libapp-auth"

	// sessionSaltKey holds the per-install random salt for the storage key
	// derivation. Generated once, on the first persisted session.
	sessionSaltKey = "libapp-auth-salt"

	saltSize = 16
)

// sessionRecord is the persisted envelope: AES-GCM ciphertext plus nonce.
type sessionRecord struct {
	Nonce []byte `json:"nonce"`
	Data  []byte `json:"data"`
}

// SessionStore owns the authentication state. It is the single writer of
// the Session: login, logout, and profile updates mutate it, and every
// successful mutation persists the session encrypted and then reconfigures
// the gateway's credential header, in that order.
type SessionStore struct {
	client     api.Client
	db         *sql.DB
	passphrase []byte
	log        logging.Logger

	mu      sync.Mutex
	session models.Session
}

// NewSessionStore wires a store to the gateway and the local database.
// The store registers itself as the gateway's unauthorized handler so a
// stale credential forces a logout.
func NewSessionStore(client api.Client, db *sql.DB, passphrase string, log logging.Logger) *SessionStore {
	s := &SessionStore{
		client:     client,
		db:         db,
		passphrase: []byte(passphrase),
		log:        log.With("component", "session"),
	}
	client.SetUnauthorizedHandler(s.forceLogout)
	return s
}

// Initialize loads the persisted session and configures the credential
// header from it. Absent or corrupt state degrades to the logged-out
// default and is never an error. Runs once at startup, before any other
// request is issued.
func (s *SessionStore) Initialize(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.session = s.loadPersisted(ctx)
	if s.session.IsLoggedIn && tokenExpired(s.session.Token) {
		s.log.Info(ctx, "persisted token expired, starting logged out", "username", s.session.Username)
		s.session = models.Session{}
	}
	s.configureCredentialLocked()
}

func (s *SessionStore) loadPersisted(ctx context.Context) models.Session {
	repo := metadata.NewSQLiteRepository(s.db)

	blob, err := repo.Get(ctx, sessionStorageKey)
	if err != nil || blob == nil {
		if err != nil {
			s.log.Warn(ctx, "reading persisted session failed", "error", err)
		}
		return models.Session{}
	}
	salt, err := repo.Get(ctx, sessionSaltKey)
	if err != nil || salt == nil {
		return models.Session{}
	}

	var rec sessionRecord
	if err := json.Unmarshal(blob, &rec); err != nil {
		s.log.Warn(ctx, "persisted session corrupt, starting logged out", "error", err)
		return models.Session{}
	}

	key := cryptox.DeriveStorageKey(s.passphrase, salt)
	var sess models.Session
	if err := cryptox.Open(rec.Data, rec.Nonce, key, &sess); err != nil {
		s.log.Warn(ctx, "persisted session undecryptable, starting logged out", "error", err)
		return models.Session{}
	}
	return sess
}

// Login authenticates against the server. On success the session is
// replaced, persisted, and the credential header reconfigured; on failure
// the session is left untouched and the error is returned as-is.
func (s *SessionStore) Login(ctx context.Context, username, password string) (models.Session, error) {
	resp, err := s.client.Login(ctx, username, password)
	if err != nil {
		return models.Session{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.session = models.Session{
		IsLoggedIn:  true,
		Username:    resp.Username,
		DisplayName: resp.DisplayName,
		Image:       resp.Image,
		Password:    password,
		Token:       resp.Token,
	}
	s.persistLocked(ctx)
	s.configureCredentialLocked()

	return s.session, nil
}

// Register creates a new account. It does not log the user in.
func (s *SessionStore) Register(ctx context.Context, username, password, passwordRepeat string) error {
	return s.client.Register(ctx, username, password, passwordRepeat)
}

// Logout resets the session to the logged-out default, persists it, and
// removes the credential header.
func (s *SessionStore) Logout(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked(ctx)
}

// UpdateProfile sends the profile update for the current user and, on
// success, merges the returned fields into the session. Validation errors
// are returned without mutating the session.
func (s *SessionStore) UpdateProfile(ctx context.Context, update models.UserUpdate) (models.Session, error) {
	s.mu.Lock()
	if !s.session.IsLoggedIn {
		s.mu.Unlock()
		return models.Session{}, api.ErrUnauthorized
	}
	username := s.session.Username
	s.mu.Unlock()

	user, err := s.client.UpdateUser(ctx, username, update)
	if err != nil {
		return models.Session{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.session.DisplayName = user.DisplayName
	if user.Image != "" {
		s.session.Image = user.Image
	}
	s.persistLocked(ctx)
	s.configureCredentialLocked()

	return s.session, nil
}

// Current returns a copy of the session.
func (s *SessionStore) Current() models.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session
}

// forceLogout reacts to a 401 on an authenticated request: the stored
// credential no longer works, so the session is cleared.
func (s *SessionStore) forceLogout() {
	ctx := context.Background()

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.session.IsLoggedIn {
		return
	}
	s.log.Warn(ctx, "credential rejected by server, logging out", "username", s.session.Username)
	s.resetLocked(ctx)
}

func (s *SessionStore) resetLocked(ctx context.Context) {
	s.session = models.Session{}
	s.persistLocked(ctx)
	s.configureCredentialLocked()
}

// persistLocked writes the encrypted session, creating the per-install
// salt on first use. A failed write is logged, not surfaced: losing the
// cached session only costs a re-login on the next start.
func (s *SessionStore) persistLocked(ctx context.Context) {
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)

		salt, err := repo.Get(ctx, sessionSaltKey)
		if err != nil {
			return err
		}
		if salt == nil {
			salt = common.GenerateRandByteArray(saltSize)
			if err := repo.Set(ctx, sessionSaltKey, salt); err != nil {
				return err
			}
		}

		key := cryptox.DeriveStorageKey(s.passphrase, salt)
		ciphertext, nonce, err := cryptox.Seal(s.session, key)
		if err != nil {
			return err
		}

		blob, err := json.Marshal(sessionRecord{Nonce: nonce, Data: ciphertext})
		if err != nil {
			return err
		}
		return repo.Set(ctx, sessionStorageKey, blob)
	})
	if err != nil {
		s.log.Warn(ctx, "persisting session failed", "error", err)
	}
}

// configureCredentialLocked recomputes the gateway header from the current
// session. Called inside every mutation so no request issued after the
// mutation returns can observe a stale header.
func (s *SessionStore) configureCredentialLocked() {
	s.client.SetCredential(credentialHeader(s.session))
}

// credentialHeader derives the Authorization value the backend expects:
// the base64-encoded username:password pair. Empty when logged out.
func credentialHeader(sess models.Session) string {
	if !sess.IsLoggedIn {
		return ""
	}
	return "Bearer " + base64.StdEncoding.EncodeToString([]byte(sess.Username+":"+sess.Password))
}

// tokenExpired inspects the token's exp claim without verifying the
// signature; verification is the server's job. Opaque or claimless tokens
// are treated as unexpired and left for the server to reject.
func tokenExpired(token string) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(time.Now())
}
