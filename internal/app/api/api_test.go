package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"app/db"
	"app/pkg/auth"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUserStore struct {
	mu     sync.Mutex
	nextID int
	byName map[string]*db.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{byName: map[string]*db.User{}}
}

func (s *fakeUserStore) CreateUser(ctx context.Context, username, passwordHash string) (*db.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byName[username]; ok {
		return nil, fmt.Errorf("failed to create user: %w", &pgconn.PgError{Code: "23505"})
	}

	s.nextID++
	user := &db.User{ID: s.nextID, Username: username, PasswordHash: passwordHash}
	s.byName[username] = user

	return user, nil
}

func (s *fakeUserStore) GetUserByUsername(ctx context.Context, username string) (*db.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.byName[username]
	if !ok {
		return nil, fmt.Errorf("failed to get user by username: %w", pgx.ErrNoRows)
	}

	return user, nil
}

func (s *fakeUserStore) GetUserByID(ctx context.Context, id int) (*db.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, user := range s.byName {
		if user.ID == id {
			return user, nil
		}
	}

	return nil, fmt.Errorf("failed to get user by id: %w", pgx.ErrNoRows)
}

type fakeConversionStore struct {
	mu      sync.Mutex
	nextID  int
	rows    []db.Conversion
	addErr  error
	addedAt time.Time
}

func (s *fakeConversionStore) AddConversion(ctx context.Context, userID int, text, audioURL string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.addErr != nil {
		return s.addErr
	}

	s.nextID++
	s.addedAt = s.addedAt.Add(time.Second)
	s.rows = append(s.rows, db.Conversion{
		ID:        s.nextID,
		UserID:    userID,
		Text:      text,
		AudioURL:  audioURL,
		CreatedAt: s.addedAt,
	})

	return nil
}

func (s *fakeConversionStore) GetConversions(ctx context.Context, userID int) ([]db.Conversion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conversions := []db.Conversion{}
	for _, row := range s.rows {
		if row.UserID == userID {
			conversions = append(conversions, row)
		}
	}

	sort.Slice(conversions, func(i, j int) bool {
		return conversions[i].CreatedAt.After(conversions[j].CreatedAt)
	})

	return conversions, nil
}

func (s *fakeConversionStore) ClearConversions(ctx context.Context, userID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.rows[:0]
	for _, row := range s.rows {
		if row.UserID != userID {
			kept = append(kept, row)
		}
	}
	s.rows = kept

	return nil
}

type fakeGateway struct {
	mu       sync.Mutex
	audioURL string
	err      error
	texts    []string
}

func (g *fakeGateway) Submit(ctx context.Context, text string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.texts = append(g.texts, text)

	if g.err != nil {
		return "", g.err
	}

	return g.audioURL, nil
}

const testSecret = "test-secret"

type testEnv struct {
	router      http.Handler
	users       *fakeUserStore
	conversions *fakeConversionStore
	gateway     *fakeGateway
	auth        *auth.Service
}

func newTestEnv() *testEnv {
	users := newFakeUserStore()
	conversions := &fakeConversionStore{}
	gateway := &fakeGateway{audioURL: "https://x/a.mp3"}

	authService := auth.New(&auth.Config{Secret: testSecret, TokenTTL: time.Hour})

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	apiClient := NewAPI(&Config{Port: 0}, logger, authService, users, conversions, gateway)

	return &testEnv{
		router:      apiClient.NewRouter(),
		users:       users,
		conversions: conversions,
		gateway:     gateway,
		auth:        authService,
	}
}

func (env *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	return rec
}

func (env *testEnv) registerAndLogin(t *testing.T, username, password string) string {
	t.Helper()

	rec := env.do(t, http.MethodPost, "/register", "", &credentialsReq{Username: username, Password: password})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = env.do(t, http.MethodPost, "/login", "", &credentialsReq{Username: username, Password: password})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp loginResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)

	return resp.Token
}

func TestRegister_DuplicateUsername(t *testing.T) {
	env := newTestEnv()

	rec := env.do(t, http.MethodPost, "/register", "", &credentialsReq{Username: "alice", Password: "pw1"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = env.do(t, http.MethodPost, "/register", "", &credentialsReq{Username: "alice", Password: "pw2"})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "username already exists")

	// first user's credentials still valid
	rec = env.do(t, http.MethodPost, "/login", "", &credentialsReq{Username: "alice", Password: "pw1"})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRegister_MissingFields(t *testing.T) {
	env := newTestEnv()

	rec := env.do(t, http.MethodPost, "/register", "", &credentialsReq{Username: "alice"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	env := newTestEnv()
	env.registerAndLogin(t, "alice", "correct")

	rec := env.do(t, http.MethodPost, "/login", "", &credentialsReq{Username: "alice", Password: "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(t, http.MethodPost, "/login", "", &credentialsReq{Username: "nobody", Password: "whatever"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUser_ReturnsUsername(t *testing.T) {
	env := newTestEnv()
	token := env.registerAndLogin(t, "alice", "pw")

	rec := env.do(t, http.MethodGet, "/user", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp userResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "alice", resp.Username)
}

func TestProtected_MissingToken(t *testing.T) {
	env := newTestEnv()

	rec := env.do(t, http.MethodGet, "/protected", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestProtected_InvalidToken(t *testing.T) {
	env := newTestEnv()

	rec := env.do(t, http.MethodGet, "/protected", "garbage", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestProtected_ExpiredToken(t *testing.T) {
	env := newTestEnv()
	env.registerAndLogin(t, "alice", "pw")

	expiredIssuer := auth.NewWithClock(&auth.Config{Secret: testSecret, TokenTTL: time.Hour}, func() time.Time {
		return time.Now().Add(-2 * time.Hour)
	})

	expired, err := expiredIssuer.IssueToken(1)
	require.NoError(t, err)

	for _, path := range []string{"/protected", "/user", "/getTexts"} {
		rec := env.do(t, http.MethodGet, path, expired, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code, path)
	}
}

func TestGetTexts_ScopedToCaller(t *testing.T) {
	env := newTestEnv()
	tokenA := env.registerAndLogin(t, "alice", "pw")
	tokenB := env.registerAndLogin(t, "bob", "pw")

	rec := env.do(t, http.MethodPost, "/saveText", tokenA, &saveTextReq{Text: "alice text", AudioURL: "https://x/alice.mp3"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = env.do(t, http.MethodPost, "/saveText", tokenB, &saveTextReq{Text: "bob text", AudioURL: "https://x/bob.mp3"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = env.do(t, http.MethodGet, "/getTexts", tokenA, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var rows []db.Conversion
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rows))

	require.Len(t, rows, 1)
	assert.Equal(t, "alice text", rows[0].Text)
}

func TestGetTexts_NewestFirst(t *testing.T) {
	env := newTestEnv()
	token := env.registerAndLogin(t, "alice", "pw")

	for _, text := range []string{"first", "second", "third"} {
		rec := env.do(t, http.MethodPost, "/saveText", token, &saveTextReq{Text: text, AudioURL: "https://x/a.mp3"})
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := env.do(t, http.MethodGet, "/getTexts", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var rows []db.Conversion
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rows))

	require.Len(t, rows, 3)
	assert.Equal(t, "third", rows[0].Text)
	assert.Equal(t, "first", rows[2].Text)
}

func TestClearHistory_OnlyCallersRows(t *testing.T) {
	env := newTestEnv()
	tokenA := env.registerAndLogin(t, "alice", "pw")
	tokenB := env.registerAndLogin(t, "bob", "pw")

	env.do(t, http.MethodPost, "/saveText", tokenA, &saveTextReq{Text: "alice text", AudioURL: "https://x/alice.mp3"})
	env.do(t, http.MethodPost, "/saveText", tokenB, &saveTextReq{Text: "bob text", AudioURL: "https://x/bob.mp3"})

	rec := env.do(t, http.MethodDelete, "/clearHistory", tokenA, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/getTexts", tokenA, nil)
	var rowsA []db.Conversion
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rowsA))
	assert.Empty(t, rowsA)

	rec = env.do(t, http.MethodGet, "/getTexts", tokenB, nil)
	var rowsB []db.Conversion
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rowsB))
	assert.Len(t, rowsB, 1)
}

func TestSynthesize_SuccessSavesConversion(t *testing.T) {
	env := newTestEnv()
	token := env.registerAndLogin(t, "alice", "pw")

	rec := env.do(t, http.MethodPost, "/synthesize", token, &synthesizeReq{Text: "hello world"})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp synthesizeResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "https://x/a.mp3", resp.AudioURL)

	rec = env.do(t, http.MethodGet, "/getTexts", token, nil)
	var rows []db.Conversion
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rows))

	require.Len(t, rows, 1)
	assert.Equal(t, "hello world", rows[0].Text)
	assert.Equal(t, "https://x/a.mp3", rows[0].AudioURL)
}

func TestSynthesize_GatewayFailure(t *testing.T) {
	env := newTestEnv()
	env.gateway.err = fmt.Errorf("synthesis failed")
	token := env.registerAndLogin(t, "alice", "pw")

	rec := env.do(t, http.MethodPost, "/synthesize", token, &synthesizeReq{Text: "hello"})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	rec = env.do(t, http.MethodGet, "/getTexts", token, nil)
	var rows []db.Conversion
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rows))
	assert.Empty(t, rows)
}

func TestSynthesize_EmptyText(t *testing.T) {
	env := newTestEnv()
	token := env.registerAndLogin(t, "alice", "pw")

	rec := env.do(t, http.MethodPost, "/synthesize", token, &synthesizeReq{Text: ""})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSaveHistory_Bulk(t *testing.T) {
	env := newTestEnv()
	token := env.registerAndLogin(t, "alice", "pw")

	rec := env.do(t, http.MethodPost, "/saveHistory", token, &saveHistoryReq{History: []historyItem{
		{Text: "one", AudioURL: "https://x/1.mp3"},
		{Text: "two", AudioURL: "https://x/2.mp3"},
		{Text: "three", AudioURL: "https://x/3.mp3"},
	}})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/getTexts", token, nil)
	var rows []db.Conversion
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rows))
	assert.Len(t, rows, 3)
}

func TestSaveHistory_StorageFailure(t *testing.T) {
	env := newTestEnv()
	token := env.registerAndLogin(t, "alice", "pw")

	env.conversions.addErr = fmt.Errorf("db down")

	rec := env.do(t, http.MethodPost, "/saveHistory", token, &saveHistoryReq{History: []historyItem{
		{Text: "one", AudioURL: "https://x/1.mp3"},
	}})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
