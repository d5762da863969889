package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/DaniAlencarrr/Athletix/internal/auth"
	"github.com/DaniAlencarrr/Athletix/internal/domain"
	"github.com/DaniAlencarrr/Athletix/internal/event"
	"github.com/DaniAlencarrr/Athletix/internal/gate"
	"github.com/DaniAlencarrr/Athletix/internal/service"
	"github.com/DaniAlencarrr/Athletix/pkg/breaker"
	"github.com/DaniAlencarrr/Athletix/pkg/health"
	"github.com/DaniAlencarrr/Athletix/pkg/httputil"
	"github.com/DaniAlencarrr/Athletix/pkg/middleware"
	"github.com/DaniAlencarrr/Athletix/pkg/pagination"
)

// ============================================================================
// Mock Repositories
// ============================================================================

type mockAccountRepo struct {
	mock.Mock
}

func (m *mockAccountRepo) Create(ctx context.Context, account *domain.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *mockAccountRepo) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *mockAccountRepo) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *mockAccountRepo) GetStatus(ctx context.Context, id string) (*domain.OnboardingStatus, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.OnboardingStatus), args.Error(1)
}

func (m *mockAccountRepo) UpdatePassword(ctx context.Context, id, hash string) error {
	args := m.Called(ctx, id, hash)
	return args.Error(0)
}

type mockOnboardingRepo struct {
	mock.Mock
}

func (m *mockOnboardingRepo) Complete(ctx context.Context, accountID string, sub domain.Submission) (*domain.Account, error) {
	args := m.Called(ctx, accountID, sub)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

type mockDirectoryRepo struct {
	mock.Mock
}

func (m *mockDirectoryRepo) List(ctx context.Context, role domain.Role, page pagination.Params) ([]domain.DirectoryEntry, int, error) {
	args := m.Called(ctx, role, page)
	entries, _ := args.Get(0).([]domain.DirectoryEntry)
	return entries, args.Int(1), args.Error(2)
}

func (m *mockDirectoryRepo) FindByName(ctx context.Context, role domain.Role, phrase string) (*domain.DirectoryEntry, error) {
	args := m.Called(ctx, role, phrase)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DirectoryEntry), args.Error(1)
}

// ============================================================================
// Test Helpers
// ============================================================================

const testSecret = "handler-test-secret-with-32-bytes-min"

type testEnv struct {
	router     http.Handler
	accounts   *mockAccountRepo
	onboarding *mockOnboardingRepo
	directory  *mockDirectoryRepo
	sessions   *service.SessionService
}

type envOption func(*RouterConfig)

func withFrontend(h http.Handler) envOption {
	return func(c *RouterConfig) { c.Frontend = h }
}

func withLoginLimiter(rl *middleware.RateLimiter) envOption {
	return func(c *RouterConfig) { c.LoginLimiter = rl }
}

func newTestEnv(t *testing.T, opts ...envOption) *testEnv {
	t.Helper()
	logger := discardLogger()

	accounts := new(mockAccountRepo)
	onboardingRepo := new(mockOnboardingRepo)
	directoryRepo := new(mockDirectoryRepo)

	producer := event.NewProducer(nil, logger)
	verifier := auth.NewVerifier(accounts, nil, logger)
	tokens := auth.NewTokenManager(testSecret, "athletix", time.Hour)
	sessions := service.NewSessionService(accounts, verifier, tokens, producer, logger)
	statuses := service.NewStatusLookup(accounts, nil, breaker.DefaultConfig("test-status"), logger)

	cfg := RouterConfig{
		ServiceName: "athletix-test",
		Sessions:    sessions,
		Onboarding:  service.NewOnboardingService(onboardingRepo, statuses, producer, logger),
		Directory:   service.NewDirectoryService(directoryRepo),
		Gate:        gate.New(statuses, time.Second, logger),
		Cookie:      gate.Cookie{Name: gate.DefaultCookieName},
		Health:      health.NewHandler(),
		CORS:        middleware.DefaultCORSConfig(),
		Logger:      logger,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &testEnv{
		router:     NewRouter(cfg),
		accounts:   accounts,
		onboarding: onboardingRepo,
		directory:  directoryRepo,
		sessions:   sessions,
	}
}

// token signs a session for account.
func (e *testEnv) token(t *testing.T, account *domain.Account) string {
	t.Helper()
	sess, err := e.sessions.Issue(account)
	require.NoError(t, err)
	return sess.Token
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func jsonRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}

func withSession(req *http.Request, token string) *http.Request {
	req.AddCookie(&http.Cookie{Name: gate.DefaultCookieName, Value: token})
	return req
}

func sessionCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == gate.DefaultCookieName {
			return c
		}
	}
	return nil
}

type envelope struct {
	Data  json.RawMessage         `json:"data"`
	Error *httputil.ErrorResponse `json:"error"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	env := decode(t, rec)
	require.Nil(t, env.Error)
	require.NoError(t, json.Unmarshal(env.Data, dst))
}

func boolPtr(b bool) *bool { return &b }

func newAccount(role *domain.Role, completed bool) *domain.Account {
	return &domain.Account{
		ID:                  "9b2f3a1e-4c5d-4e6f-8a7b-1c2d3e4f5a6b",
		Name:                "Ana Souza",
		Email:               "ana@athletix.dev",
		Role:                role,
		OnboardingCompleted: completed,
		CreatedAt:           time.Now().UTC(),
		UpdatedAt:           time.Now().UTC(),
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
