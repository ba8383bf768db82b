package api

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"care_wallet/internal/cache"
	"care_wallet/internal/domain"
	"care_wallet/internal/schema"
	"care_wallet/internal/store"
	"care_wallet/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func init() {
	gin.SetMode(gin.TestMode)
	logrus.SetLevel(logrus.PanicLevel)
}

type fakeLLM struct {
	reply string
	err   error
}

func (f *fakeLLM) Complete(context.Context, []domain.ChatMessage) (string, error) {
	return f.reply, f.err
}

type testServer struct {
	router http.Handler
	store  *store.MemoryStore
	cache  *cache.Memory
	llm    *fakeLLM
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ts := &testServer{
		store: store.NewMemoryStore(),
		cache: cache.NewMemory(),
		llm:   &fakeLLM{reply: "I hear you."},
	}
	r, err := NewRouter(Deps{
		Store:          ts.store,
		Cache:          ts.cache,
		LLM:            ts.llm,
		JWTSecret:      testSecret,
		CacheTTL:       time.Minute,
		ChatRatePerMin: 1000,
	})
	require.NoError(t, err)
	ts.router = r
	return ts
}

// userWithWallet creates a verified user holding balance and returns a bearer token.
func (ts *testServer) userWithWallet(t *testing.T, email string, balance int64) (*domain.User, string) {
	t.Helper()
	ctx := context.Background()
	now := time.Now()
	u := &domain.User{Email: email, Password: "x", EmailVerifiedAt: &now, Profile: domain.Profile{FullName: "Test User"}}
	require.NoError(t, ts.store.CreateUser(ctx, u))
	w := &domain.Wallet{UserID: u.ID, Address: utils.NewMockAddress(), Balance: decimal.NewFromInt(balance), IsActive: true}
	require.NoError(t, ts.store.CreateWallet(ctx, w))
	u.Wallet = w
	token, err := utils.GenerateJWT(u.ID, testSecret)
	require.NoError(t, err)
	return u, token
}

func (ts *testServer) do(method, path, token string, body any, headers ...string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func (ts *testServer) balance(t *testing.T, userID uint) decimal.Decimal {
	t.Helper()
	w, err := ts.store.GetWalletByUser(context.Background(), userID)
	require.NoError(t, err)
	return w.Balance
}

func TestHealthAndMetrics(t *testing.T) {
	ts := newTestServer(t)
	w := ts.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = ts.do(http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "care_wallet_http_requests_total")
}

func TestRegisterLoginMe(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(http.MethodPost, "/api/auth/register", "", map[string]any{
		"email":            "jane@example.com",
		"password":         "s3cretpass",
		"confirm_password": "s3cretpass",
		"full_name":        "Jane Doe",
		"agree_terms":      true,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.NotContains(t, w.Body.String(), "s3cretpass")

	w = ts.do(http.MethodPost, "/api/auth/register", "", map[string]any{
		"email":            "jane@example.com",
		"password":         "s3cretpass",
		"confirm_password": "s3cretpass",
		"full_name":        "Jane Doe",
		"agree_terms":      true,
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = ts.do(http.MethodPost, "/api/auth/login", "", map[string]any{"email": "jane@example.com", "password": "s3cretpass"})
	require.Equal(t, http.StatusOK, w.Code)
	token := decode(t, w)["token"].(string)

	w = ts.do(http.MethodGet, "/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	user := decode(t, w)["user"].(map[string]any)
	assert.Equal(t, "jane@example.com", user["email"])
	assert.Equal(t, "Jane Doe", user["profile"].(map[string]any)["full_name"])

	w = ts.do(http.MethodPost, "/api/auth/login", "", map[string]any{"email": "jane@example.com", "password": "wrong-pass"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"error":"Invalid credentials"}`, w.Body.String())
}

func TestRegisterValidation(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(http.MethodPost, "/api/auth/register", "", map[string]any{"email": "jane@example.com"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	msg := decode(t, w)["error"].(string)
	assert.Contains(t, msg, "Missing required fields:")
	assert.Contains(t, msg, "password")
	assert.Contains(t, msg, "full_name")

	w = ts.do(http.MethodPost, "/api/auth/register", "", map[string]any{
		"email":            "jane@example.com",
		"password":         "short",
		"confirm_password": "short",
		"full_name":        "Jane Doe",
		"agree_terms":      true,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Invalid fields: password"}`, w.Body.String())

	// 40 characters, but 80 bytes once encoded
	wide := strings.Repeat("é", 40)
	w = ts.do(http.MethodPost, "/api/auth/register", "", map[string]any{
		"email":            "jane@example.com",
		"password":         wide,
		"confirm_password": wide,
		"full_name":        "Jane Doe",
		"agree_terms":      true,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Invalid fields: password"}`, w.Body.String())
	_, err := ts.store.GetUserByEmail(context.Background(), "jane@example.com")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestVerifyEmailEndpoint(t *testing.T) {
	ts := newTestServer(t)
	u := &domain.User{Email: "jane@example.com", Password: "x"}
	require.NoError(t, ts.store.CreateUser(context.Background(), u))
	token, err := utils.GenerateVerificationToken(u.ID, testSecret)
	require.NoError(t, err)

	w := ts.do(http.MethodPost, "/api/auth/verify-email", "", map[string]any{"token": token})
	require.Equal(t, http.StatusOK, w.Code)
	user := decode(t, w)["user"].(map[string]any)
	assert.NotNil(t, user["email_verified_at"])

	w = ts.do(http.MethodPost, "/api/auth/verify-email", "", map[string]any{"token": "nope"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	ts := newTestServer(t)
	for _, r := range []struct{ method, path string }{
		{http.MethodGet, "/api/auth/me"},
		{http.MethodGet, "/api/wallet"},
		{http.MethodPost, "/api/payment"},
		{http.MethodPost, "/api/health-service"},
		{http.MethodGet, "/api/admin/users"},
	} {
		w := ts.do(r.method, r.path, "", map[string]any{})
		assert.Equal(t, http.StatusUnauthorized, w.Code, r.path)
		assert.Contains(t, decode(t, w), "error")
	}
}

func TestDeletedUserIsUnauthorized(t *testing.T) {
	ts := newTestServer(t)
	token, err := utils.GenerateJWT(404, testSecret)
	require.NoError(t, err)

	w := ts.do(http.MethodPost, "/api/payment", token, map[string]any{"amount": 10, "recipient_name": "Jane Doe"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w = ts.do(http.MethodGet, "/api/auth/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestWalletSetupAndCache(t *testing.T) {
	ts := newTestServer(t)
	u := &domain.User{Email: "jane@example.com", Password: "x"}
	require.NoError(t, ts.store.CreateUser(context.Background(), u))
	token, _ := utils.GenerateJWT(u.ID, testSecret)

	w := ts.do(http.MethodGet, "/api/wallet", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	setup := map[string]any{
		"full_name":               "Jane Doe",
		"phone":                   "+15550100",
		"date_of_birth":           "1990-04-12",
		"emergency_contact_name":  "John Doe",
		"emergency_contact_phone": "+15550101",
		"agree_terms":             true,
	}
	w = ts.do(http.MethodPost, "/api/wallet/setup", token, setup)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Equal(t, true, body["success"])
	assert.EqualValues(t, 0, body["wallet"].(map[string]any)["balance"])

	w = ts.do(http.MethodPost, "/api/wallet/setup", token, setup)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = ts.do(http.MethodGet, "/api/wallet", token, nil)
	assert.Equal(t, false, decode(t, w)["cached"])
	w = ts.do(http.MethodGet, "/api/wallet", token, nil)
	assert.Equal(t, true, decode(t, w)["cached"])

	// a deposit invalidates the cached wallet
	w = ts.do(http.MethodPost, "/api/wallet/deposit", token, map[string]any{"amount": 25.5})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = ts.do(http.MethodGet, "/api/wallet", token, nil)
	body = decode(t, w)
	assert.Equal(t, false, body["cached"])
	assert.EqualValues(t, 25.5, body["wallet"].(map[string]any)["balance"])

	w = ts.do(http.MethodGet, "/api/wallet/transactions", token, nil)
	body = decode(t, w)
	assert.EqualValues(t, 1, body["total"])
	assert.Equal(t, false, body["cached"])
	w = ts.do(http.MethodGet, "/api/wallet/transactions", token, nil)
	assert.Equal(t, true, decode(t, w)["cached"])
}

func TestPaymentSucceeds(t *testing.T) {
	ts := newTestServer(t)
	u, token := ts.userWithWallet(t, "payer@example.com", 100)

	w := ts.do(http.MethodPost, "/api/payment", token, map[string]any{
		"amount":         40,
		"recipient_name": "Jane Doe",
		"description":    "Consultation",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Equal(t, true, body["success"])
	payment := body["payment"].(map[string]any)
	assert.EqualValues(t, 40, payment["amount"])
	assert.Equal(t, "completed", payment["status"])
	assert.Equal(t, "Jane Doe", payment["recipient_name"])
	assert.NotEmpty(t, payment["tx_reference"])

	assert.True(t, ts.balance(t, u.ID).Equal(decimal.NewFromInt(60)))
	assert.Len(t, ts.store.WalletTransactions(), 1)
	_, total, err := ts.store.ListPayments(context.Background(), store.PaymentFilter{UserID: u.ID, Page: utils.Page{Number: 1, Size: 20}})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
}

func TestPaymentInsufficientBalance(t *testing.T) {
	ts := newTestServer(t)
	u, token := ts.userWithWallet(t, "payer@example.com", 10)

	w := ts.do(http.MethodPost, "/api/payment", token, map[string]any{"amount": 40, "recipient_name": "Jane Doe"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Insufficient balance"}`, w.Body.String())

	assert.True(t, ts.balance(t, u.ID).Equal(decimal.NewFromInt(10)))
	assert.Empty(t, ts.store.WalletTransactions())
	assert.Empty(t, ts.store.Notifications())
	st, err := ts.store.Stats(context.Background())
	require.NoError(t, err)
	assert.Zero(t, st.Payments)
}

func TestPaymentMissingFields(t *testing.T) {
	ts := newTestServer(t)
	_, token := ts.userWithWallet(t, "payer@example.com", 10)

	w := ts.do(http.MethodPost, "/api/payment", token, map[string]any{"amount": 5})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Missing required fields: recipient_name"}`, w.Body.String())

	req := httptest.NewRequest(http.MethodPost, "/api/payment", bytes.NewBufferString("{not json"))
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"Invalid request"}`, rec.Body.String())
}

func TestPaymentWithoutKeyIsNotIdempotent(t *testing.T) {
	ts := newTestServer(t)
	u, token := ts.userWithWallet(t, "payer@example.com", 100)
	payload := map[string]any{"amount": 10, "recipient_name": "Jane Doe"}

	first := decode(t, ts.do(http.MethodPost, "/api/payment", token, payload))["payment"].(map[string]any)
	second := decode(t, ts.do(http.MethodPost, "/api/payment", token, payload))["payment"].(map[string]any)
	assert.NotEqual(t, first["id"], second["id"])
	assert.True(t, ts.balance(t, u.ID).Equal(decimal.NewFromInt(80)))
}

func TestPaymentIdempotencyKeyReplays(t *testing.T) {
	ts := newTestServer(t)
	u, token := ts.userWithWallet(t, "payer@example.com", 100)
	payload := map[string]any{"amount": 10, "recipient_name": "Jane Doe"}

	w1 := ts.do(http.MethodPost, "/api/payment", token, payload, IdempotencyHeader, "key-1")
	require.Equal(t, http.StatusOK, w1.Code, w1.Body.String())
	w2 := ts.do(http.MethodPost, "/api/payment", token, payload, IdempotencyHeader, "key-1")
	require.Equal(t, http.StatusOK, w2.Code)
	assert.Equal(t, "true", w2.Header().Get("Idempotent-Replayed"))
	assert.JSONEq(t, w1.Body.String(), w2.Body.String())
	assert.True(t, ts.balance(t, u.ID).Equal(decimal.NewFromInt(90)))

	w3 := ts.do(http.MethodPost, "/api/payment", token, map[string]any{"amount": 20, "recipient_name": "Jane Doe"}, IdempotencyHeader, "key-1")
	assert.Equal(t, http.StatusUnprocessableEntity, w3.Code)

	// a failed attempt releases the key
	w4 := ts.do(http.MethodPost, "/api/payment", token, map[string]any{"amount": 500, "recipient_name": "Jane Doe"}, IdempotencyHeader, "key-2")
	assert.Equal(t, http.StatusBadRequest, w4.Code)
	found, err := ts.cache.Get(context.Background(), cache.IdempotencyKey(u.ID, "key-2"), &idempotentResponse{})
	require.NoError(t, err)
	assert.False(t, found)
}

func TestPaymentInProgressConflict(t *testing.T) {
	ts := newTestServer(t)
	u, token := ts.userWithWallet(t, "payer@example.com", 100)
	payload := map[string]any{"amount": 10, "recipient_name": "Jane Doe"}
	raw, _ := json.Marshal(payload)
	sum := sha256.Sum256(append(raw, '\n')) // json.Encoder appends a newline
	reservation := idempotentResponse{Hash: hex.EncodeToString(sum[:])}
	_, err := ts.cache.SetNX(context.Background(), cache.IdempotencyKey(u.ID, "key-9"), reservation, time.Minute)
	require.NoError(t, err)

	w := ts.do(http.MethodPost, "/api/payment", token, payload, IdempotencyHeader, "key-9")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.True(t, ts.balance(t, u.ID).Equal(decimal.NewFromInt(100)))
}

func TestPaymentRejectsSubCentAmounts(t *testing.T) {
	ts := newTestServer(t)
	u, token := ts.userWithWallet(t, "payer@example.com", 100)

	for _, amount := range []float64{0.001, 10.005} {
		w := ts.do(http.MethodPost, "/api/payment", token, map[string]any{"amount": amount, "recipient_name": "Jane Doe"})
		assert.Equal(t, http.StatusBadRequest, w.Code, "%v", amount)
		assert.JSONEq(t, `{"error":"Invalid fields: amount"}`, w.Body.String())

		w = ts.do(http.MethodPost, "/api/wallet/deposit", token, map[string]any{"amount": amount})
		assert.Equal(t, http.StatusBadRequest, w.Code, "%v", amount)
	}
	assert.True(t, ts.balance(t, u.ID).Equal(decimal.NewFromInt(100)))
	_, total, err := ts.store.ListPayments(context.Background(), store.PaymentFilter{UserID: u.ID})
	require.NoError(t, err)
	assert.Zero(t, total)

	w := ts.do(http.MethodPost, "/api/payment", token, map[string]any{"amount": 10.01, "recipient_name": "Jane Doe"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.True(t, ts.balance(t, u.ID).Equal(decimal.RequireFromString("89.99")))
}

// failingCache rejects the next failures Set calls.
type failingCache struct {
	*cache.Memory
	failures int
}

func (f *failingCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	if f.failures > 0 {
		f.failures--
		return errors.New("cache unavailable")
	}
	return f.Memory.Set(ctx, key, value, ttl)
}

func TestRememberPaymentReleasesKeyWhenStoreFails(t *testing.T) {
	ctx := context.Background()
	rc := &failingCache{Memory: cache.NewMemory(), failures: 2}
	_, err := rc.SetNX(ctx, "idem:1:k", idempotentResponse{Hash: "h"}, time.Minute)
	require.NoError(t, err)

	rememberPayment(ctx, rc, "idem:1:k", "h", schema.PaymentResult{Success: true})
	found, err := rc.Get(ctx, "idem:1:k", &idempotentResponse{})
	require.NoError(t, err)
	assert.False(t, found, "a stuck reservation would answer 409 until it expires")
}

func TestRememberPaymentRetriesOnce(t *testing.T) {
	ctx := context.Background()
	rc := &failingCache{Memory: cache.NewMemory(), failures: 1}
	_, err := rc.SetNX(ctx, "idem:1:k", idempotentResponse{Hash: "h"}, time.Minute)
	require.NoError(t, err)

	rememberPayment(ctx, rc, "idem:1:k", "h", schema.PaymentResult{Success: true})
	var got idempotentResponse
	found, err := rc.Get(ctx, "idem:1:k", &got)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, http.StatusOK, got.Status)
	assert.JSONEq(t, `{"success":true,"payment":null}`, string(got.Body))
}

func TestPaymentListing(t *testing.T) {
	ts := newTestServer(t)
	_, token := ts.userWithWallet(t, "payer@example.com", 100)
	_, other := ts.userWithWallet(t, "other@example.com", 100)
	ts.do(http.MethodPost, "/api/payment", token, map[string]any{"amount": 1, "recipient_name": "A"})
	ts.do(http.MethodPost, "/api/payment", token, map[string]any{"amount": 2, "recipient_name": "B"})
	ts.do(http.MethodPost, "/api/payment", other, map[string]any{"amount": 3, "recipient_name": "C"})

	body := decode(t, ts.do(http.MethodGet, "/api/payment?page_size=1", token, nil))
	assert.EqualValues(t, 2, body["total"])
	assert.EqualValues(t, 2, body["total_pages"])
	list := body["payments"].([]any)
	require.Len(t, list, 1)
	assert.Equal(t, "B", list[0].(map[string]any)["recipient_name"])

	w := ts.do(http.MethodGet, "/api/payment?page=9223372036854775807", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body = decode(t, w)
	assert.Empty(t, body["payments"])
	assert.EqualValues(t, 2, body["total"])
}

func TestHealthServiceBooking(t *testing.T) {
	ts := newTestServer(t)
	_, token := ts.userWithWallet(t, "patient@example.com", 0)

	w := ts.do(http.MethodPost, "/api/health-service", token, map[string]any{
		"service_type":   "consultation",
		"patient_name":   "Jane Doe",
		"patient_phone":  "+15550100",
		"preferred_date": "2026-11-02",
		"preferred_time": "14:30",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Equal(t, true, body["success"])
	booking := body["booking"].(map[string]any)
	assert.Equal(t, "confirmed", booking["status"])
	assert.EqualValues(t, 50, booking["amount"])

	w = ts.do(http.MethodPost, "/api/health-service", token, map[string]any{
		"service_type":   "massage",
		"patient_name":   "Jane Doe",
		"patient_phone":  "+15550100",
		"preferred_date": "2026-11-02",
		"preferred_time": "2pm",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Invalid fields: service_type, preferred_time"}`, w.Body.String())

	body = decode(t, ts.do(http.MethodGet, "/api/health-service", token, nil))
	assert.EqualValues(t, 1, body["total"])
}

func TestTherapistChatAnonymous(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(http.MethodPost, "/api/therapist-chat", "", map[string]any{"message": "I can't sleep"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Equal(t, "I hear you.", body["reply"])
	assert.Equal(t, "local", body["mode"])
	assert.Len(t, body["messages"], 2)

	w = ts.do(http.MethodGet, "/api/therapist-chat", "", nil)
	assert.JSONEq(t, `{"messages":[],"mode":"local"}`, w.Body.String())

	w = ts.do(http.MethodPost, "/api/therapist-chat", "bad-token", map[string]any{"message": "hi"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestTherapistChatAuthenticatedMerge(t *testing.T) {
	ts := newTestServer(t)
	_, token := ts.userWithWallet(t, "chatter@example.com", 0)
	t1 := time.Date(2026, 4, 30, 8, 0, 0, 0, time.UTC)

	w := ts.do(http.MethodPost, "/api/therapist-chat", token, map[string]any{
		"message": "hello again",
		"local_messages": []map[string]any{
			{"role": "user", "content": "hi", "timestamp": t1},
			{"role": "assistant", "content": "hello", "timestamp": t1.Add(time.Second)},
		},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Equal(t, "server", body["mode"])
	sessionID := body["session_id"].(string)
	require.NotEmpty(t, sessionID)
	assert.Len(t, body["messages"], 4)

	// resending the same buffer does not duplicate it
	w = ts.do(http.MethodPost, "/api/therapist-chat", token, map[string]any{
		"message":    "still there?",
		"session_id": sessionID,
		"local_messages": []map[string]any{
			{"role": "user", "content": "hi", "timestamp": t1},
		},
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["messages"], 6)

	w = ts.do(http.MethodGet, "/api/therapist-chat?session_id="+sessionID, token, nil)
	body = decode(t, w)
	assert.Equal(t, sessionID, body["session_id"])
	assert.Len(t, body["messages"], 6)
}

func TestTherapistChatModelFailure(t *testing.T) {
	ts := newTestServer(t)
	ts.llm.err = assert.AnError

	w := ts.do(http.MethodPost, "/api/therapist-chat", "", map[string]any{"message": "hi"})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"`+ChatFallbackMessage+`"}`, w.Body.String())
}

// admin creates an admin account without a wallet and returns a bearer token.
func (ts *testServer) admin(t *testing.T) string {
	t.Helper()
	u := &domain.User{Email: "admin@example.com", Password: "x", Role: domain.RoleAdmin}
	require.NoError(t, ts.store.CreateUser(context.Background(), u))
	token, err := utils.GenerateJWT(u.ID, testSecret)
	require.NoError(t, err)
	return token
}

func TestAdminRequiresRole(t *testing.T) {
	ts := newTestServer(t)
	_, token := ts.userWithWallet(t, "user@example.com", 0)

	for _, path := range []string{"/api/admin/users", "/api/admin/payments", "/api/admin/stats", "/api/admin/settings"} {
		w := ts.do(http.MethodGet, path, token, nil)
		assert.Equal(t, http.StatusForbidden, w.Code, path)
	}
}

func TestAdminDashboard(t *testing.T) {
	ts := newTestServer(t)
	adminToken := ts.admin(t)
	payer, token := ts.userWithWallet(t, "payer@example.com", 100)

	w := ts.do(http.MethodPost, "/api/payment", token, map[string]any{"amount": 30, "recipient_name": "Jane Doe"})
	require.Equal(t, http.StatusOK, w.Code)
	paymentID := int(decode(t, w)["payment"].(map[string]any)["id"].(float64))

	body := decode(t, ts.do(http.MethodGet, "/api/admin/users", adminToken, nil))
	assert.EqualValues(t, 2, body["total"])
	assert.Equal(t, false, body["cached"])
	body = decode(t, ts.do(http.MethodGet, "/api/admin/users", adminToken, nil))
	assert.Equal(t, true, body["cached"])

	body = decode(t, ts.do(http.MethodGet, "/api/admin/stats", adminToken, nil))
	stats := body["stats"].(map[string]any)
	assert.EqualValues(t, 1, stats["payments"])
	assert.EqualValues(t, 30, stats["payment_volume"])

	w = ts.do(http.MethodGet, "/api/admin/payments?status=completed&user_id="+strconv.Itoa(int(payer.ID))+"&from=2000-01-01", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, decode(t, w)["total"])
	w = ts.do(http.MethodGet, "/api/admin/payments?from=yesterday", adminToken, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	path := "/api/admin/payments/" + strconv.Itoa(paymentID) + "/status"
	w = ts.do(http.MethodPatch, path, adminToken, map[string]any{"status": "refunded", "reason": "duplicate"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "refunded", decode(t, w)["payment"].(map[string]any)["status"])
	// status overrides never move money
	assert.True(t, ts.balance(t, payer.ID).Equal(decimal.NewFromInt(70)))

	w = ts.do(http.MethodPatch, "/api/admin/payments/999/status", adminToken, map[string]any{"status": "failed"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	body = decode(t, ts.do(http.MethodGet, "/api/admin/audit-logs?action="+domain.AuditPaymentStatusChanged, adminToken, nil))
	assert.EqualValues(t, 1, body["total"])
}

func TestAdminSettings(t *testing.T) {
	ts := newTestServer(t)
	adminToken := ts.admin(t)
	_, token := ts.userWithWallet(t, "payer@example.com", 100)

	w := ts.do(http.MethodPut, "/api/admin/settings", adminToken, map[string]any{
		"settings": map[string]string{domain.SettingMaxPayment: "25"},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "25", decode(t, w)["settings"].(map[string]any)[domain.SettingMaxPayment])

	w = ts.do(http.MethodPost, "/api/payment", token, map[string]any{"amount": 30, "recipient_name": "Jane Doe"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(http.MethodPut, "/api/admin/settings", adminToken, map[string]any{
		"settings": map[string]string{domain.SettingPaymentsEnabled: "false"},
	})
	require.Equal(t, http.StatusOK, w.Code)
	w = ts.do(http.MethodPost, "/api/payment", token, map[string]any{"amount": 5, "recipient_name": "Jane Doe"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = ts.do(http.MethodPut, "/api/admin/settings", adminToken, map[string]any{
		"settings": map[string]string{"theme": "dark"},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	body := decode(t, ts.do(http.MethodGet, "/api/admin/settings", adminToken, nil))
	assert.Equal(t, "false", body["settings"].(map[string]any)[domain.SettingPaymentsEnabled])
}
