package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tanpawarit/chative-wholesale-agent/commerce/cart"
	"github.com/tanpawarit/chative-wholesale-agent/commerce/catalog"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeConversation struct {
	mu      sync.Mutex
	reply   string
	calls   []string
	cleared []string
}

func (f *fakeConversation) ProcessMessage(ctx context.Context, userID string, text string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, userID+":"+text)
	return f.reply
}

func (f *fakeConversation) ClearHistory(ctx context.Context, userID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cleared = append(f.cleared, userID)
}

type sentMessage struct {
	to   string
	body string
}

type fakeWhatsApp struct {
	mu         sync.Mutex
	configured bool
	validSig   string
	sent       []sentMessage
	signedURL  string
}

func (f *fakeWhatsApp) Configured() bool       { return f.configured }
func (f *fakeWhatsApp) WhatsAppNumber() string { return "whatsapp:+14155238886" }

func (f *fakeWhatsApp) SendWhatsApp(ctx context.Context, to string, body string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMessage{to: to, body: body})
	return "SM1", nil
}

func (f *fakeWhatsApp) ValidateSignature(signature string, fullURL string, params url.Values) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.signedURL = fullURL
	return signature == f.validSig
}

type testEnv struct {
	srv  *Server
	conv *fakeConversation
	wa   *fakeWhatsApp
}

func newTestServer(t *testing.T, webhook WebhookOptions) *testEnv {
	t.Helper()

	products := catalog.NewService(catalog.NewMemoryRepository(
		catalog.Product{ID: 1, Name: "Pantalón Verde (L)", Color: "Verde", Size: "L", Type: "Pantalón", Price50: 100, Price100: 90, Price200: 80, Stock: 500, Available: true},
		catalog.Product{ID: 2, Name: "Camiseta Roja (M)", Color: "Rojo", Size: "M", Type: "Camiseta", Price50: 50, Price100: 45, Price200: 40, Stock: 40, Available: true},
	))
	conv := &fakeConversation{reply: "¡Hola! ¿Qué prenda buscás?"}
	wa := &fakeWhatsApp{configured: true, validSig: "good"}

	srv, err := New(Config{CorsOrigins: []string{"*"}}, Deps{
		Products:     products,
		Carts:        cart.NewService(cart.NewMemoryRepository(), products),
		Conversation: conv,
		WhatsApp:     wa,
		Webhook:      webhook,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	srv.now = func() time.Time { return time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC) }
	return &testEnv{srv: srv, conv: conv, wa: wa}
}

func (e *testEnv) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	e.srv.Handler().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
	return out
}

func TestSearchProducts(t *testing.T) {
	t.Parallel()

	env := newTestServer(t, WebhookOptions{})
	rec := env.do(t, http.MethodGet, "/products?q=pantalon%20verde", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	products := decode[[]catalog.Product](t, rec)
	if len(products) != 1 || products[0].ID != 1 {
		t.Fatalf("products = %+v", products)
	}
}

func TestGetProductNotFound(t *testing.T) {
	t.Parallel()

	env := newTestServer(t, WebhookOptions{})
	for _, path := range []string{"/products/99", "/products/abc"} {
		rec := env.do(t, http.MethodGet, path, "")
		if rec.Code != http.StatusNotFound {
			t.Fatalf("GET %s status = %d, want 404", path, rec.Code)
		}
		body := decode[errorResponse](t, rec)
		if body.Error != "not_found" {
			t.Fatalf("GET %s error = %q, want not_found", path, body.Error)
		}
	}
}

func TestCartEndpoints(t *testing.T) {
	t.Parallel()

	env := newTestServer(t, WebhookOptions{})

	rec := env.do(t, http.MethodPost, "/carts", `{"items":[{"product_id":1,"qty":50}]}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("POST /carts status = %d, body = %s", rec.Code, rec.Body.String())
	}
	created := decode[cart.Cart](t, rec)
	if created.Total != 5000 {
		t.Fatalf("created total = %v, want 5000", created.Total)
	}

	path := "/carts/" + jsonNumber(created.ID)
	rec = env.do(t, http.MethodPatch, path, `{"items":[{"product_id":1,"qty":150}]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("PATCH status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if updated := decode[cart.Cart](t, rec); updated.Total != 13500 {
		t.Fatalf("updated total = %v, want 13500", updated.Total)
	}

	rec = env.do(t, http.MethodGet, path, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET status = %d", rec.Code)
	}
	if got := decode[cart.Cart](t, rec); got.Total != 13500 || len(got.Items) != 1 {
		t.Fatalf("GET cart = %+v", got)
	}
}

func TestCartErrorStatuses(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		wantStatus int
		wantKind   string
	}{
		{name: "malformed body", method: http.MethodPost, path: "/carts", body: `{"items":`, wantStatus: http.StatusBadRequest, wantKind: "validation_error"},
		{name: "empty items", method: http.MethodPost, path: "/carts", body: `{"items":[]}`, wantStatus: http.StatusBadRequest, wantKind: "validation_error"},
		{name: "unknown product", method: http.MethodPost, path: "/carts", body: `{"items":[{"product_id":42,"qty":50}]}`, wantStatus: http.StatusNotFound, wantKind: "not_found"},
		{name: "insufficient stock", method: http.MethodPost, path: "/carts", body: `{"items":[{"product_id":2,"qty":100}]}`, wantStatus: http.StatusConflict, wantKind: "conflict"},
		{name: "unknown cart", method: http.MethodPatch, path: "/carts/77", body: `{"items":[{"product_id":1,"qty":50}]}`, wantStatus: http.StatusNotFound, wantKind: "not_found"},
		{name: "get unknown cart", method: http.MethodGet, path: "/carts/77", wantStatus: http.StatusNotFound, wantKind: "not_found"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			env := newTestServer(t, WebhookOptions{})
			rec := env.do(t, tt.method, tt.path, tt.body)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d, body = %s", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if body := decode[errorResponse](t, rec); body.Error != tt.wantKind || body.Message == "" {
				t.Fatalf("body = %+v, want kind %s", body, tt.wantKind)
			}
		})
	}
}

func TestChatEndpoint(t *testing.T) {
	t.Parallel()

	env := newTestServer(t, WebhookOptions{})
	rec := env.do(t, http.MethodPost, "/ai-agent/chat", `{"userId":"web-1","message":"hola"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	body := decode[chatResponse](t, rec)
	if body.AgentResponse != env.conv.reply || body.UserID != "web-1" || body.UserMessage != "hola" {
		t.Fatalf("body = %+v", body)
	}
	if body.Timestamp != "2025-03-01T10:00:00Z" {
		t.Fatalf("timestamp = %q", body.Timestamp)
	}

	rec = env.do(t, http.MethodPost, "/ai-agent/chat", `{"userId":"web-1"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing message status = %d, want 400", rec.Code)
	}
}

func TestClearHistoryEndpoint(t *testing.T) {
	t.Parallel()

	env := newTestServer(t, WebhookOptions{})
	rec := env.do(t, http.MethodDelete, "/ai-agent/history/web-1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if len(env.conv.cleared) != 1 || env.conv.cleared[0] != "web-1" {
		t.Fatalf("cleared = %v", env.conv.cleared)
	}
}

func TestHealthAndMetrics(t *testing.T) {
	t.Parallel()

	env := newTestServer(t, WebhookOptions{})
	rec := env.do(t, http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"status":"ok"`) {
		t.Fatalf("GET /health = %d %s", rec.Code, rec.Body.String())
	}

	rec = env.do(t, http.MethodGet, "/metrics", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "wholesale_http_requests_total") {
		t.Fatalf("GET /metrics = %d, missing request counter", rec.Code)
	}
}

func TestNewRequiresDeps(t *testing.T) {
	t.Parallel()

	if _, err := New(Config{}, Deps{}); err == nil {
		t.Fatal("New() with no deps should fail")
	}
}

func jsonNumber(n int64) string {
	raw, _ := json.Marshal(n)
	return string(raw)
}
