package handlers_test

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/jmoiron/sqlx"

	"mbaayadmin/internal/config"
	"mbaayadmin/internal/http/server"
	"mbaayadmin/internal/repos"
)

const goodPassword = "password1"

// marketplace is a stand-in for the REST backend with just enough state to
// observe mutations.
type marketplace struct {
	mu            sync.Mutex
	hits          map[string]int
	overrides     map[string]http.HandlerFunc
	vendorBlocked bool
	kycStatus     string
	users         []map[string]any
	lastBody      map[string][]byte
	srv           *httptest.Server
}

func newMarketplace(t *testing.T) *marketplace {
	t.Helper()
	m := &marketplace{
		hits:      map[string]int{},
		overrides: map[string]http.HandlerFunc{},
		lastBody:  map[string][]byte{},
		kycStatus: "Pending",
		users: []map[string]any{
			{"_id": "u1", "name": "Ada Obi", "email": "ada@mbaay.test", "isverified": true, "createdAt": "2025-01-02T10:00:00Z"},
			{"_id": "u2", "name": "Grace Eze", "email": "grace@mbaay.test", "createdAt": "2025-02-02T10:00:00Z"},
		},
	}
	m.srv = httptest.NewServer(http.HandlerFunc(m.serve))
	t.Cleanup(m.srv.Close)
	return m
}

func (m *marketplace) on(method, path string, h http.HandlerFunc) {
	m.mu.Lock()
	m.overrides[method+" "+path] = h
	m.mu.Unlock()
}

func (m *marketplace) count(method, path string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hits[method+" "+path]
}

func (m *marketplace) body(method, path string) []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastBody[method+" "+path]
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func ok(data any) map[string]any { return map[string]any{"message": "ok", "data": data} }

func token(role, id string, exp time.Time) string {
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":   id,
		"role": role,
		"exp":  exp.Unix(),
	}).SignedString([]byte("backend-secret"))
	if err != nil {
		panic(err)
	}
	return s
}

// accounts maps a login email to the role in its token.
var accounts = map[string]string{
	"super@mbaay.test":  "Super Admin",
	"admin@mbaay.test":  "Admin",
	"care@mbaay.test":   "Customer care",
	"seller@mbaay.test": "vendor",
}

func (m *marketplace) serve(w http.ResponseWriter, r *http.Request) {
	key := r.Method + " " + r.URL.Path
	buf, _ := io.ReadAll(r.Body)
	m.mu.Lock()
	m.hits[key]++
	m.lastBody[key] = buf
	h := m.overrides[key]
	m.mu.Unlock()
	if h != nil {
		h(w, r)
		return
	}
	if key != "POST /login_admin" && key != "POST /create_admin" && key != "GET /community/all_communities" &&
		!strings.HasPrefix(r.Header.Get("Authorization"), "Bearer ") {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"message": "Unauthorized"})
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	switch {
	case key == "POST /login_admin":
		var creds struct {
			EmailOrPhone string `json:"emailOrPhone"`
			Password     string `json:"password"`
		}
		_ = json.Unmarshal(buf, &creds)
		role, known := accounts[creds.EmailOrPhone]
		if !known || creds.Password != goodPassword {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"message": "Invalid credentials"})
			return
		}
		id := strings.SplitN(creds.EmailOrPhone, "@", 2)[0] + "-id"
		writeJSON(w, http.StatusOK, ok(map[string]any{
			"token": token(role, id, time.Now().Add(time.Hour)),
			"user":  map[string]any{"_id": id, "name": "Test " + role, "email": creds.EmailOrPhone},
		}))
	case key == "POST /create_admin":
		var in map[string]string
		_ = json.Unmarshal(buf, &in)
		writeJSON(w, http.StatusCreated, ok(map[string]any{"_id": "new-admin", "name": in["name"], "email": in["email"], "role": in["role"]}))
	case key == "GET /users/all":
		writeJSON(w, http.StatusOK, ok(m.users))
	case key == "GET /vendors/all":
		writeJSON(w, http.StatusOK, ok([]any{m.vendor()}))
	case key == "GET /admins/all":
		writeJSON(w, http.StatusOK, ok([]any{map[string]any{"_id": "a1", "name": "Ops Lead", "email": "ops@mbaay.test", "role": "Admin"}}))
	case key == "GET /one_vendor/v1":
		writeJSON(w, http.StatusOK, ok(m.vendor()))
	case strings.HasPrefix(key, "GET /one_vendor/"), strings.HasPrefix(key, "GET /one_user/"), strings.HasPrefix(key, "GET /get_admin/"):
		writeJSON(w, http.StatusNotFound, map[string]any{"message": "Not found"})
	case key == "POST /user/action":
		var in map[string]string
		_ = json.Unmarshal(buf, &in)
		if in["userType"] == "vendor" && in["userId"] == "v1" {
			m.vendorBlocked = in["action"] == "block"
		}
		writeJSON(w, http.StatusOK, map[string]any{"message": "done"})
	case key == "GET /view_all_kyc_requests":
		v := m.vendor()
		writeJSON(w, http.StatusOK, ok([]any{v}))
	case key == "PATCH /approve_kyc/v1":
		m.kycStatus = "Approved"
		writeJSON(w, http.StatusOK, map[string]any{"message": "approved"})
	case key == "PATCH /reject_kyc/v1":
		m.kycStatus = "Rejected"
		writeJSON(w, http.StatusOK, map[string]any{"message": "rejected"})
	case key == "GET /orders/all":
		writeJSON(w, http.StatusOK, ok([]any{
			order("o1", "On Delivery", "Successful", "2025-03-01T09:00:00Z", 2, 1500),
			order("o2", "Delivered", "Pending", "2025-03-02T09:00:00Z", 1, 250.5),
		}))
	case key == "GET /customers/payments":
		writeJSON(w, http.StatusOK, ok(map[string]any{
			"customers":      []any{order("o1", "On Delivery", "Successful", "2025-03-01T09:00:00Z", 2, 1500)},
			"paymentSummary": map[string]any{"totalRevenue": 3000, "successfulPayments": 1},
		}))
	case key == "GET /reviews/all":
		writeJSON(w, http.StatusOK, ok(map[string]any{
			"stats":   map[string]any{"averageRating": 4.5, "totalReviews": 2, "ratingDistribution": map[string]int{"5": 1, "4": 1}},
			"reviews": []any{map[string]any{"_id": "r1", "reviewerName": "Chidi", "rating": 5, "comment": "Lovely weave", "product": map[string]any{"name": "Basket"}}},
		}))
	case key == "GET /community/posts/all":
		comments := []any{}
		for i := 1; i <= 5; i++ {
			comments = append(comments, map[string]any{"_id": fmt.Sprintf("c%d", i), "comment_poster": fmt.Sprintf("Fan %d", i), "text": "nice"})
		}
		writeJSON(w, http.StatusOK, ok([]any{map[string]any{
			"_id": "p1", "content": "Market day is Saturday", "posterType": "admin",
			"community": map[string]any{"name": "Mbaay"}, "comments": comments,
		}}))
	case key == "GET /community/mbaay":
		writeJSON(w, http.StatusOK, ok(map[string]any{"_id": "c1", "name": "Mbaay", "description": "Makers and buyers"}))
	case key == "GET /community/all_communities":
		writeJSON(w, http.StatusOK, ok([]any{map[string]any{"_id": "c1", "name": "Mbaay"}}))
	case key == "POST /private-message", key == "POST /broadcast", key == "POST /community/post", key == "PUT /community/mbaay/edit":
		writeJSON(w, http.StatusOK, map[string]any{"message": "ok"})
	default:
		writeJSON(w, http.StatusNotFound, map[string]any{"message": "no route"})
	}
}

// vendor must be called with m.mu held.
func (m *marketplace) vendor() map[string]any {
	return map[string]any{
		"_id": "v1", "name": "Kemi Ade", "storeName": "Kente Crafts", "email": "kemi@mbaay.test",
		"kycStatus": m.kycStatus, "isBlocked": m.vendorBlocked, "createdAt": "2025-01-05T10:00:00Z",
		"kycDocuments": map[string]any{"documentType": "Passport", "front": "https://cdn.mbaay.test/front.png"},
	}
}

func order(id, status, pay, at string, qty int, price float64) map[string]any {
	return map[string]any{
		"_id": id, "orderId": strings.ToUpper(id), "status": status, "payStatus": pay, "createdAt": at,
		"userId": map[string]any{"name": "Buyer " + id, "email": id + "@buyers.test"},
		"items":  []any{map[string]any{"price": price, "quantity": qty}},
	}
}

func testConfig(m *marketplace) config.Config {
	cfg := config.Defaults()
	cfg.DBDSN = ":memory:"
	cfg.LogFile = ""
	cfg.TemplatesDir = "../../web/templates"
	cfg.StaticDir = "../../web/static"
	cfg.APIBaseURL = m.srv.URL
	cfg.CommunityBaseURL = m.srv.URL + "/community"
	cfg.APITimeout = 2 * time.Second
	cfg.RenderWait = 2 * time.Second
	cfg.SessionSecret = "test-session-secret"
	cfg.RateLimit = 1000
	cfg.LoginLimit = 100
	cfg.SessionSweep = 0
	return cfg
}

func openDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := repos.OpenDB(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func newApp(t *testing.T, cfg config.Config, db *sqlx.DB) *fiber.App {
	t.Helper()
	app, err := server.New(db, cfg)
	if err != nil {
		t.Fatalf("build app: %v", err)
	}
	return app
}

// browser replays cookies between requests the way a real one would.
type browser struct {
	t       *testing.T
	app     *fiber.App
	cookies map[string]string
}

func newBrowser(t *testing.T, app *fiber.App) *browser {
	return &browser{t: t, app: app, cookies: map[string]string{}}
}

func (b *browser) send(req *http.Request) *http.Response {
	b.t.Helper()
	for k, v := range b.cookies {
		req.AddCookie(&http.Cookie{Name: k, Value: v})
	}
	resp, err := b.app.Test(req, 10000)
	if err != nil {
		b.t.Fatalf("%s %s: %v", req.Method, req.URL.Path, err)
	}
	for _, c := range resp.Cookies() {
		expired := c.MaxAge < 0 || (!c.Expires.IsZero() && c.Expires.Before(time.Now()))
		if c.Value == "" || expired {
			delete(b.cookies, c.Name)
			continue
		}
		b.cookies[c.Name] = c.Value
	}
	return resp
}

func (b *browser) get(path string) *http.Response {
	b.t.Helper()
	return b.send(httptest.NewRequest(http.MethodGet, path, nil))
}

// post submits form with the current CSRF token.
func (b *browser) post(path string, form url.Values) *http.Response {
	b.t.Helper()
	if form == nil {
		form = url.Values{}
	}
	if form.Get("csrf") == "" {
		form.Set("csrf", b.cookies["csrf_"])
	}
	return b.postRaw(path, form)
}

func (b *browser) postRaw(path string, form url.Values) *http.Response {
	b.t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return b.send(req)
}

// login signs in as email and fails the test unless it worked.
func (b *browser) login(email string) {
	b.t.Helper()
	b.get("/login-admin")
	resp := b.post("/login-admin", url.Values{"email": {email}, "password": {goodPassword}})
	if resp.StatusCode != http.StatusFound {
		b.t.Fatalf("login %s: expected redirect, got %d: %s", email, resp.StatusCode, read(resp))
	}
}

func read(resp *http.Response) string {
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	return string(b)
}

func location(resp *http.Response) string { return resp.Header.Get("Location") }
