package services_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"mbaayadmin/internal/apiclient"
	"mbaayadmin/internal/domain"
	"mbaayadmin/internal/querycache"
	"mbaayadmin/internal/services"
)

// backend records every request it receives and answers from routes.
type backend struct {
	mu     sync.Mutex
	hits   map[string]int
	bodies map[string][]byte
	routes map[string]http.HandlerFunc
}

func newBackend(t *testing.T) (*backend, *apiclient.Client) {
	t.Helper()
	b := &backend{hits: map[string]int{}, bodies: map[string][]byte{}, routes: map[string]http.HandlerFunc{}}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Method + " " + r.URL.Path
		buf, _ := io.ReadAll(r.Body)
		b.mu.Lock()
		b.hits[key]++
		b.bodies[key] = buf
		h := b.routes[key]
		b.mu.Unlock()
		if h == nil {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"message":"no route"}`))
			return
		}
		h(w, r)
	}))
	t.Cleanup(srv.Close)
	return b, apiclient.New(apiclient.Options{BaseURL: srv.URL, CommunityBaseURL: srv.URL + "/community", Timeout: 2 * time.Second})
}

func (b *backend) on(method, path string, h http.HandlerFunc) {
	b.mu.Lock()
	b.routes[method+" "+path] = h
	b.mu.Unlock()
}

func (b *backend) count(method, path string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.hits[method+" "+path]
}

func (b *backend) body(method, path string) []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.bodies[method+" "+path]
}

func reply(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}
}

func caller(sid string) services.Caller {
	return services.Caller{SID: sid, Principal: domain.Principal{
		ID: "admin-1", Token: "tok", Role: domain.RoleSuperAdmin, ExpiresAt: time.Now().Add(time.Hour),
	}}
}

func registry() *querycache.Registry {
	return querycache.NewRegistry(querycache.Options{StaleTime: 5 * time.Minute})
}
