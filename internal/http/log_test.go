package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/url"
	"os"
	"strings"
	"testing"

	applog "mbaayadmin/internal/log"
)

// captureLogs sends every log line to a buffer until the test ends.
func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	applog.SetOutput(&buf)
	t.Cleanup(func() { applog.SetOutput(os.Stdout) })
	return &buf
}

// entries returns the decoded lines whose action equals action.
func entries(buf *bytes.Buffer, action string) []map[string]any {
	var out []map[string]any
	for _, line := range strings.Split(buf.String(), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		var e map[string]any
		if json.Unmarshal([]byte(line), &e) != nil {
			continue
		}
		if e["action"] == action {
			out = append(out, e)
		}
	}
	return out
}

func TestLoginIsLogged(t *testing.T) {
	buf := captureLogs(t)
	m := newMarketplace(t)
	b := newBrowser(t, newApp(t, testConfig(m), openDB(t)))

	b.get("/login-admin")
	b.post("/login-admin", url.Values{"email": {"admin@mbaay.test"}, "password": {"wrong-password"}})
	fails := entries(buf, "auth.login.fail")
	if len(fails) != 1 || fails[0]["level"] != "warn" {
		t.Fatalf("expected one warn auth.login.fail, got %v", fails)
	}
	if strings.Contains(buf.String(), "wrong-password") {
		t.Fatal("password written to the log")
	}

	b.login("admin@mbaay.test")
	ok := entries(buf, "auth.login.success")
	if len(ok) != 1 || ok[0]["level"] != "audit" {
		t.Fatalf("expected one audit auth.login.success, got %v", ok)
	}
}

func TestDeniedAndAuditedActionsAreLogged(t *testing.T) {
	buf := captureLogs(t)
	m := newMarketplace(t)
	app := newApp(t, testConfig(m), openDB(t))

	care := newBrowser(t, app)
	care.login("care@mbaay.test")
	care.post("/actions/subject", url.Values{"type": {"vendor"}, "id": {"v1"}, "action": {"block"}})
	if len(entries(buf, "access.denied.role")) != 1 {
		t.Fatal("role denial not logged")
	}

	admin := newBrowser(t, app)
	admin.login("admin@mbaay.test")
	admin.post("/actions/subject", url.Values{"type": {"vendor"}, "id": {"v1"}, "action": {"block"}})
	got := entries(buf, "admin.subject.block")
	if len(got) != 1 {
		t.Fatalf("expected one admin.subject.block entry, got %d", len(got))
	}
	if got[0]["user_id"] != "admin-id" {
		t.Fatalf("audit entry should name the admin, got %v", got[0]["user_id"])
	}
	fields, _ := got[0]["fields"].(map[string]any)
	if fields["id"] != "v1" || fields["type"] != "vendor" {
		t.Fatalf("unexpected fields %v", fields)
	}
}
