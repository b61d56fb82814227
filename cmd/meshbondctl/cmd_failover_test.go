package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestDoFailover(t *testing.T) {
	var gotFrom, gotTo string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct{ From, To string }
		json.NewDecoder(r.Body).Decode(&req)
		gotFrom, gotTo = req.From, req.To
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}))
	defer server.Close()

	var buf bytes.Buffer
	if err := doFailover([]string{"--addr", server.URL, "eth0", "wlan0"}, &buf); err != nil {
		t.Fatalf("doFailover returned error: %v", err)
	}
	if gotFrom != "eth0" || gotTo != "wlan0" {
		t.Errorf("expected from=eth0 to=wlan0, got from=%s to=%s", gotFrom, gotTo)
	}
	if !strings.Contains(buf.String(), "eth0 -> wlan0") {
		t.Errorf("expected confirmation output, got: %s", buf.String())
	}
}

func TestDoFailoverMissingArgs(t *testing.T) {
	var buf bytes.Buffer
	if err := doFailover([]string{"--addr", "http://example.invalid"}, &buf); err == nil {
		t.Fatal("expected error when from/to are missing")
	}
}
