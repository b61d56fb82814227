package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// defaultAddr is the control/health server address cmd/meshbond listens
// on by default (see cmd/meshbond's -health-addr flag).
const defaultAddr = "http://localhost:9100"

var httpClient = &http.Client{Timeout: 5 * time.Second}

// getJSON fetches path from the daemon's control API and decodes the
// response into v.
func getJSON(addr, path string, v interface{}) error {
	resp, err := httpClient.Get(addr + path)
	if err != nil {
		return fmt.Errorf("connecting to meshbond at %s: %w (is the daemon running?)", addr, err)
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decoding response from %s: %w", path, err)
	}
	return nil
}
