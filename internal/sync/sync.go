// Package sync implements the optional best-effort remote tag sync. It is
// disabled unless an endpoint is configured; every failure is logged at most
// and never surfaces to the caller.
package sync

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"time"

	"paperdeck/internal/tagstore"
)

// Client pushes and pulls the full tag payload against a remote endpoint
// speaking the /api/tags protocol.
type Client struct {
	endpoint string
	clientID string
	store    *tagstore.Store
	http     *http.Client
}

// New creates a sync client, or nil when no endpoint is configured.
func New(endpoint string, store *tagstore.Store) *Client {
	if endpoint == "" {
		return nil
	}
	clientID, err := store.ClientID()
	if err != nil {
		log.Printf("Sync disabled: reading client id: %v", err)
		return nil
	}
	return &Client{
		endpoint: endpoint,
		clientID: clientID,
		store:    store,
		http:     &http.Client{Timeout: 10 * time.Second},
	}
}

// Hydrate fetches the remote payload and merges it additively into the
// local store. Failures are ignored.
func (c *Client) Hydrate(ctx context.Context) {
	if c == nil {
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint, nil)
	if err != nil {
		return
	}
	req.Header.Set("X-Paperdeck-Client", c.clientID)

	resp, err := c.http.Do(req)
	if err != nil {
		log.Printf("Sync hydrate skipped: %v", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("Sync hydrate skipped: %s", resp.Status)
		return
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return
	}
	var payload tagstore.Payload
	if err := json.Unmarshal(body, &payload); err != nil {
		log.Printf("Sync hydrate skipped: malformed payload: %v", err)
		return
	}
	if err := c.store.Merge(payload); err != nil {
		log.Printf("Sync hydrate merge failed: %v", err)
		return
	}
	log.Printf("Hydrated tags from %s", c.endpoint)
}

// Push sends the full local payload to the remote endpoint. Failures are
// ignored.
func (c *Client) Push(ctx context.Context) {
	if c == nil {
		return
	}

	payload, err := c.store.ExportAll()
	if err != nil {
		return
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Paperdeck-Client", c.clientID)

	resp, err := c.http.Do(req)
	if err != nil {
		log.Printf("Sync push skipped: %v", err)
		return
	}
	resp.Body.Close()
}
