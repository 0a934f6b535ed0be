// shipper.go implements optional external audit destinations. Audit entries can
// be routed to a SIEM or log aggregator independently of the application's own
// logging pipeline; the database write in recorder.go remains the primary,
// synchronous record regardless of configured destinations.
package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/recruitbase/recruitbase/internal/config"
)

// LogEntry is the wire shape shipped to external destinations
type LogEntry struct {
	Timestamp      time.Time              `json:"timestamp"`
	Action         string                 `json:"action"`
	ActorID        string                 `json:"actor_id"`
	ActorName      string                 `json:"actor_name"`
	OrganizationID string                 `json:"organization_id,omitempty"`
	ResourceType   string                 `json:"resource_type,omitempty"`
	ResourceID     string                 `json:"resource_id,omitempty"`
	Details        string                 `json:"details,omitempty"`
	Succeeded      bool                   `json:"succeeded"`
	IPAddress      string                 `json:"ip_address,omitempty"`
	Metadata       map[string]interface{} `json:"metadata,omitempty"`
}

// Shipper defines the interface for audit log shipping
type Shipper interface {
	// Ship sends an audit log entry to the destination
	Ship(ctx context.Context, entry *LogEntry) error
	// Close cleans up any resources
	Close() error
}

// NewShipper builds a Shipper fan-out from the configured destinations.
// Returns nil when no destinations are configured so callers can skip shipping
// entirely.
func NewShipper(destinations []config.ShipperDestination) (Shipper, error) {
	if len(destinations) == 0 {
		return nil, nil
	}

	shippers := make([]Shipper, 0, len(destinations))
	for _, d := range destinations {
		switch d.Type {
		case "file":
			s, err := NewFileShipper(d.Path)
			if err != nil {
				return nil, fmt.Errorf("failed to create file shipper: %w", err)
			}
			shippers = append(shippers, s)
		case "webhook":
			shippers = append(shippers, NewWebhookShipper(d.URL, d.Headers, d.Timeout))
		default:
			return nil, fmt.Errorf("unknown shipper type: %s", d.Type)
		}
	}

	return &MultiShipper{shippers: shippers}, nil
}

// MultiShipper ships to multiple destinations, continuing past individual
// failures so one broken destination does not starve the others.
type MultiShipper struct {
	shippers []Shipper
}

// Ship sends an entry to all configured shippers
func (ms *MultiShipper) Ship(ctx context.Context, entry *LogEntry) error {
	var lastErr error
	for _, s := range ms.shippers {
		if err := s.Ship(ctx, entry); err != nil {
			lastErr = err
		}
	}
	return lastErr
}

// Close closes all shippers
func (ms *MultiShipper) Close() error {
	var lastErr error
	for _, s := range ms.shippers {
		if err := s.Close(); err != nil {
			lastErr = err
		}
	}
	return lastErr
}

// FileShipper appends audit entries as JSON lines to a local file
type FileShipper struct {
	mu   sync.Mutex
	file *os.File
}

// NewFileShipper opens (or creates) the audit file in append mode
func NewFileShipper(path string) (*FileShipper, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit file %s: %w", path, err)
	}
	return &FileShipper{file: f}, nil
}

// Ship appends one JSON line
func (fs *FileShipper) Ship(_ context.Context, entry *LogEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal audit entry: %w", err)
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()
	if _, err := fs.file.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to append audit entry: %w", err)
	}
	return nil
}

// Close closes the underlying file
func (fs *FileShipper) Close() error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.file.Close()
}

// WebhookShipper POSTs each audit entry as JSON to a configured endpoint
type WebhookShipper struct {
	url     string
	headers map[string]string
	client  *http.Client
}

// NewWebhookShipper creates a webhook shipper with the given endpoint and
// optional extra headers
func NewWebhookShipper(url string, headers map[string]string, timeout time.Duration) *WebhookShipper {
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &WebhookShipper{
		url:     url,
		headers: headers,
		client:  &http.Client{Timeout: timeout},
	}
}

// Ship POSTs the entry
func (ws *WebhookShipper) Ship(ctx context.Context, entry *LogEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal audit entry: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, ws.url, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range ws.headers {
		req.Header.Set(k, v)
	}

	resp, err := ws.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}

// Close is a no-op for webhook shippers
func (ws *WebhookShipper) Close() error { return nil }
