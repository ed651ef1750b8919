package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const (
	shareesPath = "/ocs/v2.php/apps/files_sharing/api/v1/sharees"

	// DefaultTimeout bounds a single sharee request; the model itself
	// enforces no timeout of its own.
	DefaultTimeout = 30 * time.Second
)

// StatusError is a failure reported by the server, either as an HTTP status
// or as an OCS meta status code.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("directory search failed with status %d: %s", e.StatusCode, e.Message)
}

// SearchOptions are the parameters of one sharee search
type SearchOptions struct {
	Search   string
	ItemType string // "file" or "folder"
	Page     int
	PerPage  int
	Lookup   bool // query the global federated directory
}

// Client queries the OCS sharee endpoint of the session's server
type Client struct {
	session    *Session
	httpClient *http.Client
}

// NewClient creates a sharee search client for the session
func NewClient(session *Session) *Client {
	return &Client{
		session: session,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
	}
}

// Sharees runs one sharee search and returns the decoded result document.
// Server-reported failures come back as *StatusError.
func (c *Client) Sharees(ctx context.Context, opts SearchOptions) (*ShareeResults, error) {
	query := url.Values{}
	query.Set("format", "json")
	query.Set("search", opts.Search)
	query.Set("itemType", opts.ItemType)
	query.Set("page", strconv.Itoa(opts.Page))
	query.Set("perPage", strconv.Itoa(opts.PerPage))
	query.Set("lookup", strconv.FormatBool(opts.Lookup))

	endpoint := c.session.ServerURL() + shareesPath + "?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build sharee request: %w", err)
	}
	req.Header.Set("OCS-APIRequest", "true")
	req.Header.Set("Accept", "application/json")
	req.SetBasicAuth(c.session.username, c.session.password)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sharee request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read sharee response: %w", err)
	}

	var envelope ocsEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		if resp.StatusCode != http.StatusOK {
			return nil, &StatusError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		}
		return nil, fmt.Errorf("failed to decode sharee response: %w", err)
	}

	// The OCS meta block carries the authoritative status; 100 is the v1
	// success code, 200 the v2 one.
	if meta := envelope.OCS.Meta; meta.StatusCode != 0 && meta.StatusCode != 100 && meta.StatusCode != 200 {
		return nil, &StatusError{StatusCode: meta.StatusCode, Message: meta.Message}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{StatusCode: resp.StatusCode, Message: envelope.OCS.Meta.Message}
	}

	return &envelope.OCS.Data, nil
}
