package brave

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// SubmissionError reports a submission the server did not accept.
type SubmissionError struct {
	Status int
	Body   string
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("variant submission failed with status %d: %s", e.Status, e.Body)
}

// Client submits variants to a BraVE server.
type Client struct {
	baseURL    string
	username   string
	password   string
	httpClient *http.Client
}

// ClientOptions configures a submission client.
type ClientOptions struct {
	Host       string // server base URL, e.g. http://localhost:8080
	Username   string
	Password   string
	DisableSSL bool // skip TLS certificate verification
}

// NewClient creates a client for a BraVE server.
func NewClient(opts ClientOptions) *Client {
	transport := http.DefaultTransport
	if opts.DisableSSL {
		transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		}
	}

	return &Client{
		baseURL:  opts.Host,
		username: opts.Username,
		password: opts.Password,
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   30 * time.Second,
		},
	}
}

// Submit POSTs one variant to <host>/variants under basic auth. The server
// answers a successful create with 201; any other status is a
// *SubmissionError carrying the response body.
func (c *Client) Submit(ctx context.Context, v *Variant) error {
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode variant: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/variants", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.username, c.password)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("submit variant: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		text, _ := io.ReadAll(resp.Body)
		return &SubmissionError{Status: resp.StatusCode, Body: string(text)}
	}
	return nil
}
