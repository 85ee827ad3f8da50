// Package solapi is a client for the Solapi messaging API v4.
package solapi

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"
)

const (
	DefaultBaseURL = "https://api.solapi.com"

	// ChunkSize is the most messages sent in one send-many call.
	ChunkSize = 200

	// Provider message types. ATA is an AlimTalk message.
	TypeSMS = "SMS"
	TypeLMS = "LMS"
	TypeMMS = "MMS"
	TypeATA = "ATA"

	StatusCodeAccepted = "2000"
)

var ErrNotConfigured = errors.New("solapi credentials are not configured")

// Client signs and sends requests to Solapi.
type Client struct {
	apiKey    string
	apiSecret string
	sender    string
	pfID      string
	baseURL   string
	client    *http.Client
	now       func() time.Time
	salt      func() string
}

type Option func(*Client)

func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.client = h }
}

// WithPFID sets the Kakao channel profile id used for AlimTalk.
func WithPFID(id string) Option {
	return func(c *Client) { c.pfID = id }
}

// New creates a client. The sender number is stored digits only.
func New(apiKey, apiSecret, sender string, opts ...Option) *Client {
	c := &Client{
		apiKey:    apiKey,
		apiSecret: apiSecret,
		sender:    strings.NewReplacer("-", "", " ", "").Replace(sender),
		baseURL:   DefaultBaseURL,
		client:    &http.Client{Timeout: 30 * time.Second},
		now:       time.Now,
		salt:      func() string { return strings.ReplaceAll(uuid.NewString(), "-", "") },
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Configured reports whether key, secret and sender are all set.
func (c *Client) Configured() bool {
	return c.apiKey != "" && c.apiSecret != "" && c.sender != ""
}

func (c *Client) Sender() string { return c.sender }
func (c *Client) PFID() string   { return c.pfID }

// AuthHeader builds the HMAC-SHA256 Authorization header value.
func AuthHeader(apiKey, apiSecret string, date time.Time, salt string) string {
	d := date.UTC().Format(time.RFC3339)
	mac := hmac.New(sha256.New, []byte(apiSecret))
	mac.Write([]byte(d + salt))
	return fmt.Sprintf("HMAC-SHA256 apiKey=%s, date=%s, salt=%s, signature=%s",
		apiKey, d, salt, hex.EncodeToString(mac.Sum(nil)))
}

// APIError is a non-2xx answer from Solapi.
type APIError struct {
	StatusCode int
	Message    string
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("solapi API error: %d - %s", e.StatusCode, e.Message)
}

func (c *Client) do(ctx context.Context, method, path string, payload interface{}) ([]byte, error) {
	if c.apiKey == "" || c.apiSecret == "" {
		return nil, ErrNotConfigured
	}

	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", AuthHeader(c.apiKey, c.apiSecret, c.now(), c.salt()))

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("solapi request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read solapi response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: errorMessage(respBody), Body: string(respBody)}
	}
	return respBody, nil
}

// errorMessage picks the most specific message out of an error body.
func errorMessage(body []byte) string {
	if gjson.ValidBytes(body) {
		for _, path := range []string{"errorMessage", "message", "error"} {
			if v := gjson.GetBytes(body, path); v.Type == gjson.String && v.Str != "" {
				return v.Str
			}
		}
	}
	s := strings.TrimSpace(string(body))
	if len([]rune(s)) > 200 {
		s = string([]rune(s)[:200])
	}
	return s
}
