// Package kakao sends FriendTalk messages through the Kakao talk API.
package kakao

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

const (
	DefaultBaseURL = "https://kapi.kakao.com"

	templateWideImage = "WIDE_IMAGE"
)

var ErrNotConfigured = errors.New("kakao admin key is not configured")

type Client struct {
	adminKey string
	baseURL  string
	client   *http.Client
}

type Option func(*Client)

func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.client = h }
}

func New(adminKey string, opts ...Option) *Client {
	c := &Client{
		adminKey: adminKey,
		baseURL:  DefaultBaseURL,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Configured reports whether an admin key is set. Without one callers
// simulate delivery.
func (c *Client) Configured() bool {
	return c.adminKey != ""
}

type Link struct {
	WebURL       string `json:"web_url"`
	MobileWebURL string `json:"mobile_web_url"`
}

func newLink(u string) *Link {
	return &Link{WebURL: u, MobileWebURL: u}
}

type Button struct {
	Title string `json:"title"`
	Link  *Link  `json:"link"`
}

type Content struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url"`
	Link        *Link  `json:"link,omitempty"`
}

// Template is a Kakao message template object.
type Template struct {
	ObjectType  string   `json:"object_type"`
	Text        string   `json:"text,omitempty"`
	Link        *Link    `json:"link,omitempty"`
	ButtonTitle string   `json:"button_title,omitempty"`
	Content     *Content `json:"content,omitempty"`
	Buttons     []Button `json:"buttons,omitempty"`
}

// Message is the draft a template is built from.
type Message struct {
	Title        string
	Content      string
	TemplateType string
	ButtonText   string
	ButtonLink   string
	ImageURL     string
}

// BuildTemplate renders m as a text template, or as a feed template when a
// wide image is requested and an image is present. A button needs both text
// and link.
func BuildTemplate(m Message) Template {
	if m.ImageURL != "" && m.TemplateType == templateWideImage {
		t := Template{
			ObjectType: "feed",
			Content: &Content{
				Title:       m.Title,
				Description: m.Content,
				ImageURL:    m.ImageURL,
			},
		}
		if m.ButtonLink != "" {
			t.Content.Link = newLink(m.ButtonLink)
		}
		if m.ButtonText != "" && m.ButtonLink != "" {
			t.Buttons = []Button{{Title: m.ButtonText, Link: newLink(m.ButtonLink)}}
		}
		return t
	}

	t := Template{ObjectType: "text", Text: m.Content}
	if m.ButtonText != "" && m.ButtonLink != "" {
		t.Link = newLink(m.ButtonLink)
		t.ButtonTitle = m.ButtonText
	}
	return t
}

// SendResult lists the receivers Kakao accepted.
type SendResult struct {
	Successful []string
}

// SendFriendTalk sends t to the friends identified by uuids.
func (c *Client) SendFriendTalk(ctx context.Context, uuids []string, t Template) (*SendResult, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}
	receivers, err := json.Marshal(uuids)
	if err != nil {
		return nil, err
	}
	tmpl, err := json.Marshal(t)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal template: %w", err)
	}
	form := url.Values{
		"receiver_uuids":  {string(receivers)},
		"template_object": {string(tmpl)},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v1/api/talk/friends/message/default/send", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "KakaoAK "+c.adminKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("kakao request failed: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	parsed := gjson.ParseBytes(body)
	if resp.StatusCode != http.StatusOK || parsed.Get("error").Exists() {
		msg := parsed.Get("msg").String()
		if msg == "" {
			msg = parsed.Get("message").String()
		}
		if msg == "" {
			msg = "카카오 API 발송 실패"
		}
		return nil, fmt.Errorf("kakao API error: %d - %s", resp.StatusCode, msg)
	}

	out := &SendResult{}
	if ok := parsed.Get("successful_receiver_uuids"); ok.IsArray() {
		for _, u := range ok.Array() {
			out.Successful = append(out.Successful, u.String())
		}
	} else {
		out.Successful = append(out.Successful, uuids...)
	}
	return out, nil
}
