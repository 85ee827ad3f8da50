package solapi

import (
	"context"
	"net/http"
)

// Message is one outbound message.
type Message struct {
	To           string        `json:"to"`
	From         string        `json:"from"`
	Text         string        `json:"text"`
	Type         string        `json:"type"`
	Subject      string        `json:"subject,omitempty"`
	ImageID      string        `json:"imageId,omitempty"`
	KakaoOptions *KakaoOptions `json:"kakaoOptions,omitempty"`
}

// KakaoOptions carries the AlimTalk template selection.
type KakaoOptions struct {
	PFID       string            `json:"pfId"`
	TemplateID string            `json:"templateId"`
	Variables  map[string]string `json:"variables"`
}

// Result is the per-message outcome reported by Solapi.
type Result struct {
	To           string `json:"to"`
	Status       string `json:"status,omitempty"`
	StatusCode   string `json:"statusCode,omitempty"`
	MessageID    string `json:"messageId,omitempty"`
	ErrorCode    string `json:"errorCode,omitempty"`
	ErrorMessage string `json:"errorMessage,omitempty"`
}

// Success reports whether the message was accepted.
func (r Result) Success() bool {
	return r.StatusCode == StatusCodeAccepted || r.Status == "success"
}

// SendResult is the answer to a send-many call. Results is nil when
// Solapi did not itemize the outcome.
type SendResult struct {
	GroupID string   `json:"groupId"`
	Results []Result `json:"results"`
}

type sendManyRequest struct {
	Messages        []Message `json:"messages"`
	AllowDuplicates bool      `json:"allowDuplicates"`
}

// SendMany submits up to ChunkSize messages as one group.
func (c *Client) SendMany(ctx context.Context, msgs []Message) (*SendResult, error) {
	body, err := c.do(ctx, http.MethodPost, "/messages/v4/send-many", sendManyRequest{Messages: msgs})
	if err != nil {
		return nil, err
	}
	var out SendResult
	if err := decode(body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SendOne submits a single message, typically an AlimTalk.
func (c *Client) SendOne(ctx context.Context, msg Message) (Result, error) {
	body, err := c.do(ctx, http.MethodPost, "/messages/v4/send", struct {
		Message Message `json:"message"`
	}{msg})
	if err != nil {
		return Result{To: msg.To}, err
	}
	var out Result
	if err := decode(body, &out); err != nil {
		return Result{To: msg.To}, err
	}
	if out.To == "" {
		out.To = msg.To
	}
	return out, nil
}

// AlimTalk builds an ATA message for the configured profile.
func (c *Client) AlimTalk(to, text, templateID string, vars map[string]string) Message {
	if vars == nil {
		vars = map[string]string{}
	}
	return Message{
		To:   to,
		From: c.sender,
		Text: text,
		Type: TypeATA,
		KakaoOptions: &KakaoOptions{
			PFID:       c.pfID,
			TemplateID: templateID,
			Variables:  vars,
		},
	}
}
