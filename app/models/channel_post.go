package models

import (
	"errors"
	"fmt"
	"time"
)

// Validate checks if the channel post meets all validation requirements
func (c *ChannelPost) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}

	switch c.Channel {
	case ChannelSMS:
		switch c.MessageType {
		case TypeSMS, TypeSMS300, TypeLMS, TypeMMS:
		default:
			return fmt.Errorf("message type %s is not valid for sms", c.MessageType)
		}
	case ChannelKakao:
		if c.MessageType != TypeAlimTalk && c.MessageType != TypeFriendTalk {
			return fmt.Errorf("message type %s is not valid for kakao", c.MessageType)
		}
	}

	if c.SuccessCount+c.FailCount > c.SentCount && c.SentCount > 0 {
		return errors.New("success and fail counts exceed sent count")
	}
	return nil
}

// BeforeCreate sets up any necessary fields before creation
func (c *ChannelPost) BeforeCreate() {
	now := time.Now().UTC()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now
	if c.Status == "" {
		c.Status = StatusDraft
	}
	if c.MessageType == "" {
		if c.Channel == ChannelKakao {
			c.MessageType = TypeFriendTalk
		} else {
			c.MessageType = TypeSMS300
		}
	}
	if c.Channel == ChannelKakao && c.TemplateType == "" {
		c.TemplateType = TemplateBasicText
	}
}

// IsDue reports whether a scheduled draft should be dispatched at now.
func (c *ChannelPost) IsDue(now time.Time) bool {
	return c.Status == StatusDraft && c.ScheduledAt != nil && !c.ScheduledAt.After(now)
}

// RecordDelivery stores the aggregate outcome of a send and derives the final status:
// sent when nothing failed, partial when some succeeded, failed otherwise.
func (c *ChannelPost) RecordDelivery(attempted, success, fail int, groupID string, at time.Time) {
	c.SentCount = attempted
	c.SuccessCount = success
	c.FailCount = fail
	c.GroupID = groupID
	c.SentAt = &at
	c.UpdatedAt = at
	switch {
	case fail == 0:
		c.Status = StatusSent
	case success > 0:
		c.Status = StatusPartial
	default:
		c.Status = StatusFailed
	}
}

// MarkFailed fails the post and clears its schedule so it is not picked up again.
func (c *ChannelPost) MarkFailed(at time.Time, reason string) {
	c.Status = StatusFailed
	c.ScheduledAt = nil
	c.UpdatedAt = at
	if reason != "" {
		c.SendErrors = append(c.SendErrors, reason)
	}
}
