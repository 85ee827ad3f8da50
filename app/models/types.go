package models

import (
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Blog post states.
const (
	StatusDraft     = "draft"
	StatusPublished = "published"
)

// Channel post states.
const (
	StatusSent    = "sent"
	StatusPartial = "partial"
	StatusFailed  = "failed"
)

// Channels a ChannelPost can belong to.
const (
	ChannelSMS   = "sms"
	ChannelKakao = "kakao"
)

// Message types.
const (
	TypeSMS        = "SMS"
	TypeSMS300     = "SMS300"
	TypeLMS        = "LMS"
	TypeMMS        = "MMS"
	TypeAlimTalk   = "ALIMTALK"
	TypeFriendTalk = "FRIENDTALK"
)

// Kakao FriendTalk template layouts.
const (
	TemplateBasicText = "BASIC_TEXT"
	TemplateWideImage = "WIDE_IMAGE"
)

// BlogPost is an article published on the retailer's site.
type BlogPost struct {
	ID              int        `json:"id" db:"id"`
	Title           string     `json:"title" db:"title" validate:"required,max=200"`
	Slug            string     `json:"slug" db:"slug" validate:"max=120"`
	Summary         string     `json:"summary" db:"summary"`
	Content         string     `json:"content" db:"content"`
	Category        string     `json:"category" db:"category"`
	Status          string     `json:"status" db:"status" validate:"omitempty,oneof=draft published"`
	MetaTitle       string     `json:"meta_title" db:"meta_title"`
	MetaDescription string     `json:"meta_description" db:"meta_description"`
	MetaKeywords    string     `json:"meta_keywords" db:"meta_keywords"`
	FeaturedImage   string     `json:"featured_image" db:"featured_image"`
	PublishedAt     *time.Time `json:"published_at" db:"published_at"`
	ViewCount       int        `json:"view_count" db:"view_count" validate:"gte=0"`
	CalendarID      *int       `json:"calendar_id" db:"calendar_id"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at" db:"updated_at"`
}

// ChannelPost is an SMS or Kakao message draft together with its delivery outcome.
type ChannelPost struct {
	ID               int        `json:"id" db:"id"`
	Channel          string     `json:"channel" db:"channel" validate:"required,oneof=sms kakao"`
	Title            string     `json:"title" db:"title" validate:"max=200"`
	Content          string     `json:"content" db:"content"`
	MessageType      string     `json:"message_type" db:"message_type" validate:"required,oneof=SMS SMS300 LMS MMS ALIMTALK FRIENDTALK"`
	TemplateType     string     `json:"template_type" db:"template_type" validate:"omitempty,oneof=BASIC_TEXT WIDE_IMAGE"`
	TemplateID       string     `json:"template_id" db:"template_id"`
	ButtonText       string     `json:"button_text" db:"button_text"`
	ButtonLink       string     `json:"button_link" db:"button_link" validate:"omitempty,url"`
	ImageURL         string     `json:"image_url" db:"image_url"`
	ImageID          string     `json:"image_id" db:"image_id"`
	ShortLink        string     `json:"short_link" db:"short_link"`
	RecipientNumbers StringList `json:"recipient_numbers" db:"recipient_numbers"`
	RecipientUUIDs   StringList `json:"recipient_uuids" db:"recipient_uuids"`
	FriendGroupID    *int       `json:"friend_group_id" db:"friend_group_id"`
	Status           string     `json:"status" db:"status" validate:"required,oneof=draft sent partial failed"`
	ScheduledAt      *time.Time `json:"scheduled_at" db:"scheduled_at"`
	SentAt           *time.Time `json:"sent_at" db:"sent_at"`
	SentCount        int        `json:"sent_count" db:"sent_count"`
	SuccessCount     int        `json:"success_count" db:"success_count"`
	FailCount        int        `json:"fail_count" db:"fail_count"`
	GroupID          string     `json:"group_id" db:"group_id"`
	CalendarID       *int       `json:"calendar_id" db:"calendar_id"`
	BlogPostID       *int       `json:"blog_post_id" db:"blog_post_id"`
	Note             string     `json:"note" db:"note"`
	SendErrors       StringList `json:"send_errors" db:"send_errors"`
	CreatedAt        time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at" db:"updated_at"`
}

// Customer is a contact that can receive messages.
type Customer struct {
	ID                int        `json:"id" db:"id"`
	Name              string     `json:"name" db:"name" validate:"required,max=100"`
	Phone             string     `json:"phone" db:"phone" validate:"required,numeric,min=9,max=11"`
	Address           string     `json:"address" db:"address"`
	VIPLevel          string     `json:"vip_level" db:"vip_level" validate:"omitempty,oneof=bronze silver gold platinum"`
	OptOut            bool       `json:"opt_out" db:"opt_out"`
	FirstPurchaseDate *time.Time `json:"first_purchase_date" db:"first_purchase_date"`
	LastPurchaseDate  *time.Time `json:"last_purchase_date" db:"last_purchase_date"`
	LastContactDate   *time.Time `json:"last_contact_date" db:"last_contact_date"`
	FirstInquiryDate  *time.Time `json:"first_inquiry_date" db:"first_inquiry_date"`
	CreatedAt         time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at" db:"updated_at"`
}

// MessageLog records one delivery attempt of a piece of content to one phone.
// (ContentID, CustomerPhone) is unique.
type MessageLog struct {
	ID            int       `json:"id" db:"id"`
	ContentID     string    `json:"content_id" db:"content_id" validate:"required"`
	CustomerPhone string    `json:"customer_phone" db:"customer_phone" validate:"required"`
	MessageType   string    `json:"message_type" db:"message_type"`
	Status        string    `json:"status" db:"status"`
	Channel       string    `json:"channel" db:"channel"`
	SentAt        time.Time `json:"sent_at" db:"sent_at"`
}

// CalendarEntry is a scheduled piece of content in the marketing calendar.
type CalendarEntry struct {
	ID                  int        `json:"id" db:"id"`
	Title               string     `json:"title" db:"title" validate:"required,max=200"`
	ContentType         string     `json:"content_type" db:"content_type" validate:"required"`
	ChannelType         string     `json:"channel_type" db:"channel_type"`
	TargetAudience      Audience   `json:"target_audience" db:"target_audience"`
	TargetAudienceType  string     `json:"target_audience_type" db:"target_audience_type"`
	ContentDate         time.Time  `json:"content_date" db:"content_date"`
	Status              string     `json:"status" db:"status"`
	BlogPostID          *int       `json:"blog_post_id" db:"blog_post_id"`
	ParentContentID     *int       `json:"parent_content_id" db:"parent_content_id"`
	IsRoot              bool       `json:"is_root_content" db:"is_root_content"`
	ContentBody         string     `json:"content_body" db:"content_body"`
	LandingPageURL      string     `json:"landing_page_url" db:"landing_page_url"`
	ConversionGoals     StringList `json:"conversion_goals" db:"conversion_goals"`
	DerivedContentCount int        `json:"derived_content_count" db:"derived_content_count"`
	MultichannelStatus  string     `json:"multichannel_status" db:"multichannel_status"`
	CreatedAt           time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at" db:"updated_at"`
}

// Audience is the persona and funnel stage a calendar entry targets.
type Audience struct {
	Persona string `json:"persona"`
	Stage   string `json:"stage"`
}

// KakaoFriend maps a Kakao channel friend UUID to a phone number.
type KakaoFriend struct {
	UUID      string    `json:"uuid" db:"uuid" validate:"required"`
	Phone     string    `json:"phone" db:"phone" validate:"required,numeric"`
	Nickname  string    `json:"nickname" db:"nickname"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// KakaoFriendGroup is a named set of friend UUIDs used for targeting.
type KakaoFriendGroup struct {
	ID        int        `json:"id" db:"id"`
	Name      string     `json:"name" db:"name" validate:"required"`
	UUIDs     StringList `json:"uuids" db:"uuids"`
	Active    bool       `json:"active" db:"active"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
}

// ShortLink resolves a short code to a target URL.
type ShortLink struct {
	Code      string    `json:"code" db:"code" validate:"required,alphanum"`
	TargetURL string    `json:"target_url" db:"target_url" validate:"required,url"`
	Hits      int       `json:"hits" db:"hits"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
