package brand

import (
	"net/url"
	"strings"
)

// Audience keys.
const (
	ExistingCustomer = "existing_customer"
	NewCustomer      = "new_customer"
)

// Audience looks up a target audience.
func (d *Data) Audience(key string) (Audience, bool) {
	a, ok := d.Audiences[key]
	return a, ok
}

// TrackingURL builds the audience landing page tagged with UTM parameters for channel.
func (d *Data) TrackingURL(channel, audience, campaign, content string) string {
	landing := d.Brand.Site
	if a, ok := d.Audiences[audience]; ok && a.LandingPage != "" {
		landing = a.LandingPage
	}
	u, err := url.Parse(landing)
	if err != nil {
		return landing
	}
	utm, ok := d.ChannelUTM[channel]
	if !ok {
		utm = UTM{Source: channel, Medium: "referral"}
	}
	q := u.Query()
	q.Set("utm_source", utm.Source)
	q.Set("utm_medium", utm.Medium)
	if campaign != "" {
		q.Set("utm_campaign", campaign)
	}
	if audience != "" {
		q.Set("utm_term", audience)
	}
	if content != "" {
		q.Set("utm_content", content)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// HashtagsFor returns base, audience and persona hashtags in that order.
func (d *Data) HashtagsFor(audience, persona string) []string {
	out := append([]string{}, d.Hashtags.Base...)
	out = append(out, d.Hashtags.Audience[audience]...)
	out = append(out, d.Hashtags.Persona[strings.TrimSpace(persona)]...)
	return out
}
