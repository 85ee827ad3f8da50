// Package brand holds the retailer's marketing strategy data and turns it into
// copy fragments, slugs, tracking links and AI prompts.
package brand

import (
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed data.yaml
var embedded []byte

// Brand weights.
const (
	WeightHigh   = "high"
	WeightMedium = "medium"
	WeightLow    = "low"
	WeightNone   = "none"
)

type Identity struct {
	Name       string `yaml:"name"`
	KoreanName string `yaml:"korean_name"`
	Site       string `yaml:"site"`
}

type Framework struct {
	Name        string   `yaml:"name" json:"name"`
	Type        string   `yaml:"type" json:"type"`
	Description string   `yaml:"description" json:"description"`
	Structure   []string `yaml:"structure" json:"structure"`
}

type ContentType struct {
	BrandStrength string   `yaml:"brand_strength" json:"brand_strength"`
	Frameworks    []string `yaml:"frameworks" json:"frameworks"`
	Description   string   `yaml:"description" json:"description"`
}

type Strategy struct {
	BrandWeight   string   `yaml:"brand_weight" json:"brand_weight"`
	AudienceStage string   `yaml:"audience_stage" json:"audience_stage"`
	CTA           string   `yaml:"cta" json:"cta"`
	LandingPage   string   `yaml:"landing_page" json:"landing_page"`
	Channels      []string `yaml:"channels" json:"channels"`
	KeyMessages   []string `yaml:"key_messages" json:"key_messages"`
}

// Stage is a funnel stage with its conversion target.
type Stage struct {
	Name           string   `yaml:"name" json:"name"`
	ContentFocus   string   `yaml:"content_focus" json:"content_focus"`
	BrandWeight    string   `yaml:"brand_weight" json:"brand_weight"`
	ConversionGoal string   `yaml:"conversion_goal" json:"conversion_goal"`
	CTA            string   `yaml:"cta" json:"cta"`
	LandingPage    string   `yaml:"landing_page" json:"landing_page"`
	Channels       []string `yaml:"channels" json:"channels"`
}

type LengthGuide struct {
	Optimal int `yaml:"optimal" json:"optimal"`
	Max     int `yaml:"max" json:"max"`
}

// Audience is a customer segment targeted by multichannel campaigns.
type Audience struct {
	Name        string      `yaml:"name" json:"name"`
	Personas    []string    `yaml:"personas" json:"personas"`
	Tone        string      `yaml:"tone" json:"tone"`
	Focus       string      `yaml:"focus" json:"focus"`
	Greeting    string      `yaml:"greeting" json:"greeting"`
	CTA         string      `yaml:"cta" json:"cta"`
	LandingPage string      `yaml:"landing_page" json:"landing_page"`
	Channels    []string    `yaml:"channels" json:"channels"`
	KakaoLength LengthGuide `yaml:"kakao_length" json:"kakao_length"`
	SMSLength   LengthGuide `yaml:"sms_length" json:"sms_length"`
}

type UTM struct {
	Source string `yaml:"source"`
	Medium string `yaml:"medium"`
}

type PainPoint struct {
	Problem   string   `yaml:"problem" json:"problem"`
	Symptoms  []string `yaml:"symptoms" json:"symptoms"`
	Solution  string   `yaml:"solution" json:"solution"`
	Advantage string   `yaml:"advantage" json:"masgolf_advantage,omitempty"`
}

type CustomerChannel struct {
	Name        string   `yaml:"name" json:"name"`
	Location    string   `yaml:"location" json:"location"`
	Message     string   `yaml:"message" json:"message"`
	TargetAreas []string `yaml:"target_areas" json:"target_areas"`
	Advantages  []string `yaml:"advantages" json:"advantages"`
}

type Trust struct {
	Awards     []string `yaml:"awards" json:"awards"`
	SalesData  []string `yaml:"sales_data" json:"sales_data"`
	Technology []string `yaml:"technology" json:"technology"`
	Guarantees []string `yaml:"guarantees" json:"guarantees"`
}

type Persona struct {
	Name         string   `yaml:"name" json:"name"`
	CoreConcerns []string `yaml:"core_concerns" json:"core_concerns"`
	Focus        string   `yaml:"focus" json:"focus"`
}

type SEOKeywords struct {
	Primary   []string `yaml:"primary" json:"primary"`
	Secondary []string `yaml:"secondary" json:"secondary"`
	Longtail  []string `yaml:"longtail" json:"longtail"`
}

type Hashtags struct {
	Base     []string            `yaml:"base"`
	Audience map[string][]string `yaml:"audience"`
	Persona  map[string][]string `yaml:"persona"`
}

type SlugRule struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

// Data is the complete brand strategy document.
type Data struct {
	Brand            Identity                   `yaml:"brand"`
	Frameworks       map[string]Framework       `yaml:"frameworks"`
	ContentTypes     map[string]ContentType     `yaml:"content_types"`
	Strategies       map[string]Strategy        `yaml:"strategies"`
	Stages           map[string]Stage           `yaml:"stages"`
	Audiences        map[string]Audience        `yaml:"audiences"`
	ChannelUTM       map[string]UTM             `yaml:"channel_utm"`
	PainPoints       map[string]PainPoint       `yaml:"pain_points"`
	CustomerChannels map[string]CustomerChannel `yaml:"customer_channels"`
	Trust            Trust                      `yaml:"trust"`
	Personas         map[string]Persona         `yaml:"personas"`
	SEOKeywords      SEOKeywords                `yaml:"seo_keywords"`
	Hashtags         Hashtags                   `yaml:"hashtags"`
	SlugRules        []SlugRule                 `yaml:"slug_rules"`
}

// Parse decodes a brand document.
func Parse(b []byte) (*Data, error) {
	var d Data
	if err := yaml.Unmarshal(b, &d); err != nil {
		return nil, fmt.Errorf("failed to parse brand data: %w", err)
	}
	if d.Brand.Name == "" {
		return nil, fmt.Errorf("brand data is missing brand.name")
	}
	return &d, nil
}

var (
	defaultOnce sync.Once
	defaultData *Data
)

// Default returns the embedded brand document. It panics if the embedded file is malformed.
func Default() *Data {
	defaultOnce.Do(func() {
		d, err := Parse(embedded)
		if err != nil {
			panic(err)
		}
		defaultData = d
	})
	return defaultData
}

// Strategy returns the strategy for a content type, falling back to "골프 정보".
func (d *Data) Strategy(contentType string) Strategy {
	if s, ok := d.Strategies[contentType]; ok {
		return s
	}
	return d.Strategies["골프 정보"]
}

// FrameworksFor lists the frameworks suited to a content type.
func (d *Data) FrameworksFor(contentType string) []Framework {
	ct, ok := d.ContentTypes[contentType]
	if !ok {
		return nil
	}
	out := make([]Framework, 0, len(ct.Frameworks))
	for _, key := range ct.Frameworks {
		if f, ok := d.Frameworks[key]; ok {
			out = append(out, f)
		}
	}
	return out
}
