package brand

// Message is the brand copy fragment injected into prompts.
type Message struct {
	Core     []string `json:"core"`
	CTA      string   `json:"cta"`
	Location string   `json:"location"`
	Trust    []string `json:"trust"`
	Emphasis string   `json:"emphasis,omitempty"`
}

// BrandMessage assembles the brand fragment for a content type. Low and none
// weights strip brand content so the prompt stays informational.
func (d *Data) BrandMessage(contentType, brandWeight, customerChannel string) Message {
	s := d.Strategy(contentType)
	ch, ok := d.CustomerChannels[customerChannel]
	if !ok {
		ch = d.CustomerChannels["local_customers"]
	}
	trust := d.Trust.SalesData
	if len(trust) > 2 {
		trust = trust[:2]
	}
	m := Message{
		Core:     s.KeyMessages,
		CTA:      s.CTA,
		Location: ch.Message,
		Trust:    trust,
	}

	switch brandWeight {
	case WeightHigh:
		m.Emphasis = "MASSGOO 브랜드를 적극적으로 언급하고 핵심 메시지를 강조"
	case WeightMedium:
		m.Emphasis = "MASSGOO 브랜드를 자연스럽게 언급하고 관련 기술력 소개"
	case WeightLow:
		m = Message{Core: []string{}, Trust: []string{}, Emphasis: "순수한 정보 제공에 집중, 브랜드 언급 최소화"}
	case WeightNone:
		m = Message{Core: []string{}, Trust: []string{}, Emphasis: "완전히 순수한 정보 제공, 브랜드 언급 완전 제거"}
	}
	return m
}

// PainPointMessage returns the pain point by key, without the brand advantage
// unless withAdvantage is set.
func (d *Data) PainPointMessage(key string, withAdvantage bool) (PainPoint, bool) {
	p, ok := d.PainPoints[key]
	if !ok {
		return PainPoint{}, false
	}
	if !withAdvantage {
		p.Advantage = ""
	}
	return p, true
}
