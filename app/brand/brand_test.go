package brand

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	d := Default()
	assert.Equal(t, "MASSGOO", d.Brand.Name)
	assert.Len(t, d.Frameworks, 11)
	assert.Len(t, d.Stages, 4)
	assert.Len(t, d.PainPoints, 5)
	for _, key := range []string{ExistingCustomer, NewCustomer} {
		a, ok := d.Audience(key)
		require.True(t, ok, key)
		assert.NotEmpty(t, a.Channels)
		assert.NotEmpty(t, a.CTA)
	}
	assert.Same(t, d, Default())
}

func TestParseRejectsEmpty(t *testing.T) {
	_, err := Parse([]byte("frameworks: {}"))
	assert.Error(t, err)
	_, err = Parse([]byte("brand: ["))
	assert.Error(t, err)
}

func TestBrandMessage(t *testing.T) {
	d := Default()

	high := d.BrandMessage("이벤트", WeightHigh, "")
	assert.Len(t, high.Core, 3)
	assert.Equal(t, "지금 MASSGOO 수원본점에서 무료 시타 체험하세요", high.CTA)
	assert.Equal(t, "경기 근방에서 가장 가까운 드라이버 피팅 전문 매장", high.Location)
	assert.Len(t, high.Trust, 2)
	assert.Contains(t, high.Emphasis, "적극적으로")

	online := d.BrandMessage("튜토리얼", WeightMedium, "online_customers")
	assert.Equal(t, "전국 어디서나 편리한 온라인 구매와 배송 서비스", online.Location)

	for _, w := range []string{WeightLow, WeightNone} {
		m := d.BrandMessage("이벤트", w, "")
		assert.Empty(t, m.Core)
		assert.Empty(t, m.CTA)
		assert.Empty(t, m.Location)
		assert.Empty(t, m.Trust)
		assert.NotEmpty(t, m.Emphasis)
	}

	fallback := d.BrandMessage("없는 유형", "", "")
	assert.Equal(t, "전문가 상담 받기", fallback.CTA)
	assert.Empty(t, fallback.Emphasis)
}

func TestPainPointMessage(t *testing.T) {
	d := Default()
	p, ok := d.PainPointMessage("distance", true)
	require.True(t, ok)
	assert.Equal(t, "비거리가 줄어들어 고민", p.Problem)
	assert.NotEmpty(t, p.Advantage)

	p, ok = d.PainPointMessage("distance", false)
	require.True(t, ok)
	assert.Empty(t, p.Advantage)

	_, ok = d.PainPointMessage("weather", true)
	assert.False(t, ok)
}

func TestRomanize(t *testing.T) {
	d := Default()
	assert.Equal(t, "massgoo-golf driver distance", d.Romanize("마쓰구골프 드라이버 비거리"))
	assert.Equal(t, "secret-force-v3 review", d.Romanize("시크리트포스 V3 review"))
}

func TestTrackingURL(t *testing.T) {
	d := Default()
	raw := d.TrackingURL("kakao", NewCustomer, "blog-7", "가을 특가")
	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "win.masgolf.co.kr", u.Host)
	assert.Equal(t, "/booking", u.Path)
	q := u.Query()
	assert.Equal(t, "kakao", q.Get("utm_source"))
	assert.Equal(t, "message", q.Get("utm_medium"))
	assert.Equal(t, "blog-7", q.Get("utm_campaign"))
	assert.Equal(t, NewCustomer, q.Get("utm_term"))
	assert.Equal(t, "가을 특가", q.Get("utm_content"))

	other, err := url.Parse(d.TrackingURL("tiktok", "unknown", "", ""))
	require.NoError(t, err)
	assert.Equal(t, "tiktok", other.Query().Get("utm_source"))
	assert.Equal(t, "referral", other.Query().Get("utm_medium"))
	assert.Equal(t, "", other.Path)
}

func TestHashtagsFor(t *testing.T) {
	d := Default()
	tags := d.HashtagsFor(ExistingCustomer, "시니어 골퍼")
	assert.Equal(t, []string{"#골프", "#드라이버", "#마쓰구골프", "#업그레이드", "#VIP", "#특별혜택", "#재구매", "#시니어골퍼", "#60대골프"}, tags)
	assert.Len(t, d.HashtagsFor(NewCustomer, ""), 7)
}

func TestPrompts(t *testing.T) {
	d := Default()

	info := d.BlogPrompt(BlogRequest{Topic: "드라이버 비거리 늘리는 법"})
	assert.Contains(t, info.User, "드라이버 비거리 늘리는 법")
	assert.Contains(t, info.User, "PAS (Problem-Agitate-Solution)")
	assert.NotContains(t, info.User, "핵심 메시지")
	assert.NotEmpty(t, info.System)

	event := d.BlogPrompt(BlogRequest{Topic: "가을 시타회", ContentType: "이벤트", PainPoint: "distance", Keywords: []string{"시타"}})
	assert.Contains(t, event.User, "핵심 메시지")
	assert.Contains(t, event.User, "MASSGOO 강점")
	assert.Contains(t, event.User, "키워드: 시타")

	custom := d.SummaryPrompt("t", "c", "직접 작성한 지시")
	assert.Equal(t, "직접 작성한 지시", custom.User)

	kakao := d.KakaoPrompt("제목", "요약", ExistingCustomer)
	assert.Contains(t, kakao.User, "고객님, 늘 감사드립니다")

	assert.Contains(t, d.CompressPrompt("긴 문자", 90, []string{"MASSGOO"}).User, "반드시 유지할 단어: MASSGOO")
	assert.Contains(t, d.PsychologyPrompt("문자", "SMS", 90).User, "희소성")
	assert.Contains(t, d.ImagePrompt("titanium driver"), "MASSGOO")
}
