package brand

import (
	"fmt"
	"strings"

	"fairway/app/ai"
)

const blogSystem = `당신은 MASSGOO 브랜드의 전문 블로그 작가입니다.
시니어 골퍼를 위한 프리미엄 골프 장비 브랜드의 콘텐츠를 작성합니다.

브랜드 톤앤매너:
- 전문적이면서 친근한 톤
- 시니어 골퍼에 대한 존중과 격려
- 기술적 설명은 쉽고 명확하게
- 경험과 지혜를 인정하는 접근

글 구조:
1. 흥미로운 도입부 (질문이나 통계)
2. 문제 인식
3. 솔루션 제시 (MASSGOO 제품/서비스)
4. 구체적 증거/사례
5. 명확한 CTA`

const copySystem = `당신은 MASSGOO(마쓰구골프)의 마케팅 카피라이터입니다.
시니어 골퍼를 존중하는 품격 있는 톤으로 간결하게 작성합니다.
금지 표현: 노인, 늙은, 쇠퇴, 한계, 싸구려, 저렴한`

// BlogRequest parameterizes a blog draft.
type BlogRequest struct {
	Topic           string   `json:"title" validate:"required"`
	ContentType     string   `json:"contentType"`
	Persona         string   `json:"customerPersona"`
	BrandWeight     string   `json:"brandWeight"`
	PainPoint       string   `json:"painPoint"`
	AudienceStage   string   `json:"audienceStage"`
	CustomerChannel string   `json:"customerChannel"`
	Framework       string   `json:"storytellingFramework"`
	Keywords        []string `json:"keywords"`
	Length          int      `json:"length"`
	Extra           string   `json:"additionalContext"`
}

// BlogPrompt builds the prompt for a full blog draft.
func (d *Data) BlogPrompt(r BlogRequest) ai.Prompt {
	length := r.Length
	if length <= 0 {
		length = 1500
	}
	contentType := r.ContentType
	if contentType == "" {
		contentType = "골프 정보"
	}
	weight := r.BrandWeight
	if weight == "" {
		weight = d.Strategy(contentType).BrandWeight
	}

	var b strings.Builder
	b.WriteString("블로그 포스트를 작성해주세요.\n\n")
	fmt.Fprintf(&b, "주제: %s\n", r.Topic)
	fmt.Fprintf(&b, "콘텐츠 유형: %s\n", contentType)
	if len(r.Keywords) > 0 {
		fmt.Fprintf(&b, "키워드: %s\n", strings.Join(r.Keywords, ", "))
	} else {
		fmt.Fprintf(&b, "키워드: %s\n", strings.Join(d.SEOKeywords.Primary, ", "))
	}
	if p, ok := d.Personas[r.Persona]; ok {
		fmt.Fprintf(&b, "타겟: %s (관심사: %s)\n", p.Name, strings.Join(p.CoreConcerns, ", "))
	} else {
		b.WriteString("타겟: 50-70대 시니어 골퍼\n")
	}
	if s, ok := d.Stages[r.AudienceStage]; ok {
		fmt.Fprintf(&b, "고객 단계: %s (%s), 전환 목표: %s\n", s.Name, s.ContentFocus, s.ConversionGoal)
	}
	fmt.Fprintf(&b, "길이: %d자\n", length)

	if f, ok := d.Frameworks[r.Framework]; ok {
		fmt.Fprintf(&b, "\n스토리텔링 프레임워크: %s\n구조: %s\n", f.Name, strings.Join(f.Structure, " → "))
	} else if fs := d.FrameworksFor(contentType); len(fs) > 0 {
		fmt.Fprintf(&b, "\n스토리텔링 프레임워크: %s\n구조: %s\n", fs[0].Name, strings.Join(fs[0].Structure, " → "))
	}

	if p, ok := d.PainPointMessage(r.PainPoint, weight != WeightLow && weight != WeightNone); ok {
		fmt.Fprintf(&b, "\n고객 고민: %s\n증상: %s\n해결책: %s\n", p.Problem, strings.Join(p.Symptoms, ", "), p.Solution)
		if p.Advantage != "" {
			fmt.Fprintf(&b, "MASSGOO 강점: %s\n", p.Advantage)
		}
	}

	m := d.BrandMessage(contentType, weight, r.CustomerChannel)
	fmt.Fprintf(&b, "\n브랜드 강도: %s\n", m.Emphasis)
	if len(m.Core) > 0 {
		fmt.Fprintf(&b, "핵심 메시지: %s\n", strings.Join(m.Core, ", "))
	}
	if m.CTA != "" {
		fmt.Fprintf(&b, "CTA: %s\n", m.CTA)
	}
	if m.Location != "" {
		fmt.Fprintf(&b, "위치: %s\n", m.Location)
	}
	if len(m.Trust) > 0 {
		fmt.Fprintf(&b, "신뢰 지표: %s\n", strings.Join(m.Trust, ", "))
	}

	b.WriteString("\n금지 표현: 노인, 늙은, 쇠퇴, 한계\n필수 포함: 프리미엄, 혁신, 비거리, 경험\n")
	b.WriteString("첫 줄은 '# 제목' 형식의 제목으로 시작하고, 본문에는 ## 부제목을 3개 이상 사용하세요.\n")
	if r.Extra != "" {
		fmt.Fprintf(&b, "\n추가 요구사항: %s\n", r.Extra)
	}

	return ai.Prompt{System: blogSystem, User: b.String(), Temperature: 0.7, MaxTokens: 2000}
}

// SummaryPrompt asks for a short excerpt of a post. custom replaces the default instructions.
func (d *Data) SummaryPrompt(title, content, custom string) ai.Prompt {
	if custom != "" {
		return ai.Prompt{System: copySystem, User: custom, Temperature: 0.7, MaxTokens: 500}
	}
	user := fmt.Sprintf(`다음 블로그 글을 2-3문장, 150자 이내로 요약해주세요.
요약은 독자가 글을 읽고 싶도록 핵심 혜택을 담아야 합니다.

제목: %s
본문:
%s`, title, content)
	return ai.Prompt{System: copySystem, User: user, Temperature: 0.5, MaxTokens: 400}
}

// CompressPrompt asks to shorten text to target characters keeping preserve words intact.
func (d *Data) CompressPrompt(text string, target int, preserve []string) ai.Prompt {
	var b strings.Builder
	fmt.Fprintf(&b, "다음 문자 메시지를 %d자 이내로 줄여주세요. 의미와 CTA는 유지하세요.\n", target)
	if len(preserve) > 0 {
		fmt.Fprintf(&b, "반드시 유지할 단어: %s\n", strings.Join(preserve, ", "))
	}
	b.WriteString("설명 없이 줄인 메시지만 출력하세요.\n\n")
	b.WriteString(text)
	return ai.Prompt{System: copySystem, User: b.String(), Temperature: 0.3, MaxTokens: 600}
}

// ImprovePrompt asks to polish a message toward a goal.
func (d *Data) ImprovePrompt(text, messageType, goal string) ai.Prompt {
	if goal == "" {
		goal = "클릭률과 전환율 향상"
	}
	user := fmt.Sprintf(`다음 %s 메시지를 개선해주세요.
목표: %s
- 핵심 혜택을 앞에 배치
- 명확한 CTA 한 개
- 과장 광고 표현 금지
설명 없이 개선된 메시지만 출력하세요.

%s`, messageType, goal, text)
	return ai.Prompt{System: copySystem, User: user, Temperature: 0.7, MaxTokens: 800}
}

// PsychologyPrompt asks for three variants built on distinct persuasion principles,
// returned as a JSON array of {"principle","message"} objects.
func (d *Data) PsychologyPrompt(text, messageType string, limit int) ai.Prompt {
	principles := d.Frameworks["cialdini"].Structure
	user := fmt.Sprintf(`다음 %s 메시지를 심리학 원칙(%s) 중 서로 다른 3가지를 적용해 3개 버전으로 다시 작성해주세요.
각 버전은 %d자 이내여야 합니다.
JSON 배열만 출력하세요: [{"principle": "원칙", "message": "메시지"}]

원본:
%s`, messageType, strings.Join(principles, ", "), limit, text)
	return ai.Prompt{System: copySystem, User: user, Temperature: 0.8, MaxTokens: 1200}
}

// KakaoPrompt asks for a Kakao channel message for one audience.
func (d *Data) KakaoPrompt(title, excerpt, audience string) ai.Prompt {
	a, ok := d.Audiences[audience]
	if !ok {
		a = d.Audiences[NewCustomer]
	}
	greeting := a.Greeting
	if greeting == "" {
		greeting = "안녕하세요"
	}
	user := fmt.Sprintf(`블로그 제목: %s
요약: %s
타겟 오디언스: %s
페르소나: %s
톤앤매너: %s
포커스: %s
CTA: %s

카카오톡 메시지 생성 요구사항:
- %d자 이내 (최대 %d자)
- %s로 시작
- %s에 집중
- %s 톤앤매너
- 명확한 CTA: "%s"
- 링크는 넣지 마세요

형식:
[인사말]
[핵심 혜택 1-2줄]`,
		title, excerpt, a.Name, strings.Join(a.Personas, ", "), a.Tone, a.Focus, a.CTA,
		a.KakaoLength.Optimal, a.KakaoLength.Max, greeting, a.Focus, a.Tone, a.CTA)
	return ai.Prompt{System: copySystem, User: user, Temperature: 0.7, MaxTokens: 600}
}

// ImagePrompt describes a product photo for the image model.
func (d *Data) ImagePrompt(topic string) string {
	return fmt.Sprintf(`Professional golf equipment photography for %s brand.
%s.
Premium, luxury golf club, titanium driver, senior golfer.
High quality product shot, studio lighting, elegant composition.
Brand colors: navy blue and gold accents.
Clean background, professional sports equipment photography style.`, d.Brand.Name, topic)
}
