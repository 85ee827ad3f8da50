package messaging

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLimit(t *testing.T) {
	tests := []struct {
		messageType string
		want        int
	}{
		{"SMS", 90},
		{"SMS300", 300},
		{"LMS", 2000},
		{"MMS", 2000},
		{"", 90},
		{"UNKNOWN", 90},
	}
	for _, tt := range tests {
		t.Run(tt.messageType, func(t *testing.T) {
			assert.Equal(t, tt.want, Limit(tt.messageType))
		})
	}
}

func TestMessageLength(t *testing.T) {
	assert.Equal(t, 5, MessageLength("hello", ""))
	assert.Equal(t, 5+15+8, MessageLength("hello", "https://x.co/ab"))
	assert.Equal(t, 3, MessageLength("마쓰구", ""))
}

func TestStatusOf(t *testing.T) {
	assert.Equal(t, StatusOK, StatusOf(80, 100))
	assert.Equal(t, StatusWarning, StatusOf(81, 100))
	assert.Equal(t, StatusOK, StatusOf(0, 100))
	assert.Equal(t, StatusWarning, StatusOf(100, 100))
	assert.Equal(t, StatusOver, StatusOf(101, 100))
	assert.Equal(t, StatusOver, StatusOf(1, 0))
}

func TestComposeText(t *testing.T) {
	assert.Equal(t, "본문", ComposeText("본문", ""))
	assert.Equal(t, "본문\n\n링크: https://x.co/a", ComposeText("본문", "https://x.co/a"))
}

func TestProviderType(t *testing.T) {
	assert.Equal(t, "LMS", ProviderType("SMS300", false))
	assert.Equal(t, "LMS", ProviderType("MMS", false))
	assert.Equal(t, "MMS", ProviderType("MMS", true))
	assert.Equal(t, "SMS", ProviderType("SMS", false))
	assert.Equal(t, "LMS", ProviderType("", false))
}

func TestAnalyze(t *testing.T) {
	fits := Analyze("짧은 문자", "", "SMS", false)
	assert.Equal(t, StatusOK, fits.Status)
	assert.Equal(t, "SMS", fits.SuggestedType)
	assert.Empty(t, fits.Parts)

	long := Analyze(strings.Repeat("가", 95), "", "SMS", false)
	assert.Equal(t, StatusOver, long.Status)
	assert.Equal(t, "LMS", long.SuggestedType)
	require.NotEmpty(t, long.Parts)
	for _, p := range long.Parts {
		assert.LessOrEqual(t, RuneLen(p), 90)
	}
}

func TestCompress(t *testing.T) {
	text := "고객님께서는   정말 좋은 드라이버를 만나실 수 있습니다."

	t.Run("fits already", func(t *testing.T) {
		res := Compress("짧다", 10, nil)
		assert.Equal(t, "짧다", res.Text)
		assert.Empty(t, res.Steps)
		assert.False(t, res.Truncated)
	})

	t.Run("stops once it fits", func(t *testing.T) {
		res := Compress(text, 26, nil)
		assert.Equal(t, "고객님은 정말 좋은 DR를 만나실 수 있습니다.", res.Text)
		assert.Equal(t, []string{"whitespace", "abbreviate"}, res.Steps)
		assert.Equal(t, 26, res.Length)
		assert.Equal(t, 32, res.Original)
	})

	t.Run("preserves keywords", func(t *testing.T) {
		res := Compress(text, 26, []string{"드라이버"})
		assert.Contains(t, res.Text, "드라이버")
		assert.Equal(t, []string{"whitespace", "abbreviate", "fillers"}, res.Steps)
		assert.LessOrEqual(t, res.Length, 26)
	})

	t.Run("truncates as last resort", func(t *testing.T) {
		res := Compress(text, 20, nil)
		assert.True(t, res.Truncated)
		assert.Equal(t, 20, res.Length)
		assert.True(t, strings.HasSuffix(res.Text, "…"))
		assert.Equal(t, "truncate", res.Steps[len(res.Steps)-1])
	})

	t.Run("truncation keeps preserved keywords whole", func(t *testing.T) {
		tests := []struct {
			name     string
			text     string
			target   int
			preserve []string
			want     string
		}{
			{
				name:     "keyword moved into the budget",
				text:     "가나다라마바사아자차카타파하 가나다라마바사 MASSGOO시크릿포스",
				target:   30,
				preserve: []string{"MASSGOO시크릿포스"},
				want:     "가나다라마바사아자차카타파하 가나…MASSGOO시크릿포스",
			},
			{
				name:     "keyword longer than the budget is dropped whole",
				text:     "abc 1234567890",
				target:   8,
				preserve: []string{"1234567890"},
				want:     "abc…",
			},
			{
				name:     "keyword before the cut is untouched",
				text:     "MASSGOO 시크릿포스 골드 드라이버 한정 특가 이벤트 진행중",
				target:   12,
				preserve: []string{"MASSGOO"},
				want:     "MASSGOO 시크릿…",
			},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				res := Compress(tt.text, tt.target, tt.preserve)
				assert.True(t, res.Truncated)
				assert.Equal(t, tt.want, res.Text)
				assert.LessOrEqual(t, res.Length, tt.target)
			})
		}
	})

	t.Run("strips emoji", func(t *testing.T) {
		res := Compress("비거리 UP 🏌️‍♂️🔥", 8, nil)
		assert.Equal(t, "비거리 UP", strings.TrimSpace(res.Text))
	})
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc…", Truncate("abcdef", 4))
	assert.Equal(t, "abc", Truncate("abc", 4))
	assert.Equal(t, "가나다…", Truncate("가나다라마", 4))
}

func TestSplit(t *testing.T) {
	t.Run("fits in one part", func(t *testing.T) {
		assert.Equal(t, []string{"hello"}, Split("hello", 10, true))
	})

	t.Run("paragraph boundaries", func(t *testing.T) {
		got := Split("aaaa\n\nbbbb\n\ncccc", 10, false)
		assert.Equal(t, []string{"aaaa\n\nbbbb", "cccc"}, got)
	})

	t.Run("sentence boundaries", func(t *testing.T) {
		got := Split("첫 문장입니다. 둘째 문장입니다. 셋째 문장입니다.", 20, false)
		assert.Equal(t, []string{"첫 문장입니다. 둘째 문장입니다.", "셋째 문장입니다."}, got)
	})

	t.Run("hard cut", func(t *testing.T) {
		got := Split(strings.Repeat("가", 25), 10, false)
		assert.Equal(t, []string{strings.Repeat("가", 10), strings.Repeat("가", 10), strings.Repeat("가", 5)}, got)
	})

	t.Run("numbered parts stay within limit", func(t *testing.T) {
		got := Split(strings.Repeat("가", 25), 10, true)
		require.Len(t, got, 7)
		assert.True(t, strings.HasPrefix(got[0], "(1/7) "))
		assert.True(t, strings.HasPrefix(got[6], "(7/7) "))
		for _, p := range got {
			assert.LessOrEqual(t, RuneLen(p), 10)
		}
	})

	t.Run("empty", func(t *testing.T) {
		assert.Nil(t, Split("   ", 10, false))
	})
}

func TestPhone(t *testing.T) {
	assert.Equal(t, "01012345678", NormalizePhone("010-1234-5678"))
	assert.Equal(t, "01012345678", NormalizePhone(" 010 1234 5678 "))

	assert.True(t, IsMobile("010-1234-5678"))
	assert.True(t, IsMobile("01012345678"))
	assert.False(t, IsMobile("011-1234-5678"))
	assert.False(t, IsMobile("010-123-5678"))
	assert.False(t, IsMobile("0101234567"))

	assert.Equal(t, "010-1234-5678", FormatPhone("01012345678"))
	assert.Equal(t, "02-1234-5678", FormatPhone("0212345678"))
	assert.Equal(t, "031-215-3990", FormatPhone("0312153990"))

	assert.True(t, LooksLikePhone("010-1234-5678"))
	assert.False(t, LooksLikePhone("a1b2c3"))
}

func TestValidMobiles(t *testing.T) {
	got := ValidMobiles([]string{"010-1234-5678", "01012345678", "bogus", "01099998888", "011-1111-2222"})
	assert.Equal(t, []string{"01012345678", "01099998888"}, got)
}
