package intent_test

import (
	"testing"

	"github.com/sinbc2003/cluade2/internal/intent"
)

func TestClassifier_IsImageRequest(t *testing.T) {
	c := intent.NewClassifier()

	tests := []struct {
		text string
		want bool
	}{
		{"강아지 그림 그려줘", true},
		{"강아지 이미지 그려줘", true},
		{"고양이 사진 만들어줘", true},
		{"학교 웹툰 출력해줘", true},
		{"우주를 그려서 이미지로 만들어", true},
		{"바다 그림 보여줘", true},
		{"이 데이터를 시각적으로 표현해줘", true},
		{"비주얼 만들어봐", true},
		{"draw me a picture of a dog", true},
		{"can you generate an image of the solar system", true},
		{"오늘 날씨 어때?", false},
		{"수학 숙제 도와줘", false},
		{"안녕하세요", false},
		{"what is photosynthesis?", false},
		{"그 그림에 대해 설명해줘", false},
	}

	for _, tt := range tests {
		if got := c.IsImageRequest(tt.text); got != tt.want {
			t.Errorf("IsImageRequest(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}

func TestClassifier_IsImageRequest_Deterministic(t *testing.T) {
	c := intent.NewClassifier()
	for i := 0; i < 3; i++ {
		if !c.IsImageRequest("강아지 그림 그려줘") {
			t.Fatal("classification changed between identical calls")
		}
	}
}

func TestClassifier_Strip(t *testing.T) {
	c := intent.NewClassifier()

	tests := []struct {
		text string
		want string
	}{
		{"강아지 그림 그려줘", "강아지"},
		{"우주 비행사 이미지 만들어줘", "우주 비행사"},
	}

	for _, tt := range tests {
		if got := c.Strip(tt.text); got != tt.want {
			t.Errorf("Strip(%q) = %q, want %q", tt.text, got, tt.want)
		}
	}
}
