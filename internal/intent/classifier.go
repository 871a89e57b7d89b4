// Package intent decides whether a user turn is an image-generation request
// or a plain conversational turn. Classification is a pure function of the
// input text; the dispatcher commits to one branch before any provider call.
package intent

import (
	"regexp"
	"strings"
)

// imagePatterns is the canonical pattern table. A turn routes to image
// generation when any single pattern matches; image intent takes precedence
// over conversational handling.
var imagePatterns = []*regexp.Regexp{
	// Korean phrasing: {noun}...{verb} and its reordering
	regexp.MustCompile(`(이미지|그림|사진|웹툰).*?(그려|만들어|생성|출력)`),
	regexp.MustCompile(`(그려|만들어|생성|출력).*?(이미지|그림|사진|웹툰)`),
	regexp.MustCompile(`(시각화|시각적).*?(표현|묘사)`),
	regexp.MustCompile(`비주얼.*?(만들어|생성)`),
	regexp.MustCompile(`(그려|만들어|생성|출력)[줘라]`),
	regexp.MustCompile(`(이미지|그림|사진|웹툰).*?(보여)`),
	// English phrasing, both orderings
	regexp.MustCompile(`(?i)(image|picture|drawing).*?(draw|make|generate|create|show)`),
	regexp.MustCompile(`(?i)(draw|make|generate|create|show).*?(image|picture|drawing)`),
}

// stripPattern removes the imperative image-request phrasing so the
// generator is not asked to draw the word "draw".
var stripPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(이미지|그림|사진|웹툰).*?(그려|만들어|생성|출력|보여)[줘라]?`),
	regexp.MustCompile(`(그려|만들어|생성|출력)[줘라]`),
	regexp.MustCompile(`(?i)\b(draw|make|generate|create|show)(\s+me)?(\s+an?)?\s+(image|picture|drawing)(\s+of)?\b`),
}

// Classifier routes user turns. The pattern table is fixed at construction;
// a Classifier is safe for concurrent use.
type Classifier struct {
	patterns []*regexp.Regexp
	strip    []*regexp.Regexp
}

// NewClassifier creates a classifier with the canonical pattern table.
func NewClassifier() *Classifier {
	return &Classifier{patterns: imagePatterns, strip: stripPatterns}
}

// IsImageRequest reports whether the text asks for image generation.
// Callers validate non-emptiness before classifying.
func (c *Classifier) IsImageRequest(text string) bool {
	for _, p := range c.patterns {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}

// Strip removes the image-request phrasing from a prompt, leaving the clean
// description to hand to the image generator.
func (c *Classifier) Strip(text string) string {
	out := text
	for _, p := range c.strip {
		out = p.ReplaceAllString(out, "")
	}
	return strings.TrimSpace(out)
}
