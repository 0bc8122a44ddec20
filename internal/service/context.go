package service

import (
	"strings"

	"github.com/google/uuid"
	"github.com/pkoukk/tiktoken-go"
	"go.uber.org/zap"

	"storycraft-server/internal/models"
)

// Tokenizer counts tokens the way the text model will.
type Tokenizer interface {
	CountTokens(text string) int
}

// tiktokenTokenizer counts with the cl100k_base encoding.
type tiktokenTokenizer struct {
	enc *tiktoken.Tiktoken
}

func (t *tiktokenTokenizer) CountTokens(text string) int {
	return len(t.enc.Encode(text, nil, nil))
}

// approxTokenizer estimates roughly four characters per token. It is the
// fallback when the encoding files cannot be loaded.
type approxTokenizer struct{}

func (approxTokenizer) CountTokens(text string) int {
	return (len(text) + 3) / 4
}

// NewTokenizer returns a cl100k_base tokenizer, falling back to a character
// count approximation when the encoding is unavailable.
func NewTokenizer(logger *zap.Logger) Tokenizer {
	enc, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		logger.Warn("Falling back to approximate tokenizer", zap.Error(err))
		return approxTokenizer{}
	}
	return &tiktokenTokenizer{enc: enc}
}

// ContextBuilder assembles the narrative context passed to the text model.
type ContextBuilder struct {
	tokenizer Tokenizer
	budget    int
}

func NewContextBuilder(tokenizer Tokenizer, budget int) *ContextBuilder {
	if budget <= 0 {
		budget = 3000
	}
	return &ContextBuilder{tokenizer: tokenizer, budget: budget}
}

// Build concatenates the story text of every story page except the one being
// crafted, in shelf order. When the result exceeds the token budget, whole
// pages are dropped oldest first, and the oldest surviving page is trimmed
// from its start if needed.
func (b *ContextBuilder) Build(pages []models.Page, exclude uuid.UUID) string {
	texts := make([]string, 0, len(pages))
	for _, p := range pages {
		if p.Status != models.StatusStory || p.ID == exclude {
			continue
		}
		text := strings.TrimSpace(p.StoryText)
		if text == "" {
			continue
		}
		texts = append(texts, text)
	}
	if len(texts) == 0 {
		return ""
	}

	counts := make([]int, len(texts))
	total := 0
	for i, t := range texts {
		counts[i] = b.tokenizer.CountTokens(t)
		total += counts[i]
	}

	start := 0
	for start < len(texts)-1 && total > b.budget {
		total -= counts[start]
		start++
	}
	kept := texts[start:]

	if total > b.budget {
		kept[0] = b.trimFront(kept[0], counts[start]-(total-b.budget))
	}
	return strings.Join(kept, "\n\n")
}

// trimFront cuts text from the start until it fits the given token count.
func (b *ContextBuilder) trimFront(text string, budget int) string {
	if budget <= 0 {
		return ""
	}
	runes := []rune(text)
	lo, hi := 0, len(runes)
	for lo < hi {
		mid := (lo + hi) / 2
		if b.tokenizer.CountTokens(string(runes[mid:])) <= budget {
			hi = mid
		} else {
			lo = mid + 1
		}
	}
	return strings.TrimSpace(string(runes[lo:]))
}
