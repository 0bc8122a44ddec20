package service

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"storycraft-server/internal/models"
)

// wordTokenizer treats every whitespace-separated word as one token, which
// makes budget arithmetic in tests exact.
type wordTokenizer struct{}

func (wordTokenizer) CountTokens(text string) int {
	return len(strings.Fields(text))
}

func storyPage(text string, position int) models.Page {
	pos := position
	return models.Page{
		ID:        uuid.New(),
		StoryText: text,
		Status:    models.StatusStory,
		Position:  &pos,
	}
}

func TestContextBuildConcatenatesStoryPages(t *testing.T) {
	b := NewContextBuilder(wordTokenizer{}, 100)
	pages := []models.Page{
		storyPage("first page", 0),
		storyPage("second page", 1),
		{ID: uuid.New(), StoryText: "workshop draft", Status: models.StatusWorkshop},
	}

	got := b.Build(pages, uuid.New())
	assert.Equal(t, "first page\n\nsecond page", got)
}

func TestContextBuildExcludesCurrentPage(t *testing.T) {
	b := NewContextBuilder(wordTokenizer{}, 100)
	pages := []models.Page{
		storyPage("first page", 0),
		storyPage("current page text", 1),
		storyPage("third page", 2),
	}

	got := b.Build(pages, pages[1].ID)
	assert.Equal(t, "first page\n\nthird page", got)
	assert.NotContains(t, got, "current")
}

func TestContextBuildDropsOldestPagesOverBudget(t *testing.T) {
	b := NewContextBuilder(wordTokenizer{}, 4)
	pages := []models.Page{
		storyPage("one two three", 0),
		storyPage("four five", 1),
		storyPage("six seven", 2),
	}

	got := b.Build(pages, uuid.New())
	assert.Equal(t, "four five\n\nsix seven", got)
}

func TestContextBuildTrimsOversizedPage(t *testing.T) {
	b := NewContextBuilder(wordTokenizer{}, 3)
	pages := []models.Page{
		storyPage("one two three four five six", 0),
	}

	got := b.Build(pages, uuid.New())
	assert.Equal(t, "four five six", got)
}

func TestContextBuildEmptyStory(t *testing.T) {
	b := NewContextBuilder(wordTokenizer{}, 100)
	pages := []models.Page{
		{ID: uuid.New(), StoryText: "draft", Status: models.StatusWorkshop},
	}

	assert.Equal(t, "", b.Build(pages, uuid.New()))
	assert.Equal(t, "", b.Build(nil, uuid.New()))
}

func TestNewTokenizerFallback(t *testing.T) {
	// The returned tokenizer must count something sensible regardless of
	// which implementation was selected.
	tok := NewTokenizer(zap.NewNop())
	assert.Greater(t, tok.CountTokens("a handful of simple words"), 0)
}
