package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPageStatusIsValid(t *testing.T) {
	for _, s := range []PageStatus{StatusNew, StatusWorkshop, StatusStory, StatusStorage} {
		assert.True(t, s.IsValid(), "status %s", s)
	}
	assert.False(t, PageStatus("published").IsValid())
	assert.False(t, PageStatus("").IsValid())
}

func TestHasGeneratedImage(t *testing.T) {
	p := Page{}
	assert.False(t, p.HasGeneratedImage())

	p.ImagePath = PlaceholderImagePath
	assert.False(t, p.HasGeneratedImage())

	p.ImagePath = "alice/proj/workshop/abc.png"
	assert.True(t, p.HasGeneratedImage())
}

func TestPageUpdateApply(t *testing.T) {
	p := Page{StoryText: "old text", ImageDescription: "old description"}

	text := "new text"
	PageUpdate{StoryText: &text}.Apply(&p)
	assert.Equal(t, "new text", p.StoryText)
	assert.Equal(t, "old description", p.ImageDescription)

	desc := "new description"
	PageUpdate{ImageDescription: &desc}.Apply(&p)
	assert.Equal(t, "new text", p.StoryText)
	assert.Equal(t, "new description", p.ImageDescription)
}
