package ai

// defaultImageStyle is the fixed style template appended to every image
// prompt. The trailing instruction keeps the model from inventing characters.
const defaultImageStyle = `In the style of Moebius, characterized by fluid lines, ` +
	`intricate detail, and a surreal, dreamlike quality. The image should feature characters ` +
	`and elements that blend futuristic and traditional aesthetics, showcasing elaborate costumes ` +
	`and hybrid mechanical creatures. Use a vibrant color palette with an emphasis on pastel blues, ` +
	`pinks, and purples to convey a sense of otherworldliness. Focus on the smooth integration ` +
	`of organic and architectural forms, creating a seamless and imaginative visual narrative that ` +
	`reflects Moebius' iconic approach to visual storytelling. ` +
	`Do not include characters not mentioned in the setting description.`

// BuildImagePrompt wraps a user's setting description with the style template.
// An empty styleSuffix selects the default style.
func BuildImagePrompt(imageDescription, styleSuffix string) string {
	style := styleSuffix
	if style == "" {
		style = defaultImageStyle
	}
	return "Create an image of the following setting description surrounded by hashtags ##### " +
		imageDescription + " ##### with the following style: " + style
}

// BuildContinuationPrompt composes the system prompt for a text continuation:
// the story so far plus the seed text the continuation must start from.
func BuildContinuationPrompt(storyContext, seedText string) string {
	return "You are a master story teller continuing to tell a story. " +
		"A summary of the story so far is: " + storyContext + " " +
		"Now continue the story starting with the following text: " + seedText
}
