package generator

import "fmt"

const storyPromptTemplate = `You are a therapeutic AI that creates personalized fantasy narratives to help users process their emotions.
The user has shared: "%s"

Create a therapeutic fantasy story that:
1. Acknowledges their emotion/input
2. Transforms it into a metaphorical fantasy adventure
3. Provides gentle guidance and hope
4. Includes a real-world actionable step if appropriate
5. Uses rich, immersive fantasy language
6. Is 2-4 paragraphs long but meaningful
7. Where user can be main character or part of story but not narrator
8. Give user some options to choose from to continue the story

Make it feel personal, magical, and therapeutic. Use fantasy elements like magical creatures, enchanted places, or quests that metaphorically represent their emotional journey.`

// BuildStoryPrompt embeds the user's text in the fixed story instructions.
func BuildStoryPrompt(userInput string) string {
	return fmt.Sprintf(storyPromptTemplate, userInput)
}
