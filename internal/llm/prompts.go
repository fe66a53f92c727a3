package llm

import "fmt"

// Prompt templates for each assistant task. Kept in one place so tuning
// wording never touches the calling code.

const threadAnalysisTemplate = `Analyze the following email thread and provide:
1. A brief summary of the conversation
2. The overall sentiment (positive/negative/neutral)
3. The urgency level (high/medium/low)
4. Key points that need to be addressed

Thread:
%s`

const sentimentTemplate = `Analyze the sentiment of the following text and classify it as:
- Positive
- Negative
- Neutral

Also identify the emotional tone (e.g., formal, casual, urgent, etc.)

Text:
%s`

const urgencyTemplate = `Analyze the following text and determine its urgency level:
- High: Requires immediate attention
- Medium: Important but not time-critical
- Low: Can be addressed when convenient

Consider:
- Time-sensitive language
- Requested actions
- Consequences of delay

Text:
%s`

const replyGenerationTemplate = `Based on the following email thread analysis, generate three different reply suggestions.

Thread Analysis:
%s

Format your response exactly as below:

Formal:
<your formal reply here>

Casual:
<your casual reply here>

Direct:
<your direct reply here>
`

const translationTemplate = `Translate the following text to %s.
Maintain the original tone and formatting.

Text:
%s

Translation:`

// ThreadAnalysisPrompt asks for a summary, sentiment, urgency and key points.
func ThreadAnalysisPrompt(threadContent string) string {
	return fmt.Sprintf(threadAnalysisTemplate, threadContent)
}

// SentimentPrompt asks for a sentiment classification with a tone hint.
func SentimentPrompt(text string) string {
	return fmt.Sprintf(sentimentTemplate, text)
}

// UrgencyPrompt asks for a high/medium/low urgency rating.
func UrgencyPrompt(text string) string {
	return fmt.Sprintf(urgencyTemplate, text)
}

// ReplyGenerationPrompt asks for formal, casual and direct reply drafts.
func ReplyGenerationPrompt(analysis string) string {
	return fmt.Sprintf(replyGenerationTemplate, analysis)
}

// TranslationPrompt asks for a translation into the named language.
func TranslationPrompt(languageName, text string) string {
	return fmt.Sprintf(translationTemplate, languageName, text)
}
