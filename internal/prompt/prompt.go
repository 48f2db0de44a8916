// Package prompt builds the prompts sent to the translation and judge models.
package prompt

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Separator joins the messages of a call into a single prompt.
const Separator = "\n\n"

// Join concatenates messages into the single prompt string the endpoint expects.
func Join(messages []string) string {
	return strings.Join(messages, Separator)
}

// Translation builds the prompt asking the model to translate text into targetLang.
func Translation(targetLang, text string) string {
	return fmt.Sprintf(
		"Translate the following text into %s. "+
			"Preserve meaning, tone, and formatting as much as possible. "+
			"Only return the translated text and do not include extra commentary.\n\n"+
			"Original text:\n%s",
		targetLang, text,
	)
}

// Judge builds the prompt asking the judge model to grade a translation from 1 to 10.
func Judge(original, translation string) string {
	return fmt.Sprintf(
		"Оцени качество перевода от 1 до 10 и аргументируй. "+
			"Дай краткую разметку: оценка и затем аргументы.\n\n"+
			"Исходный текст:\n%s\n\nПеревод:\n%s",
		original, translation,
	)
}

// EstimateTokens estimates the token count for a text.
// Uses a simple heuristic: ~4 characters per token.
func EstimateTokens(text string) int {
	n := utf8.RuneCountInString(text)
	if n == 0 {
		return 0
	}
	tokens := n / 4
	if tokens == 0 {
		tokens = 1
	}
	return tokens
}

// EstimateTotal sums EstimateTokens over all messages.
func EstimateTotal(messages []string) int {
	total := 0
	for _, m := range messages {
		total += EstimateTokens(m)
	}
	return total
}
