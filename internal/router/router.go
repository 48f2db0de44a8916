// Package router resolves form labels to prompt languages and actions to models.
package router

import (
	"github.com/pricofy/translation-judge/internal/domain"
)

// Default model identifiers on the MentorPiece endpoint.
const (
	DefaultTranslateModel = "Qwen/Qwen3-VL-30B-A3B-Instruct"
	DefaultJudgeModel     = "claude-sonnet-4-5-20250929"
)

// FallbackLanguage is used when the submitted label is unknown.
const FallbackLanguage = "English"

// Language pairs a dropdown label with the English name used in prompts.
type Language struct {
	Label string
	Name  string
}

// languages is in dropdown order.
var languages = []Language{
	{Label: "Английский", Name: "English"},
	{Label: "Французский", Name: "French"},
	{Label: "Немецкий", Name: "German"},
	{Label: "Португальский", Name: "Portuguese (Portugal)"},
}

// byLabel indexes languages by both label and English name.
var byLabel = map[string]string{}

func init() {
	for _, l := range languages {
		byLabel[l.Label] = l.Name
		byLabel[l.Name] = l.Name
	}
}

// Router maps actions to the models that serve them.
type Router struct {
	translateModel string
	judgeModel     string
}

// New creates a Router. Empty model names fall back to the defaults.
func New(translateModel, judgeModel string) *Router {
	if translateModel == "" {
		translateModel = DefaultTranslateModel
	}
	if judgeModel == "" {
		judgeModel = DefaultJudgeModel
	}
	return &Router{
		translateModel: translateModel,
		judgeModel:     judgeModel,
	}
}

// ModelFor returns the model serving action.
func (r *Router) ModelFor(action domain.Action) string {
	if action == domain.ActionJudge {
		return r.judgeModel
	}
	return r.translateModel
}

// IsSupportedLanguage reports whether label names a known language.
func IsSupportedLanguage(label string) bool {
	_, ok := byLabel[label]
	return ok
}

// ResolveLanguage returns the prompt language for a form label.
func ResolveLanguage(label string) string {
	if name, ok := byLabel[label]; ok {
		return name
	}
	return FallbackLanguage
}

// GetSupportedLanguages returns the dropdown languages in display order.
func GetSupportedLanguages() []Language {
	out := make([]Language, len(languages))
	copy(out, languages)
	return out
}
