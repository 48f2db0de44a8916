// Package domain contains the core domain types for the translation judge.
package domain

import (
	"fmt"
	"strings"
)

// Mode selects how a call obtains its response.
type Mode int

const (
	// ModeMock returns canned text without any network I/O.
	ModeMock Mode = iota
	// ModeNoAuth calls the LLM endpoint without an Authorization header.
	ModeNoAuth
	// ModeAuth calls the LLM endpoint with a bearer credential.
	ModeAuth
)

// String returns the form value for the mode.
func (m Mode) String() string {
	switch m {
	case ModeMock:
		return "mock"
	case ModeNoAuth:
		return "no_auth"
	case ModeAuth:
		return "auth"
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

// ParseMode parses a form value. Blank input means mock.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "mock":
		return ModeMock, nil
	case "no_auth":
		return ModeNoAuth, nil
	case "auth":
		return ModeAuth, nil
	}
	return ModeMock, fmt.Errorf("unsupported mode %q", s)
}

// Action is one of the two LLM calls the page can trigger.
type Action string

const (
	ActionTranslate Action = "translate"
	ActionJudge     Action = "judge"
)

// ParseAction parses an action name.
func ParseAction(s string) (Action, error) {
	switch Action(strings.ToLower(strings.TrimSpace(s))) {
	case ActionTranslate:
		return ActionTranslate, nil
	case ActionJudge:
		return ActionJudge, nil
	}
	return "", fmt.Errorf("unsupported action %q", s)
}

// Step selects which part of the form workflow runs.
type Step string

const (
	StepBoth      Step = "both"
	StepTranslate Step = "translate"
	StepJudge     Step = "judge"
)

// ParseStep parses the submit button value. Anything unknown runs both steps.
func ParseStep(s string) Step {
	switch Step(strings.ToLower(strings.TrimSpace(s))) {
	case StepTranslate:
		return StepTranslate
	case StepJudge:
		return StepJudge
	}
	return StepBoth
}

// Request is one form submission.
type Request struct {
	SourceText     string `json:"text"`
	TargetLang     string `json:"target_lang"`
	Mode           string `json:"mode"`
	Step           string `json:"step,omitempty"`
	TranslatedText string `json:"translated_text,omitempty"`
}

// Response is what the page renders.
type Response struct {
	Original   string `json:"original"`
	Translated string `json:"translated"`
	Evaluation string `json:"evaluation"`
}

// LLMRequest is the request body of the MentorPiece endpoint.
type LLMRequest struct {
	ModelName string `json:"model_name"`
	Prompt    string `json:"prompt"`
}

// LLMResponse is the response body of the MentorPiece endpoint.
type LLMResponse struct {
	Response string `json:"response"`
}

// DispatchRequest is a single action requested through the JSON API.
type DispatchRequest struct {
	Action      string `json:"action"`
	Text        string `json:"text"`
	Translation string `json:"translation,omitempty"`
	TargetLang  string `json:"target_lang"`
	Mode        string `json:"mode"`
}

// DispatchResponse carries the display string of a single action.
type DispatchResponse struct {
	Response string `json:"response"`
}
