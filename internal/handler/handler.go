// Package handler runs the translate-then-judge workflow behind the form.
package handler

import (
	"context"
	"io"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/pricofy/translation-judge/internal/dispatch"
	"github.com/pricofy/translation-judge/internal/domain"
	"github.com/pricofy/translation-judge/internal/prompt"
	"github.com/pricofy/translation-judge/internal/router"
)

// User-facing messages for rejected submissions.
const (
	MsgEmptyText        = "Please provide text to translate."
	MsgEmptyTranslation = "Please provide a translation to evaluate."
)

// Dispatcher performs a single LLM call.
type Dispatcher interface {
	Do(ctx context.Context, call dispatch.Call) (string, error)
}

// Handler turns form submissions into page content.
type Handler struct {
	dispatcher Dispatcher
	router     *router.Router
	apiKey     func() string
	logger     *log.Logger
}

// New creates a Handler. apiKey is invoked for every call so the credential
// is always current; a nil apiKey means no credential is available.
func New(d Dispatcher, r *router.Router, apiKey func() string, logger *log.Logger) *Handler {
	if apiKey == nil {
		apiKey = func() string { return "" }
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Handler{
		dispatcher: d,
		router:     r,
		apiKey:     apiKey,
		logger:     logger,
	}
}

// Handle processes one form submission. Every outcome, including upstream
// failures, is reported through the returned Response.
func (h *Handler) Handle(ctx context.Context, req domain.Request) *domain.Response {
	resp := &domain.Response{
		Original:   strings.TrimSpace(req.SourceText),
		Translated: strings.TrimSpace(req.TranslatedText),
	}

	if resp.Original == "" {
		resp.Evaluation = MsgEmptyText
		return resp
	}

	mode, err := domain.ParseMode(req.Mode)
	if err != nil {
		resp.Evaluation = err.Error()
		return resp
	}

	step := domain.ParseStep(req.Step)
	targetLang := router.ResolveLanguage(req.TargetLang)
	h.logger.Info("form submitted", "step", step, "mode", mode, "target_lang", targetLang)

	if step != domain.StepJudge {
		translated, err := h.call(ctx, domain.ActionTranslate, mode, prompt.Translation(targetLang, resp.Original))
		if err != nil {
			// Surface the failure where the grade would be shown.
			resp.Translated = ""
			resp.Evaluation = dispatch.Message(err)
			return resp
		}
		resp.Translated = translated
		if step == domain.StepTranslate {
			return resp
		}
	}

	if resp.Translated == "" {
		resp.Evaluation = MsgEmptyTranslation
		return resp
	}

	evaluation, err := h.call(ctx, domain.ActionJudge, mode, prompt.Judge(resp.Original, resp.Translated))
	if err != nil {
		resp.Evaluation = dispatch.Message(err)
		return resp
	}
	resp.Evaluation = evaluation
	return resp
}

// HandleDispatch runs a single action and returns its display string.
func (h *Handler) HandleDispatch(ctx context.Context, req domain.DispatchRequest) *domain.DispatchResponse {
	action, err := domain.ParseAction(req.Action)
	if err != nil {
		return &domain.DispatchResponse{Response: err.Error()}
	}
	mode, err := domain.ParseMode(req.Mode)
	if err != nil {
		return &domain.DispatchResponse{Response: err.Error()}
	}

	var p string
	if action == domain.ActionJudge {
		p = prompt.Judge(req.Text, req.Translation)
	} else {
		p = prompt.Translation(router.ResolveLanguage(req.TargetLang), req.Text)
	}

	text, err := h.call(ctx, action, mode, p)
	if err != nil {
		return &domain.DispatchResponse{Response: dispatch.Message(err)}
	}
	return &domain.DispatchResponse{Response: text}
}

func (h *Handler) call(ctx context.Context, action domain.Action, mode domain.Mode, p string) (string, error) {
	call := dispatch.Call{
		Action:   action,
		Model:    h.router.ModelFor(action),
		Messages: []string{p},
		Mode:     mode,
	}
	if mode == domain.ModeAuth {
		call.APIKey = h.apiKey()
	}
	return h.dispatcher.Do(ctx, call)
}
