package handler

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pricofy/translation-judge/internal/dispatch"
	"github.com/pricofy/translation-judge/internal/domain"
	"github.com/pricofy/translation-judge/internal/router"
)

// fakeDispatcher answers calls from a per-action table and records them.
type fakeDispatcher struct {
	results map[domain.Action]string
	errs    map[domain.Action]error
	calls   []dispatch.Call
}

func (f *fakeDispatcher) Do(_ context.Context, call dispatch.Call) (string, error) {
	f.calls = append(f.calls, call)
	if err := f.errs[call.Action]; err != nil {
		return "", err
	}
	return f.results[call.Action], nil
}

func newFake() *fakeDispatcher {
	return &fakeDispatcher{
		results: map[domain.Action]string{
			domain.ActionTranslate: "Bonjour le monde",
			domain.ActionJudge:     "Оценка: 9/10",
		},
		errs: map[domain.Action]error{},
	}
}

func TestHandle_Validation(t *testing.T) {
	tests := []struct {
		name     string
		request  domain.Request
		expected string
	}{
		{
			name:     "empty text",
			request:  domain.Request{SourceText: "", Mode: "mock"},
			expected: MsgEmptyText,
		},
		{
			name:     "whitespace only text",
			request:  domain.Request{SourceText: "   \n\t", Mode: "mock"},
			expected: MsgEmptyText,
		},
		{
			name:     "unknown mode",
			request:  domain.Request{SourceText: "Hello", Mode: "admin"},
			expected: `unsupported mode "admin"`,
		},
		{
			name:     "judge without translation",
			request:  domain.Request{SourceText: "Hello", Mode: "mock", Step: "judge"},
			expected: MsgEmptyTranslation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := newFake()
			h := New(fake, router.New("", ""), nil, nil)

			resp := h.Handle(context.Background(), tt.request)

			assert.Equal(t, tt.expected, resp.Evaluation)
			assert.Empty(t, resp.Translated)
			assert.Empty(t, fake.calls, "rejected submissions must not dispatch")
		})
	}
}

func TestHandle_TranslateAndJudge(t *testing.T) {
	fake := newFake()
	h := New(fake, router.New("", ""), func() string { return "secret" }, nil)

	resp := h.Handle(context.Background(), domain.Request{
		SourceText: "  Hello world  ",
		TargetLang: "Французский",
		Mode:       "auth",
	})

	assert.Equal(t, "Hello world", resp.Original)
	assert.Equal(t, "Bonjour le monde", resp.Translated)
	assert.Equal(t, "Оценка: 9/10", resp.Evaluation)

	require.Len(t, fake.calls, 2)

	translate := fake.calls[0]
	assert.Equal(t, domain.ActionTranslate, translate.Action)
	assert.Equal(t, router.DefaultTranslateModel, translate.Model)
	assert.Equal(t, domain.ModeAuth, translate.Mode)
	assert.Equal(t, "secret", translate.APIKey)
	require.Len(t, translate.Messages, 1)
	assert.Contains(t, translate.Messages[0], "into French.")
	assert.True(t, strings.HasSuffix(translate.Messages[0], "Original text:\nHello world"))

	judge := fake.calls[1]
	assert.Equal(t, domain.ActionJudge, judge.Action)
	assert.Equal(t, router.DefaultJudgeModel, judge.Model)
	assert.Contains(t, judge.Messages[0], "Исходный текст:\nHello world")
	assert.Contains(t, judge.Messages[0], "Перевод:\nBonjour le monde")
}

func TestHandle_TranslateOnly(t *testing.T) {
	fake := newFake()
	h := New(fake, router.New("", ""), nil, nil)

	resp := h.Handle(context.Background(), domain.Request{SourceText: "Hello", Mode: "mock", Step: "translate"})

	assert.Equal(t, "Bonjour le monde", resp.Translated)
	assert.Empty(t, resp.Evaluation)
	require.Len(t, fake.calls, 1)
	assert.Equal(t, domain.ActionTranslate, fake.calls[0].Action)
}

func TestHandle_JudgeOnly(t *testing.T) {
	fake := newFake()
	h := New(fake, router.New("", ""), nil, nil)

	resp := h.Handle(context.Background(), domain.Request{
		SourceText:     "Hello",
		TranslatedText: "Salut",
		Mode:           "no_auth",
		Step:           "judge",
	})

	assert.Equal(t, "Salut", resp.Translated)
	assert.Equal(t, "Оценка: 9/10", resp.Evaluation)
	require.Len(t, fake.calls, 1)
	assert.Equal(t, domain.ActionJudge, fake.calls[0].Action)
	assert.Equal(t, domain.ModeNoAuth, fake.calls[0].Mode)
	assert.Empty(t, fake.calls[0].APIKey, "no_auth must not carry a credential")
}

func TestHandle_TranslationFailureStopsJudge(t *testing.T) {
	errs := []error{
		dispatch.ErrMissingCredential,
		&dispatch.NetworkError{Err: errors.New("connection reset by peer")},
		&dispatch.StatusError{StatusCode: 500, Status: "500 Internal Server Error"},
		dispatch.ErrInvalidPayload,
	}

	for _, failure := range errs {
		t.Run(failure.Error(), func(t *testing.T) {
			fake := newFake()
			fake.errs[domain.ActionTranslate] = failure
			h := New(fake, router.New("", ""), nil, nil)

			resp := h.Handle(context.Background(), domain.Request{SourceText: "Hello", Mode: "auth"})

			assert.Empty(t, resp.Translated)
			assert.Equal(t, dispatch.Message(failure), resp.Evaluation)
			assert.Len(t, fake.calls, 1, "judge must not run after a failed translation")
		})
	}
}

func TestHandle_JudgeFailure(t *testing.T) {
	fake := newFake()
	fake.errs[domain.ActionJudge] = &dispatch.NetworkError{Err: errors.New("timeout")}
	h := New(fake, router.New("", ""), nil, nil)

	resp := h.Handle(context.Background(), domain.Request{SourceText: "Hello", Mode: "no_auth"})

	assert.Equal(t, "Bonjour le monde", resp.Translated)
	assert.Equal(t, "Network/HTTP error when calling LLM: timeout", resp.Evaluation)
}

func TestHandle_CredentialReadPerCall(t *testing.T) {
	fake := newFake()
	key := ""
	h := New(fake, router.New("", ""), func() string { return key }, nil)

	h.Handle(context.Background(), domain.Request{SourceText: "Hello", Mode: "auth", Step: "translate"})
	key = "rotated"
	h.Handle(context.Background(), domain.Request{SourceText: "Hello", Mode: "auth", Step: "translate"})

	require.Len(t, fake.calls, 2)
	assert.Empty(t, fake.calls[0].APIKey)
	assert.Equal(t, "rotated", fake.calls[1].APIKey)
}

func TestHandle_MockModeWithRealDispatcher(t *testing.T) {
	d := dispatch.New("http://127.0.0.1:1/unreachable", time.Second)
	h := New(d, router.New("", ""), nil, nil)

	for _, lang := range router.GetSupportedLanguages() {
		t.Run(lang.Name, func(t *testing.T) {
			for _, text := range []string{"Привет мир", "你好世界", "👋 Hello 😀", strings.Repeat("A", 10000)} {
				resp := h.Handle(context.Background(), domain.Request{SourceText: text, TargetLang: lang.Label, Mode: "mock"})

				assert.Equal(t, dispatch.MockTranslation, resp.Translated)
				assert.Equal(t, dispatch.MockGrade, resp.Evaluation)
			}
		})
	}
}

func TestHandle_MockModeWithCustomModels(t *testing.T) {
	d := dispatch.New("http://127.0.0.1:1/unreachable", time.Second)
	h := New(d, router.New("gpt-4o", "gpt-4o-mini"), nil, nil)

	resp := h.Handle(context.Background(), domain.Request{SourceText: "Hello", Mode: "mock"})

	assert.Equal(t, dispatch.MockTranslation, resp.Translated)
	assert.Equal(t, dispatch.MockGrade, resp.Evaluation)

	single := h.HandleDispatch(context.Background(), domain.DispatchRequest{Action: "judge", Text: "Hello", Translation: "Salut", Mode: "mock"})
	assert.Equal(t, dispatch.MockGrade, single.Response)
}

func TestHandle_MissingCredentialWithRealDispatcher(t *testing.T) {
	d := dispatch.New("http://127.0.0.1:1/unreachable", time.Second)
	h := New(d, router.New("", ""), func() string { return "" }, nil)

	resp := h.Handle(context.Background(), domain.Request{SourceText: "Hello", Mode: "auth"})

	assert.Empty(t, resp.Translated)
	assert.Contains(t, resp.Evaluation, "MENTORPIECE_API_KEY is not set")
}

func TestHandleDispatch(t *testing.T) {
	tests := []struct {
		name       string
		request    domain.DispatchRequest
		expected   string
		wantAction domain.Action
	}{
		{
			name:       "translate",
			request:    domain.DispatchRequest{Action: "translate", Text: "Hello", TargetLang: "Немецкий", Mode: "mock"},
			expected:   "Bonjour le monde",
			wantAction: domain.ActionTranslate,
		},
		{
			name:       "judge",
			request:    domain.DispatchRequest{Action: "JUDGE", Text: "Hello", Translation: "Hallo", Mode: "no_auth"},
			expected:   "Оценка: 9/10",
			wantAction: domain.ActionJudge,
		},
		{
			name:     "unknown action",
			request:  domain.DispatchRequest{Action: "summarize", Text: "Hello"},
			expected: `unsupported action "summarize"`,
		},
		{
			name:     "unknown mode",
			request:  domain.DispatchRequest{Action: "translate", Text: "Hello", Mode: "root"},
			expected: `unsupported mode "root"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := newFake()
			h := New(fake, router.New("", ""), nil, nil)

			resp := h.HandleDispatch(context.Background(), tt.request)

			assert.Equal(t, tt.expected, resp.Response)
			if tt.wantAction == "" {
				assert.Empty(t, fake.calls)
				return
			}
			require.Len(t, fake.calls, 1)
			assert.Equal(t, tt.wantAction, fake.calls[0].Action)
		})
	}
}

func TestHandleDispatch_TranslatePromptUsesLanguage(t *testing.T) {
	fake := newFake()
	h := New(fake, router.New("", ""), nil, nil)

	h.HandleDispatch(context.Background(), domain.DispatchRequest{Action: "translate", Text: "Hi", TargetLang: "Немецкий"})

	require.Len(t, fake.calls, 1)
	assert.Contains(t, fake.calls[0].Messages[0], "into German.")
	assert.Equal(t, domain.ModeMock, fake.calls[0].Mode)
}

func TestHandleDispatch_ErrorMessage(t *testing.T) {
	fake := newFake()
	fake.errs[domain.ActionTranslate] = &dispatch.StatusError{StatusCode: 503, Status: "503 Service Unavailable"}
	h := New(fake, router.New("", ""), nil, nil)

	resp := h.HandleDispatch(context.Background(), domain.DispatchRequest{Action: "translate", Text: "Hi", Mode: "no_auth"})

	assert.Equal(t, "Network/HTTP error when calling LLM: HTTP 503 Service Unavailable", resp.Response)
}
