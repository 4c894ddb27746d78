package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/wikiassist/internal/core/domain"
	"github.com/custodia-labs/wikiassist/internal/core/ports/driven"
	"github.com/custodia-labs/wikiassist/internal/core/ports/driving"
	"github.com/custodia-labs/wikiassist/internal/logger"
	"github.com/custodia-labs/wikiassist/internal/metrics"
)

// Ensure Assistant implements the interface.
var _ driving.AssistantService = (*Assistant)(nil)

// Substitution keys for pages named by the caller. They are renamed so that
// they never collide with the auto-supplied placeholders of the same name.
const (
	varPageTemplate = "page_template"
	varPageExamples = "page_examples"
	varPagePrevious = "page_previous"
)

// Auto-supplied placeholders.
const (
	varText         = "text"
	varAction       = "action"
	varTemplate     = "template"
	varSnippets     = "snippets"
	varExamples     = "examples"
	varPrevious     = "previous"
	varCurrentDate  = "current_date"
	varPreviousDate = "previous_date"
)

const dateLayout = "2006-01-02"

var (
	placeholderPattern = regexp.MustCompile(`\{([a-z_]+)\}`)
	thinkPattern       = regexp.MustCompile(`(?s)<think>.*?</think>`)
)

// AssistantOption configures optional Assistant collaborators.
type AssistantOption func(*Assistant)

// WithAssistantMetrics records completion and tool call metrics.
func WithAssistantMetrics(m *metrics.Metrics) AssistantOption {
	return func(a *Assistant) { a.metrics = m }
}

// WithAssistantClock overrides the clock used for current_date.
func WithAssistantClock(now func() time.Time) AssistantOption {
	return func(a *Assistant) { a.now = now }
}

// Assistant runs prompt actions through the completion endpoint.
// It holds no per-call state; each Process call owns a fresh session.
type Assistant struct {
	completion driven.CompletionGateway
	prompts    driven.PromptStore
	contexts   driving.ContextService
	pages      driven.PageStore
	settings   domain.AssistantSettings
	params     domain.ModelParams
	metrics    *metrics.Metrics
	now        func() time.Time
}

// NewAssistant creates an assistant. The completion gateway may be nil,
// in which case Process reports domain.ErrCompletionUnavailable.
func NewAssistant(
	completion driven.CompletionGateway,
	prompts driven.PromptStore,
	contexts driving.ContextService,
	pages driven.PageStore,
	settings domain.AssistantSettings,
	params domain.ModelParams,
	opts ...AssistantOption,
) *Assistant {
	a := &Assistant{
		completion: completion,
		prompts:    prompts,
		contexts:   contexts,
		pages:      pages,
		settings:   settings,
		params:     params,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Process resolves the prompt for action, fills its placeholders and runs
// the completion loop until the model returns final content.
func (a *Assistant) Process(ctx context.Context, action, text string, metadata map[string]string) (string, error) {
	if a.completion == nil {
		return "", domain.ErrCompletionUnavailable
	}

	vars := a.mergeMetadata(action, text, metadata)
	profile := vars[driving.MetaProfile]

	tmpl, err := a.resolvePrompt(profile, action)
	if err != nil {
		return "", err
	}

	current := domain.DocumentID(vars[driving.MetaDocumentID])
	snippetCount := a.snippetCount(metadata)
	used := placeholders(tmpl)
	a.supply(ctx, current, text, snippetCount, used, vars)

	prompt := substitute(tmpl, vars)
	if block := a.contextBlock(ctx, current, text, snippetCount, metadata, used, vars); block != "" {
		prompt = "<context>\n" + block + "\n</context>\n\n" + prompt
	}

	var messages []domain.Message
	if system := a.systemPrompt(profile, action); system != "" {
		messages = append(messages, domain.Message{Role: domain.RoleSystem, Content: system})
	}
	messages = append(messages, domain.Message{Role: domain.RoleUser, Content: prompt})

	s := &session{
		assistant: a,
		requestID: uuid.NewString(),
		think:     vars[driving.MetaThink] == "true",
		tools:     &toolbox{contexts: a.contexts, current: current, text: text},
		cache:     make(map[string]string),
		counts:    make(map[string]int),
	}
	logger.Debug("assistant: %s request %s (profile %s)", action, s.requestID, profile)
	return s.run(ctx, messages)
}

// mergeMetadata builds the substitution map. Page references are renamed
// and text, action, think and profile are always present.
func (a *Assistant) mergeMetadata(action, text string, metadata map[string]string) map[string]string {
	vars := make(map[string]string, len(metadata)+4)
	for k, v := range metadata {
		switch k {
		case driving.MetaTemplate:
			vars[varPageTemplate] = v
		case driving.MetaExamples:
			vars[varPageExamples] = v
		case driving.MetaPrevious:
			vars[varPagePrevious] = v
		default:
			vars[k] = v
		}
	}

	think := a.settings.Think
	if v, ok := metadata[driving.MetaThink]; ok {
		if b, err := strconv.ParseBool(v); err == nil {
			think = b
		}
	}
	vars[driving.MetaThink] = strconv.FormatBool(think)

	if vars[driving.MetaProfile] == "" {
		vars[driving.MetaProfile] = a.settings.Profile
	}
	if vars[driving.MetaProfile] == "" {
		vars[driving.MetaProfile] = domain.DefaultProfile
	}

	vars[varText] = text
	vars[varAction] = action
	return vars
}

// resolvePrompt looks the prompt up in profile, then in the default profile.
func (a *Assistant) resolvePrompt(profile, name string) (string, error) {
	text, err := a.prompts.Get(profile, name)
	if err == nil {
		return text, nil
	}
	if !errors.Is(err, domain.ErrPromptNotFound) || profile == domain.DefaultProfile {
		return "", err
	}
	text, err = a.prompts.Get(domain.DefaultProfile, name)
	if err != nil {
		return "", fmt.Errorf("prompt %q in profiles %q and %q: %w", name, profile, domain.DefaultProfile, domain.ErrPromptNotFound)
	}
	return text, nil
}

// systemPrompt joins the base system prompt and the action appendage.
// Neither is required.
func (a *Assistant) systemPrompt(profile, action string) string {
	var parts []string
	if base, err := a.resolvePrompt(profile, driven.PromptSystem); err == nil && base != "" {
		parts = append(parts, base)
	} else if err != nil {
		logger.Debug("assistant: no system prompt: %v", err)
	}
	if extra, err := a.resolvePrompt(profile, driven.PromptSystemPrefix+action); err == nil && extra != "" {
		parts = append(parts, extra)
	}
	return strings.Join(parts, "\n\n")
}

// snippetCount is the caller's snippet count, falling back to the setting.
func (a *Assistant) snippetCount(metadata map[string]string) int {
	if n, err := strconv.Atoi(strings.TrimSpace(metadata[driving.MetaSnippets])); err == nil {
		return n
	}
	return a.settings.SnippetCount
}

// supply fills the recognised placeholders that the prompt uses.
func (a *Assistant) supply(
	ctx context.Context, current domain.DocumentID, text string, snippetCount int,
	used map[string]bool, vars map[string]string,
) {
	if used[varTemplate] {
		vars[varTemplate] = a.templateText(ctx, current, text, vars[varPageTemplate])
	}
	if used[varSnippets] {
		vars[varSnippets] = FormatSnippets(a.contexts.QuerySnippets(ctx, current, text, snippetCount))
	}
	if used[varExamples] {
		ids := splitIDs(vars[varPageExamples])
		if len(ids) == 0 {
			ids = a.contexts.QueryExamples(ctx, current, text, a.settings.ExampleCount)
		}
		vars[varExamples] = a.contexts.BuildStaticContext(ctx, driving.ContextRequest{ExampleIDs: ids})
	}
	if used[varPrevious] {
		vars[varPrevious] = a.pageText(ctx, vars[varPagePrevious])
	}
	if used[varCurrentDate] {
		vars[varCurrentDate] = a.now().Format(dateLayout)
	}
	if used[varPreviousDate] {
		vars[varPreviousDate] = a.previousDate(ctx, vars[varPagePrevious])
	}
}

// contextBlock builds the augmentation block from the caller's page
// references that the prompt did not already consume.
func (a *Assistant) contextBlock(
	ctx context.Context, current domain.DocumentID, text string, snippetCount int,
	metadata map[string]string, used map[string]bool, vars map[string]string,
) string {
	var req driving.ContextRequest
	if !used[varTemplate] {
		req.TemplateID = domain.DocumentID(vars[varPageTemplate])
	}
	if !used[varExamples] {
		req.ExampleIDs = splitIDs(vars[varPageExamples])
	}
	if _, ok := metadata[driving.MetaSnippets]; ok && !used[varSnippets] {
		req.Snippets = a.contexts.QuerySnippets(ctx, current, text, snippetCount)
	}
	return a.contexts.BuildStaticContext(ctx, req)
}

func (a *Assistant) templateText(ctx context.Context, current domain.DocumentID, text, explicit string) string {
	id := domain.DocumentID(explicit)
	if id == "" {
		ids := a.contexts.QueryTemplate(ctx, current, text)
		if len(ids) == 0 {
			return ""
		}
		id = ids[0]
	}
	return a.pageText(ctx, string(id))
}

func (a *Assistant) pageText(ctx context.Context, id string) string {
	if id == "" {
		return ""
	}
	text, err := a.contexts.GetDocument(ctx, domain.DocumentID(id))
	if err != nil {
		logger.Debug("assistant: page %s: %v", id, err)
		return ""
	}
	return text
}

func (a *Assistant) previousDate(ctx context.Context, id string) string {
	if id == "" || a.pages == nil {
		return ""
	}
	t, err := a.pages.ModTime(ctx, domain.DocumentID(id))
	if err != nil {
		return ""
	}
	return t.Format(dateLayout)
}

// session is the state of one Process call: the request id chain, the
// tool cache and the call counters. It is discarded when Process returns.
type session struct {
	assistant *Assistant
	requestID string
	think     bool
	tools     *toolbox

	cache         map[string]string
	counts        map[string]int
	total         int
	toolsDisabled bool
}

// run is the request loop. Each iteration sends one request, then either
// returns final content or executes the requested tools and goes round again.
func (s *session) run(ctx context.Context, messages []domain.Message) (string, error) {
	a := s.assistant
	for round := 1; ; round++ {
		offered := a.settings.ToolsEnabled && !s.toolsDisabled
		req := domain.CompletionRequest{
			RequestID: s.requestID,
			Messages:  messages,
			Params:    a.params,
		}
		if offered {
			req.Tools = toolDefinitions()
		}

		start := time.Now()
		resp, err := a.completion.Complete(ctx, req)
		a.metrics.RecordCompletion(err, time.Since(start))
		if err != nil {
			return "", err
		}

		if content := s.finalContent(resp.Content); content != "" {
			logger.Debug("assistant: request %s finished after %d rounds", s.requestID, round)
			return content, nil
		}
		if !offered || !resp.HasToolCalls() {
			return "", fmt.Errorf("request %s round %d: %w", s.requestID, round, domain.ErrUnexpectedResponseFormat)
		}

		messages = append(messages, domain.Message{
			Role:      domain.RoleAssistant,
			Content:   resp.Content,
			ToolCalls: resp.ToolCalls,
		})
		for _, call := range resp.ToolCalls {
			messages = append(messages, domain.Message{
				Role:       domain.RoleTool,
				Content:    s.execute(ctx, call),
				ToolCallID: call.ID,
			})
		}

		if s.overLimit() {
			logger.Debug("assistant: request %s: tool limit reached, disabling tools", s.requestID)
			s.toolsDisabled = true
		}
	}
}

// CachedToolMarker prefixes a tool response replayed from the session cache,
// telling the model it repeated an earlier call.
const CachedToolMarker = "[cached] "

// execute runs a tool call through the cache and updates the counters.
// The cache stores the unmarked content; only replays carry the marker.
func (s *session) execute(ctx context.Context, call domain.ToolCall) string {
	s.counts[call.Name]++
	s.total++

	key := toolCacheKey(call.Name, call.Arguments)
	if content, ok := s.cache[key]; ok {
		s.assistant.metrics.RecordToolCall(call.Name, true)
		logger.Debug("assistant: %s(%s) served from cache", call.Name, call.Arguments)
		return CachedToolMarker + content
	}

	content := s.tools.call(ctx, call.Name, call.Arguments)
	s.cache[key] = content
	s.assistant.metrics.RecordToolCall(call.Name, false)
	logger.Debug("assistant: %s(%s) returned %d bytes", call.Name, call.Arguments, len(content))
	return content
}

func (s *session) overLimit() bool {
	if s.total > s.assistant.settings.MaxToolCallsTotal {
		return true
	}
	for _, n := range s.counts {
		if n > s.assistant.settings.MaxToolCallsPerTool {
			return true
		}
	}
	return false
}

// finalContent trims the response and drops reasoning blocks unless
// think mode is on.
func (s *session) finalContent(content string) string {
	if !s.think {
		content = thinkPattern.ReplaceAllString(content, "")
	}
	return strings.TrimSpace(content)
}

// placeholders returns the set of {name} markers in a prompt.
func placeholders(tmpl string) map[string]bool {
	used := make(map[string]bool)
	for _, m := range placeholderPattern.FindAllStringSubmatch(tmpl, -1) {
		used[m[1]] = true
	}
	return used
}

// substitute replaces known markers in one pass. Inserted values are not
// scanned again and unknown markers are left as they are.
func substitute(tmpl string, vars map[string]string) string {
	return placeholderPattern.ReplaceAllStringFunc(tmpl, func(m string) string {
		if v, ok := vars[m[1:len(m)-1]]; ok {
			return v
		}
		return m
	})
}

func splitIDs(csv string) []domain.DocumentID {
	var ids []domain.DocumentID
	for _, part := range strings.Split(csv, ",") {
		if part = strings.TrimSpace(part); part != "" {
			ids = append(ids, domain.DocumentID(part))
		}
	}
	return ids
}
