package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dkillam05/farmvista-copilot-sub001/internal/dto"
	"github.com/dkillam05/farmvista-copilot-sub001/internal/pkg/logger"
	"github.com/dkillam05/farmvista-copilot-sub001/pkg/answers"
	"github.com/dkillam05/farmvista-copilot-sub001/pkg/convo"
	"github.com/dkillam05/farmvista-copilot-sub001/pkg/escalate"
	"github.com/dkillam05/farmvista-copilot-sub001/pkg/matching"
)

// ICopilotService is the conversational front door: it resolves free-text
// entity references, runs the clarify-then-pick flow, pages long answers, and
// forwards resolved identifiers to the domain handlers.
type ICopilotService interface {
	Chat(ctx context.Context, request *dto.ChatRequest) (*dto.ChatResponse, error)
	Resolve(ctx context.Context, request *dto.ResolveRequest) (*dto.ResolveResponse, error)
	ClearThread(ctx context.Context, threadId string) error
}

type copilotService struct {
	resolver  *matching.Resolver
	store     *convo.MemoryStore
	registry  *answers.Registry
	escalator *escalate.Escalator // nil when escalation is disabled
	pageSize  int
	log       logger.ILogger
}

func NewCopilotService(
	resolver *matching.Resolver,
	store *convo.MemoryStore,
	registry *answers.Registry,
	escalator *escalate.Escalator,
	pageSize int,
	log logger.ILogger,
) ICopilotService {
	if pageSize < convo.MinPageSize {
		pageSize = convo.MinPageSize
	}
	return &copilotService{
		resolver:  resolver,
		store:     store,
		registry:  registry,
		escalator: escalator,
		pageSize:  pageSize,
		log:       log,
	}
}

func (s *copilotService) Chat(ctx context.Context, request *dto.ChatRequest) (*dto.ChatResponse, error) {
	threadId := request.ThreadId
	utterance := strings.TrimSpace(request.Message)
	if utterance == "" {
		return nil, matching.ErrMissingQuery
	}

	bucket, err := s.store.Get(ctx, threadId)
	if err != nil {
		return nil, fmt.Errorf("load thread %s: %w", threadId, err)
	}

	// A pending disambiguation always intercepts the next utterance, even one
	// that reads like a brand-new question. Losing the user's place is worse
	// than the occasional false capture; "cancel" is the escape hatch.
	if bucket != nil && bucket.Pending != nil {
		return s.handlePick(ctx, threadId, bucket.Pending, utterance)
	}

	if intent, ok := convo.ParsePagingIntent(utterance); ok {
		return s.handlePaging(ctx, threadId, bucket, intent)
	}

	collection, query := parseTarget(utterance)
	return s.resolveAndAnswer(ctx, threadId, collection, query, utterance)
}

func (s *copilotService) handlePick(ctx context.Context, threadId string, pending *convo.Pending, utterance string) (*dto.ChatResponse, error) {
	result := convo.InterpretPick(pending, utterance)
	switch result.Outcome {
	case convo.PickResolved:
		picked := result.Candidate
		if _, err := s.store.Update(ctx, threadId, func(b *convo.Bucket) {
			b.Pending = nil
		}); err != nil {
			return nil, err
		}
		s.log.Info("copilot", "disambiguation resolved", map[string]interface{}{
			"thread": threadId, "picked": picked.Name, "utterance": utterance,
		})
		return s.dispatch(ctx, threadId, pending.Collection, picked.ID, picked.Name)

	case convo.PickCancelled:
		if _, err := s.store.Update(ctx, threadId, func(b *convo.Bucket) {
			b.Pending = nil
		}); err != nil {
			return nil, err
		}
		return &dto.ChatResponse{
			ThreadId: threadId,
			Answer:   "No problem, I'll drop that. What else can I help with?",
		}, nil

	default: // PickRetry: keep the pending state and re-ask the same question
		return &dto.ChatResponse{
			ThreadId:     threadId,
			Answer:       "Sorry, I didn't catch which one. " + result.Question,
			AwaitingPick: true,
		}, nil
	}
}

func (s *copilotService) handlePaging(ctx context.Context, threadId string, bucket *convo.Bucket, intent convo.PagingIntent) (*dto.ChatResponse, error) {
	if bucket == nil || bucket.Continuation == nil {
		return &dto.ChatResponse{
			ThreadId: threadId,
			Answer:   "I don't have a list to continue. Ask me about a field, farm, tower, or bin first.",
		}, nil
	}

	var lines []string
	var done bool
	var title string
	var remaining int
	if _, err := s.store.Update(ctx, threadId, func(b *convo.Bucket) {
		if b.Continuation == nil {
			done = true
			return
		}
		title = b.Continuation.Title
		lines, done = b.Continuation.Advance(intent)
		remaining = b.Continuation.Remaining()
		if done {
			b.Continuation = nil
		}
	}); err != nil {
		return nil, err
	}

	if len(lines) == 0 {
		return &dto.ChatResponse{
			ThreadId: threadId,
			Answer:   "That's everything I had.",
		}, nil
	}

	var b strings.Builder
	if title != "" {
		b.WriteString(title + " (continued):\n")
	}
	b.WriteString(strings.Join(lines, "\n"))
	if !done {
		fmt.Fprintf(&b, "\n(%d more — say 'more' or 'show all')", remaining)
	}
	return &dto.ChatResponse{ThreadId: threadId, Answer: b.String()}, nil
}

func (s *copilotService) resolveAndAnswer(ctx context.Context, threadId, collection, query, original string) (*dto.ChatResponse, error) {
	result, err := s.resolver.Resolve(ctx, query, collection, matching.Options{})
	if err != nil {
		if errors.Is(err, matching.ErrMissingQuery) {
			return &dto.ChatResponse{
				ThreadId: threadId,
				Answer:   "What would you like to look up? Name a field, farm, tower, or bin.",
			}, nil
		}
		return nil, err
	}

	switch result.Outcome {
	case matching.OutcomeMatch:
		return s.dispatch(ctx, threadId, collection, result.Match.ID, result.Match.Label)

	case matching.OutcomeClarify:
		return s.askToClarify(ctx, threadId, collection, query, original, result.Candidates)

	case matching.OutcomeEscalate:
		return s.escalateOrGiveUp(ctx, threadId, collection, query, original, result.Candidates)

	default: // OutcomeNone
		return s.noMatch(threadId, collection, query), nil
	}
}

func (s *copilotService) askToClarify(ctx context.Context, threadId, collection, query, original string, candidates []matching.Match) (*dto.ChatResponse, error) {
	pending := convo.NewPending("entity_pick", collection, query, original, candidates)
	if _, err := s.store.Update(ctx, threadId, func(b *convo.Bucket) {
		b.Pending = pending
		b.LastList = listItems(candidates)
	}); err != nil {
		return nil, err
	}
	return &dto.ChatResponse{
		ThreadId:     threadId,
		Answer:       convo.ClarifyQuestion(pending),
		AwaitingPick: true,
	}, nil
}

// escalateOrGiveUp hands a weak candidate list to the LLM collaborator. No
// conversation memory lock is held while the call is in flight, and any
// escalation failure degrades to no-match rather than a fabricated answer.
func (s *copilotService) escalateOrGiveUp(ctx context.Context, threadId, collection, query, original string, candidates []matching.Match) (*dto.ChatResponse, error) {
	if s.escalator == nil || len(candidates) == 0 {
		return s.noMatch(threadId, collection, query), nil
	}

	names := make([]string, len(candidates))
	byName := make(map[string]matching.Match, len(candidates))
	for i, c := range candidates {
		names[i] = c.Label
		byName[c.Label] = c
	}

	decision, err := s.escalator.Pick(ctx, singular(collection), original, names)
	if err != nil {
		s.log.Warn("copilot", "escalation failed, falling back to no match", map[string]interface{}{
			"thread": threadId, "error": err.Error(),
		})
		return s.noMatch(threadId, collection, query), nil
	}

	switch decision.Action {
	case escalate.ActionRetry:
		m := byName[decision.Match]
		s.log.Info("copilot", "escalation picked a match", map[string]interface{}{
			"thread": threadId, "match": m.Label, "confidence": decision.Confidence,
		})
		return s.dispatch(ctx, threadId, collection, m.ID, m.Label)

	case escalate.ActionClarify:
		narrowed := make([]matching.Match, 0, len(decision.Options))
		for _, name := range decision.Options {
			narrowed = append(narrowed, byName[name])
		}
		resp, err := s.askToClarify(ctx, threadId, collection, query, original, narrowed)
		if err != nil {
			return nil, err
		}
		if decision.Ask != "" {
			resp.Answer = decision.Ask + "\n" + resp.Answer
		}
		return resp, nil

	default: // no_match
		return s.noMatch(threadId, collection, query), nil
	}
}

func (s *copilotService) noMatch(threadId, collection, query string) *dto.ChatResponse {
	return &dto.ChatResponse{
		ThreadId: threadId,
		Answer:   fmt.Sprintf("I couldn't find a %s matching %q. Try the exact name or a site code.", singular(collection), query),
	}
}

// dispatch forwards a resolved identifier to its domain handler as if the
// user had typed it directly, records the selection, and sets up paging when
// the handler returned a long line set.
func (s *copilotService) dispatch(ctx context.Context, threadId, collection, id, label string) (*dto.ChatResponse, error) {
	handler, ok := s.registry.For(collection)
	if !ok {
		return nil, fmt.Errorf("%w: %q", matching.ErrUnknownCollection, collection)
	}

	answer, err := handler.Answer(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s handler: %w", collection, err)
	}

	text := answer.Text
	var cont *convo.Continuation
	if len(answer.Lines) > 0 {
		shown := len(answer.Lines)
		if shown > s.pageSize {
			shown = s.pageSize
		}
		text += "\n" + strings.Join(answer.Lines[:shown], "\n")
		if shown < len(answer.Lines) {
			cont = convo.NewContinuation(answer.Title, answer.Lines, shown, s.pageSize)
			text += fmt.Sprintf("\n(%d more — say 'more' or 'show all')", len(answer.Lines)-shown)
		}
	}

	if _, err := s.store.Update(ctx, threadId, func(b *convo.Bucket) {
		b.Pending = nil
		b.LastSelection = &convo.Selection{ID: id, Collection: collection, Label: label}
		b.Continuation = cont
	}); err != nil {
		return nil, err
	}

	return &dto.ChatResponse{
		ThreadId:   threadId,
		Answer:     text,
		ResolvedId: id,
		Collection: collection,
	}, nil
}

func (s *copilotService) Resolve(ctx context.Context, request *dto.ResolveRequest) (*dto.ResolveResponse, error) {
	result, err := s.resolver.Resolve(ctx, request.Query, request.Collection, matching.Options{
		IncludeInactive: request.IncludeInactive,
		Limit:           request.Limit,
	})
	if err != nil {
		return nil, err
	}

	resp := &dto.ResolveResponse{
		Outcome:    string(result.Outcome),
		Candidates: make([]dto.MatchDTO, 0, len(result.Candidates)),
	}
	if result.Match != nil {
		resp.Match = &dto.MatchDTO{Id: result.Match.ID, Label: result.Match.Label, Score: result.Match.Score}
	}
	for _, c := range result.Candidates {
		resp.Candidates = append(resp.Candidates, dto.MatchDTO{Id: c.ID, Label: c.Label, Score: c.Score})
	}
	return resp, nil
}

func (s *copilotService) ClearThread(ctx context.Context, threadId string) error {
	return s.store.Clear(ctx, threadId)
}

func listItems(candidates []matching.Match) []convo.ListItem {
	items := make([]convo.ListItem, 0, len(candidates))
	for _, c := range candidates {
		items = append(items, convo.ListItem{ID: c.ID, Label: c.Label})
	}
	return items
}
