package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phuslu/log"

	"legislation-chat-bot/internal/config"
	"legislation-chat-bot/internal/domain"
	"legislation-chat-bot/internal/metrics"
	"legislation-chat-bot/internal/usecase/catalog"
	"legislation-chat-bot/internal/usecase/query"
)

var (
	ErrEmptyMessage   = errors.New("empty message")
	ErrUnknownSession = errors.New("unknown session")
	ErrEmptyReply     = errors.New("model reply has no content")
)

type Client interface {
	Complete(ctx context.Context, req CompletionRequest) (Reply, error)
}

// CompletionRequest is one round trip to the model service. Functions is
// empty on the follow-up exchange so the model has to answer in prose.
type CompletionRequest struct {
	Model               string
	Messages            []domain.Message
	Functions           []catalog.Definition
	MaxCompletionTokens int
}

// Reply is either plain text or a single function-call request.
type Reply struct {
	Content      string
	FunctionCall *domain.FunctionCall
}

type Service struct {
	store   domain.ConversationStore
	client  Client
	catalog *catalog.Catalog
	cfg     config.Config
	metrics *metrics.Metrics
	now     func() time.Time

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewService(store domain.ConversationStore, client Client, cat *catalog.Catalog, cfg config.Config, m *metrics.Metrics) *Service {
	return &Service{
		store:   store,
		client:  client,
		catalog: cat,
		cfg:     cfg,
		metrics: m,
		now:     time.Now,
		locks:   make(map[string]*sync.Mutex),
	}
}

// NewSession starts an empty transcript seeded with the system prompt.
func (s *Service) NewSession() string {
	id := uuid.NewString()
	unlock := s.lock(id)
	defer unlock()
	s.ensureSystemPrompt(id)
	return id
}

func (s *Service) HasSession(sessionID string) bool {
	return s.store.Exists(sessionID)
}

// Transcript returns a copy of the session's turns.
func (s *Service) Transcript(sessionID string) ([]domain.Message, error) {
	if !s.store.Exists(sessionID) {
		return nil, ErrUnknownSession
	}
	return s.store.Messages(sessionID), nil
}

// HandleMessage runs one user turn. At most one function call is serviced:
// the initial exchange offers the catalog, the follow-up does not.
// Model service failures are returned as is; turns appended before the
// failure stay in the transcript.
func (s *Service) HandleMessage(ctx context.Context, sessionID string, text string) (Answer, error) {
	if strings.TrimSpace(text) == "" {
		return Answer{}, ErrEmptyMessage
	}

	unlock := s.lock(sessionID)
	defer unlock()

	s.ensureSystemPrompt(sessionID)
	s.append(sessionID, domain.Message{Role: domain.RoleUser, Content: text})
	s.transition(sessionID, stateAwaitingModel)

	reply, err := s.exchange(ctx, sessionID, phaseInitial)
	if err != nil {
		return Answer{}, fmt.Errorf("initial exchange: %w", err)
	}
	if reply.FunctionCall == nil && strings.TrimSpace(reply.Content) == "" {
		return Answer{}, fmt.Errorf("initial exchange: %w", ErrEmptyReply)
	}

	if reply.FunctionCall == nil {
		s.append(sessionID, domain.Message{Role: domain.RoleAssistant, Content: reply.Content})
		s.metrics.Turn("direct")
		s.transition(sessionID, stateIdle)
		return Answer{Text: reply.Content}, nil
	}

	call := *reply.FunctionCall
	s.append(sessionID, domain.Message{Role: domain.RoleAssistant, FunctionCall: &call})
	s.transition(sessionID, stateAwaitingFunctionResult)

	result := s.dispatch(sessionID, call)
	payload, err := json.Marshal(result)
	if err != nil {
		return Answer{}, fmt.Errorf("encode %s result: %w", call.Name, err)
	}
	s.append(sessionID, domain.Message{Role: domain.RoleFunction, Name: call.Name, Content: string(payload)})
	s.transition(sessionID, stateAwaitingFollowUp)

	followUp, err := s.exchange(ctx, sessionID, phaseFollowUp)
	if err != nil {
		return Answer{}, fmt.Errorf("follow-up exchange: %w", err)
	}
	// A function call without text would leave nothing to show.
	if strings.TrimSpace(followUp.Content) == "" {
		return Answer{}, fmt.Errorf("follow-up exchange: %w", ErrEmptyReply)
	}

	s.append(sessionID, domain.Message{Role: domain.RoleAssistant, Content: followUp.Content})
	s.metrics.Turn("function")
	s.transition(sessionID, stateIdle)

	answer := Answer{Text: followUp.Content, Function: call.Name}
	if details, ok := result.(query.BillDetails); ok {
		answer.Source = details.Source
	}
	return answer, nil
}

func (s *Service) exchange(ctx context.Context, sessionID string, p phase) (Reply, error) {
	req := CompletionRequest{
		Model:               s.cfg.Model,
		Messages:            s.store.Messages(sessionID),
		MaxCompletionTokens: s.cfg.MaxCompletionTokens,
	}
	if p.offersCatalog() {
		req.Functions = s.catalog.Definitions()
	}

	start := s.now()
	reply, err := s.client.Complete(ctx, req)
	s.metrics.ModelRequest(p.String(), s.now().Sub(start), err)
	return reply, err
}

func (s *Service) dispatch(sessionID string, call domain.FunctionCall) query.Result {
	result, decoded := s.catalog.DispatchRaw(call.Name, call.Arguments)
	if !decoded {
		s.metrics.DecodeFailure()
		log.Warn().Str("session", sessionID).Str("function", call.Name).Msg("function arguments are not a JSON object, dispatching with none")
	}

	_, failed := result.(query.ErrorResult)
	s.metrics.Dispatch(catalog.ParseFunction(call.Name).String(), failed)
	log.Info().Str("session", sessionID).Str("function", call.Name).Bool("error", failed).Msg("dispatched function call")
	return result
}

func (s *Service) ensureSystemPrompt(sessionID string) {
	if s.store.Exists(sessionID) {
		return
	}
	s.append(sessionID, domain.Message{Role: domain.RoleSystem, Content: s.cfg.AssistantPrompt})
	s.metrics.Sessions(s.store.Len())
}

func (s *Service) append(sessionID string, msg domain.Message) {
	msg.Timestamp = s.now()
	s.store.Add(sessionID, msg)
}

func (s *Service) transition(sessionID string, st state) {
	log.Debug().Str("session", sessionID).Str("state", st.String()).Msg("chat state")
}

// lock serializes turns within one session.
func (s *Service) lock(sessionID string) func() {
	s.mu.Lock()
	l, ok := s.locks[sessionID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[sessionID] = l
	}
	s.mu.Unlock()

	l.Lock()
	return l.Unlock
}
