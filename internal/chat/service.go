package chat

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"sathi-support/backend/internal/ai"
	"sathi-support/backend/internal/arbiter"
	"sathi-support/backend/internal/faq"
	"sathi-support/backend/internal/store"
	"sathi-support/backend/internal/util"
)

// historyLimit is how many stored turns are replayed when the caller sends none.
const historyLimit = 5

// ErrInvalidInput is returned for empty messages.
var ErrInvalidInput = errors.New("message is required and must be a non-empty string")

// Store persists exchanges and serves recent history.
type Store interface {
	AppendExchange(ctx context.Context, conversationID string, user, assistant store.Message) error
	RecentMessages(ctx context.Context, conversationID string, limit int) ([]store.Message, error)
}

// Input is a single user message with its optional conversation context.
type Input struct {
	Message        string
	ConversationID string
	History        []ai.Turn
}

// Result is the arbitrated outcome plus the FAQ match that fed it.
type Result struct {
	arbiter.Outcome
	FAQ faq.MatchResult `json:"-"`
}

// Config wires the service dependencies. Store is optional.
type Config struct {
	Table     *faq.Table
	Responder ai.Responder
	Store     Store
}

// Service routes user messages between the FAQ table and the AI backend.
type Service struct {
	table     *faq.Table
	responder ai.Responder
	store     Store
}

// NewService validates the configuration and constructs a Service.
func NewService(cfg Config) (*Service, error) {
	if cfg.Table == nil {
		return nil, errors.New("faq table required")
	}
	if cfg.Responder == nil {
		return nil, errors.New("ai responder required")
	}
	return &Service{table: cfg.Table, responder: cfg.Responder, store: cfg.Store}, nil
}

// Table exposes the FAQ table the service matches against.
func (s *Service) Table() *faq.Table {
	return s.table
}

// DemoMode reports whether replies come from the demo responder.
func (s *Service) DemoMode() bool {
	return ai.DemoMode(s.responder)
}

// Process answers a message. The FAQ lookup and the AI call run concurrently and
// are joined before arbitration. Backend failures degrade to the apology outcome;
// the only error returned is ErrInvalidInput.
func (s *Service) Process(ctx context.Context, in Input) (Result, error) {
	message := strings.TrimSpace(in.Message)
	if message == "" {
		return Result{}, ErrInvalidInput
	}
	timer := util.StartTimer()
	conversationID := strings.TrimSpace(in.ConversationID)

	history := in.History
	if len(history) == 0 {
		history = s.loadHistory(ctx, conversationID)
	}
	timer.Mark("history")

	var (
		matchResult faq.MatchResult
		aiResp      ai.Response
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		matchResult = faq.Match(message, s.table)
		return nil
	})
	g.Go(func() error {
		resp, err := s.responder.Respond(gctx, ai.Request{Message: message, History: history})
		if err != nil {
			return err
		}
		aiResp = resp
		return nil
	})
	backendErr := g.Wait()
	timer.Mark("backend")

	var outcome arbiter.Outcome
	if backendErr != nil {
		logrus.WithError(backendErr).WithField("conversation", conversationID).Warn("ai backend failed, serving apology")
		outcome = arbiter.Failure()
	} else {
		var faqResult *faq.MatchResult
		if matchResult.Found() {
			faqResult = &matchResult
		}
		outcome = arbiter.Decide(faqResult, aiResp)
	}

	s.record(ctx, conversationID, message, outcome)
	timer.Mark("persist")

	fields := timer.Fields()
	fields["conversation"] = conversationID
	fields["source"] = outcome.Source
	fields["confidence"] = outcome.Confidence
	fields["escalation"] = outcome.EscalationOffered
	fields["faq_score"] = matchResult.Score
	logrus.WithFields(fields).Info("chat message processed")

	return Result{Outcome: outcome, FAQ: matchResult}, nil
}

func (s *Service) loadHistory(ctx context.Context, conversationID string) []ai.Turn {
	if s.store == nil || conversationID == "" {
		return nil
	}
	rows, err := s.store.RecentMessages(ctx, conversationID, historyLimit)
	if err != nil {
		logrus.WithError(err).WithField("conversation", conversationID).Warn("load conversation history")
		return nil
	}
	turns := make([]ai.Turn, 0, len(rows))
	for _, row := range rows {
		turns = append(turns, ai.Turn{Role: row.Role, Content: row.Content})
	}
	return turns
}

func (s *Service) record(ctx context.Context, conversationID, message string, outcome arbiter.Outcome) {
	if s.store == nil || conversationID == "" {
		return
	}
	err := s.store.AppendExchange(ctx, conversationID,
		store.Message{Content: message},
		store.Message{
			Content:           outcome.Reply,
			Source:            string(outcome.Source),
			Confidence:        outcome.Confidence,
			EscalationOffered: outcome.EscalationOffered,
		},
	)
	if err != nil {
		logrus.WithError(err).WithField("conversation", conversationID).Warn("record chat exchange")
	}
}
