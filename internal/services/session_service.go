package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/concesa/salesagent/internal/models"
	"github.com/concesa/salesagent/internal/utils"
)

// CustomerBinding links a session to a CRM customer once a name is saved.
type CustomerBinding struct {
	ID   uint
	Name string
}

// TurnCommit is everything a finished chat turn writes into its session:
// the new messages, the usage deltas, and optionally a customer binding.
// Applied atomically; a failed turn commits nothing.
type TurnCommit struct {
	Messages []models.ChatMessage
	Stats    models.SessionStats
	Customer *CustomerBinding
}

// SessionStore owns in-memory conversation state. Turns within one session
// are serialized in arrival order through AcquireTurn; different sessions
// never contend. The store mutex only guards map and session mutation, so
// reads like Stats never wait on an in-flight model call.
type SessionStore interface {
	NewSession() *models.Session
	// AcquireTurn blocks until this session's previous turn finished, in
	// FIFO order, creating the session if needed. The returned release
	// must be called exactly once.
	AcquireTurn(ctx context.Context, id string) (release func(), err error)
	History(id string) []models.ChatMessage
	Customer(id string) (CustomerBinding, bool)
	// CommitTurn appends a finished turn and applies its stats, truncating
	// the oldest whole turn groups beyond the retention limit.
	CommitTurn(id string, commit TurnCommit)
	Stats(id string) (*models.Session, error)
	Reset(id string) error
	Delete(id string) error
	Count() int
}

type sessionStore struct {
	mu       sync.Mutex
	sessions map[string]*models.Session
	gates    map[string]chan struct{}
	maxTurns int
}

func NewSessionStore(maxTurns int) SessionStore {
	if maxTurns <= 0 {
		maxTurns = 20
	}
	return &sessionStore{
		sessions: make(map[string]*models.Session),
		gates:    make(map[string]chan struct{}),
		maxTurns: maxTurns,
	}
}

func (s *sessionStore) NewSession() *models.Session {
	id := uuid.NewString()
	s.mu.Lock()
	sess := s.ensureLocked(id)
	snap := snapshot(sess)
	s.mu.Unlock()
	return snap
}

func (s *sessionStore) ensureLocked(id string) *models.Session {
	if sess, ok := s.sessions[id]; ok {
		return sess
	}
	now := time.Now().UTC()
	sess := &models.Session{
		SessionID:    id,
		CreatedAt:    now,
		LastActiveAt: now,
	}
	s.sessions[id] = sess
	return sess
}

func (s *sessionStore) AcquireTurn(ctx context.Context, id string) (func(), error) {
	s.mu.Lock()
	s.ensureLocked(id)
	gate, ok := s.gates[id]
	if !ok {
		gate = make(chan struct{}, 1)
		s.gates[id] = gate
	}
	s.mu.Unlock()

	// Blocked senders are woken in FIFO order, which is what makes turns
	// within one session process in arrival order.
	select {
	case gate <- struct{}{}:
	case <-ctx.Done():
		return nil, utils.E(utils.CodeTimeout, "SessionStore.AcquireTurn", "timed out waiting for previous turn", ctx.Err())
	}

	var once sync.Once
	return func() {
		once.Do(func() { <-gate })
	}, nil
}

func (s *sessionStore) History(id string) []models.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil
	}
	out := make([]models.ChatMessage, len(sess.Messages))
	copy(out, sess.Messages)
	return out
}

func (s *sessionStore) Customer(id string) (CustomerBinding, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok || sess.CustomerID == 0 {
		return CustomerBinding{}, false
	}
	return CustomerBinding{ID: sess.CustomerID, Name: sess.CustomerName}, true
}

func (s *sessionStore) CommitTurn(id string, commit TurnCommit) {
	now := time.Now().UTC()

	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.ensureLocked(id)

	turn := sess.NextTurn
	sess.NextTurn++
	for i := range commit.Messages {
		commit.Messages[i].Turn = turn
		if commit.Messages[i].Timestamp.IsZero() {
			commit.Messages[i].Timestamp = now
		}
	}
	sess.Messages = append(sess.Messages, commit.Messages...)

	sess.Stats.TotalMessages += commit.Stats.TotalMessages
	sess.Stats.PromptTokens += commit.Stats.PromptTokens
	sess.Stats.CompletionTokens += commit.Stats.CompletionTokens
	sess.Stats.TotalTokens += commit.Stats.TotalTokens
	sess.Stats.CostUSD += commit.Stats.CostUSD
	sess.Stats.ToolsUsed += commit.Stats.ToolsUsed
	sess.Stats.ElapsedSeconds += commit.Stats.ElapsedSeconds

	if commit.Customer != nil {
		sess.CustomerID = commit.Customer.ID
		sess.CustomerName = commit.Customer.Name
	}
	sess.LastActiveAt = now

	// Retention works on whole turn groups so the history never begins
	// with a dangling tool result.
	if oldest := sess.NextTurn - s.maxTurns; oldest > 0 {
		kept := sess.Messages[:0]
		for _, m := range sess.Messages {
			if m.Turn >= oldest {
				kept = append(kept, m)
			}
		}
		sess.Messages = kept
	}
}

func (s *sessionStore) Stats(id string) (*models.Session, error) {
	const op = "SessionStore.Stats"

	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, utils.E(utils.CodeSessionNotFound, op, "session not found", nil)
	}
	return snapshot(sess), nil
}

// Reset clears history and stats but keeps the customer binding, so a
// returning caller is still greeted by name.
func (s *sessionStore) Reset(id string) error {
	const op = "SessionStore.Reset"

	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return utils.E(utils.CodeSessionNotFound, op, "session not found", nil)
	}
	sess.Messages = nil
	sess.Stats = models.SessionStats{}
	sess.NextTurn = 0
	sess.LastActiveAt = time.Now().UTC()
	return nil
}

func (s *sessionStore) Delete(id string) error {
	const op = "SessionStore.Delete"

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return utils.E(utils.CodeSessionNotFound, op, "session not found", nil)
	}
	delete(s.sessions, id)
	delete(s.gates, id)
	return nil
}

func (s *sessionStore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func snapshot(sess *models.Session) *models.Session {
	out := *sess
	out.Messages = make([]models.ChatMessage, len(sess.Messages))
	copy(out.Messages, sess.Messages)
	return &out
}
