package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/shovelbot/shovel/domain"
)

// ClientFactory builds an inference client bound to one user's token.
type ClientFactory func(token string) domain.Llm

// Session binds a user to a configured inference client and records the
// conversation memory for that user. Sessions live for the process
// lifetime and are owned exclusively by the ChatService.
type Session struct {
	UserID int64
	Client domain.Llm

	history []domain.ChatMessage
}

// ChatService is the session registry. It is constructed once at
// startup and shared by reference; the mutex makes concurrent message
// handling safe.
type ChatService struct {
	store   domain.CredentialStore
	factory ClientFactory

	mu       sync.RWMutex
	sessions map[int64]*Session
}

func NewChatService(store domain.CredentialStore, factory ClientFactory) *ChatService {
	return &ChatService{
		store:    store,
		factory:  factory,
		sessions: make(map[int64]*Session),
	}
}

// Resolve returns the user's session, lazily creating one when the user
// has a registered token. Without a token it returns ErrNoCredential
// and caches nothing.
func (s *ChatService) Resolve(ctx context.Context, userID int64) (*Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[userID]
	s.mu.RUnlock()
	if ok {
		return sess, nil
	}

	token, ok, err := s.store.Get(userID)
	if err != nil {
		return nil, fmt.Errorf("looking up credential: %w", err)
	}
	if !ok {
		return nil, domain.ErrNoCredential
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[userID]; ok {
		return sess, nil
	}
	sess = &Session{
		UserID: userID,
		Client: s.factory(token),
	}
	s.sessions[userID] = sess
	return sess, nil
}

// Register stores the token, overwriting any previous one, and drops
// the user's cached session so the next message picks up the new token.
func (s *ChatService) Register(ctx context.Context, userID int64, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return fmt.Errorf("token must not be empty")
	}
	if err := s.store.Set(userID, token); err != nil {
		return fmt.Errorf("storing credential: %w", err)
	}

	s.mu.Lock()
	delete(s.sessions, userID)
	s.mu.Unlock()
	return nil
}

// Ask relays one message through the user's inference client. Requests
// are single-turn: only the given text is sent. Both turns are still
// appended to the session's conversation memory so the clear button has
// something to clear.
func (s *ChatService) Ask(ctx context.Context, userID int64, text string) (string, error) {
	sess, err := s.Resolve(ctx, userID)
	if err != nil {
		return "", err
	}

	reply, err := sess.Client.Generate(ctx, text)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	sess.history = append(sess.history,
		domain.ChatMessage{Role: domain.UserRole, Content: text},
		domain.ChatMessage{Role: domain.AssistantRole, Content: reply},
	)
	s.mu.Unlock()
	return reply, nil
}

// ClearHistory empties the session's conversation memory. The session
// itself stays resolvable. ErrNoSession signals the user never talked.
func (s *ChatService) ClearHistory(userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[userID]
	if !ok {
		return domain.ErrNoSession
	}
	sess.history = nil
	return nil
}

// History returns a defensive copy of the user's conversation memory.
func (s *ChatService) History(userID int64) []domain.ChatMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[userID]
	if !ok {
		return nil
	}
	copied := make([]domain.ChatMessage, len(sess.history))
	copy(copied, sess.history)
	return copied
}

// ActiveSessions reports how many sessions are cached in memory.
func (s *ChatService) ActiveSessions() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
