package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"care_wallet/internal/domain"
	"care_wallet/internal/schema"
	"care_wallet/internal/store"
	"care_wallet/internal/utils"

	"github.com/sirupsen/logrus"
)

// DefaultSystemPrompt is sent ahead of every conversation unless the
// chat_system_prompt setting overrides it.
const DefaultSystemPrompt = "You are a supportive, empathetic wellbeing companion. " +
	"Listen carefully, respond warmly and briefly, and never give a diagnosis. " +
	"If the user mentions self-harm or an emergency, tell them to contact local emergency services immediately."

// MaxHistory caps how many prior messages are forwarded to the model.
const MaxHistory = 20

// Completer produces the assistant's next message for a conversation.
type Completer interface {
	Complete(ctx context.Context, messages []domain.ChatMessage) (string, error)
}

// Chat proxies therapist-chat turns to the model and keeps the server copy of
// each authenticated session.
type Chat struct {
	store store.Store
	llm   Completer
	now   func() time.Time
}

func NewChat(s store.Store, llm Completer) *Chat {
	return &Chat{store: s, llm: llm, now: time.Now}
}

// Reply answers one user turn. userID 0 means an anonymous caller: nothing is
// read from or written to the store and the client keeps the conversation.
// For signed-in callers, buffered local messages are merged into the server
// session before the new turn is appended, and the whole list is saved back.
func (c *Chat) Reply(ctx context.Context, userID uint, req schema.ChatRequest) (*schema.ChatResponse, Outcome, error) {
	local := conversational(req.LocalMessages)
	if userID == 0 {
		history, reply, err := c.turn(ctx, local, req.Message)
		if err != nil {
			return nil, Outcome{}, err
		}
		return &schema.ChatResponse{Reply: reply, Messages: history, Mode: schema.ChatModeLocal}, Outcome{}, nil
	}

	session, err := c.session(ctx, userID, req.SessionID)
	if err != nil {
		return nil, Outcome{}, err
	}
	merged := domain.MergeMessages(session.Messages, local)
	history, reply, err := c.turn(ctx, merged, req.Message)
	if err != nil {
		return nil, Outcome{}, err
	}
	session.Messages = history

	fields := logrus.Fields{"user_id": userID, "session_id": session.SessionID, "op": "therapist_chat"}
	out := bestEffort(ctx, fields,
		side("chat_session", func(ctx context.Context) error {
			return c.store.SaveChatSession(ctx, session)
		}),
		side("health_tools_usage", func(ctx context.Context) error {
			return c.store.CreateHealthToolUsage(ctx, &domain.HealthToolUsage{
				UserID: userID,
				Tool:   "therapist_chat",
				Metadata: map[string]any{
					"session_id": session.SessionID,
					"messages":   len(history),
				},
			})
		}),
	)
	return &schema.ChatResponse{
		Reply:     reply,
		SessionID: session.SessionID,
		Messages:  history,
		Mode:      schema.ChatModeServer,
	}, out, nil
}

// History returns the stored conversation. An empty sessionID selects the
// most recently updated session; a user with no sessions gets an empty list.
func (c *Chat) History(ctx context.Context, userID uint, sessionID string) (*schema.ChatHistoryResponse, error) {
	if userID == 0 {
		return &schema.ChatHistoryResponse{Messages: []domain.ChatMessage{}, Mode: schema.ChatModeLocal}, nil
	}
	var (
		cs  *domain.ChatSession
		err error
	)
	if sessionID == "" {
		cs, err = c.store.LatestChatSession(ctx, userID)
	} else {
		cs, err = c.store.GetChatSession(ctx, userID, sessionID)
	}
	if errors.Is(err, store.ErrNotFound) {
		return &schema.ChatHistoryResponse{SessionID: sessionID, Messages: []domain.ChatMessage{}, Mode: schema.ChatModeServer}, nil
	}
	if err != nil {
		return nil, err
	}
	return &schema.ChatHistoryResponse{SessionID: cs.SessionID, Messages: cs.Messages, Mode: schema.ChatModeServer}, nil
}

func (c *Chat) session(ctx context.Context, userID uint, sessionID string) (*domain.ChatSession, error) {
	if sessionID == "" {
		return &domain.ChatSession{UserID: userID, SessionID: utils.NewSessionID()}, nil
	}
	cs, err := c.store.GetChatSession(ctx, userID, sessionID)
	if errors.Is(err, store.ErrNotFound) {
		return &domain.ChatSession{UserID: userID, SessionID: sessionID}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load chat session: %w", err)
	}
	return cs, nil
}

// turn appends the user message, asks the model and appends its answer.
func (c *Chat) turn(ctx context.Context, history []domain.ChatMessage, message string) ([]domain.ChatMessage, string, error) {
	history = append(history, domain.ChatMessage{
		Role:      domain.ChatRoleUser,
		Content:   strings.TrimSpace(message),
		Timestamp: c.now().UTC(),
	})
	prompt := append([]domain.ChatMessage{{Role: domain.ChatRoleSystem, Content: c.systemPrompt(ctx)}}, recent(history)...)
	reply, err := c.llm.Complete(ctx, prompt)
	if err != nil {
		logrus.WithField("error", err.Error()).Error("Chat completion failed")
		return nil, "", fmt.Errorf("%w: %v", ErrChatUnavailable, err)
	}
	history = append(history, domain.ChatMessage{
		Role:      domain.ChatRoleAssistant,
		Content:   reply,
		Timestamp: c.now().UTC(),
	})
	return history, reply, nil
}

func (c *Chat) systemPrompt(ctx context.Context) string {
	cfg, err := loadSettings(ctx, c.store)
	if err == nil {
		if p := strings.TrimSpace(cfg[domain.SettingChatSystemPrompt]); p != "" {
			return p
		}
	}
	return DefaultSystemPrompt
}

// conversational drops anything the client should not be able to inject,
// such as its own system messages.
func conversational(msgs []domain.ChatMessage) []domain.ChatMessage {
	out := make([]domain.ChatMessage, 0, len(msgs))
	for _, m := range msgs {
		if m.Role != domain.ChatRoleUser && m.Role != domain.ChatRoleAssistant {
			continue
		}
		if strings.TrimSpace(m.Content) == "" {
			continue
		}
		out = append(out, m)
	}
	return out
}

func recent(msgs []domain.ChatMessage) []domain.ChatMessage {
	if len(msgs) > MaxHistory {
		return msgs[len(msgs)-MaxHistory:]
	}
	return msgs
}
