package console

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/ukydev/ev-rental-console/internal/locales"
	"github.com/ukydev/ev-rental-console/internal/models"
	"github.com/ukydev/ev-rental-console/internal/mutation"
	"github.com/ukydev/ev-rental-console/internal/notify"
)

// ChatState is the visible state of the chat widget.
type ChatState string

const (
	ChatClosed ChatState = "closed"
	ChatOpen   ChatState = "open"
	ChatActive ChatState = "active"
)

// chatLog is the part of the widget that sends mutate optimistically.
type chatLog struct {
	Messages    []models.ChatMessage
	Suggestions []string
}

func (l chatLog) clone() chatLog {
	return chatLog{
		Messages:    append([]models.ChatMessage(nil), l.Messages...),
		Suggestions: append([]string(nil), l.Suggestions...),
	}
}

// ChatWidget is the floating assistant. The session id is created lazily
// and kept until NewConversation.
type ChatWidget struct {
	mu        sync.Mutex
	api       ChatAPI
	env       env
	clock     clock.Clock
	state     ChatState
	sessionID string
	input     string
	log       *mutation.Mutation[chatLog]
}

// ChatView is the JSON form of the widget.
type ChatView struct {
	State       ChatState            `json:"state"`
	SessionID   string               `json:"session_id,omitempty"`
	Input       string               `json:"input"`
	Sending     bool                 `json:"sending"`
	Messages    []models.ChatMessage `json:"messages"`
	Suggestions []string             `json:"suggestions"`
}

func newChatWidget(api ChatAPI, e env, c clock.Clock) *ChatWidget {
	if c == nil {
		c = clock.New()
	}
	return &ChatWidget{
		api:   api,
		env:   e,
		clock: c,
		state: ChatClosed,
		log:   mutation.New(chatLog{}, chatLog.clone),
	}
}

// Open shows the widget and makes sure a session exists.
func (w *ChatWidget) Open(ctx context.Context) error {
	w.mu.Lock()
	if w.state == ChatClosed {
		w.state = ChatOpen
	}
	w.mu.Unlock()
	_, err := w.ensureSession(ctx)
	return err
}

// Close hides the widget. The conversation is kept.
func (w *ChatWidget) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.state = ChatClosed
}

// SetInput records the text being typed.
func (w *ChatWidget) SetInput(text string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.input = text
}

// Send posts text to the assistant, opening the widget if it is closed.
// The user message shows at once; on failure it is removed again and the
// typed text goes back into the input box unchanged.
func (w *ChatWidget) Send(ctx context.Context, typed string) error {
	text := strings.TrimSpace(typed)
	if text == "" {
		return w.env.validation(locales.MsgChatMessageRequired)
	}
	if w.log.Pending() {
		return mutation.ErrInFlight
	}
	w.mu.Lock()
	if w.state == ChatClosed {
		w.state = ChatOpen
	}
	w.mu.Unlock()
	sessionID, err := w.ensureSession(ctx)
	if err != nil {
		w.SetInput(typed)
		return err
	}

	w.SetInput("")
	userMsg := models.ChatMessage{
		ID:        uuid.NewString(),
		Role:      models.ChatRoleUser,
		Message:   text,
		Timestamp: w.clock.Now(),
	}
	_, err = w.log.Submit(ctx,
		func(l *chatLog) {
			l.Messages = append(l.Messages, userMsg)
		},
		func(ctx context.Context, optimistic chatLog) (chatLog, error) {
			reply, err := w.api.Send(ctx, text, sessionID)
			if err != nil {
				return chatLog{}, err
			}
			ts := reply.Timestamp
			if ts.IsZero() {
				ts = w.clock.Now()
			}
			optimistic.Messages = append(optimistic.Messages, models.ChatMessage{
				ID:        uuid.NewString(),
				Role:      models.ChatRoleAssistant,
				Message:   reply.Message,
				Timestamp: ts,
				Metadata: &models.ChatMetadata{
					Suggestions: reply.Suggestions,
					Actions:     reply.Actions,
					Context:     reply.Context,
				},
			})
			optimistic.Suggestions = reply.Suggestions
			return optimistic, nil
		})
	if errors.Is(err, mutation.ErrInFlight) {
		w.SetInput(typed)
		return err
	}
	if err != nil {
		w.SetInput(typed)
		w.env.fail(err)
		return err
	}
	return nil
}

// NewConversation drops the current session and its messages and starts
// a fresh session.
func (w *ChatWidget) NewConversation(ctx context.Context) error {
	if err := w.log.Replace(chatLog{}); err != nil {
		return err
	}
	w.mu.Lock()
	w.sessionID = ""
	w.input = ""
	if w.state == ChatActive {
		w.state = ChatOpen
	}
	w.mu.Unlock()
	_, err := w.ensureSession(ctx)
	return err
}

// LoadHistory reloads the messages of the current session.
func (w *ChatWidget) LoadHistory(ctx context.Context) error {
	w.mu.Lock()
	sessionID := w.sessionID
	w.mu.Unlock()
	if sessionID == "" {
		return nil
	}
	h, err := w.api.History(ctx, sessionID)
	if err != nil {
		w.env.fail(err)
		return err
	}
	cur := w.log.Value()
	var suggestions []string
	if n := len(h.Messages); n > 0 && h.Messages[n-1].Metadata != nil {
		suggestions = h.Messages[n-1].Metadata.Suggestions
	} else {
		suggestions = cur.Suggestions
	}
	return w.log.Replace(chatLog{Messages: h.Messages, Suggestions: suggestions})
}

// View renders the widget state.
func (w *ChatWidget) View() ChatView {
	l := w.log.Value()
	w.mu.Lock()
	defer w.mu.Unlock()
	return ChatView{
		State:       w.state,
		SessionID:   w.sessionID,
		Input:       w.input,
		Sending:     w.log.Pending(),
		Messages:    l.Messages,
		Suggestions: l.Suggestions,
	}
}

func (w *ChatWidget) ensureSession(ctx context.Context) (string, error) {
	w.mu.Lock()
	if w.sessionID != "" {
		id := w.sessionID
		if w.state != ChatClosed {
			w.state = ChatActive
		}
		w.mu.Unlock()
		return id, nil
	}
	w.mu.Unlock()

	id, err := w.api.CreateSession(ctx)
	if err != nil {
		log.WithError(err).WithField("operator_id", w.env.operatorID).Warn("Failed to create chat session")
		w.env.notifier.Notify(notify.SeverityError, w.env.tr.T(locales.MsgChatSessionFailed))
		report(w.env.operatorID, err)
		return "", err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.sessionID == "" {
		w.sessionID = id
	}
	if w.state != ChatClosed {
		w.state = ChatActive
	}
	return w.sessionID, nil
}
