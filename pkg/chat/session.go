package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/aminanvary/Gemini-File-Search/pkg/sse"
	"github.com/google/uuid"
)

const (
	eventText      = "text"
	eventGrounding = "grounding"
	eventError     = "error"
	eventDone      = "done"
)

// Session drives one conversation against the chat endpoint. All methods are
// safe for concurrent use; the transcript and state are guarded by one mutex
// and the stream is consumed by a single background goroutine per request.
type Session struct {
	endpoint       string
	defaultModel   string
	defaultStoreID string
	client         *http.Client
	onUpdate       func()

	mu       sync.Mutex
	state    State
	messages []Message
	err      error
	cancel   context.CancelFunc
	done     chan struct{}
}

type Option func(*Session)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(client *http.Client) Option {
	return func(s *Session) { s.client = client }
}

// WithUpdateFunc registers a callback invoked after every transcript change,
// so a UI can re-render per token. The callback runs outside the session
// lock but must not block for long.
func WithUpdateFunc(fn func()) Option {
	return func(s *Session) { s.onUpdate = fn }
}

// NewSession creates a session against the given chat endpoint. The model and
// storeID are defaults used when SendMessage is called with blank values.
func NewSession(endpoint, model, storeID string, opts ...Option) *Session {
	s := &Session{
		endpoint:       endpoint,
		defaultModel:   model,
		defaultStoreID: storeID,
		client:         http.DefaultClient,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SendMessage submits a user message against the given model and store,
// falling back to the session defaults when either is blank, so one
// transcript can span model or store switches. Blank messages and messages
// sent while a request is already in flight are ignored. The user message
// and a streaming placeholder for the model reply are appended to the
// transcript before any network traffic, so the UI reflects the send
// immediately; the history sent upstream covers only the turns completed
// before this call.
func (s *Session) SendMessage(ctx context.Context, text, model, storeID string) {
	if strings.TrimSpace(text) == "" {
		return
	}
	if model == "" {
		model = s.defaultModel
	}
	if storeID == "" {
		storeID = s.defaultStoreID
	}

	s.mu.Lock()
	if s.state != StateIdle {
		s.mu.Unlock()
		return
	}

	history := s.historyLocked()

	userMsg := Message{ID: uuid.NewString(), Role: RoleUser, Content: text}
	placeholder := Message{ID: uuid.NewString(), Role: RoleModel, IsStreaming: true}
	s.messages = append(s.messages, userMsg, placeholder)
	s.state = StateStreaming
	s.err = nil

	reqCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	done := make(chan struct{})
	s.done = done
	s.mu.Unlock()

	s.notify()

	go func() {
		defer close(done)
		s.run(reqCtx, text, model, storeID, history, placeholder.ID)
	}()
}

// CancelRequest aborts the in-flight request, if any. The placeholder reply
// is removed from the transcript entirely; the user message that triggered
// it stays. Calling it with nothing in flight is a no-op.
func (s *Session) CancelRequest() {
	s.mu.Lock()
	if s.state != StateStreaming {
		s.mu.Unlock()
		return
	}
	s.state = StateCancelling
	cancel := s.cancel
	s.mu.Unlock()

	cancel()
}

// ClearMessages empties the transcript. An in-flight request is cancelled
// first so its reply cannot land in the cleared transcript.
func (s *Session) ClearMessages() {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.messages = nil
	s.err = nil
	s.mu.Unlock()

	s.notify()
}

// Messages returns a copy of the transcript.
func (s *Session) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Err returns the error of the most recent request, or nil.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) IsStreaming() bool {
	return s.State() != StateIdle
}

// Wait blocks until the in-flight request, if any, has fully wound down.
func (s *Session) Wait() {
	s.mu.Lock()
	done := s.done
	s.mu.Unlock()
	if done != nil {
		<-done
	}
}

// historyLocked converts the completed transcript into wire turns. Streaming
// placeholders never appear here because SendMessage builds the history
// before appending the new turn.
func (s *Session) historyLocked() []turn {
	history := make([]turn, 0, len(s.messages))
	for _, m := range s.messages {
		if m.IsStreaming {
			continue
		}
		history = append(history, turn{
			Role:  m.Role,
			Parts: []part{{Text: m.Content}},
		})
	}
	return history
}

func (s *Session) run(ctx context.Context, text, model, storeID string, history []turn, placeholderID string) {
	body, err := json.Marshal(chatRequest{
		Message: text,
		Model:   model,
		StoreID: storeID,
		History: history,
	})
	if err != nil {
		s.finish(placeholderID, nil, fmt.Errorf("failed to encode chat request: %w", err))
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		s.finish(placeholderID, nil, fmt.Errorf("failed to build chat request: %w", err))
		return
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")

	resp, err := s.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			s.finishCancelled(placeholderID)
			return
		}
		s.finish(placeholderID, nil, err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		s.finish(placeholderID, nil, decodeHTTPError(resp))
		return
	}

	s.consume(ctx, resp.Body, placeholderID)
}

// consume applies stream events onto the placeholder message until the
// server signals done, the stream ends, or something fails.
func (s *Session) consume(ctx context.Context, body io.Reader, placeholderID string) {
	reader := sse.NewReader(body)

	var content strings.Builder
	var grounding *Grounding

	for {
		payload, err := reader.ReadEvent()
		if err != nil {
			if ctx.Err() != nil {
				s.finishCancelled(placeholderID)
				return
			}
			if errors.Is(err, io.EOF) {
				// Stream closed without a done event; keep what arrived.
				s.finish(placeholderID, grounding, nil)
				return
			}
			s.finish(placeholderID, grounding, err)
			return
		}

		var event streamEvent
		if err := json.Unmarshal(payload, &event); err != nil {
			// Tolerate malformed frames, the next one may be fine.
			continue
		}

		switch event.Type {
		case eventText:
			var delta string
			if err := json.Unmarshal(event.Content, &delta); err != nil {
				continue
			}
			content.WriteString(delta)
			s.updateContent(placeholderID, content.String())

		case eventGrounding:
			g := &Grounding{}
			if err := json.Unmarshal(event.Content, g); err == nil {
				grounding = g
			}

		case eventError:
			var msg string
			if err := json.Unmarshal(event.Content, &msg); err != nil {
				msg = string(event.Content)
			}
			s.finish(placeholderID, grounding, errors.New(msg))
			return

		case eventDone:
			s.finish(placeholderID, grounding, nil)
			return
		}
	}
}

// updateContent replaces the placeholder's content with the full
// accumulated value. Replacement rather than append keeps the transcript
// correct even if an update is delivered twice.
func (s *Session) updateContent(placeholderID, content string) {
	s.mu.Lock()
	if i := s.indexLocked(placeholderID); i >= 0 {
		s.messages[i].Content = content
	}
	s.mu.Unlock()

	s.notify()
}

// finish finalizes the request. On success the placeholder becomes a
// regular model message carrying the grounding; on error its content is
// replaced with an error notice and the error is surfaced via Err.
func (s *Session) finish(placeholderID string, grounding *Grounding, err error) {
	s.mu.Lock()
	if i := s.indexLocked(placeholderID); i >= 0 {
		s.messages[i].IsStreaming = false
		if err != nil {
			s.messages[i].Content = "Error: " + err.Error()
		} else {
			s.messages[i].Grounding = grounding
		}
	}
	s.err = err
	s.state = StateIdle
	s.cancel = nil
	s.mu.Unlock()

	s.notify()
}

// finishCancelled removes the placeholder entirely. The transcript keeps
// the user message so it can be resent.
func (s *Session) finishCancelled(placeholderID string) {
	s.mu.Lock()
	if i := s.indexLocked(placeholderID); i >= 0 {
		s.messages = append(s.messages[:i], s.messages[i+1:]...)
	}
	s.err = nil
	s.state = StateIdle
	s.cancel = nil
	s.mu.Unlock()

	s.notify()
}

func (s *Session) indexLocked(id string) int {
	for i, m := range s.messages {
		if m.ID == id {
			return i
		}
	}
	return -1
}

func (s *Session) notify() {
	if s.onUpdate != nil {
		s.onUpdate()
	}
}

func decodeHTTPError(resp *http.Response) error {
	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err == nil {
		var er errorResponse
		if json.Unmarshal(data, &er) == nil && er.Error != "" {
			return errors.New(er.Error)
		}
	}
	return fmt.Errorf("chat request failed with status %d", resp.StatusCode)
}
