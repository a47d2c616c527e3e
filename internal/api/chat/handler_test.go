package chat

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aminanvary/Gemini-File-Search/internal/config"
	"github.com/aminanvary/Gemini-File-Search/internal/entity"
	"github.com/aminanvary/Gemini-File-Search/internal/integration/filesearch"
	"github.com/aminanvary/Gemini-File-Search/internal/pkg/validator"
	"github.com/aminanvary/Gemini-File-Search/pkg/sse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedStream struct {
	chunks []entity.StreamChunk
	err    error
	pos    int
	closed bool
}

func (s *scriptedStream) Recv() (*entity.StreamChunk, error) {
	if s.pos >= len(s.chunks) {
		if s.err != nil {
			return nil, s.err
		}
		return nil, io.EOF
	}
	chunk := s.chunks[s.pos]
	s.pos++
	return &chunk, nil
}

func (s *scriptedStream) Close() error {
	s.closed = true
	return nil
}

type stubConnector struct {
	stream    *scriptedStream
	openErr   error
	gotModel  string
	gotStore  string
	gotHist   []entity.ChatTurn
	gotPrompt string
}

func (c *stubConnector) StreamChat(_ context.Context, model, storeName string, history []entity.ChatTurn, message string) (filesearch.ChatStream, error) {
	c.gotModel = model
	c.gotStore = storeName
	c.gotHist = history
	c.gotPrompt = message
	if c.openErr != nil {
		return nil, c.openErr
	}
	return c.stream, nil
}

func newTestHandler(conn *stubConnector) *Handler {
	return NewHandler(conn, validator.NewValidator(config.FileUploadConfig{MaxFileSize: 1024, MaxUploadSize: 2048}))
}

func doChat(t *testing.T, h *Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.StreamChat(rec, req)
	return rec
}

func readEvents(t *testing.T, body io.Reader) []entity.StreamEvent {
	t.Helper()
	reader := sse.NewReader(body)
	var events []entity.StreamEvent
	for {
		payload, err := reader.ReadEvent()
		if errors.Is(err, io.EOF) {
			return events
		}
		require.NoError(t, err)
		var event entity.StreamEvent
		require.NoError(t, json.Unmarshal(payload, &event))
		events = append(events, event)
	}
}

func TestStreamChatHappyPath(t *testing.T) {
	conn := &stubConnector{stream: &scriptedStream{
		chunks: []entity.StreamChunk{
			{Text: "Hel"},
			{Text: "lo"},
			{GroundingMetadata: &entity.GroundingMetadata{
				GroundingChunks: []entity.GroundingChunk{{
					RetrievedContext: &entity.RetrievedContext{Title: "doc.md"},
				}},
			}},
		},
	}}
	h := newTestHandler(conn)

	rec := doChat(t, h, `{"message":"hi","model":"gemini-2.5-flash","storeId":"my-store"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	assert.Equal(t, "no-cache", rec.Header().Get("Cache-Control"))

	events := readEvents(t, rec.Body)
	require.Len(t, events, 4)
	assert.Equal(t, entity.EventText, events[0].Type)
	assert.Equal(t, "Hel", events[0].Content)
	assert.Equal(t, entity.EventText, events[1].Type)
	assert.Equal(t, "lo", events[1].Content)
	assert.Equal(t, entity.EventGrounding, events[2].Type)
	assert.Equal(t, entity.EventDone, events[3].Type)

	assert.True(t, conn.stream.closed)
}

func TestStreamChatNormalizesStoreID(t *testing.T) {
	conn := &stubConnector{stream: &scriptedStream{}}
	h := newTestHandler(conn)

	doChat(t, h, `{"message":"hi","model":"gemini-2.5-flash","storeId":"my-store"}`)
	assert.Equal(t, "fileSearchStores/my-store", conn.gotStore)

	doChat(t, h, `{"message":"hi","model":"gemini-2.5-flash","storeId":"fileSearchStores/my-store"}`)
	assert.Equal(t, "fileSearchStores/my-store", conn.gotStore)
}

func TestStreamChatMissingFields(t *testing.T) {
	h := newTestHandler(&stubConnector{stream: &scriptedStream{}})

	rec := doChat(t, h, `{"model":"gemini-2.5-flash","storeId":"s"}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"Missing required fields: message, model, storeId"}`, rec.Body.String())
}

func TestStreamChatInvalidModel(t *testing.T) {
	h := newTestHandler(&stubConnector{stream: &scriptedStream{}})

	rec := doChat(t, h, `{"message":"hi","model":"gpt-4","storeId":"s"}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"Invalid model. Supported models: gemini-2.5-flash, gemini-3-flash-preview"}`, rec.Body.String())
}

func TestStreamChatInvalidBody(t *testing.T) {
	h := newTestHandler(&stubConnector{stream: &scriptedStream{}})

	rec := doChat(t, h, `{not json`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"Invalid request body"}`, rec.Body.String())
}

func TestStreamChatSetupError(t *testing.T) {
	h := newTestHandler(&stubConnector{openErr: errors.New("upstream unreachable")})

	rec := doChat(t, h, `{"message":"hi","model":"gemini-2.5-flash","storeId":"s"}`)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"upstream unreachable"}`, rec.Body.String())
}

func TestStreamChatMidStreamError(t *testing.T) {
	conn := &stubConnector{stream: &scriptedStream{
		chunks: []entity.StreamChunk{{Text: "Hel"}, {Text: "lo"}},
		err:    errors.New("rate limited"),
	}}
	h := newTestHandler(conn)

	rec := doChat(t, h, `{"message":"hi","model":"gemini-2.5-flash","storeId":"s"}`)

	// Headers are already written by the time the stream fails, so the
	// error travels in-band and the response stays 200.
	require.Equal(t, http.StatusOK, rec.Code)

	events := readEvents(t, rec.Body)
	require.Len(t, events, 3)
	assert.Equal(t, entity.EventText, events[0].Type)
	assert.Equal(t, entity.EventText, events[1].Type)
	assert.Equal(t, entity.EventError, events[2].Type)
	assert.Equal(t, "rate limited", events[2].Content)
}

func TestStreamChatGroundingLastWins(t *testing.T) {
	conn := &stubConnector{stream: &scriptedStream{
		chunks: []entity.StreamChunk{
			{Text: "a", GroundingMetadata: &entity.GroundingMetadata{
				GroundingChunks: []entity.GroundingChunk{{
					RetrievedContext: &entity.RetrievedContext{Title: "first.md"},
				}},
			}},
			{Text: "b", GroundingMetadata: &entity.GroundingMetadata{
				GroundingChunks: []entity.GroundingChunk{{
					RetrievedContext: &entity.RetrievedContext{Title: "second.md"},
				}},
			}},
		},
	}}
	h := newTestHandler(conn)

	rec := doChat(t, h, `{"message":"hi","model":"gemini-2.5-flash","storeId":"s"}`)

	events := readEvents(t, rec.Body)
	require.Len(t, events, 4)
	require.Equal(t, entity.EventGrounding, events[2].Type)

	raw, err := json.Marshal(events[2].Content)
	require.NoError(t, err)
	var grounding entity.GroundingMetadata
	require.NoError(t, json.Unmarshal(raw, &grounding))
	require.Len(t, grounding.GroundingChunks, 1)
	assert.Equal(t, "second.md", grounding.GroundingChunks[0].RetrievedContext.Title)
}

func TestStreamChatEmptyStream(t *testing.T) {
	h := newTestHandler(&stubConnector{stream: &scriptedStream{}})

	rec := doChat(t, h, `{"message":"hi","model":"gemini-2.5-flash","storeId":"s"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	events := readEvents(t, rec.Body)
	require.Len(t, events, 1)
	assert.Equal(t, entity.EventDone, events[0].Type)
}
