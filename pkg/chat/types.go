// Package chat is a client for the dashboard's streaming chat endpoint. A
// Session holds a transcript, sends user messages with the accumulated
// history and applies the server-sent events back onto the transcript as
// they arrive.
package chat

import "encoding/json"

type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// State is the session lifecycle. Exactly one request can be in flight, and
// a cancelled request stays in StateCancelling until its stream has actually
// wound down.
type State int

const (
	StateIdle State = iota
	StateStreaming
	StateCancelling
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateStreaming:
		return "streaming"
	case StateCancelling:
		return "cancelling"
	default:
		return "unknown"
	}
}

// Message is one transcript entry. While a model reply is streaming in,
// IsStreaming is true and Content grows with each delta.
type Message struct {
	ID          string
	Role        Role
	Content     string
	IsStreaming bool
	Grounding   *Grounding
}

// Grounding carries the citation metadata the model attached to a reply.
// Field names follow the upstream wire format so the attachment round-trips
// without loss.
type Grounding struct {
	Chunks           []SourceChunk `json:"groundingChunks,omitempty"`
	Supports         []Support     `json:"groundingSupports,omitempty"`
	WebSearchQueries []string      `json:"webSearchQueries,omitempty"`
}

type SourceChunk struct {
	Web              *Source `json:"web,omitempty"`
	RetrievedContext *Source `json:"retrievedContext,omitempty"`
}

type Source struct {
	URI         string    `json:"uri,omitempty"`
	DocumentURI string    `json:"documentUri,omitempty"`
	Title       string    `json:"title,omitempty"`
	Text        string    `json:"text,omitempty"`
	PageSpan    *PageSpan `json:"pageSpan,omitempty"`
}

type PageSpan struct {
	FirstPage int `json:"firstPage,omitempty"`
	LastPage  int `json:"lastPage,omitempty"`
}

// Support ties a span of the reply text to the chunks that ground it.
type Support struct {
	Segment      *Segment `json:"segment,omitempty"`
	ChunkIndices []int    `json:"groundingChunkIndices,omitempty"`
}

type Segment struct {
	StartIndex int    `json:"startIndex,omitempty"`
	EndIndex   int    `json:"endIndex,omitempty"`
	Text       string `json:"text,omitempty"`
}

// Title returns the most useful label a chunk carries.
func (c SourceChunk) Title() string {
	if c.RetrievedContext != nil && c.RetrievedContext.Title != "" {
		return c.RetrievedContext.Title
	}
	if c.Web != nil && c.Web.Title != "" {
		return c.Web.Title
	}
	return ""
}

// Wire types for the chat endpoint.

type chatRequest struct {
	Message string `json:"message"`
	Model   string `json:"model"`
	StoreID string `json:"storeId"`
	History []turn `json:"history,omitempty"`
}

type turn struct {
	Role  Role   `json:"role"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type streamEvent struct {
	Type    string          `json:"type"`
	Content json.RawMessage `json:"content,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}
