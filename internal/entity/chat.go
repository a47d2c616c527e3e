package entity

// Conversation roles as the upstream model expects them.
const (
	RoleUser  = "user"
	RoleModel = "model"
)

// SupportedModels is the allow-list of model identifiers the chat route accepts.
var SupportedModels = []string{
	"gemini-2.5-flash",
	"gemini-3-flash-preview",
}

func IsSupportedModel(model string) bool {
	for _, m := range SupportedModels {
		if m == model {
			return true
		}
	}
	return false
}

// ChatRequest is the body of POST /api/chat.
type ChatRequest struct {
	Message string     `json:"message"`
	Model   string     `json:"model"`
	StoreID string     `json:"storeId"`
	History []ChatTurn `json:"history,omitempty"`
}

// ChatTurn is one role-tagged entry of the conversation history. The upstream
// model is stateless between calls, so the full prior transcript is resent as
// history on every request.
type ChatTurn struct {
	Role  string     `json:"role"`
	Parts []TurnPart `json:"parts"`
}

type TurnPart struct {
	Text string `json:"text"`
}

// Stream event types emitted on the chat SSE stream. Any number of text events
// may precede at most one grounding event; exactly one done or error event
// terminates the stream.
const (
	EventText      = "text"
	EventGrounding = "grounding"
	EventError     = "error"
	EventDone      = "done"
)

// StreamEvent is one frame of the chat SSE stream, serialized as
// "data: <json>\n\n".
type StreamEvent struct {
	Type    string `json:"type"`
	Content any    `json:"content,omitempty"`
}

// StreamChunk is one increment of the upstream model stream. Either field may
// be empty; grounding metadata typically arrives once near the end.
type StreamChunk struct {
	Text              string
	GroundingMetadata *GroundingMetadata
}

// GroundingMetadata carries the citation payload returned alongside a model
// answer. Field names follow the upstream wire format.
type GroundingMetadata struct {
	GroundingChunks   []GroundingChunk   `json:"groundingChunks,omitempty"`
	GroundingSupports []GroundingSupport `json:"groundingSupports,omitempty"`
	WebSearchQueries  []string           `json:"webSearchQueries,omitempty"`
}

// GroundingChunk is a single citation source, either a web page or a chunk
// retrieved from a file-search store.
type GroundingChunk struct {
	Web              *WebSource        `json:"web,omitempty"`
	RetrievedContext *RetrievedContext `json:"retrievedContext,omitempty"`
}

type WebSource struct {
	URI   string `json:"uri,omitempty"`
	Title string `json:"title,omitempty"`
}

type RetrievedContext struct {
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

type GroundingSupport struct {
	Segment               *Segment `json:"segment,omitempty"`
	GroundingChunkIndices []int    `json:"groundingChunkIndices,omitempty"`
}

type Segment struct {
	StartIndex int    `json:"startIndex,omitempty"`
	EndIndex   int    `json:"endIndex,omitempty"`
	Text       string `json:"text,omitempty"`
}
