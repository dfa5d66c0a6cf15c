package llm

// ContentType distinguishes reasoning output from the visible answer.
type ContentType string

const (
	ContentTypeMessage  ContentType = "message"  // ContentTypeMessage is user-visible answer text.
	ContentTypeThinking ContentType = "thinking" // ContentTypeThinking is model reasoning that is not shown.
)

// StreamChunk is one increment of a streamed completion.
type StreamChunk struct {
	Content  string
	Role     string
	Type     ContentType
	Finished bool
	Error    error
}

// IsError reports whether the chunk carries a stream error.
func (c *StreamChunk) IsError() bool {
	return c.Error != nil
}
