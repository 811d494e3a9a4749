package server

// EncodeRequest carries tokens to map to vocabulary indices. Text is a comma
// separated alternative to Tokens.
type EncodeRequest struct {
	Tokens []string `json:"tokens"`
	Text   string   `json:"text"`
	// Aggregate collapses wait runs before encoding.
	Aggregate bool `json:"aggregate"`
}

type EncodeResponse struct {
	Tokens  []string `json:"tokens"`
	Indices []int    `json:"indices"`
}

// DecodeRequest carries predicted vocabulary indices.
type DecodeRequest struct {
	Indices []int `json:"indices" binding:"required"`
}

type DecodeResponse struct {
	Tokens      []string `json:"tokens"`
	Text        string   `json:"text"`
	Instruments []string `json:"instruments"`
	Steps       int      `json:"steps"`
}

type VocabResponse struct {
	Size     int      `json:"size"`
	Checksum string   `json:"checksum"`
	Tokens   []string `json:"tokens"`
}

// MessageResponse represents a generic message payload used for success responses.
type MessageResponse struct {
	Message string `json:"message"`
	JobID   string `json:"jobId,omitempty"`
}

// ErrorResponse represents a generic error payload used for error responses.
type ErrorResponse struct {
	Error string `json:"error"`
}
