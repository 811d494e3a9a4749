package server

import (
	"bytes"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jaki95/eventseq/internal/event"
	"github.com/jaki95/eventseq/internal/reconstruct"
	"github.com/jaki95/eventseq/internal/vocab"
)

// healthCheck handles health check requests
func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now(),
		"service":   "eventseq",
		"vocab":     s.vocab != nil,
	})
}

// getVocab godoc
// @Summary Describe the loaded vocabulary
// @Tags Vocabulary
// @Produce json
// @Success 200 {object} VocabResponse
// @Failure 503 {object} ErrorResponse
// @Router /api/vocab [get]
func (s *Server) getVocab(c *gin.Context) {
	if s.vocab == nil {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: ErrNoVocabulary.Error()})
		return
	}
	c.JSON(http.StatusOK, VocabResponse{
		Size:     s.vocab.Len(),
		Checksum: s.vocab.Checksum(),
		Tokens:   s.vocab.IndexToToken(),
	})
}

// encode godoc
// @Summary Map event tokens to vocabulary indices
// @Tags Vocabulary
// @Accept json
// @Produce json
// @Param request body EncodeRequest true "Tokens"
// @Success 200 {object} EncodeResponse
// @Failure 400 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse "Unknown token"
// @Router /api/encode [post]
func (s *Server) encode(c *gin.Context) {
	if s.vocab == nil {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: ErrNoVocabulary.Error()})
		return
	}

	var req EncodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request: " + err.Error()})
		return
	}

	tokens := req.Tokens
	if len(tokens) == 0 && req.Text != "" {
		for _, tok := range strings.Split(req.Text, ",") {
			if tok = strings.TrimSpace(tok); tok != "" {
				tokens = append(tokens, tok)
			}
		}
	}
	if len(tokens) == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: ErrEmptyInput.Error()})
		return
	}
	if req.Aggregate {
		tokens = event.Aggregator{MaxWait: s.cfg.Vocab.MaxWait}.Aggregate(tokens)
	}

	indices, err := s.vocab.Encode(tokens)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, vocab.ErrUnknownToken) {
			status = http.StatusUnprocessableEntity
		}
		c.JSON(status, ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, EncodeResponse{Tokens: tokens, Indices: indices})
}

// decode godoc
// @Summary Reconstruct an event stream from predicted indices
// @Description Returns tokens as JSON, or a MIDI file with ?format=midi.
// @Tags Vocabulary
// @Accept json
// @Produce json,audio/midi
// @Param request body DecodeRequest true "Indices"
// @Param format query string false "json or midi" default(json)
// @Success 200 {object} DecodeResponse
// @Failure 400 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse "Unknown index"
// @Router /api/decode [post]
func (s *Server) decode(c *gin.Context) {
	if s.vocab == nil {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: ErrNoVocabulary.Error()})
		return
	}

	var req DecodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request: " + err.Error()})
		return
	}

	res, err := reconstruct.Reconstruct(req.Indices, s.vocab)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, vocab.ErrUnknownIndex) {
			status = http.StatusUnprocessableEntity
		}
		c.JSON(status, ErrorResponse{Error: err.Error()})
		return
	}

	if c.Query("format") == "midi" {
		var buf bytes.Buffer
		opts := reconstruct.MIDIOptions{StepsPerQuarter: s.cfg.Preprocess.StepsPerQuarter}
		if err := res.WriteMIDI(&buf, opts); err != nil {
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
			return
		}
		c.Header("Content-Disposition", `attachment; filename="decoded.mid"`)
		c.Data(http.StatusOK, "audio/midi", buf.Bytes())
		return
	}

	c.JSON(http.StatusOK, DecodeResponse{
		Tokens:      res.Tokens,
		Text:        res.Text(),
		Instruments: res.Instruments(),
		Steps:       res.Steps,
	})
}
