package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mattn/go-runewidth"

	"github.com/germanamz/taskify/pkg/chats/chat"
	"github.com/germanamz/taskify/pkg/chats/message"
	"github.com/germanamz/taskify/pkg/chats/role"
	"github.com/germanamz/taskify/pkg/prompt"
	"github.com/germanamz/taskify/pkg/providers/model"
)

// previewWidth bounds the logged preview of the newest user message.
const previewWidth = 100

func (s *Server) handleStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": StatusMessage})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// ModelInfo describes one candidate for GET /api/models.
type ModelInfo struct {
	ID         string           `json:"id"`
	Name       string           `json:"name"`
	Backend    string           `json:"backend"`
	Template   prompt.Kind      `json:"template"`
	Window     int              `json:"window"`
	Parameters model.Parameters `json:"parameters"`
}

// ModelInfos describes candidates in priority order.
func ModelInfos(cs []model.Candidate) []ModelInfo {
	out := make([]ModelInfo, 0, len(cs))
	for _, m := range cs {
		out = append(out, ModelInfo{
			ID:         m.ID,
			Name:       m.DisplayName,
			Backend:    m.BackendKind(),
			Template:   m.Template.Kind,
			Window:     m.Template.Window,
			Parameters: m.Parameters,
		})
	}
	return out
}

func (s *Server) handleModels(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"models": ModelInfos(s.relay.Candidates())})
}

func (s *Server) handleChat(c *gin.Context) {
	log := requestLogger(c, s.log)

	data, err := io.ReadAll(c.Request.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, ErrorBody{Error: ErrTitleTooLarge, Message: err.Error()})
			return
		}
		c.JSON(http.StatusBadRequest, ErrorBody{Error: ErrTitleBadRequest, Message: err.Error()})
		return
	}

	req, err := decodeChatRequest(data)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorBody{Error: ErrTitleBadRequest, Message: err.Error()})
		return
	}

	status, body := s.relayChat(c.Request.Context(), log, req)
	c.JSON(status, body)
}

// decodeChatRequest parses a request body. An empty body is an empty
// conversation.
func decodeChatRequest(data []byte) (ChatRequest, error) {
	var req ChatRequest
	if len(bytes.TrimSpace(data)) == 0 {
		return req, nil
	}
	if err := json.Unmarshal(data, &req); err != nil {
		return ChatRequest{}, err
	}
	return req, nil
}

// relayChat runs one request and returns the status and body to send.
func (s *Server) relayChat(ctx context.Context, log *slog.Logger, req ChatRequest) (int, any) {
	log.InfoContext(ctx, "message received", "preview", preview(req.Messages), "turns", len(req.Messages))

	resp, err := s.relay.Chat(ctx, req.Messages, log)
	if err != nil {
		body := ErrorBody{Error: ErrTitleRelay, Message: err.Error()}
		if s.opts.ExposeAttempts {
			body.Attempts = attemptsOf(err)
		}
		return http.StatusInternalServerError, body
	}

	return http.StatusOK, NewEnvelope(resp)
}

// preview returns the newest user message truncated to previewWidth cells.
func preview(turns []message.Message) string {
	m, ok := chat.LastOf(turns, role.User)
	if !ok {
		return ""
	}
	return runewidth.Truncate(m.Content, previewWidth, "...")
}
