package relay

import (
	"errors"
	"slices"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/gin-gonic/gin"
)

// handleChatWS upgrades to a WebSocket and answers each text frame holding a
// ChatRequest with one frame holding an Envelope or ErrorBody. Frames are
// handled in order.
func (s *Server) handleChatWS(c *gin.Context) {
	log := requestLogger(c, s.log)

	opts := &websocket.AcceptOptions{}
	if slices.Contains(s.opts.CORSOrigins, "*") {
		opts.InsecureSkipVerify = true
	} else {
		opts.OriginPatterns = s.opts.CORSOrigins
	}

	conn, err := websocket.Accept(c.Writer, c.Request, opts)
	if err != nil {
		log.WarnContext(c.Request.Context(), "websocket accept failed", "error", err)
		return
	}
	defer conn.CloseNow() //nolint:errcheck // best-effort close after a normal close

	if s.opts.BodyLimit > 0 {
		conn.SetReadLimit(s.opts.BodyLimit)
	}

	ctx := c.Request.Context()

	for {
		typ, data, err := conn.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) != websocket.StatusNormalClosure && !errors.Is(err, ctx.Err()) {
				log.DebugContext(ctx, "websocket closed", "error", err)
			}
			return
		}

		if typ != websocket.MessageText {
			_ = conn.Close(websocket.StatusUnsupportedData, "text frames only")
			return
		}

		var reply any
		req, err := decodeChatRequest(data)
		if err != nil {
			reply = ErrorBody{Error: ErrTitleBadRequest, Message: err.Error()}
		} else {
			_, reply = s.relayChat(ctx, log, req)
		}

		if err := wsjson.Write(ctx, conn, reply); err != nil {
			log.DebugContext(ctx, "websocket write failed", "error", err)
			return
		}
	}
}
