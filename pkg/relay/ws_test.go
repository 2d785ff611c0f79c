package relay

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/germanamz/taskify/pkg/chats/message"
	"github.com/germanamz/taskify/pkg/chats/role"
	"github.com/germanamz/taskify/pkg/fallback"
)

func TestChatWS_Exchange(t *testing.T) {
	f := &fakeRelay{resp: fallback.Response{Text: "pong", ModelUsed: "Qwen 1.8B Chat"}}
	srv := httptest.NewServer(New(f, Options{CORSOrigins: []string{"*"}}).Handler())
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	stream, err := NewClient(srv.URL, nil).DialChat(ctx)
	require.NoError(t, err)
	defer stream.Close() //nolint:errcheck // test cleanup

	for range 2 {
		env, err := stream.Send(ctx, []message.Message{message.New(role.User, "ping")})
		require.NoError(t, err)
		assert.Equal(t, "pong", env.Text())
		assert.Equal(t, "Qwen 1.8B Chat", env.Model)
	}

	assert.Len(t, f.Calls(), 2)
}

func TestChatWS_ErrorFrames(t *testing.T) {
	f := &fakeRelay{err: exhausted()}
	srv := httptest.NewServer(New(f, Options{CORSOrigins: []string{"*"}}).Handler())
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	stream, err := NewClient(srv.URL, nil).DialChat(ctx)
	require.NoError(t, err)
	defer stream.Close() //nolint:errcheck // test cleanup

	_, err = stream.Send(ctx, nil)
	var re *ResponseError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, ErrTitleRelay, re.Body.Error)

	// A bad frame yields an error frame and keeps the session open.
	require.NoError(t, stream.conn.Write(ctx, websocket.MessageText, []byte(`{"messages":[{"role":"robot"}]}`)))
	_, data, err := stream.conn.Read(ctx)
	require.NoError(t, err)
	assert.Contains(t, string(data), ErrTitleBadRequest)

	f.set(fallback.Response{Text: "back", ModelUsed: "A"}, nil)
	env, err := stream.Send(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, "back", env.Text())
}

func TestChatWS_RejectsForeignOrigin(t *testing.T) {
	srv := httptest.NewServer(New(&fakeRelay{}, Options{CORSOrigins: []string{"allowed.example"}}).Handler())
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http")+"/api/chat/ws", &websocket.DialOptions{
		HTTPHeader: map[string][]string{"Origin": {"http://evil.example"}},
	})
	assert.Error(t, err)
}
