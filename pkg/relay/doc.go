// Package relay serves the fallback relay over HTTP and WebSocket.
//
// POST /api/chat takes {"messages": [...]} and answers with the canonical
// envelope {"choices": [{"message": {"role": "assistant", "content": ...}}],
// "model": ...}. When every candidate fails the reply is a 500 with
// {"error": ..., "message": ...}. The same exchange is available as whole
// JSON frames on GET /api/chat/ws. Client is a Go caller for both.
package relay
