package relay

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/germanamz/taskify/pkg/chats/message"
	"github.com/germanamz/taskify/pkg/chats/role"
	"github.com/germanamz/taskify/pkg/tools/toolbox"
)

// ChatToolName is the MCP name of the chat tool.
const ChatToolName = "chat"

var chatToolSchema = json.RawMessage(`{
  "type": "object",
  "properties": {
    "messages": {
      "type": "array",
      "description": "Conversation turns, oldest first.",
      "items": {
        "type": "object",
        "properties": {
          "role": {"type": "string", "enum": ["system", "user", "assistant"]},
          "content": {"type": "string"}
        },
        "required": ["role", "content"]
      }
    },
    "prompt": {
      "type": "string",
      "description": "Shorthand for a single user turn appended after messages."
    }
  }
}`)

type chatToolInput struct {
	Messages []message.Message `json:"messages"`
	Prompt   string            `json:"prompt"`
}

// ChatTool exposes r as a tool. Its result is the generated text followed by
// the answering model on a final line.
func ChatTool(r Relayer, log *slog.Logger) toolbox.Tool {
	if log == nil {
		log = slog.Default()
	}

	return toolbox.Tool{
		Name:        ChatToolName,
		Description: "Answer a conversation with the first available Taskify.ai model.",
		InputSchema: chatToolSchema,
		Handler: func(ctx context.Context, input json.RawMessage) (string, error) {
			var in chatToolInput
			if err := json.Unmarshal(input, &in); err != nil {
				return "", fmt.Errorf("chat: invalid input: %w", err)
			}

			turns := in.Messages
			if p := strings.TrimSpace(in.Prompt); p != "" {
				turns = append(turns, message.New(role.User, p))
			}

			resp, err := r.Chat(ctx, turns, log.With("surface", "mcp"))
			if err != nil {
				return "", err
			}

			return resp.Text + "\n\n(model: " + resp.ModelUsed + ")", nil
		},
	}
}

// ModelsToolName is the MCP name of the candidate listing tool.
const ModelsToolName = "models"

// ModelsTool lists the candidates of r in fallback order as JSON.
func ModelsTool(r Relayer) toolbox.Tool {
	return toolbox.Tool{
		Name:        ModelsToolName,
		Description: "List the Taskify.ai models in the order they are tried.",
		Handler: func(context.Context, json.RawMessage) (string, error) {
			data, err := json.MarshalIndent(ModelInfos(r.Candidates()), "", "  ")
			if err != nil {
				return "", fmt.Errorf("models: %w", err)
			}
			return string(data), nil
		},
	}
}

// Tools returns a toolbox holding every relay tool.
func Tools(r Relayer, log *slog.Logger) *toolbox.ToolBox {
	tb := toolbox.New()
	tb.Register(ChatTool(r, log), ModelsTool(r))
	return tb
}
