package openaicompat

import "github.com/scenesmith/scenesmith/pkg/provider"

// TranslateToChat converts a provider.Request to the Chat Completions
// wire format.
func TranslateToChat(req *provider.Request) ChatCompletionRequest {
	chatReq := ChatCompletionRequest{
		Model:  req.Model,
		Stream: true,
	}

	for _, m := range req.Messages {
		msg := ChatMessage{
			Role:       m.Role,
			ToolCallID: m.ToolCallID,
		}
		// The content field must be present (possibly null) for assistant
		// messages carrying tool calls, and a string otherwise.
		if m.Content != "" || len(m.ToolCalls) == 0 {
			content := m.Content
			msg.Content = &content
		}
		for _, tc := range m.ToolCalls {
			msg.ToolCalls = append(msg.ToolCalls, ChatToolCall{
				ID:   tc.ID,
				Type: "function",
				Function: ChatFunctionCall{
					Name:      tc.Name,
					Arguments: tc.Arguments,
				},
			})
		}
		chatReq.Messages = append(chatReq.Messages, msg)
	}

	for _, tool := range req.Tools {
		chatReq.Tools = append(chatReq.Tools, ChatTool{
			Type: "function",
			Function: ChatFunctionDef{
				Name:        tool.Name,
				Description: tool.Description,
				Parameters:  tool.Parameters,
			},
		})
	}

	return chatReq
}
