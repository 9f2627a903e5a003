package llm

import (
	"encoding/json"

	"github.com/projectmgmt/backend/internal/application/assistant"
)

type wireRequest struct {
	Model      string        `json:"model"`
	Messages   []wireMessage `json:"messages"`
	Tools      []wireTool    `json:"tools,omitempty"`
	ToolChoice string        `json:"tool_choice,omitempty"`
	MaxTokens  int           `json:"max_tokens,omitempty"`
}

type wireMessage struct {
	Role       string         `json:"role"`
	Content    *string        `json:"content"`
	ToolCalls  []wireToolCall `json:"tool_calls,omitempty"`
	ToolCallID string         `json:"tool_call_id,omitempty"`
	Name       string         `json:"name,omitempty"`
}

type wireToolCall struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Function struct {
		Name      string `json:"name"`
		Arguments string `json:"arguments"`
	} `json:"function"`
}

type wireTool struct {
	Type     string       `json:"type"`
	Function wireFunction `json:"function"`
}

type wireFunction struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  json.RawMessage `json:"parameters"`
}

type wireResponse struct {
	Choices []struct {
		Message wireMessage `json:"message"`
	} `json:"choices"`
}

func toWireRequest(req assistant.CompletionRequest) wireRequest {
	w := wireRequest{
		Model:     req.Model,
		Messages:  make([]wireMessage, len(req.Messages)),
		MaxTokens: req.MaxTokens,
	}
	for i, m := range req.Messages {
		w.Messages[i] = fromMessage(m)
	}
	if len(req.Tools) > 0 {
		w.Tools = make([]wireTool, len(req.Tools))
		for i, t := range req.Tools {
			w.Tools[i] = wireTool{
				Type:     "function",
				Function: wireFunction{Name: t.Name, Description: t.Description, Parameters: t.Parameters},
			}
		}
		w.ToolChoice = "auto"
	}
	return w
}

func fromMessage(m assistant.Message) wireMessage {
	w := wireMessage{
		Role:       string(m.Role),
		ToolCallID: m.ToolCallID,
		Name:       m.Name,
	}
	// assistant turns that only carry tool calls send null content
	if m.Content != "" || len(m.ToolCalls) == 0 {
		content := m.Content
		w.Content = &content
	}
	for _, tc := range m.ToolCalls {
		var wc wireToolCall
		wc.ID = tc.ID
		wc.Type = tc.Type
		if wc.Type == "" {
			wc.Type = "function"
		}
		wc.Function.Name = tc.Function.Name
		wc.Function.Arguments = tc.Function.Arguments
		w.ToolCalls = append(w.ToolCalls, wc)
	}
	return w
}

func (w wireMessage) toMessage() assistant.Message {
	m := assistant.Message{
		Role:       assistant.Role(w.Role),
		ToolCallID: w.ToolCallID,
		Name:       w.Name,
	}
	if w.Content != nil {
		m.Content = *w.Content
	}
	for _, tc := range w.ToolCalls {
		m.ToolCalls = append(m.ToolCalls, assistant.ToolCall{
			ID:   tc.ID,
			Type: tc.Type,
			Function: assistant.FunctionCall{
				Name:      tc.Function.Name,
				Arguments: tc.Function.Arguments,
			},
		})
	}
	return m
}
