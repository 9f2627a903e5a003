package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/projectmgmt/backend/internal/application/assistant"
)

// ChatRequest is the body of POST /groq/chat
type ChatRequest struct {
	Message string `json:"message" example:"Which tasks are assigned to Alice?"`
}

// ChatResponse carries the assistant's answer
type ChatResponse struct {
	Response string `json:"response" example:"Alice has two open tasks."`
}

// AssistantHandler serves the chat relay
type AssistantHandler struct {
	BaseHandler
	relay *assistant.Relay
}

// NewAssistantHandler creates a new AssistantHandler
func NewAssistantHandler(relay *assistant.Relay) *AssistantHandler {
	return &AssistantHandler{relay: relay}
}

// Chat godoc
// @ID           chat
// @Summary      Ask the project assistant
// @Description  Relays the message to the hosted model with read-only tools. Failures after validation answer 200 with a fixed apology.
// @Tags         assistant
// @Accept       json
// @Produce      json
// @Param        request body ChatRequest true "Message"
// @Success      200 {object} ChatResponse
// @Failure      400 {object} ErrorResponse
// @Router       /groq/chat [post]
func (h *AssistantHandler) Chat(c *gin.Context) {
	var req ChatRequest
	if !h.BindJSON(c, &req) {
		return
	}

	result, err := h.relay.Chat(c.Request.Context(), req.Message)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, ChatResponse{Response: result.Response})
}
