package domain

import "time"

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleFunction  = "function"
)

// FunctionCall is a model's request to invoke one catalog function.
// Arguments holds the raw JSON text exactly as the model produced it.
type FunctionCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// Message is one transcript turn. Content is empty when an assistant turn
// only carries a function-call request. Name is set on function-result turns.
type Message struct {
	Role         string        `json:"role"`
	Content      string        `json:"content,omitempty"`
	Name         string        `json:"name,omitempty"`
	FunctionCall *FunctionCall `json:"function_call,omitempty"`
	Timestamp    time.Time     `json:"timestamp"`
}
