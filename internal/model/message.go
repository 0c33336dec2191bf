package model

// Chat roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one chat message exchanged with the planner.
type Message struct {
	Role    string `yaml:"role"    json:"role"`
	Content string `yaml:"content" json:"content"`
}
