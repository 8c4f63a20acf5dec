package models

// ChatMessage is a single message inside a chat session document.
type ChatMessage struct {
	ID              string           `json:"id,omitempty"`
	Role            string           `json:"role"`
	Text            string           `json:"text,omitempty"`
	Recommendations []Recommendation `json:"recommendations,omitempty"`
	IsLoading       bool             `json:"isLoading,omitempty"`
	IsError         bool             `json:"isError,omitempty"`
}

// ChatSession is the document stored per conversation.
type ChatSession struct {
	ID        string        `json:"id"`
	Title     string        `json:"title,omitempty"`
	CreatedAt string        `json:"createdAt,omitempty"`
	UpdatedAt string        `json:"updatedAt,omitempty"`
	Messages  []ChatMessage `json:"messages"`
}

// RoleUser marks user-authored messages; only these feed the profile stage.
const RoleUser = "user"

// UserMessages returns the texts of the user-authored messages in order.
func (s *ChatSession) UserMessages() []string {
	var texts []string
	for _, m := range s.Messages {
		if m.Role == RoleUser && m.Text != "" {
			texts = append(texts, m.Text)
		}
	}
	return texts
}
