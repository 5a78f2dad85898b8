package gateway

import "encoding/json"

// The gateway aggregates several microservices that do not agree on field
// naming. Every entity therefore keeps the known aliases side by side and
// exposes a resolver that picks the first populated one. Resolution happens
// here, at the transport boundary, so the rest of the client only ever sees
// canonical identities.

// User is a profile record from the users service.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	FullName string `json:"full_name,omitempty"`
	IsActive *bool  `json:"is_active,omitempty"`
}

// TokenResponse is the body of a successful login.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type,omitempty"`
}

// Channel is a chat channel.
type Channel struct {
	ID          string `json:"id,omitempty"`
	MongoID     string `json:"_id,omitempty"`
	ChannelID   string `json:"channel_id,omitempty"`
	OwnerID     string `json:"owner_id,omitempty"`
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
}

// ResolvedID returns the canonical channel identity.
// Precedence: id, _id, channel_id, owner_id.
func (c Channel) ResolvedID() string {
	return firstNonEmpty(c.ID, c.MongoID, c.ChannelID, c.OwnerID)
}

// Thread is a conversation inside a channel.
type Thread struct {
	UUID       string `json:"uuid,omitempty"`
	ThreadID   string `json:"thread_id,omitempty"`
	ID         string `json:"id,omitempty"`
	Title      string `json:"title,omitempty"`
	ThreadName string `json:"thread_name,omitempty"`
	ChannelID  string `json:"channel_id,omitempty"`
	UserID     string `json:"user_id,omitempty"`
}

// ResolvedID returns the canonical thread identity.
// Precedence: uuid, thread_id, id.
func (t Thread) ResolvedID() string {
	return firstNonEmpty(t.UUID, t.ThreadID, t.ID)
}

// ResolvedTitle returns the display title, whichever field carries it.
func (t Thread) ResolvedTitle() string {
	return firstNonEmpty(t.Title, t.ThreadName)
}

// Message is a chat message scoped to a thread.
type Message struct {
	ID          string `json:"id,omitempty"`
	ThreadID    string `json:"thread_id,omitempty"`
	UserID      string `json:"user_id,omitempty"`
	Author      string `json:"author,omitempty"`
	Content     string `json:"content"`
	Type        string `json:"type,omitempty"`
	MessageType string `json:"message_type,omitempty"`
	CreatedAt   string `json:"created_at,omitempty"`
}

// ResolvedType returns the message kind, defaulting to text.
func (m Message) ResolvedType() string {
	return firstNonEmpty(m.Type, m.MessageType, "text")
}

// ResolvedAuthor returns whichever field identifies the sender.
func (m Message) ResolvedAuthor() string {
	return firstNonEmpty(m.UserID, m.Author)
}

// Attachment is a file record from the files service.
type Attachment struct {
	ID               string `json:"id,omitempty"`
	Filename         string `json:"filename,omitempty"`
	OriginalFilename string `json:"original_filename,omitempty"`
	Size             int64  `json:"size,omitempty"`
	ThreadID         string `json:"thread_id,omitempty"`
	MessageID        string `json:"message_id,omitempty"`
}

// ResolvedName returns the display filename.
func (a Attachment) ResolvedName() string {
	return firstNonEmpty(a.Filename, a.OriginalFilename)
}

// PresenceEntry describes one user's liveness as reported by the presence service.
type PresenceEntry struct {
	UserID      string `json:"userId,omitempty"`
	UserIDSnake string `json:"user_id,omitempty"`
	Status      string `json:"status,omitempty"`
	Device      string `json:"device,omitempty"`
}

// ResolvedUserID returns the user identity regardless of casing convention.
func (p PresenceEntry) ResolvedUserID() string {
	return firstNonEmpty(p.UserID, p.UserIDSnake)
}

// PresenceStats summarizes the roster.
type PresenceStats struct {
	Online  int `json:"online"`
	Away    int `json:"away,omitempty"`
	Offline int `json:"offline"`
	Total   int `json:"total,omitempty"`
}

// SearchHit is a loosely typed result row from any search scope.
type SearchHit struct {
	ID       string `json:"id,omitempty"`
	ThreadID string `json:"thread_id,omitempty"`
	Kind     string `json:"type,omitempty"`
	Title    string `json:"title,omitempty"`
	Filename string `json:"filename,omitempty"`
	Content  string `json:"content,omitempty"`
}

// Label returns the best display string for the hit.
func (h SearchHit) Label() string {
	return firstNonEmpty(h.Title, h.Filename, h.Content, h.ID, h.ThreadID)
}

// ModerationResult is the verdict of a pre-send content check.
type ModerationResult struct {
	IsApproved *bool  `json:"is_approved,omitempty"`
	Message    string `json:"message,omitempty"`
}

// Approved reports whether the content may be sent. A missing verdict
// counts as approved; only an explicit false blocks the message.
func (m ModerationResult) Approved() bool {
	return m.IsApproved == nil || *m.IsApproved
}

// BotReply is the answer of a chat assistant. Bots disagree on the field
// carrying the reply text.
type BotReply struct {
	Message string `json:"message,omitempty"`
	Reply   string `json:"reply,omitempty"`
}

// Text returns the reply body whichever field carries it.
func (b BotReply) Text() string {
	return firstNonEmpty(b.Message, b.Reply)
}

// decodeList coerces an upstream collection payload into a slice. Services
// return either a bare JSON array or an object wrapping it under "items" or
// "data"; any other shape decodes to an empty slice rather than an error.
func decodeList[T any](data []byte) []T {
	var direct []T
	if err := json.Unmarshal(data, &direct); err == nil {
		if direct == nil {
			direct = []T{}
		}
		return direct
	}
	var wrapped struct {
		Items json.RawMessage `json:"items"`
		Data  json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return []T{}
	}
	for _, raw := range [][]byte{wrapped.Items, wrapped.Data} {
		if len(raw) == 0 {
			continue
		}
		var inner []T
		if err := json.Unmarshal(raw, &inner); err == nil && inner != nil {
			return inner
		}
	}
	return []T{}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
