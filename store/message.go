package store

// Role identifies the author of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// IsValid reports whether r is one of the persistable roles.
func (r Role) IsValid() bool {
	return r == RoleUser || r == RoleAssistant
}

// Message is one turn within a thread. A message is owned by exactly one
// thread; deleting the thread deletes its messages in the same transaction.
type Message struct {
	ID        string
	ThreadID  string
	Role      Role
	Content   string
	CreatedTs int64 // unix milliseconds
}

type FindMessage struct {
	ThreadID *string
}
