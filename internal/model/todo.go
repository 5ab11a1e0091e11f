package model

// TodoSchemaVersion is the version written on every stored todo.
// Version 1 is the name/description/due layout; bump it with a reindex when fields change.
const TodoSchemaVersion = 1

// Field length bounds, counted in characters.
const (
	TodoNameMaxLength        = 50
	TodoDescriptionMaxLength = 200
	TodoDueMaxLength         = 100
)

// A Todo represents one item of a personal to-do list.
//
// GuildID is the partition key, an empty GuildID means the item was created outside of any guild.
// Due is free text and is never parsed as a date.
type Todo struct {
	Base `msgpack:",inline" storm:"inline"`

	SchemaVersion int    `json:"schema_version"        msgpack:"schema_version"`
	UserID        string `json:"user_id"               msgpack:"user_id"              storm:"index"`
	GuildID       string `json:"guild_id,omitempty"    msgpack:"guild_id,omitempty"   storm:"index"`
	Name          string `json:"name"                  msgpack:"name"`
	Description   string `json:"description,omitempty" msgpack:"description,omitempty"`
	Due           string `json:"due,omitempty"         msgpack:"due,omitempty"`
	Completed     bool   `json:"completed"             msgpack:"completed"`
}

// NewTodo returns a new todo owned by the given user.
func NewTodo(userID, guildID string) *Todo {
	return &Todo{
		SchemaVersion: TodoSchemaVersion,
		UserID:        userID,
		GuildID:       guildID,
	}
}

// OwnedBy returns true if the todo belongs to the given user and, when guildID is not empty, to the given partition.
func (t *Todo) OwnedBy(userID, guildID string) bool {
	if t.UserID != userID {
		return false
	}
	return guildID == "" || t.GuildID == guildID
}
