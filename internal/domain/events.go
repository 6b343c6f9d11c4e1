package domain

// Topic names a notification channel on the bus
type Topic string

const (
	TopicFavorites Topic = "favorites-changed"
	TopicQueue     Topic = "queue-changed"
)

// Command describes what happened to the subject of a change
type Command string

const (
	CommandAdded   Command = "added"
	CommandRemoved Command = "removed"
)

// Change is the payload of every bus notification.
// SubjectID is the canonical podcast id for TopicFavorites and the canonical
// episode id for TopicQueue.
type Change struct {
	Topic     Topic
	Command   Command
	SubjectID string
}
