package sim

// MessageKind tags a self-message with a small integer event code.
// Each model defines its own kind constants; the kernel never interprets
// them beyond equality.
type MessageKind int

// KindAny is the default kind of a message created with only a name.
const KindAny MessageKind = -1

// Payload carries optional typed data on a message. The two variants used
// by the cancer model replace the dynamic downcasts of payload-bearing
// subclasses in older designs: handlers switch on the concrete type.
type Payload interface {
	isPayload()
}

// UtilityChange adds Delta to the individual's current utility weight.
type UtilityChange struct {
	Delta float64
}

// UtilitySet replaces the individual's current utility weight with Value.
type UtilitySet struct {
	Value float64
}

func (UtilityChange) isPayload() {}
func (UtilitySet) isPayload()    {}

// Message is a timestamped self-message delivered by the kernel to the
// current process. SendingTime is stamped at ScheduleAt; Timestamp is the
// delivery time. SendingTime <= Timestamp always holds.
type Message struct {
	Kind        MessageKind
	Name        string
	SendingTime float64
	Timestamp   float64
	Payload     Payload
}

// NewMessage creates a message of the given kind with no name or payload.
func NewMessage(kind MessageKind) *Message {
	return &Message{Kind: kind, Name: ""}
}

// NewNamedMessage creates a message identified by name only.
func NewNamedMessage(name string) *Message {
	return &Message{Kind: KindAny, Name: name}
}
