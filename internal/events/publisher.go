package events

import "github.com/mcoot/navalcombat/internal/model"

// Publisher receives model events as they happen
type Publisher interface {
	Publish(event model.Event)
}

// Nop discards every event
type Nop struct{}

// Publish implements Publisher
func (Nop) Publish(model.Event) {}

var _ Publisher = Nop{}
