package services

import (
	"scoreboard/internal/providers"
	"time"

	"github.com/jonboulle/clockwork"
)

const (
	EventState  = "state"
	EventBuzzer = "buzzer"
)

// PublisherInterface fans board events out to connected displays.
type PublisherInterface interface {
	Publish(event string, payload any)
}

// AlerterInterface is fired once when a running clock reaches zero with sound on.
type AlerterInterface interface {
	Alert()
}

type BuzzerEvent struct {
	Sounds []string  `json:"sounds"`
	At     time.Time `json:"at"`
}

// BuzzerSounds lists the clip formats displays try in order.
var BuzzerSounds = []string{"/buzzer.mp3", "/buzzer.ogg", "/buzzer.wav"}

type BuzzerAlerter struct {
	publisher PublisherInterface
	logger    providers.Logger
	clock     clockwork.Clock
}

func (b *BuzzerAlerter) Alert() {
	b.logger.Infof(providers.TypeGame, "Period clock expired, sounding buzzer")
	b.publisher.Publish(EventBuzzer, BuzzerEvent{Sounds: BuzzerSounds, At: b.clock.Now()})
}

func NewBuzzerAlerter(publisher PublisherInterface, logger providers.Logger, clock clockwork.Clock) AlerterInterface {
	return &BuzzerAlerter{
		publisher: publisher,
		logger:    logger,
		clock:     clock,
	}
}
