// Package bridge republishes broadcast events onto an external MQTT broker,
// so off-process dashboards can follow the field without talking to the
// gateway. Best-effort like the hub itself: a broker fault is logged and the
// event is lost.
package bridge

import (
	"context"
	"encoding/json"
	"log"
	"strings"

	"github.com/agrimesh/fieldops/internal/model"
	"github.com/agrimesh/fieldops/internal/model/messages"
	"github.com/agrimesh/fieldops/internal/services/broadcast"
	"github.com/agrimesh/fieldops/pkg/mqtt"
)

const (
	readingTopicTmpl = "telemetry/reading/{probe}"
	commandTopicTmpl = "event/command/{id}"
)

type Bridge struct {
	hub       *broadcast.Hub
	publisher mqtt.IPublisher
}

func New(hub *broadcast.Hub, publisher mqtt.IPublisher) *Bridge {
	return &Bridge{hub: hub, publisher: publisher}
}

// Start forwards hub events until ctx is cancelled.
func (b *Bridge) Start(ctx context.Context) {
	sub := b.hub.Subscribe(256)
	defer sub.Close()
	defer b.publisher.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case evt := <-sub.Events():
			b.forward(evt)
		}
	}
}

func (b *Bridge) forward(evt model.Event) {
	topic := topicFor(evt)
	if topic == "" {
		return
	}
	payload, err := json.Marshal(evt)
	if err != nil {
		log.Printf("bridge: marshal %s: %v", evt.Type, err)
		return
	}
	// command terminals at QoS 1, telemetry at QoS 0
	qos := byte(0)
	if evt.Type == messages.EventCommandCompleted || evt.Type == messages.EventCommandFailed {
		qos = 1
	}
	if err := b.publisher.PublishMessageQos(topic, qos, false, string(payload)); err != nil {
		log.Printf("bridge: publish %s: %v", topic, err)
	}
}

func topicFor(evt model.Event) string {
	switch evt.Type {
	case messages.EventReading:
		if r, ok := evt.Payload.(model.Reading); ok {
			return strings.NewReplacer("{probe}", r.ProbeID).Replace(readingTopicTmpl)
		}
	case messages.EventCommandSubmitted:
		if c, ok := evt.Payload.(model.Command); ok {
			return strings.NewReplacer("{id}", c.CommandID).Replace(commandTopicTmpl)
		}
	case messages.EventCommandCompleted, messages.EventCommandFailed:
		if res, ok := evt.Payload.(model.CommandResultEvent); ok {
			return strings.NewReplacer("{id}", res.CommandID).Replace(commandTopicTmpl)
		}
	}
	return ""
}
