package mqtt

import (
	"fmt"
	"log"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// IPublisher defines the methods to publish a message to a topic.
type IPublisher interface {
	PublishMessage(topic string, payload string) error
	PublishMessageQos(topic string, qos byte, retained bool, payload string) error
	Close()
}

// Publisher publishes messages on a shared MQTT client.
type Publisher struct {
	client mqtt.Client
}

var _ IPublisher = (*Publisher)(nil)

func NewPublisher(client mqtt.Client) *Publisher {
	return &Publisher{client: client}
}

// PublishMessage publishes at QoS 0 (at most once).
func (p *Publisher) PublishMessage(topic string, payload string) error {
	return p.PublishMessageQos(topic, 0, false, payload)
}

func (p *Publisher) PublishMessageQos(topic string, qos byte, retained bool, payload string) error {
	token := p.client.Publish(topic, qos, retained, payload)
	token.Wait()
	if token.Error() != nil {
		return fmt.Errorf("failed to publish message: %v", token.Error())
	}
	return nil
}

// Close gracefully closes the MQTT connection for the publisher.
func (p *Publisher) Close() {
	if p.client.IsConnected() {
		p.client.Disconnect(250)
		log.Println("mqtt: client disconnected")
	}
}
