// Package publish sends field strength samples to an MQTT broker.
package publish

import (
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/mikesmitty/si7210"
	"github.com/mikesmitty/si7210/internal/sampler"
)

// Payload is the JSON schema published for every sample.
// Time is RFC3339 in UTC.
type Payload struct {
	MicroTesla int    `json:"ut"`
	Range      string `json:"range"`
	Magnet     string `json:"magnet"`
	Time       string `json:"time"`
}

// Publisher publishes samples on a single topic with QoS 0.
type Publisher struct {
	client mqtt.Client
	topic  string
}

// Connect connects to broker and returns a Publisher for topic.
func Connect(broker, clientID, topic string) (*Publisher, error) {
	opts := mqtt.NewClientOptions().AddBroker(broker).SetClientID(clientID)
	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("mqtt connect %s: %w", broker, token.Error())
	}
	return New(client, topic), nil
}

// New returns a Publisher using an already connected client.
func New(client mqtt.Client, topic string) *Publisher {
	return &Publisher{client: client, topic: topic}
}

// Publish sends s, taken with the sensor configured as opts.
func (p *Publisher) Publish(s sampler.Sample, opts si7210.Opts) error {
	b, err := json.Marshal(Payload{
		MicroTesla: s.MicroTesla,
		Range:      opts.Range.String(),
		Magnet:     opts.Magnet.String(),
		Time:       s.Time.UTC().Format(time.RFC3339),
	})
	if err != nil {
		return err
	}
	t := p.client.Publish(p.topic, 0, false, b)
	t.Wait()
	if err := t.Error(); err != nil {
		return fmt.Errorf("mqtt publish %s: %w", p.topic, err)
	}
	return nil
}

// Close disconnects from the broker, waiting up to 250ms for pending work.
func (p *Publisher) Close() {
	p.client.Disconnect(250)
}
