// Package telemetry publishes rep and session events to an MQTT broker
// so external dashboards can follow a workout live. Publishing is
// optional and best-effort: a missing broker never blocks the pipeline.
package telemetry

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/ayusman/repcoach/internal/reps"
)

// Event is one published telemetry record.
type Event struct {
	Type      string        `json:"type"` // "rep", "session_start", "session_end", "mode_switch"
	SessionID string        `json:"session_id,omitempty"`
	Mode      string        `json:"mode,omitempty"`
	RepNumber int           `json:"rep_number,omitempty"`
	Quality   *reps.Quality `json:"quality,omitempty"`
	Timestamp int64         `json:"ts"`
}

// Publisher sends events to a single MQTT topic.
type Publisher struct {
	client mqtt.Client
	topic  string
}

// Connect dials the broker and returns a Publisher.
func Connect(broker, clientID, topic string) (*Publisher, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetConnectTimeout(5 * time.Second).
		SetAutoReconnect(true)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("mqtt connect: %w", token.Error())
	}
	log.Printf("telemetry: connected to MQTT broker at %s", broker)

	return &Publisher{client: client, topic: topic}, nil
}

// Publish sends one event. Failures are logged, not returned: telemetry
// must never stall frame processing.
func (p *Publisher) Publish(ev Event) {
	if p == nil {
		return
	}

	if ev.Timestamp == 0 {
		ev.Timestamp = time.Now().UnixMilli()
	}

	payload, err := json.Marshal(ev)
	if err != nil {
		log.Printf("telemetry: marshal event: %v", err)
		return
	}

	if token := p.client.Publish(p.topic, 0, false, payload); token.Wait() && token.Error() != nil {
		log.Printf("telemetry: publish: %v", token.Error())
	}
}

// Close disconnects from the broker.
func (p *Publisher) Close() {
	if p == nil {
		return
	}
	p.client.Disconnect(250)
}
