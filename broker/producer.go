package broker

import (
	"encoding/json"
	"log"

	"github.com/nats-io/nats.go"
)

var conn *nats.Conn

// InitProducer connects to the NATS server. The caller decides whether a
// failed connection is fatal; every publish becomes a no-op until a
// connection exists.
func InitProducer(url string) error {
	nc, err := nats.Connect(url, nats.Name("tasknest-api"))
	if err != nil {
		return err
	}
	conn = nc
	log.Println("NATS producer initialized")
	return nil
}

func PublishMessage(subject string, value []byte) {
	if conn == nil {
		return
	}

	if err := conn.Publish(subject, value); err != nil {
		log.Printf("Failed to publish message to %s: %v", subject, err)
	}
}

// PublishEvent serializes v as JSON and publishes it. Marshal or publish
// failures are logged, never surfaced; event delivery is best-effort.
func PublishEvent(subject string, v interface{}) {
	if conn == nil {
		return
	}

	payload, err := json.Marshal(v)
	if err != nil {
		log.Printf("Failed to serialize event for %s: %v", subject, err)
		return
	}
	PublishMessage(subject, payload)
}

func CloseProducer() {
	if conn != nil {
		if err := conn.Drain(); err != nil {
			log.Printf("Failed to drain NATS connection: %v", err)
		}
		conn = nil
	}
}
