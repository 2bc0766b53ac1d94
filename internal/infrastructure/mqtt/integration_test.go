//go:build integration

package mqtt

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/nerrad567/opencrate/internal/infrastructure/config"
	"github.com/nerrad567/opencrate/record"
)

// Integration tests against a running MQTT broker at 127.0.0.1:1883.
//
// Run with:
//   go test -tags=integration -v ./internal/infrastructure/mqtt/...

func integrationConfig(clientID string) config.MQTTConfig {
	return config.MQTTConfig{
		Enabled: true,
		Broker: config.MQTTBrokerConfig{
			Host:     "127.0.0.1",
			Port:     1883,
			ClientID: clientID,
		},
		QoS: 1,
		Reconnect: config.MQTTReconnectConfig{
			InitialDelay: 1,
			MaxDelay:     5,
		},
		TopicPrefix: "opencrate-int",
	}
}

func TestIntegration_ConnectAndClose(t *testing.T) {
	client, err := Connect(integrationConfig("opencrate-int-conn"))
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}

	if err := client.HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck() error = %v", err)
	}
	if err := client.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if client.IsConnected() {
		t.Error("IsConnected() = true after Close()")
	}
}

func TestIntegration_ConnectInvalidBroker(t *testing.T) {
	cfg := integrationConfig("opencrate-int-bad")
	cfg.Broker.Port = 19999

	if _, err := Connect(cfg); err == nil {
		t.Fatal("Connect() expected error for invalid broker")
	}
}

// TestIntegration_ChangeFeedRoundtrip publishes a record event through the
// change feed and receives it on the table wildcard.
func TestIntegration_ChangeFeedRoundtrip(t *testing.T) {
	pubClient, err := Connect(integrationConfig("opencrate-int-pub"))
	if err != nil {
		t.Fatalf("Connect() publisher error = %v", err)
	}
	defer pubClient.Close() //nolint:errcheck // Test cleanup

	subClient, err := Connect(integrationConfig("opencrate-int-sub"))
	if err != nil {
		t.Fatalf("Connect() subscriber error = %v", err)
	}
	defer subClient.Close() //nolint:errcheck // Test cleanup

	received := make(chan Change, 1)
	var once sync.Once
	err = subClient.Subscribe(subClient.Topics().RecordChanges("users"), 1, func(_ string, p []byte) error {
		ch, err := DecodeChange(p)
		if err != nil {
			return err
		}
		once.Do(func() { received <- ch })
		return nil
	})
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}
	if !subClient.HasSubscription(subClient.Topics().RecordChanges("users")) {
		t.Error("HasSubscription() = false after Subscribe()")
	}

	time.Sleep(100 * time.Millisecond)

	feed := NewChangeFeed(pubClient, pubClient.Topics(), pubClient.QoS())
	if err := feed.Observe(context.Background(), record.Event{Table: "users", Op: record.OpUpdate, ID: 42}); err != nil {
		t.Fatalf("Observe() error = %v", err)
	}

	select {
	case ch := <-received:
		if ch.ID != 42 || ch.Op != "update" {
			t.Errorf("received %+v, want update of 42", ch)
		}
	case <-time.After(5 * time.Second):
		t.Error("Timeout waiting for change event")
	}

	if err := subClient.Unsubscribe(subClient.Topics().RecordChanges("users")); err != nil {
		t.Errorf("Unsubscribe() error = %v", err)
	}
}
