// Package util provides helpers shared across container based tests.
//
// StartMosquitto launches a disposable Mosquitto broker in a Docker container
// and returns the broker URL and a cleanup function.
//
// Subscribe connects a throwaway client and collects messages for a topic.
package util

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	// MosquittoReadyTimeout bounds the wait for the broker to accept clients.
	MosquittoReadyTimeout = 5 * time.Second

	pollInterval = 100 * time.Millisecond
)

const mosquittoConf = `listener 1883
allow_anonymous true
persistence false
log_dest stdout
log_type error
log_type warning
`

// StartMosquitto starts an eclipse-mosquitto container.
func StartMosquitto(ctx context.Context) (string, func(), error) {
	dir, err := os.MkdirTemp("", "mosq")
	if err != nil {
		return "", nil, err
	}
	path := filepath.Join(dir, "mosquitto.conf")
	if err := os.WriteFile(path, []byte(mosquittoConf), 0o644); err != nil {
		_ = os.RemoveAll(dir)
		return "", nil, err
	}

	req := tc.ContainerRequest{
		Image:        "eclipse-mosquitto:2.0",
		ExposedPorts: []string{"1883/tcp"},
		WaitingFor:   wait.ForListeningPort("1883/tcp"),
		Files: []tc.ContainerFile{{
			HostFilePath:      path,
			ContainerFilePath: "/mosquitto/config/mosquitto.conf",
			FileMode:          0o644,
		}},
	}
	cont, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{ContainerRequest: req, Started: true})
	if err != nil {
		_ = os.RemoveAll(dir)
		return "", nil, err
	}
	cleanup := func() {
		_ = cont.Terminate(context.Background())
		_ = os.RemoveAll(dir)
	}

	host, err := cont.Host(ctx)
	if err != nil {
		cleanup()
		return "", nil, err
	}
	port, err := cont.MappedPort(ctx, "1883")
	if err != nil {
		cleanup()
		return "", nil, err
	}
	broker := fmt.Sprintf("tcp://%s:%s", host, port.Port())

	waitCtx, cancel := context.WithTimeout(ctx, MosquittoReadyTimeout)
	defer cancel()
	if err := waitForMQTTReady(waitCtx, broker); err != nil {
		cleanup()
		return "", nil, err
	}
	return broker, cleanup, nil
}

func waitForMQTTReady(ctx context.Context, broker string) error {
	opts := paho.NewClientOptions().AddBroker(broker).SetClientID("probe-" + uuid.NewString())
	for {
		cli := paho.NewClient(opts)
		token := cli.Connect()
		token.Wait()
		if token.Error() == nil {
			cli.Disconnect(100)
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("broker not ready: %w", token.Error())
		case <-time.After(pollInterval):
		}
	}
}

// Collector accumulates payloads received on a subscription.
type Collector struct {
	mu       sync.Mutex
	payloads [][]byte
	cli      paho.Client
}

// Subscribe connects to broker and records every message on topic.
func Subscribe(broker, topic string) (*Collector, error) {
	c := &Collector{}
	opts := paho.NewClientOptions().AddBroker(broker).SetClientID("sub-" + uuid.NewString())
	cli := paho.NewClient(opts)
	if token := cli.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	handler := func(_ paho.Client, msg paho.Message) {
		c.mu.Lock()
		c.payloads = append(c.payloads, msg.Payload())
		c.mu.Unlock()
	}
	if token := cli.Subscribe(topic, 1, handler); token.Wait() && token.Error() != nil {
		cli.Disconnect(100)
		return nil, token.Error()
	}
	c.cli = cli
	return c, nil
}

// Payloads returns a copy of the received payloads.
func (c *Collector) Payloads() [][]byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([][]byte, len(c.payloads))
	copy(out, c.payloads)
	return out
}

// Close disconnects the subscriber.
func (c *Collector) Close() { c.cli.Disconnect(100) }
