// Package util holds helpers for tests that need a real MQTT broker or a
// running HTTP endpoint.
package util

import (
	"context"
	"io"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/kilianp07/autopi/core/command"
)

const mosquittoConf = "listener 1883\nallow_anonymous true\npersistence false\n"

// RequireDocker skips the test when no docker binary is available.
func RequireDocker(t testing.TB) {
	t.Helper()
	if _, err := exec.LookPath("docker"); err != nil {
		t.Skipf("docker not installed: %v", err)
	}
}

// Broker is a throwaway Mosquitto container with a connected publisher
// standing in for the remote control.
type Broker struct {
	URL    string
	Prefix string
	pub    paho.Client
}

// StartBroker runs Mosquitto for the duration of the test and connects a
// publisher for command topics under prefix. The test is skipped when the
// container cannot be started.
func StartBroker(ctx context.Context, t testing.TB, prefix string) *Broker {
	t.Helper()
	RequireDocker(t)

	conf := filepath.Join(t.TempDir(), "mosquitto.conf")
	require.NoError(t, os.WriteFile(conf, []byte(mosquittoConf), 0o644))
	cont, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: tc.ContainerRequest{
			Image:        "eclipse-mosquitto:2.0",
			ExposedPorts: []string{"1883/tcp"},
			WaitingFor:   wait.ForListeningPort("1883/tcp"),
			Files: []tc.ContainerFile{
				{HostFilePath: conf, ContainerFilePath: "/mosquitto/config/mosquitto.conf", FileMode: 0o644},
			},
		},
		Started: true,
	})
	if err != nil {
		t.Skipf("mosquitto container: %v", err)
	}
	t.Cleanup(func() { _ = cont.Terminate(context.Background()) })

	endpoint, err := cont.PortEndpoint(ctx, "1883/tcp", "tcp")
	require.NoError(t, err)

	b := &Broker{URL: endpoint, Prefix: prefix}
	opts := paho.NewClientOptions().AddBroker(endpoint).SetClientID("remote-control")
	// The port can accept connections before the broker is serving MQTT.
	require.Eventually(t, func() bool {
		b.pub = paho.NewClient(opts)
		tok := b.pub.Connect()
		return tok.WaitTimeout(time.Second) && tok.Error() == nil
	}, 10*time.Second, 100*time.Millisecond, "mosquitto never accepted a connection")
	t.Cleanup(func() { b.pub.Disconnect(100) })
	return b
}

// PublishCommand sends payload on the topic of the named car command with
// QoS 1 and waits for the broker to acknowledge it.
func (b *Broker) PublishCommand(t testing.TB, name, payload string) {
	t.Helper()
	topic := command.Topic(b.Prefix, name)
	require.NotEmpty(t, topic, "unknown command %q", name)
	tok := b.pub.Publish(topic, 1, false, payload)
	require.True(t, tok.WaitTimeout(5*time.Second), "publish %s timed out", topic)
	require.NoError(t, tok.Error())
}

// RequireBody waits until a GET on url returns a body containing substr.
func RequireBody(t testing.TB, url, substr string) {
	t.Helper()
	require.Eventually(t, func() bool {
		resp, err := http.Get(url) //nolint:gosec,noctx
		if err != nil {
			return false
		}
		defer resp.Body.Close() //nolint:errcheck
		body, err := io.ReadAll(resp.Body)
		return err == nil && strings.Contains(string(body), substr)
	}, 5*time.Second, 50*time.Millisecond, "%s never served %q", url, substr)
}
