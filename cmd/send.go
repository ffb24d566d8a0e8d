package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kilianp07/autopi/core/command"
	"github.com/kilianp07/autopi/infra/mqtt"
)

var sendCmd = &cobra.Command{
	Use:   "send <command> [value]",
	Short: "Publish a command to the car",
	Long: "Publish a command on the configured broker. Commands: " +
		strings.Join(command.Names(), ", ") + ". All but backwards take an integer value.",
	Args: cobra.RangeArgs(1, 2),
	RunE: runSend,
}

func init() {
	rootCmd.AddCommand(sendCmd)
}

// sendPayload validates args against the topic table and returns the topic
// and payload to publish.
func sendPayload(prefix string, args []string) (string, []byte, error) {
	name := args[0]
	topic := command.Topic(prefix, name)
	if topic == "" {
		return "", nil, fmt.Errorf("unknown command %q, expected one of %s", name, strings.Join(command.Names(), ", "))
	}
	if !command.Numeric(name) {
		return topic, nil, nil
	}
	if len(args) < 2 {
		return "", nil, fmt.Errorf("%s needs an integer value", name)
	}
	v, err := strconv.Atoi(args[1])
	if err != nil {
		return "", nil, fmt.Errorf("%s value %q: %w", name, args[1], err)
	}
	return topic, []byte(strconv.Itoa(v)), nil
}

func runSend(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	topic, payload, err := sendPayload(cfg.MQTT.TopicPrefix, args)
	if err != nil {
		return err
	}
	pubCfg := cfg.MQTT
	pubCfg.ClientID = mqtt.UniqueClientID("autopi-send")
	pubCfg.LWTTopic = ""
	client, err := mqtt.NewPahoClient(pubCfg, nil, nil)
	if err != nil {
		return fmt.Errorf("mqtt client: %w", err)
	}
	defer client.Disconnect()
	if err := client.Publish(topic, payload); err != nil {
		return err
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "published %q to %s\n", payload, topic)
	return err
}
