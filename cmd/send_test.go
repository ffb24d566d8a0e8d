package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendPayload(t *testing.T) {
	cases := []struct {
		args    []string
		topic   string
		payload string
	}{
		{[]string{"backwards"}, "/car/direction/backwards", ""},
		{[]string{"backwards", "9"}, "/car/direction/backwards", ""},
		{[]string{"left", "50"}, "/car/direction/left", "50"},
		{[]string{"turn", "-20"}, "/car/direction/turn", "-20"},
		{[]string{"throttle", "+300"}, "/car/throttle", "300"},
		{[]string{"reset", "0"}, "/car/reset", "0"},
	}
	for _, c := range cases {
		topic, payload, err := sendPayload("/car", c.args)
		require.NoError(t, err, c.args)
		assert.Equal(t, c.topic, topic)
		assert.Equal(t, c.payload, string(payload))
	}
}

func TestSendPayload_Errors(t *testing.T) {
	for _, args := range [][]string{{"horn"}, {"left"}, {"throttle", "fast"}} {
		_, _, err := sendPayload("/car", args)
		assert.Error(t, err, args)
	}
}

func TestRootCommandTree(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["send"])
	assert.True(t, names["peers"])
	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("config"))
}
