package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/autopi/infra/keepalive"
)

var peersTimeout time.Duration

var peersCmd = &cobra.Command{
	Use:   "peers",
	Short: "Print the number of stations connected to the car's access point",
	Args:  cobra.NoArgs,
	RunE:  runPeers,
}

func init() {
	peersCmd.Flags().DurationVar(&peersTimeout, "timeout", 2*time.Second, "station dump timeout")
	rootCmd.AddCommand(peersCmd)
}

func runPeers(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(cmd.Context(), peersTimeout)
	defer cancel()
	n, err := keepalive.NewStationCounter(cfg.KeepAlive).ConnectedPeers(ctx)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "%d stations connected to %s\n", n, cfg.KeepAlive.Interface)
	return err
}
