// Command paychannel is a thin CLI demo over the settlement core. See
// cmd/cli for the command tree; package core for the actual protocol.
package main

import (
	"os"

	"github.com/spf13/cobra"

	"paychannel/cmd/cli"
)

func main() {
	root := &cobra.Command{Use: "paychannel", Short: "Bilateral payment-channel settlement core"}
	root.AddCommand(cli.ChannelRoute)
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
