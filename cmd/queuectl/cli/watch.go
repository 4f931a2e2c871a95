package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Stream status-changed events as they happen",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := newClient()
			events, err := c.StreamEvents(cmd.Context())
			if err != nil {
				return fmt.Errorf("stream events: %w", err)
			}

			noColor := viper.GetBool("no-color")
			for evt := range events {
				label := evt.Type
				if !noColor {
					label = color.New(color.FgCyan).Sprint(evt.Type)
				}
				if evt.Status != nil {
					fmt.Printf("[%s] task=%d rev=%d paused=%v complete=%v %q\n",
						label, evt.Status.TaskID, evt.Status.Rev, evt.Status.Paused, evt.Status.Complete, evt.Status.Message)
				} else {
					fmt.Printf("[%s] queue=%s threads=%d\n", label, evt.Queue, evt.Threads)
				}
			}
			return nil
		},
	}
}
