package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newPauseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pause <task-id>",
		Short: "Toggle a task's paused flag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			taskID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid task ID: %w", err)
			}

			c := newClient()
			ctx, cancel := context.WithTimeout(cmd.Context(), viper.GetDuration("timeout"))
			defer cancel()

			paused, err := c.TogglePause(ctx, taskID)
			if err != nil {
				return fmt.Errorf("toggle pause: %w", err)
			}

			state := "resumed"
			if paused {
				state = "paused"
			}
			fmt.Printf("Task %d %s\n", taskID, state)
			return nil
		},
	}
}
