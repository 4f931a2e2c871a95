package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newResizeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resize <threads>",
		Short: "Resize the server's worker pool",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			threads, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid thread count: %w", err)
			}

			c := newClient()
			ctx, cancel := context.WithTimeout(cmd.Context(), viper.GetDuration("timeout"))
			defer cancel()

			if err := c.ResizePool(ctx, threads); err != nil {
				return fmt.Errorf("resize pool: %w", err)
			}

			fmt.Printf("Worker pool resized to %d\n", threads)
			return nil
		},
	}
}
