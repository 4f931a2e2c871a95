package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mercadolabs/taskqueue/pkg/client"
)

func newAddCmd() *cobra.Command {
	var (
		taskID      int64
		taskType    string
		timeoutMS   int64
		message     string
		repeat      int
		url         string
		payloadJSON string
		maxAttempts int
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Submit a new task",
		Example: `  queuectl add --id 1 --type log --message "hello" --timeout-ms 1000 --repeat 5
  queuectl add --id 2 --type webhook --url https://example.com/hook --timeout-ms 5000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			req := client.CreateTaskRequest{
				TaskID:      taskID,
				Type:        taskType,
				TimeoutMS:   timeoutMS,
				Message:     message,
				Repeat:      repeat,
				URL:         url,
				MaxAttempts: maxAttempts,
			}
			if payloadJSON != "" {
				var payload map[string]any
				if err := json.Unmarshal([]byte(payloadJSON), &payload); err != nil {
					return fmt.Errorf("invalid --payload JSON: %w", err)
				}
				req.Payload = payload
			}

			c := newClient()
			ctx, cancel := context.WithTimeout(cmd.Context(), viper.GetDuration("timeout"))
			defer cancel()

			status, err := c.CreateTask(ctx, req)
			if err != nil {
				return fmt.Errorf("create task: %w", err)
			}

			fmt.Printf("Task %d submitted: %s\n", status.TaskID, status.Message)
			return nil
		},
	}

	cmd.Flags().Int64Var(&taskID, "id", 0, "task ID (required)")
	cmd.Flags().StringVar(&taskType, "type", "log", "task type: log or webhook")
	cmd.Flags().Int64Var(&timeoutMS, "timeout-ms", 0, "period in milliseconds, 0 for one-shot")
	cmd.Flags().StringVar(&message, "message", "", "message for a log task")
	cmd.Flags().IntVar(&repeat, "repeat", 0, "fixed number of runs for a log task, 0 for unlimited")
	cmd.Flags().StringVar(&url, "url", "", "callback URL for a webhook task")
	cmd.Flags().StringVar(&payloadJSON, "payload", "", "JSON payload for a webhook task")
	cmd.Flags().IntVar(&maxAttempts, "max-attempts", 0, "max delivery attempts for a webhook task, 0 for unlimited")
	_ = cmd.MarkFlagRequired("id")

	return cmd
}
