package cli

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List tasks currently live in the queue",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd.Context())
		},
	}
	return cmd
}

func runList(ctx context.Context) error {
	c := newClient()
	ctx, cancel := context.WithTimeout(ctx, viper.GetDuration("timeout"))
	defer cancel()

	resp, err := c.ListTasks(ctx)
	if err != nil {
		return fmt.Errorf("list tasks: %w", err)
	}

	if len(resp.Tasks) == 0 {
		fmt.Println("No tasks in queue")
		return nil
	}

	sort.Slice(resp.Tasks, func(i, j int) bool { return resp.Tasks[i].TaskID < resp.Tasks[j].TaskID })

	noColor := viper.GetBool("no-color")
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"ID", "PAUSED", "COMPLETE", "REV", "MESSAGE"})
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeaderLine(false)
	table.SetBorder(false)

	for _, t := range resp.Tasks {
		paused := colorize(noColor, "no", color.FgGreen)
		if t.Paused {
			paused = colorize(noColor, "yes", color.FgYellow)
		}
		complete := colorize(noColor, "no", color.FgGreen)
		if t.Complete {
			complete = colorize(noColor, "yes", color.FgCyan)
		}
		table.Append([]string{
			strconv.FormatInt(t.TaskID, 10),
			paused,
			complete,
			strconv.FormatInt(t.Rev, 10),
			t.Message,
		})
	}
	table.Render()

	fmt.Printf("\nTotal: %d tasks\n", resp.TotalCount)
	return nil
}

func colorize(noColor bool, text string, attr color.Attribute) string {
	if noColor {
		return text
	}
	return color.New(attr).Sprint(text)
}
