// Package cli implements queuectl, a command-line client for a running
// taskqueue server's admin HTTP API.
package cli

import (
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mercadolabs/taskqueue/pkg/client"
)

var cfgFile string

// Execute runs the root command.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "queuectl",
		Short:         "queuectl controls a running taskqueue server",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig()
		},
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.queuectl.yaml)")
	rootCmd.PersistentFlags().String("server", "http://localhost:8080", "taskqueue server base URL")
	rootCmd.PersistentFlags().String("api-key", "", "API key for authenticated servers")
	rootCmd.PersistentFlags().Bool("no-color", false, "disable colored output")
	rootCmd.PersistentFlags().Duration("timeout", 10*time.Second, "request timeout")

	_ = viper.BindPFlag("server", rootCmd.PersistentFlags().Lookup("server"))
	_ = viper.BindPFlag("api-key", rootCmd.PersistentFlags().Lookup("api-key"))
	_ = viper.BindPFlag("no-color", rootCmd.PersistentFlags().Lookup("no-color"))
	_ = viper.BindPFlag("timeout", rootCmd.PersistentFlags().Lookup("timeout"))

	rootCmd.AddCommand(newListCmd())
	rootCmd.AddCommand(newAddCmd())
	rootCmd.AddCommand(newCancelCmd())
	rootCmd.AddCommand(newPauseCmd())
	rootCmd.AddCommand(newResizeCmd())
	rootCmd.AddCommand(newWatchCmd())

	return rootCmd
}

func initConfig() error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
			viper.SetConfigType("yaml")
			viper.SetConfigName(".queuectl")
		}
	}

	viper.SetEnvPrefix("QUEUECTL")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return err
		}
	}
	return nil
}

func newClient() *client.Client {
	var opts []client.Option
	if key := viper.GetString("api-key"); key != "" {
		opts = append(opts, client.WithAPIKey(key))
	}
	return client.New(viper.GetString("server"), opts...)
}
