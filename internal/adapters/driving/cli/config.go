package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect the configuration file",
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print a value by dotted key, e.g. retry.max-attempts",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigGet,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the configuration file path",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		store, err := openConfigStore(configPath)
		if err != nil {
			return err
		}
		cmd.Println(store.Path())
		return nil
	},
}

func init() {
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configPathCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	store, err := openConfigStore(configPath)
	if err != nil {
		return err
	}
	key := args[0]
	if key == "auth.client-secret" {
		return errors.New("refusing to print auth.client-secret")
	}
	val, ok := store.Get(key)
	if !ok {
		return fmt.Errorf("key not set: %s", key)
	}
	cmd.Println(val)
	return nil
}
