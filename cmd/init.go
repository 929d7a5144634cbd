package cmd

import (
	"fmt"

	"github.com/nikogura/resume-forge/pkg/config"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a default configuration file",
	Long: `Create a default configuration file at $HOME/.resume-forge/config.json.

Edit the created file to set your name, API key, and resume locations before
running other commands.`,
	RunE: runInit,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) (err error) {
	path := getConfigFile()

	err = config.InitConfig(path)
	if err != nil {
		return err
	}

	if path == "" {
		path, err = config.DefaultPath()
		if err != nil {
			return err
		}
	}

	fmt.Printf("Created config file: %s\n", path)
	fmt.Println("Edit it to set your name, API key, and resume locations.")

	return err
}
