package cmd

import (
	"fmt"

	"binary-metadata/core/config"
	"binary-metadata/core/descriptor"

	"github.com/spf13/cobra"
)

// descriptorsCmd groups the descriptor commands
var descriptorsCmd = &cobra.Command{
	Use:   "descriptors",
	Short: "Inspect metadata descriptor files",
}

// descriptorsValidateCmd represents the descriptors validate command
var descriptorsValidateCmd = &cobra.Command{
	Use:   "validate [file]",
	Short: "Validate a descriptor file",
	Long:  `Validates the given descriptor file, or the configured one when no file is given. Warnings are printed but do not fail the command.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := ""
		if len(args) == 1 {
			path = args[0]
		} else {
			cfg, err := config.LoadConfig(".")
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			path = cfg.Metadata.DescriptorFile
		}

		file, err := descriptor.LoadFile(path)
		if err != nil {
			return err
		}

		warnings, err := file.Validate()
		for _, w := range warnings {
			fmt.Println("warning:", w)
		}
		if err != nil {
			return fmt.Errorf("%s is invalid: %w", path, err)
		}

		fmt.Printf("%s: %d processors, %d mappings, %d rules, %d filters\n",
			path, len(file.Processors), len(file.Mappings), len(file.Rules), len(file.Filters))
		return nil
	},
}

func init() {
	descriptorsCmd.AddCommand(descriptorsValidateCmd)
	RootCmd.AddCommand(descriptorsCmd)
}
