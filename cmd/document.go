package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// documentCmd groups the stored document commands
var documentCmd = &cobra.Command{
	Use:   "document",
	Short: "Maintain stored documents",
}

// documentRefreshCmd represents the document refresh command
var documentRefreshCmd = &cobra.Command{
	Use:   "refresh <id>...",
	Short: "Re-extract metadata from the blobs of stored documents",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := loadRuntime()
		if err != nil {
			return err
		}
		defer rt.logger.Sync()

		svc, err := rt.documentService(cmd.Context())
		if err != nil {
			return err
		}

		for _, id := range args {
			doc, err := svc.Refresh(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("failed to refresh document %s: %w", id, err)
			}
			out, err := json.MarshalIndent(doc.Fields, "", "  ")
			if err != nil {
				return err
			}
			fmt.Printf("%s\n%s\n", id, out)
		}
		return nil
	},
}

func init() {
	documentCmd.AddCommand(documentRefreshCmd)
	RootCmd.AddCommand(documentCmd)
}
