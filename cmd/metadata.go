package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"binary-metadata/core/metadata"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	processorFlag    string
	keysFlag         []string
	ignorePrefixFlag bool
	setFlag          []string
	outFlag          string
)

// metadataCmd groups the local metadata commands
var metadataCmd = &cobra.Command{
	Use:   "metadata",
	Short: "Read or write embedded metadata of local files",
}

// metadataReadCmd represents the metadata read command
var metadataReadCmd = &cobra.Command{
	Use:   "read <file>",
	Short: "Print the metadata embedded in a file as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := loadRuntime()
		if err != nil {
			return err
		}
		defer rt.logger.Sync()

		blob, err := readLocalBlob(args[0])
		if err != nil {
			return err
		}

		values, err := rt.engine.ReadMetadata(cmd.Context(), processorFlag, blob, keysFlag, ignorePrefixFlag)
		if err != nil {
			return err
		}

		out, err := json.MarshalIndent(values, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode metadata: %w", err)
		}
		fmt.Println(string(out))
		return nil
	},
}

// metadataWriteCmd represents the metadata write command
var metadataWriteCmd = &cobra.Command{
	Use:   "write <file>",
	Short: "Write metadata values into a file",
	Long:  `Writes KEY=VALUE pairs given with --set into the file. The file is rewritten in place unless --out is given.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		values, err := parseAssignments(setFlag)
		if err != nil {
			return err
		}
		if len(values) == 0 {
			return fmt.Errorf("nothing to write, use --set KEY=VALUE")
		}

		rt, err := loadRuntime()
		if err != nil {
			return err
		}
		defer rt.logger.Sync()

		blob, err := readLocalBlob(args[0])
		if err != nil {
			return err
		}

		updated, err := rt.engine.WriteRaw(cmd.Context(), processorFlag, blob, values, ignorePrefixFlag)
		if err != nil {
			return err
		}

		target := outFlag
		if target == "" {
			target = args[0]
		}
		if err := os.WriteFile(target, updated.Data, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", target, err)
		}

		keys := make([]string, 0, len(values))
		for k := range values {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		rt.logger.Info("Metadata written", zap.String("file", target), zap.Strings("keys", keys))
		return nil
	},
}

func readLocalBlob(path string) (*metadata.Blob, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return &metadata.Blob{Filename: filepath.Base(path), Data: data}, nil
}

// parseAssignments turns KEY=VALUE pairs into a map. Later pairs win.
func parseAssignments(pairs []string) (map[string]string, error) {
	values := make(map[string]string, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid assignment %q, expected KEY=VALUE", p)
		}
		values[k] = v
	}
	return values, nil
}

func init() {
	for _, c := range []*cobra.Command{metadataReadCmd, metadataWriteCmd} {
		c.Flags().StringVarP(&processorFlag, "processor", "p", "", "Processor ID, the default processor when empty")
		c.Flags().BoolVar(&ignorePrefixFlag, "ignore-prefix", false, "Strip group prefixes from metadata keys")
	}
	metadataReadCmd.Flags().StringSliceVarP(&keysFlag, "keys", "k", nil, "Metadata keys to read, all when empty")
	metadataWriteCmd.Flags().StringArrayVarP(&setFlag, "set", "s", nil, "KEY=VALUE pair to write, repeatable")
	metadataWriteCmd.Flags().StringVarP(&outFlag, "out", "o", "", "Write the result to this path instead of the input file")

	metadataCmd.AddCommand(metadataReadCmd)
	metadataCmd.AddCommand(metadataWriteCmd)
	RootCmd.AddCommand(metadataCmd)
}
