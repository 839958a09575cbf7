package cli

import (
	"path/filepath"

	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the configuration and print the resolved connectors",
	Args:  cobra.NoArgs,
	RunE:  runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, _ []string) error {
	cfg, err := loadClientConfig()
	if err != nil {
		return err
	}

	cmd.Printf("Endpoint: %s\n", cfg.Endpoint.URL())
	cmd.Printf("Extension: .%s, poll every %s, %d attempt(s) per file\n",
		cfg.FileExtension, cfg.PollInterval.Std(), cfg.Retry.MaxAttempts)
	for i := range cfg.Connectors {
		conn := &cfg.Connectors[i]
		cmd.Printf("\nConnector %s (%s)\n", conn.ID, conn.Mode)
		for _, folder := range conn.SourceFolders() {
			route, err := cfg.Route(filepath.Join(folder, "probe."+cfg.FileExtension))
			if err != nil {
				return err
			}
			archive, archiving := route.ArchiveFolder()
			if !archiving {
				archive = "(delete after upload)"
			}
			label := "default"
			if route.DocumentType != "" {
				label = string(route.DocumentType)
			}
			cmd.Printf("  %-16s source=%s archive=%s error=%s\n", label, folder, archive, route.ErrorFolder())
		}
	}
	cmd.Println("\nConfiguration is valid.")
	return nil
}
