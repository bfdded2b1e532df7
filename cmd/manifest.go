package cmd

import (
	"github.com/aurora-skin/skinsafety/internal/iokb"
	"github.com/aurora-skin/skinsafety/pkg/config"
	"github.com/dustin/go-humanize"
	"github.com/gnames/gn"
	"github.com/spf13/cobra"
)

// getManifestCmd returns the manifest command.
func getManifestCmd() *cobra.Command {
	var version string

	manifestCmd := &cobra.Command{
		Use:   "manifest [dir]",
		Short: "Write the checksum manifest of the knowledge base",
		Long: `Compute SHA-256 checksums and sizes of the five KB tables and write
kb_v0_manifest.json next to them.

The directory defaults to the configured knowledge base directory. The
loader refuses tables that do not match the manifest, so run this
command after every edit of the tables.

Examples:
  skinsafety manifest
  skinsafety manifest ./data/kb_v0 --kb-version v0.2.0`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runManifest(cfg, args, version)
		},
	}

	manifestCmd.Flags().StringVar(&version, "kb-version", "",
		"KB version to record, defaults to the version in the tables")

	return manifestCmd
}

func runManifest(c *config.Config, args []string, version string) error {
	dir := c.KBDir()
	if len(args) > 0 {
		dir = args[0]
	}

	m, err := iokb.WriteManifest(dir, version)
	if err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	var size int64
	for _, f := range m.Files {
		if f.Bytes != nil {
			size += *f.Bytes
		}
	}
	gn.Info("Manifest <em>%s</em> written to <em>%s</em>", m.KBVersion, dir)
	gn.Message("<em>%d files, %s</em>", len(m.Files), humanize.Bytes(uint64(size)))
	return nil
}
