package cmd

import (
	"errors"
	"strings"

	"github.com/aurora-skin/skinsafety/internal/iometrics"
	"github.com/aurora-skin/skinsafety/pkg/config"
	"github.com/aurora-skin/skinsafety/pkg/kb"
	"github.com/aurora-skin/skinsafety/pkg/match"
	"github.com/dustin/go-humanize"
	"github.com/gnames/gn"
	"github.com/spf13/cobra"
)

// getCheckCmd returns the check command.
func getCheckCmd() *cobra.Command {
	var asJSON bool

	checkCmd := &cobra.Command{
		Use:   "check",
		Short: "Load and validate the knowledge base",
		Long: `Load the knowledge base directory the way the chat service does and
report what was found.

This command:
  1. Reads the five KB tables and validates the manifest checksums
  2. Merges duplicate concepts and adds synthetic referenced concepts
  3. Compiles the matcher index and reports its statistics

Under fail-closed policy any load problem is an error. Under fail-open
policy the command reports the reason and exits with an error as well,
since the service would run on legacy rules only.

Examples:
  skinsafety check
  skinsafety check --kb-dir ./data/kb_v0 --fail-mode closed
  skinsafety check --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, cfg, asJSON)
		},
	}

	checkCmd.Flags().BoolVar(&asJSON, "json", false,
		"print the load result as JSON")

	return checkCmd
}

type checkOutput struct {
	Result *kb.Result        `json:"result"`
	Index  *match.IndexStats `json:"index,omitempty"`
}

func runCheck(cmd *cobra.Command, c *config.Config, asJSON bool) error {
	res, err := loadKB(c, iometrics.New())
	if err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	out := checkOutput{Result: res}
	if res.OK {
		stats := match.New(c.Matcher).Stats(res.KB)
		out.Index = &stats
	}

	if asJSON {
		if err = printJSON(cmd, out); err != nil {
			return err
		}
	} else {
		printCheck(out)
	}

	if !res.OK {
		return errors.New("knowledge base is not available: " + res.Reason)
	}
	return nil
}

func printCheck(out checkOutput) {
	res := out.Result
	if res.Disabled {
		gn.Warn("Knowledge base is disabled, only legacy rules apply")
		return
	}
	if !res.OK {
		gn.Warn("Knowledge base at <em>%s</em> failed to load: %s",
			res.SourceDir, res.Reason)
		printDiagnostics(res.Diagnostics)
		return
	}

	k := res.KB
	gn.Info("Loaded knowledge base <em>%s</em> from <em>%s</em>",
		k.KBVersion, res.SourceDir)
	gn.Message(
		"<em>%s concepts, %s ingredients, %s safety rules, %s templates</em>",
		humanize.Comma(int64(len(k.Concepts))),
		humanize.Comma(int64(len(k.Ingredients))),
		humanize.Comma(int64(len(k.Rules))),
		humanize.Comma(int64(len(k.TemplatesByID))),
	)
	printDiagnostics(res.Diagnostics)

	if s := out.Index; s != nil {
		gn.Message(
			"<em>Index: %s exact, %s regex, %s substring, %s ingredient terms</em>",
			humanize.Comma(int64(s.ExactTerms)),
			humanize.Comma(int64(s.RegexTerms)),
			humanize.Comma(int64(s.SubstringTerms)),
			humanize.Comma(int64(s.IngredientTerms)),
		)
		if s.InvalidRegex > 0 {
			gn.Warn("%d regex hints cannot be compiled and are skipped",
				s.InvalidRegex)
		}
	}
}

func printDiagnostics(d kb.Diagnostics) {
	if len(d.DuplicateConceptIDs) > 0 {
		gn.Warn("Duplicate concepts merged: %s",
			strings.Join(d.DuplicateConceptIDs, ", "))
	}
	if d.SyntheticConceptsCount > 0 {
		gn.Warn("Synthetic concepts added: %s",
			strings.Join(d.SyntheticConceptIDs, ", "))
	}
	for _, e := range d.ManifestErrors {
		gn.Warn("Manifest: %s", e)
	}
	for _, w := range d.Warnings {
		gn.Warn("%s", w)
	}
}
