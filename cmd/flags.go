package cmd

import (
	"fmt"
	"strings"

	"github.com/aurora-skin/skinsafety/internal/iofs"
	"github.com/aurora-skin/skinsafety/internal/iokb"
	"github.com/aurora-skin/skinsafety/pkg/config"
	"github.com/aurora-skin/skinsafety/pkg/kb"
	"github.com/aurora-skin/skinsafety/pkg/telemetry"
	"github.com/gnames/gnfmt"
	"github.com/spf13/cobra"
)

// flagOptions converts persistent flags that were set on the command
// line into config options. They are applied after file and
// environment settings.
func flagOptions(cmd *cobra.Command) []config.Option {
	var res []config.Option
	flags := cmd.Flags()

	if s, _ := flags.GetString("kb-dir"); s != "" {
		res = append(res, config.OptKBDir(s))
	}
	if s, _ := flags.GetString("fail-mode"); s != "" {
		res = append(res, config.OptKBFailMode(s))
	}
	if flags.Changed("no-kb") {
		b, _ := flags.GetBool("no-kb")
		res = append(res, config.OptKBDisable(b))
	}
	if i, _ := flags.GetInt("jobs"); i > 0 {
		res = append(res, config.OptJobsNumber(i))
	}
	return res
}

// printJSON writes v as indented JSON to the command output.
func printJSON(cmd *cobra.Command, v any) error {
	enc := gnfmt.GNjson{Pretty: true}
	bs, err := enc.Encode(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(bs))
	return err
}

// loadKB loads the configured knowledge base. Under fail-open policy
// a failed load returns a Result with OK false and no error.
func loadKB(c *config.Config, rec telemetry.Recorder) (*kb.Result, error) {
	if rec == nil {
		rec = telemetry.Nop{}
	}
	return iokb.New(c, rec).Load("")
}

// messageText returns the text from --file when given, otherwise the
// joined positional arguments.
func messageText(path string, args []string) (string, error) {
	if path != "" {
		return iofs.ReadText(path)
	}
	res := strings.TrimSpace(strings.Join(args, " "))
	if res == "" {
		return "", fmt.Errorf("message text is empty, give it as arguments or with --file")
	}
	return res, nil
}
