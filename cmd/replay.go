package cmd

import (
	"context"
	"fmt"

	"github.com/aurora-skin/skinsafety/internal/iodb"
	"github.com/aurora-skin/skinsafety/internal/iofs"
	"github.com/aurora-skin/skinsafety/internal/iometrics"
	"github.com/aurora-skin/skinsafety/internal/ioreplay"
	"github.com/aurora-skin/skinsafety/internal/ioreport"
	"github.com/aurora-skin/skinsafety/internal/ioschema"
	"github.com/aurora-skin/skinsafety/pkg/config"
	"github.com/aurora-skin/skinsafety/pkg/kb"
	"github.com/aurora-skin/skinsafety/pkg/match"
	"github.com/aurora-skin/skinsafety/pkg/report"
	"github.com/aurora-skin/skinsafety/pkg/safety"
	"github.com/gnames/gn"
	"github.com/spf13/cobra"
)

type replayOpts struct {
	save       bool
	sqlitePath string
	postgres   bool
	metrics    string
	quiet      bool
	asJSON     bool
}

// getReplayCmd returns the replay command.
func getReplayCmd() *cobra.Command {
	var o replayOpts

	replayCmd := &cobra.Command{
		Use:   "replay <cases.yaml>",
		Short: "Replay recorded cases through the safety rules",
		Long: `Evaluate every case of a YAML file with the rule engine and compare
the decisions with the expectations of the cases.

A case file is either a list of cases or a mapping with a "cases" key.
Each case has a message, an optional profile and expectations about
block_level, required_fields, rules and not_rules.

Runs can be saved to a local SQLite file (--save) or to PostgreSQL
(--postgres) for comparison between KB releases. Rule counters can be
written in Prometheus text format with --metrics.

The command fails when at least one case does not pass.

Examples:
  skinsafety replay cases.yaml
  skinsafety replay cases.yaml --save -j 8
  skinsafety replay cases.yaml --postgres --metrics replay.prom`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if o.sqlitePath == "" {
				o.sqlitePath = iofs.ReportPath(cfg.HomeDir)
			}
			return runReplay(cmd, cfg, args[0], o)
		},
	}

	f := replayCmd.Flags()
	f.BoolVarP(&o.save, "save", "s", false,
		"save the run to the local SQLite report file")
	f.StringVar(&o.sqlitePath, "sqlite-path", "",
		"SQLite report file, defaults to ~/.cache/skinsafety/replay.sqlite")
	f.BoolVar(&o.postgres, "postgres", false,
		"save the run to the configured PostgreSQL database")
	f.StringVar(&o.metrics, "metrics", "",
		"write rule counters to a Prometheus text file")
	f.BoolVarP(&o.quiet, "quiet", "q", false, "do not show progress")
	f.BoolVar(&o.asJSON, "json", false, "print the whole run as JSON")

	return replayCmd
}

func runReplay(cmd *cobra.Command, c *config.Config, path string, o replayOpts) error {
	ctx := context.Background()

	cases, err := ioreplay.LoadCases(path)
	if err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	metrics := iometrics.New()
	res, err := loadKB(c, metrics)
	if err != nil {
		gn.PrintErrorMessage(err)
		return err
	}
	var k *kb.KB
	if res.OK {
		k = res.KB
	} else {
		gn.Warn("Knowledge base is not available (%s), only legacy rules apply",
			res.Reason)
	}

	engine := safety.New(match.New(c.Matcher), metrics)
	run, err := ioreplay.New(c, engine, !o.quiet && !o.asJSON).Run(ctx, k, cases)
	if err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	if o.asJSON {
		if err = printJSON(cmd, run); err != nil {
			return err
		}
	} else {
		printReplay(run)
	}

	var stores []report.Store
	if o.save {
		stores = append(stores, ioreport.NewSQLiteStore(o.sqlitePath))
	}
	if o.postgres {
		op := iodb.NewPgxOperator()
		stores = append(stores, iodb.NewReportStore(c, op, ioschema.NewManager(op)))
	}
	for _, s := range stores {
		if err = saveRun(ctx, s, run); err != nil {
			gn.PrintErrorMessage(err)
			return err
		}
	}
	if o.save {
		gn.Info("Run saved to <em>%s</em>", o.sqlitePath)
	}
	if o.postgres {
		gn.Info("Run saved to PostgreSQL database <em>%s</em>", c.Database.Database)
	}

	if o.metrics != "" {
		if err = metrics.WriteFile(o.metrics); err != nil {
			gn.PrintErrorMessage(err)
			return err
		}
	}

	if run.Summary.Failed > 0 {
		return fmt.Errorf("%d of %d replay cases failed",
			run.Summary.Failed, run.Summary.Total)
	}
	return nil
}

func saveRun(ctx context.Context, s report.Store, run report.Run) error {
	if err := s.Open(ctx); err != nil {
		return err
	}
	defer s.Close()
	return s.Save(ctx, run)
}

func printReplay(run report.Run) {
	gn.Info("%s", ioreplay.SummaryText(run.Summary))
	for _, r := range report.Failed(run.Results) {
		gn.Warn("FAIL %s: %s", r.Name, r.FailureText())
	}
}
