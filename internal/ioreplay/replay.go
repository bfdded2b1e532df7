// Package ioreplay runs replay cases through the rule engine with a
// pool of workers and checks decisions against case expectations.
package ioreplay

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/aurora-skin/skinsafety/pkg/config"
	"github.com/aurora-skin/skinsafety/pkg/kb"
	"github.com/aurora-skin/skinsafety/pkg/report"
	"github.com/aurora-skin/skinsafety/pkg/safety"
	"github.com/cheggaaa/pb/v3"
	"github.com/dustin/go-humanize"
	"github.com/gnames/gnfmt"
	"github.com/gnames/gnuuid"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Runner evaluates replay cases.
type Runner interface {
	// Run evaluates all cases against k (nil means no KB) and returns
	// the run with results in case order.
	Run(ctx context.Context, k *kb.KB, cases []report.Case) (report.Run, error)
}

type runner struct {
	cfg      *config.Config
	engine   *safety.Engine
	progress bool
}

// New creates a Runner. When progress is true a progress bar is
// shown on stderr.
func New(cfg *config.Config, engine *safety.Engine, progress bool) Runner {
	return &runner{cfg: cfg, engine: engine, progress: progress}
}

type job struct {
	idx int
	c   report.Case
}

type outcome struct {
	idx int
	res report.Result
}

func (r *runner) Run(
	ctx context.Context,
	k *kb.KB,
	cases []report.Case,
) (report.Run, error) {
	runID := uuid.New().String()
	start := time.Now()

	chIn := make(chan job)
	chOut := make(chan outcome)

	g, ctx := errgroup.WithContext(ctx)
	var wg sync.WaitGroup

	for range max(r.cfg.JobsNumber, 1) {
		wg.Add(1)
		g.Go(func() error {
			defer wg.Done()
			return r.worker(ctx, runID, k, chIn, chOut)
		})
	}

	results := make([]report.Result, len(cases))
	g.Go(func() error {
		return r.collect(ctx, chOut, results)
	})

	go func() {
		wg.Wait()
		close(chOut)
	}()

	g.Go(func() error {
		defer close(chIn)
		for i, c := range cases {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case chIn <- job{idx: i, c: c}:
			}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		if errors.Is(err, context.Canceled) {
			slog.Warn("Replay run was canceled", "run_id", runID)
		}
		return report.Run{}, err
	}

	summary := report.Summarize(runID, results)
	summary.StartedAt = start
	summary.Duration = time.Since(start)
	if k != nil {
		summary.KBAvailable = true
		summary.KBVersion = k.KBVersion
	}

	slog.Info("Replay run finished",
		"run_id", runID,
		"total", summary.Total,
		"failed", summary.Failed,
	)
	return report.Run{Summary: summary, Results: results}, nil
}

func (r *runner) worker(
	ctx context.Context,
	runID string,
	k *kb.KB,
	chIn <-chan job,
	chOut chan<- outcome,
) error {
	for j := range chIn {
		begin := time.Now()
		d := r.engine.Evaluate(k, j.c.Request())
		res := report.NewResult(runID, CaseID(j.c.Name), j.c, d, time.Since(begin))
		if !res.Pass {
			slog.Debug("Replay case failed", "case", j.c.Name, "failures", res.Failures)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case chOut <- outcome{idx: j.idx, res: res}:
		}
	}
	return nil
}

func (r *runner) collect(
	ctx context.Context,
	chOut <-chan outcome,
	results []report.Result,
) error {
	var bar *pb.ProgressBar
	if r.progress {
		bar = pb.Full.Start(len(results))
		bar.Set("prefix", "Replaying cases: ")
		bar.Set(pb.CleanOnFinish, true)
		defer bar.Finish()
	}

	for o := range chOut {
		results[o.idx] = o.res
		if bar != nil {
			bar.Increment()
		}
		if err := ctx.Err(); err != nil {
			return err
		}
	}
	return nil
}

// CaseID is the stable identifier of a case: UUID v5 of its name.
func CaseID(name string) string {
	return gnuuid.New(name).String()
}

// SummaryText renders a run summary for the terminal.
func SummaryText(s report.Summary) string {
	var levels []string
	for l, n := range s.ByLevel {
		levels = append(levels, fmt.Sprintf("%s=%s", l, humanize.Comma(int64(n))))
	}
	sort.Strings(levels)

	kbInfo := "KB unavailable"
	if s.KBAvailable {
		kbInfo = "KB " + s.KBVersion
	}

	return fmt.Sprintf(
		"Replay run <em>%s</em> (%s)\n"+
			"Cases: %s, passed: %s, failed: %s, legacy fallbacks: %s\n"+
			"Levels: %s\n"+
			"Elapsed: %s",
		s.RunID, kbInfo,
		humanize.Comma(int64(s.Total)),
		humanize.Comma(int64(s.Passed)),
		humanize.Comma(int64(s.Failed)),
		humanize.Comma(int64(s.LegacyFallbacks)),
		strings.Join(levels, ", "),
		gnfmt.TimeString(s.Duration.Seconds()),
	)
}
