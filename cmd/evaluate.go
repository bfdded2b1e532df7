package cmd

import (
	"github.com/aurora-skin/skinsafety/internal/iometrics"
	"github.com/aurora-skin/skinsafety/pkg/config"
	"github.com/aurora-skin/skinsafety/pkg/kb"
	"github.com/aurora-skin/skinsafety/pkg/match"
	"github.com/aurora-skin/skinsafety/pkg/safety"
	"github.com/gnames/gn"
	"github.com/spf13/cobra"
)

type evaluateOpts struct {
	file     string
	lang     string
	intent   string
	concepts []string
	context  map[string]string
	profile  safety.Profile
}

// getEvaluateCmd returns the evaluate command.
func getEvaluateCmd() *cobra.Command {
	var o evaluateOpts

	evaluateCmd := &cobra.Command{
		Use:   "evaluate [message...]",
		Short: "Decide the safety level of a message",
		Long: `Evaluate a user message with a profile against the safety rules and
the red-flag boundary check. The decision and the boundary result are
printed as JSON.

KB rules, ingredient ontology rules and the legacy rule set are merged
into one decision with the strictest level of INFO, WARN, REQUIRE_INFO
and BLOCK. When the knowledge base is unavailable under fail-open policy
only legacy rules apply.

Examples:
  skinsafety evaluate --pregnancy pregnant "can I use retinol?"
  skinsafety evaluate --meds isotretinoin --lang zh-CN "可以刷酸吗"
  skinsafety evaluate --intent product_eval --file ingredients.txt`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEvaluate(cmd, cfg, args, o)
		},
	}

	f := evaluateCmd.Flags()
	f.StringVarP(&o.file, "file", "f", "", "read the message from a file")
	f.StringVarP(&o.lang, "lang", "l", "en", "message language, en or zh-CN")
	f.StringVar(&o.intent, "intent", "", "intent of the message")
	f.StringSliceVar(&o.concepts, "concepts", nil,
		"concept ids detected upstream")
	f.StringToStringVar(&o.context, "context", nil,
		"extra facts, for example product_anchor=serum")
	f.StringVar(&o.profile.PregnancyStatus, "pregnancy", "",
		"pregnancy status: pregnant, trying, not_pregnant")
	f.StringVar(&o.profile.LactationStatus, "lactation", "",
		"lactation status: breastfeeding, not_lactating")
	f.StringVar(&o.profile.AgeBand, "age", "", "age band or age in years")
	f.StringSliceVar(&o.profile.HighRiskMedications, "meds", nil,
		"high risk medications")
	f.StringVar(&o.profile.BarrierStatus, "barrier", "",
		"barrier status: healthy, impaired")
	f.StringVar(&o.profile.Sensitivity, "sensitivity", "",
		"skin sensitivity: low, medium, high")

	return evaluateCmd
}

type evaluateOutput struct {
	Decision safety.Decision `json:"decision"`
	Boundary safety.Boundary `json:"boundary"`
}

func runEvaluate(cmd *cobra.Command, c *config.Config, args []string, o evaluateOpts) error {
	msg, err := messageText(o.file, args)
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
	}

	lang := match.ParseLanguage(o.lang)
	engine := safety.New(match.New(c.Matcher), metrics)
	out := evaluateOutput{
		Decision: engine.Evaluate(k, safety.Request{
			Intent:          o.intent,
			Message:         msg,
			Profile:         o.profile,
			Language:        lang,
			MatchedConcepts: o.concepts,
			Context:         o.context,
		}),
		Boundary: safety.CheckBoundary(msg, o.profile, nil, lang),
	}
	return printJSON(cmd, out)
}
