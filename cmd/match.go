package cmd

import (
	"errors"

	"github.com/aurora-skin/skinsafety/pkg/config"
	"github.com/aurora-skin/skinsafety/pkg/match"
	"github.com/gnames/gn"
	"github.com/spf13/cobra"
)

type matchOpts struct {
	lang      string
	file      string
	max       int
	debug     bool
	substring bool
}

// getMatchCmd returns the match command.
func getMatchCmd() *cobra.Command {
	var o matchOpts

	matchCmd := &cobra.Command{
		Use:   "match [text...]",
		Short: "Find KB concepts and ingredients in a text",
		Long: `Run the concept matcher and the ingredient matcher on a text and
print the matches as JSON.

Concepts are ranked by tier (exact, regex, substring) and then by id.
With --debug every raw hit of every tier is printed as well.

Examples:
  skinsafety match "is retinol safe with niacinamide?"
  skinsafety match --lang zh-CN "视黄醇和烟酰胺可以一起用吗"
  skinsafety match --file message.txt --debug`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMatch(cmd, cfg, args, o)
		},
	}

	matchCmd.Flags().StringVarP(&o.lang, "lang", "l", "en",
		"message language, en or zh-CN")
	matchCmd.Flags().StringVarP(&o.file, "file", "f", "",
		"read the text from a file")
	matchCmd.Flags().IntVar(&o.max, "max", 0,
		"maximum number of concepts, 0 means the configured limit")
	matchCmd.Flags().BoolVar(&o.debug, "debug", false,
		"include raw hits of every tier")
	matchCmd.Flags().BoolVar(&o.substring, "substring", true,
		"use the substring tier")

	return matchCmd
}

type matchOutput struct {
	KBVersion   string                `json:"kb_version"`
	Language    match.Language        `json:"language"`
	Concepts    []match.ConceptMatch  `json:"matched_concepts"`
	Debug       []match.ConceptMatch  `json:"matched_concepts_debug,omitempty"`
	Ingredients []match.IngredientHit `json:"ingredient_hits"`
	Tokens      []string              `json:"active_tokens"`
}

func runMatch(cmd *cobra.Command, c *config.Config, args []string, o matchOpts) error {
	text, err := messageText(o.file, args)
	if err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	res, err := loadKB(c, nil)
	if err != nil {
		gn.PrintErrorMessage(err)
		return err
	}
	if !res.OK {
		err = errors.New("matching needs a knowledge base: " + res.Reason)
		gn.PrintErrorMessage(err)
		return err
	}

	lang := match.ParseLanguage(o.lang)
	m := match.New(c.Matcher)
	d := m.MatchConceptsDetailed(res.KB, text, lang, o.max, o.substring)

	out := matchOutput{
		KBVersion:   res.KB.KBVersion,
		Language:    lang,
		Concepts:    d.Matches,
		Ingredients: m.MatchIngredients(res.KB, text, lang, 0),
		Tokens:      match.ActiveTokens(match.ConceptIDs(d.Matches)),
	}
	if o.debug {
		out.Debug = d.Debug
	}
	return printJSON(cmd, out)
}
