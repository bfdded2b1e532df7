/*
Copyright © 2025 Dmitry Mozzherin <dmozzherin@gmail.com>

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/
package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/aurora-skin/skinsafety/internal/iofs"
	"github.com/aurora-skin/skinsafety/internal/iologger"
	app "github.com/aurora-skin/skinsafety/pkg"
	"github.com/aurora-skin/skinsafety/pkg/config"
	"github.com/gnames/gn"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	homeDir  string
	opts     []config.Option
	cfg      *config.Config
	closeLog = func() error { return nil }
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = getRootCmd()

func getRootCmd() *cobra.Command {
	res := &cobra.Command{
		Version: fmt.Sprintf("version: %s\nbuild:   %s", app.Version, app.Build),
		Use:     "skinsafety",
		Short:   "Safety decisions for skincare chat answers",
		Long: `skinsafety loads the skincare knowledge base (concepts, ingredient
ontology, safety rules), matches concepts and ingredients in user messages
and decides how an answer must be handled: INFO, WARN, REQUIRE_INFO or BLOCK.

Configuration precedence (highest to lowest):
  1. CLI flags (--kb-dir, --fail-mode, --no-kb, --jobs)
  2. Environment variables (SKINSAFETY_*)
  3. Config file (~/.config/skinsafety/config.yaml)
  4. Built-in defaults

Environment variables:
  SKINSAFETY_KB_DIR            knowledge base directory
  SKINSAFETY_KB_DISABLE        true turns the knowledge base off
  SKINSAFETY_KB_FAIL_MODE      open or closed
  SKINSAFETY_DATABASE_HOST     PostgreSQL host for replay reports
  SKINSAFETY_LOG_LEVEL         debug, info, warn, error
  SKINSAFETY_JOBS_NUMBER       replay workers`,
		PersistentPreRunE: bootstrap,
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return closeLog()
		},
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	// Remove the automatic "skinsafety version" prefix
	res.SetVersionTemplate("{{.Version}}\n")
	res.Flags().BoolP("version", "V", false, "version for skinsafety")

	res.PersistentFlags().String("kb-dir", "", "knowledge base directory")
	res.PersistentFlags().String("fail-mode", "", "KB load policy: open or closed")
	res.PersistentFlags().Bool("no-kb", false, "disable the knowledge base")
	res.PersistentFlags().IntP("jobs", "j", 0, "number of replay workers")

	res.AddCommand(
		getCheckCmd(),
		getManifestCmd(),
		getMatchCmd(),
		getEvaluateCmd(),
		getReplayCmd(),
	)
	return res
}

func bootstrap(cmd *cobra.Command, args []string) error {
	var err error
	homeDir, err = os.UserHomeDir()
	if err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	if err = iofs.EnsureDirs(homeDir); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	if err = iofs.EnsureConfigFile(homeDir); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	var cfgViper *config.Config
	if cfgViper, err = initConfig(homeDir); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	cfg = config.New()
	opts = cfgViper.ToOptions()
	opts = append(opts, flagOptions(cmd)...)
	opts = append(opts, config.OptHomeDir(homeDir))
	cfg.Update(opts)

	closeLog, err = iologger.Init(config.LogDir(homeDir), cfg.Log)
	if err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	slog.Info("Configuration loaded",
		"config_file", config.ConfigFilePath(homeDir),
		"kb_dir", cfg.KBDir(),
		"fail_mode", cfg.KB.FailMode,
	)
	return nil
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func initConfig(home string) (*config.Config, error) {
	var err error
	cfgPath := config.ConfigFilePath(home)
	v := viper.New()
	v.SetConfigFile(cfgPath)

	initEnvVars(v)

	if err = v.ReadInConfig(); err != nil {
		return nil, iofs.ReadFileError(cfgPath, err)
	}

	var res config.Config
	if err = v.Unmarshal(&res); err != nil {
		return nil, iofs.ReadFileError(cfgPath, err)
	}

	return &res, nil
}

func initEnvVars(v *viper.Viper) {
	// Variables are bound one by one to keep the list of allowed ones
	// explicit. They match the fields of config.ToOptions().
	v.SetEnvPrefix("SKINSAFETY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.BindEnv("kb.dir", "SKINSAFETY_KB_DIR")
	v.BindEnv("kb.disable", "SKINSAFETY_KB_DISABLE")
	v.BindEnv("kb.fail_mode", "SKINSAFETY_KB_FAIL_MODE")

	v.BindEnv("matcher.max_concepts", "SKINSAFETY_MATCHER_MAX_CONCEPTS")
	v.BindEnv("matcher.max_ingredients", "SKINSAFETY_MATCHER_MAX_INGREDIENTS")

	v.BindEnv("database.host", "SKINSAFETY_DATABASE_HOST")
	v.BindEnv("database.port", "SKINSAFETY_DATABASE_PORT")
	v.BindEnv("database.user", "SKINSAFETY_DATABASE_USER")
	v.BindEnv("database.password", "SKINSAFETY_DATABASE_PASSWORD")
	v.BindEnv("database.database", "SKINSAFETY_DATABASE_DATABASE")
	v.BindEnv("database.ssl_mode", "SKINSAFETY_DATABASE_SSL_MODE")
	v.BindEnv("database.batch_size", "SKINSAFETY_DATABASE_BATCH_SIZE")

	v.BindEnv("log.level", "SKINSAFETY_LOG_LEVEL")
	v.BindEnv("log.format", "SKINSAFETY_LOG_FORMAT")
	v.BindEnv("log.destination", "SKINSAFETY_LOG_DESTINATION")

	v.BindEnv("jobs_number", "SKINSAFETY_JOBS_NUMBER")

	v.AutomaticEnv()
}
