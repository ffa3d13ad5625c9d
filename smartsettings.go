package main

import (
	"fmt"
	"io"
	"os"

	"smartsettings/cfg"
	"smartsettings/cli"
	"smartsettings/command"
	"smartsettings/persist"
	"smartsettings/util/logger"

	"github.com/cockroachdb/errors"
	goFlags "github.com/jessevdk/go-flags"
	"github.com/samber/lo"
)

const version = "v1.0.0"

func main() {
	// Parse command line arguments
	flags, err := cli.Parse()
	if flags.Version {
		fmt.Println(version)
		os.Exit(0)
	}
	if cli.IsErrOfType(err, goFlags.ErrHelp) {
		// Help message will be prined by go-flags
		os.Exit(0)
	}
	if err != nil {
		os.Exit(2)
	}

	code, err := run(flags, os.Stdin, os.Stdout)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
	os.Exit(code)
}

// run executes command given in <flags>, reading user answers from <in> and printing results to <out>.
//
// Returns process exit code.
func run(flags cli.Flags, in io.Reader, out io.Writer) (int, error) {
	// Init logger
	log, err := logger.NewNamed(flags.LogLevel)
	if err != nil {
		return 2, err
	}

	// Read program config
	log.Debug("Reading program config")
	progCfg, isNewCfg, err := cfg.Init(log, flags.ProgramCfgPath)
	if err != nil {
		return 1, err
	}
	if isNewCfg {
		log.Infof("New config is written to %v", flags.ProgramCfgPath)
	}

	if flags.Command == "" {
		log.Info("No command given, run with --help to list commands")
		return 0, nil
	}

	key := lo.Ternary(flags.Key != "", flags.Key, progCfg.CryptoKey())
	repo := command.NewRepo(persist.NewRepo(log, progCfg), in, out)

	switch flags.Command {
	case "show":
		err = repo.Show(flags.Show.Args.Path, key, flags.Show.Format)
	case "merge":
		sourceKey := lo.Ternary(flags.Merge.SourceKey != "", flags.Merge.SourceKey, key)
		err = repo.Merge(flags.Merge.Args.Target, flags.Merge.Args.Source, key, sourceKey)
	case "convert":
		err = repo.Convert(flags.Convert.Args.In, flags.Convert.Args.Out, key, flags.Convert.OutKey)
	case "diff":
		var equal bool
		equal, err = repo.Diff(flags.Diff.Args.A, flags.Diff.Args.B, key)
		if err == nil && !equal {
			return 1, nil
		}
	case "backups":
		err = repo.Backups(flags.Backups.Args.Path)
	case "restore":
		err = repo.Restore(flags.Restore.Args.Path, flags.Restore.Args.Backup, flags.Restore.Yes)
	case "check":
		if failed := repo.Check(flags.Check.Args.Paths, key); failed > 0 {
			return 1, errors.Newf("%v of %v files can not be read", failed, len(flags.Check.Args.Paths))
		}
	default:
		err = errors.Newf("Unknown command %q", flags.Command)
	}

	if err != nil {
		return 1, err
	}
	return 0, nil
}
