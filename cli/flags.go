package cli

import (
	"os"

	"github.com/cockroachdb/errors"
	goFlags "github.com/jessevdk/go-flags"
)

// Flags represents command line flags
type Flags struct {
	Version        bool   `short:"v" long:"version"        description:"Print the program version"`
	LogLevel       string `short:"l" long:"logLevel"       description:"Logging level: trace, debug, info, warn or error"`
	ProgramCfgPath string `short:"c" long:"programCfgPath" description:"Program config file path to read from or initialize a default"`
	Key            string `short:"k" long:"key"            description:"Passphrase of settings files. If empty, taken from environment variable set in program config"`

	Show    Show    `command:"show"    description:"Print settings file"`
	Merge   Merge   `command:"merge"   description:"Merge source settings into target settings file"`
	Convert Convert `command:"convert" description:"Write settings file in another format or with another passphrase"`
	Diff    Diff    `command:"diff"    description:"Print differences between two settings files"`
	Backups Backups `command:"backups" description:"List backups of settings file"`
	Restore Restore `command:"restore" description:"Replace settings file with one of its backups"`
	Check   Check   `command:"check"   description:"Check that settings files can be read"`

	// Command represents name of the command given, empty if none
	Command string `no-flag:"true"`
}

// Show represents 'show' command flags
type Show struct {
	Format string `short:"f" long:"format" description:"Format to print in: json or yaml. Same as file format if empty"`
	Args   struct {
		Path string `positional-arg-name:"path"`
	} `positional-args:"yes" required:"yes"`
}

// Merge represents 'merge' command flags
type Merge struct {
	SourceKey string `long:"sourceKey" description:"Passphrase of source settings. Same as --key if empty"`
	Args      struct {
		Target string `positional-arg-name:"target"`
		Source string `positional-arg-name:"source" description:"Local file or URL"`
	} `positional-args:"yes" required:"yes"`
}

// Convert represents 'convert' command flags
type Convert struct {
	OutKey string `long:"outKey" description:"Passphrase of output file. Output is not encrypted if empty"`
	Args   struct {
		In  string `positional-arg-name:"in"`
		Out string `positional-arg-name:"out"`
	} `positional-args:"yes" required:"yes"`
}

// Diff represents 'diff' command flags
type Diff struct {
	Args struct {
		A string `positional-arg-name:"a"`
		B string `positional-arg-name:"b"`
	} `positional-args:"yes" required:"yes"`
}

// Backups represents 'backups' command flags
type Backups struct {
	Args struct {
		Path string `positional-arg-name:"path"`
	} `positional-args:"yes" required:"yes"`
}

// Restore represents 'restore' command flags
type Restore struct {
	Yes  bool `short:"y" long:"yes" description:"Do not ask for confirmation"`
	Args struct {
		Path   string `positional-arg-name:"path" required:"yes"`
		Backup string `positional-arg-name:"backup" description:"Backup file name or path. The newest backup if empty"`
	} `positional-args:"yes"`
}

// Check represents 'check' command flags
type Check struct {
	Args struct {
		Paths []string `positional-arg-name:"path" required:"1"`
	} `positional-args:"yes" required:"yes"`
}

// Parse returns a structure initialized with command line arguments and error if parsing failed
func Parse() (Flags, error) {
	return ParseArgs(os.Args[1:])
}

// ParseArgs returns a structure initialized with <args> and error if parsing failed
func ParseArgs(args []string) (Flags, error) {
	flags := Flags{
		// Set defaults
		LogLevel:       "info",
		ProgramCfgPath: "smartsettings.yaml",
	}
	parser := goFlags.NewParser(&flags, goFlags.Options(goFlags.Default))
	parser.SubcommandsOptional = true
	rest, err := parser.ParseArgs(args)
	if parser.Active != nil {
		flags.Command = parser.Active.Name
	}
	if err == nil && len(rest) > 0 {
		err = &goFlags.Error{Type: goFlags.ErrUnknownCommand, Message: "Unknown command `" + rest[0] + "'"}
	}
	return flags, errors.Wrap(err, "Parse CLI arguments")
}

// IsErrOfType returns true if <err> is of type <t>
func IsErrOfType(err error, t goFlags.ErrorType) bool {
	goFlagsErr := &goFlags.Error{}
	if ok := errors.As(err, &goFlagsErr); ok && goFlagsErr.Type == t {
		return true
	}
	return false
}
