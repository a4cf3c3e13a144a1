// Command manage runs administrative tasks: database migrations, token
// cleanup and object storage operations.
//
//	manage migrate
//	manage flushexpiredtokens
//	manage storage put ./avatar.png avatars/1.png
//	manage storage get avatars/1.png ./avatar.png
//	manage storage rm avatars/1.png
//	manage storage ls avatars/
//	manage storage url avatars/1.png
//	manage storage image ./avatar.png avatars
package main

import (
	"errors"
	"io"
	"os"

	"github.com/jessevdk/go-flags"
)

// Options are the global flags shared by every command.
type Options struct {
	ConfigFile string `short:"c" long:"config" description:"Config file (default: cmd/manage/config.yml, config/config.yml or config.yml)"`
	EnvFile    string `short:"e" long:"env-file" description:"Env file loaded before the environment is read"`
	Verbose    bool   `short:"v" long:"verbose" description:"Log at debug level"`

	Migrate            MigrateCommand            `command:"migrate" description:"Create or update the database tables"`
	FlushExpiredTokens FlushExpiredTokensCommand `command:"flushexpiredtokens" description:"Delete expired refresh tokens and their blacklist entries"`
	Storage            StorageCommand            `command:"storage" description:"Operate on objects in the storage bucket"`
}

var (
	opts   Options
	stdout io.Writer = os.Stdout
)

func main() {
	if err := parse(os.Args[1:]); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}
}

// parse runs the command selected by args.
func parse(args []string) error {
	opts = Options{}
	parser := flags.NewParser(&opts, flags.Default)
	_, err := parser.ParseArgs(args)
	return err
}
