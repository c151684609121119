package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/jmoiron/sqlx"

	"github.com/learningopt/immersion/core"
)

func main() {
	os.Exit(start(os.Args))
}

func start(args []string) int {
	code := 0
	must(newContainer().Invoke(func(cli *commandLine, db *sqlx.DB) {
		defer func() { _ = db.Close() }()

		if err := cli.run(args); err != nil {
			if err != errHelp {
				printError(err)
			}
			code = 1
		}
	}))
	return code
}

func printError(err error) {
	var vErr *core.ValidationError
	if errors.As(err, &vErr) && len(vErr.Fields) > 0 {
		for _, f := range vErr.Fields {
			_, _ = fmt.Fprintf(os.Stderr, "error: %s\n", f.Error)
		}
		return
	}
	_, _ = fmt.Fprintf(os.Stderr, "error: %v\n", err)
}
