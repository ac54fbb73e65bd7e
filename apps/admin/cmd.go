package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/mail"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/term"

	"github.com/trezcool/studyflow/core"
	"github.com/trezcool/studyflow/core/assignment"
	"github.com/trezcool/studyflow/core/course"
	"github.com/trezcool/studyflow/core/reminder"
)

var (
	isTerminalFunc = term.IsTerminal // mockable

	errHelp       = errors.New("help provided")
	errNoDatabase = errors.New("migrate needs the postgres store (store.engine=postgres)")
)

type commandLine struct {
	conf        *core.Config
	db          *sql.DB // nil unless the postgres store is used
	courseSvc   *course.Service
	asgSvc      *assignment.Service
	reminderSvc *reminder.Service
	validate    *validator.Validate
	out         io.Writer
	outFd       int
	now         func() time.Time
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  migrate COMMAND [ARGS] - run a goose migration command (up, down, status, redo, version...)")
	fmt.Fprintln(cli.out, "  seed - create sample courses & assignments")
	fmt.Fprintln(cli.out, "  grades - print the GPA report")
	fmt.Fprintln(cli.out, "  digest -to EMAIL [-name NAME] - email the assignments that need attention")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	digestCmd := flag.NewFlagSet("digest", flag.ContinueOnError)
	digestCmd.SetOutput(cli.out)
	digestTo := digestCmd.String("to", cli.conf.Reminder.Recipient, "The recipient email.")
	digestName := digestCmd.String("name", cli.conf.Reminder.RecipientName, "The recipient name.")

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		if cli.db == nil {
			return errNoDatabase
		}
		return cli.migrate(args[2:])
	case "seed":
		return cli.seed()
	case "grades":
		return cli.grades()
	case "digest":
		if err := digestCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *digestTo == "" {
			digestCmd.Usage()
			return errHelp
		}
		addr, err := mail.ParseAddress(*digestTo)
		if err != nil {
			return err
		}
		if *digestName != "" {
			addr.Name = *digestName
		}
		return cli.digest(*addr)
	default:
		cli.printUsage()
		return errHelp
	}
}
