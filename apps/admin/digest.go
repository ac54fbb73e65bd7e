package main

import (
	"context"
	"fmt"
	"net/mail"

	"github.com/pkg/errors"

	"github.com/trezcool/studyflow/core/reminder"
)

func (cli *commandLine) digest(to mail.Address) error {
	ctx := context.Background()
	courses, err := cli.courseSvc.QueryAll(ctx)
	if err != nil {
		return errors.Wrap(err, "querying courses")
	}
	list, err := cli.asgSvc.QueryAll(ctx)
	if err != nil {
		return errors.Wrap(err, "querying assignments")
	}

	d := reminder.NewDigest(to.Name, courses, list, cli.now())
	if !cli.reminderSvc.Send(to, d) {
		fmt.Fprintln(cli.out, "nothing needs attention, no digest sent")
		return nil
	}
	fmt.Fprintf(cli.out, "digest of %d assignments sent to %s\n", d.Count(), to.String())
	return nil
}
