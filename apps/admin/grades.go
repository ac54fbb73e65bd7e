package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/pkg/errors"

	"github.com/trezcool/studyflow/core/grade"
)

const (
	ansiBold  = "\033[1m"
	ansiReset = "\033[0m"
)

// grades prints the GPA report as a table; headers are bold on a terminal.
func (cli *commandLine) grades() error {
	ctx := context.Background()
	courses, err := cli.courseSvc.QueryAll(ctx)
	if err != nil {
		return errors.Wrap(err, "querying courses")
	}
	list, err := cli.asgSvc.QueryAll(ctx)
	if err != nil {
		return errors.Wrap(err, "querying assignments")
	}
	rep := grade.NewReport(courses, list)

	bold, reset := "", ""
	if isTerminalFunc(cli.outFd) {
		bold, reset = ansiBold, ansiReset
	}

	w := tabwriter.NewWriter(cli.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%sCOURSE\tCREDITS\tGRADE\tLETTER\tPOINTS%s\n", bold, reset)
	for _, c := range rep.Courses {
		fmt.Fprintf(w, "%s\t%d\t%.1f%%\t%s\t%.1f\n", c.Name, c.Credits, c.Percentage, c.Letter.Letter, c.Point)
	}
	fmt.Fprintf(w, "%sOVERALL\t%d\t%.1f%%\t%s\t%.2f%s\n",
		bold, rep.TotalCredits, rep.OverallGPA, rep.Letter, rep.GradePointAverage, reset)
	return w.Flush()
}
