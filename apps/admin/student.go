package main

import (
	"context"
	"fmt"

	"github.com/womanacademy/renluyen/core/student"
)

func (cli *commandLine) addStudent(ctx context.Context, ns student.NewStudent) error {
	st, err := cli.studentSvc.Create(ctx, ns)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cli.stdout, "student %s (%s) added to %s with id %s\n", st.FullName, st.StudentID, st.ClassID, st.ID)
	return nil
}
