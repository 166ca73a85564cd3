package main

import (
	"context"
	"fmt"

	"github.com/trezcool/maendeleo/core/student"
)

func (cli *commandLine) addStudent(name, email string) error {
	std, err := cli.stdSvc.Create(context.Background(), student.NewStudent{Name: name, Email: email})
	if err != nil {
		return err
	}
	fmt.Printf("created student %q (%s)\n", std.Name, std.ID)
	return nil
}

// assignSubjects snapshots the current master curriculum onto the student,
// overwriting any snapshot they already hold.
func (cli *commandLine) assignSubjects(studentID string) error {
	assigned, err := cli.stdSvc.AssignSubjects(context.Background(), studentID)
	if err != nil {
		return err
	}
	fmt.Printf("assigned %d subject(s) to student %s\n", len(assigned), studentID)
	return nil
}
