package main

import (
	"errors"
	"flag"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"

	"github.com/trezcool/maendeleo/core/curriculum"
	"github.com/trezcool/maendeleo/core/student"
)

var errHelp = errors.New("help provided")

type commandLine struct {
	db       *sqlx.DB
	currSvc  curriculum.Service
	stdSvc   student.Service
	validate *validator.Validate
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  migrate COMMAND [ARGS]                  - run DB migrations (goose commands)")
	fmt.Println("  seedsubjects -file PATH                 - load master subjects from a JSON file")
	fmt.Println("  addstudent -name NAME -email EMAIL      - register a new student")
	fmt.Println("  assignsubjects -student ID              - snapshot the current curriculum onto a student")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	seedCmd := flag.NewFlagSet("seedsubjects", flag.ExitOnError)
	seedFile := seedCmd.String("file", "", "Path to a JSON file holding an array of subjects.")

	addStudentCmd := flag.NewFlagSet("addstudent", flag.ExitOnError)
	addStudentName := addStudentCmd.String("name", "", "The student's full name.")
	addStudentEmail := addStudentCmd.String("email", "", "The student's email address.")

	assignCmd := flag.NewFlagSet("assignsubjects", flag.ExitOnError)
	assignStudentID := assignCmd.String("student", "", "The student's ID. Any existing snapshot is overwritten.")

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	case "seedsubjects":
		if err := seedCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *seedFile == "" {
			seedCmd.Usage()
			return errHelp
		}
		return cli.seedSubjects(*seedFile)
	case "addstudent":
		if err := addStudentCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *addStudentName == "" || *addStudentEmail == "" {
			addStudentCmd.Usage()
			return errHelp
		}
		return cli.addStudent(*addStudentName, *addStudentEmail)
	case "assignsubjects":
		if err := assignCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *assignStudentID == "" {
			assignCmd.Usage()
			return errHelp
		}
		return cli.assignSubjects(*assignStudentID)
	default:
		cli.printUsage()
		return errHelp
	}
}
