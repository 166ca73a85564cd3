package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/pkg/errors"

	"github.com/trezcool/maendeleo/core/curriculum"
)

// seedSubjects loads master subjects from a JSON file (an array of subjects
// with their outcomes) and creates them one by one.
func (cli *commandLine) seedSubjects(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "reading subjects file")
	}

	var subjects []curriculum.NewSubject
	if err := json.Unmarshal(data, &subjects); err != nil {
		return errors.Wrap(err, "parsing subjects file")
	}

	ctx := context.Background()
	for i := range subjects {
		if err := subjects[i].Validate(cli.validate); err != nil {
			return errors.Wrapf(err, "invalid subject %q", subjects[i].Name)
		}
		subj, err := cli.currSvc.Create(ctx, subjects[i])
		if err != nil {
			return errors.Wrapf(err, "creating subject %q", subjects[i].Name)
		}
		fmt.Printf("created subject %q (%s)\n", subj.Name, subj.ID)
	}
	return nil
}
