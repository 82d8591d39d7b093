package cli

import (
	"errors"
	"flag"
	"fmt"
)

func runInit(args []string) error {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	dir := fs.String("dir", ".", "workspace directory")
	jsonOut := fs.Bool("json", false, "print JSON output")
	fs.SetOutput(flag.CommandLine.Output())
	if err := fs.Parse(args); err != nil {
		return err
	}

	res, err := initWorkspace(newWorkspacePaths(*dir))
	if err != nil {
		return err
	}
	if *jsonOut {
		return printJSON(res)
	}

	fmt.Println("workspace initialized")
	fmt.Printf("root: %s\n", res.Root)
	for _, d := range res.CreatedDirs {
		fmt.Printf("created: %s\n", d)
	}
	if res.CreatedConfig {
		fmt.Println("created: config.json (edit to adjust schedule and quota)")
	}
	fmt.Println("checks:")
	printChecks(res.Doctor, "  ")
	if !res.Doctor.OK {
		return errors.New("doctor checks failed")
	}
	fmt.Println("next: drop videos into clips/ and run: yt-bulk-scheduler auth")
	return nil
}

func runDoctor(args []string) error {
	fs := flag.NewFlagSet("doctor", flag.ContinueOnError)
	dir := fs.String("dir", ".", "workspace directory")
	jsonOut := fs.Bool("json", false, "print JSON output")
	fs.SetOutput(flag.CommandLine.Output())
	if err := fs.Parse(args); err != nil {
		return err
	}

	res := runDoctorChecks(newWorkspacePaths(*dir))
	if *jsonOut {
		return printJSON(res)
	}

	printChecks(res, "")
	if !res.OK {
		return errors.New("doctor checks failed")
	}
	fmt.Println("doctor: all checks passed")
	return nil
}

func printChecks(res doctorResult, indent string) {
	for _, c := range res.Checks {
		status := "ok"
		if !c.OK {
			status = "fail"
		}
		fmt.Printf("%s%s: %s (%s)\n", indent, c.Name, status, c.Message)
	}
}
