package cli

import "fmt"

func Run(args []string) error {
	if len(args) == 0 {
		printRootUsage()
		return nil
	}

	switch args[0] {
	case "upload":
		return runUpload(args[1:])
	case "auth":
		return runAuth(args[1:])
	case "history":
		return runHistory(args[1:])
	case "status":
		return runStatus(args[1:])
	case "quota":
		return runQuota(args[1:])
	case "review":
		return runReview(args[1:])
	case "init":
		return runInit(args[1:])
	case "doctor":
		return runDoctor(args[1:])
	case "help", "-h", "--help":
		printRootUsage()
		return nil
	default:
		printRootUsage()
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func printRootUsage() {
	fmt.Println("yt-bulk-scheduler: batch-schedule video uploads from a local folder")
	fmt.Println()
	fmt.Println("Quick Start:")
	fmt.Println("  yt-bulk-scheduler init")
	fmt.Println("  yt-bulk-scheduler auth")
	fmt.Println("  yt-bulk-scheduler upload --dry-run")
	fmt.Println("  yt-bulk-scheduler upload")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  init      create the workspace layout and a starter config")
	fmt.Println("  doctor    run workspace and credential preflight checks")
	fmt.Println("  auth      interactive OAuth flow; stores a refresh token")
	fmt.Println("  upload    upload pending clips with scheduled publish times")
	fmt.Println("  history   print recent upload history")
	fmt.Println("  status    workspace rollup: pending clips, quota, lock, last run")
	fmt.Println("  quota     show today's quota window usage")
	fmt.Println("  review    interactive upload history browser")
	fmt.Println()
	fmt.Println("Notes:")
	fmt.Println("  - Use --json on commands for machine-readable output")
	fmt.Println("  - Use --dir to point at a workspace other than the current directory")
}
