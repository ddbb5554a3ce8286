package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"nltrack/internal/di"
	"nltrack/internal/statistic"
	"nltrack/internal/structures"
)

const usage = `usage: nltrack <command> [flags]

commands:
  serve                               run the tracking and stats HTTP server (default)
  snapshot [-date YYYY-MM-DD]         regenerate one day, or the configured lookback window
  issue -sub ID -nwl ID [-art ID] [-store]
                                      mint a tracking token
  audit -date YYYY-MM-DD              compare a day's archived snapshot with the store
  revoke -token TOKEN                 revoke one token
  revoke-subject -sub ID              revoke every stored token of a subject
`

func main() {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	command := "serve"
	args := os.Args[1:]
	if len(args) > 0 && args[0] != "" && args[0][0] != '-' {
		command, args = args[0], args[1:]
	}

	if err := run(command, args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var commandNames = map[string]bool{
	"serve": true, "snapshot": true, "audit": true,
	"issue": true, "revoke": true, "revoke-subject": true,
}

func run(command string, args []string) error {
	fs := flag.NewFlagSet(command, flag.ContinueOnError)
	fs.Usage = func() { fmt.Fprint(fs.Output(), usage) }
	if !commandNames[command] {
		fs.Usage()
		return fmt.Errorf("unknown command %q", command)
	}

	flags := &structures.CliFlags{}
	fs.StringVar(&flags.ConfigPath, "config", "config.yml", "path to config file")
	fs.BoolVar(&flags.DebugMode, "debug", false, "debug mode")

	date := fs.String("date", "", "snapshot date (YYYY-MM-DD)")
	subject := fs.String("sub", "", "subject id")
	newsletter := fs.String("nwl", "", "newsletter id")
	article := fs.String("art", "", "article id")
	store := fs.Bool("store", false, "persist the token hash for revocation")
	token := fs.String("token", "", "tracking token")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if command == "serve" {
		app, cleanup, err := di.InitApp(flags)
		if err != nil {
			return err
		}
		defer cleanup()
		return app.Run()
	}

	commands, cleanup, err := di.InitCommands(flags)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx := context.Background()
	switch command {
	case "snapshot":
		return commands.Snapshot(ctx, *date)
	case "audit":
		if *date == "" {
			return fmt.Errorf("audit: -date is required")
		}
		audit, err := commands.Audit(ctx, *date)
		if err != nil {
			return err
		}
		printAudit(audit)
		if !audit.Clean() {
			return fmt.Errorf("audit %s: store differs from archive", audit.Date)
		}
		return nil
	case "issue":
		t, err := commands.Issue(ctx, *subject, *newsletter, *article, *store)
		if err != nil {
			return err
		}
		fmt.Println(t)
		return nil
	case "revoke":
		if *token == "" {
			return fmt.Errorf("revoke: -token is required")
		}
		return commands.Revoke(ctx, *token)
	case "revoke-subject":
		if *subject == "" {
			return fmt.Errorf("revoke-subject: -sub is required")
		}
		return commands.RevokeSubject(ctx, *subject)
	}
	return nil
}

func printAudit(audit *statistic.SnapshotAudit) {
	fmt.Printf("%s: %d matching\n", audit.Date, audit.Matching)
	for _, r := range audit.Missing {
		fmt.Printf("  missing     %s %s = %g\n", r.ArticleID, r.MetricName, r.MetricValue)
	}
	for _, r := range audit.Unexpected {
		fmt.Printf("  unexpected  %s %s = %g\n", r.ArticleID, r.MetricName, r.MetricValue)
	}
	for _, ch := range audit.Changed {
		fmt.Printf("  changed     %s %s: archived %g, stored %g\n", ch.ArticleID, ch.MetricName, ch.Archived, ch.Stored)
	}
}
