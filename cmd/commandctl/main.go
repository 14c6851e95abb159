// commandctl is a console for commandkit services: list the commands a
// service exposes and run one with a JSON attributes payload.
//
// Exit codes: 0 success outcome, 1 failure outcome, 2 usage, transport or
// remote fault.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/goccy/go-json"

	"github.com/plaenen/commandkit/pkg/command"
	cknats "github.com/plaenen/commandkit/pkg/nats"
)

func usage() {
	fmt.Fprintf(os.Stderr, "Usage:\n")
	fmt.Fprintf(os.Stderr, "  %s [flags] manifests\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "  %s [flags] run <command-name> [-d '{\"attr\": value}']\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "\nFlags:\n")
	flag.PrintDefaults()
	fmt.Fprintf(os.Stderr, "\nExamples:\n")
	fmt.Fprintf(os.Stderr, "  %s -url nats://localhost:4222 manifests\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "  %s run bank.Deposit -d '{\"account_id\": 1, \"amount\": \"25.50\"}'\n", os.Args[0])
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "commandctl: %v\n", err)
	os.Exit(2)
}

func main() {
	cfg, err := cknats.ClientConfigFromEnv()
	if err != nil {
		fatal(err)
	}

	flag.StringVar(&cfg.URL, "url", cfg.URL, "NATS server URL")
	flag.StringVar(&cfg.SubjectPrefix, "prefix", cfg.SubjectPrefix, "command subject prefix")
	flag.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "request timeout")
	principal := flag.String("principal", "", "principal id sent with the request")
	correlation := flag.String("correlation", "", "correlation id sent with the request")
	flag.Usage = usage
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(2)
	}

	ctx := context.Background()
	if *principal != "" {
		ctx = command.WithPrincipalID(ctx, *principal)
	}
	if *correlation != "" {
		ctx = command.WithCorrelationID(ctx, *correlation)
	}

	client, err := cknats.NewClient(ctx, cfg)
	if err != nil {
		fatal(err)
	}
	defer client.Close()

	switch args[0] {
	case "manifests":
		manifests, err := client.Manifests(ctx)
		if err != nil {
			fatal(err)
		}
		printJSON(manifests)

	case "run":
		if len(args) < 2 {
			usage()
			os.Exit(2)
		}
		name := args[1]

		runFlags := flag.NewFlagSet("run", flag.ExitOnError)
		data := runFlags.String("d", "{}", "JSON object with the command attributes")
		if err := runFlags.Parse(args[2:]); err != nil {
			os.Exit(2)
		}

		var attrs command.Attributes
		if err := json.Unmarshal([]byte(*data), &attrs); err != nil {
			fatal(fmt.Errorf("-d must be a JSON object: %w", err))
		}

		outcome, err := client.Call(ctx, name, attrs)
		if err != nil {
			fatal(err)
		}
		if outcome.IsFailure() {
			printJSON(cknats.Envelope{Success: false, Errors: outcome.Errors()})
			os.Exit(1)
		}
		printJSON(cknats.Envelope{Success: true, Result: outcome.Result()})

	default:
		fmt.Fprintf(os.Stderr, "commandctl: unknown subcommand %q\n\n", args[0])
		usage()
		os.Exit(2)
	}
}

func printJSON(v any) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fatal(err)
	}
	fmt.Println(string(out))
}
