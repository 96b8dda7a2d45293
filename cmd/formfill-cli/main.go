package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"

	"github.com/goliatone/go-formfill"
	"github.com/goliatone/go-formfill/internal/config"
	"github.com/goliatone/go-formfill/pkg/client"
	"github.com/goliatone/go-formfill/pkg/formview"
	"github.com/goliatone/go-formfill/pkg/renderers/tui"
	"github.com/goliatone/go-formfill/pkg/schema"
	"github.com/goliatone/go-formfill/pkg/submission"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	source := flag.String("form", "", "form definition file (JSON or YAML)")
	formID := flag.String("id", "", "form id to fetch from -backend")
	backendURL := flag.String("backend", cfg.BackendURL, "remote backend URL")
	format := flag.String("format", string(tui.OutputFormatPrettyText), "answer output format: json, form, or pretty")
	output := flag.String("output", "", "output file for the answers (stdout if empty)")
	domain := flag.String("domain", cfg.PublicOrigin, "domain reported with the submission")
	confirm := flag.Bool("confirm", true, "ask before submitting")
	dryRun := flag.Bool("dry-run", false, "validate and print answers without submitting")
	flag.Parse()

	logger, err := cfg.Logger(os.Stderr)
	if err != nil {
		log.Fatalf("configure logger: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	form, submitter, err := resolve(ctx, cfg, *source, *formID, *backendURL)
	if err != nil {
		log.Fatalf("load form: %v", err)
	}
	if *dryRun {
		submitter = submission.SubmitterFunc(func(context.Context, submission.Submission) (submission.Ack, error) {
			return submission.Ack{Success: true}, nil
		})
	}

	renderer, err := tui.New(
		tui.WithOutputFormat(tui.OutputFormat(*format)),
		tui.WithConfirmSubmit(*confirm && !*dryRun),
	)
	if err != nil {
		log.Fatalf("configure renderer: %v", err)
	}

	view := formfill.NewView(form, submitter, formview.WithMachineOptions(
		submission.WithLogger(logger),
		submission.WithDomain(*domain),
		submission.WithRedirectDelay(0),
	))

	outcome, err := renderer.Fill(ctx, view)
	switch {
	case errors.Is(err, tui.ErrAborted), errors.Is(err, tui.ErrDeclined):
		fmt.Fprintln(os.Stderr, "Nothing was submitted.")
		os.Exit(1)
	case err != nil:
		log.Fatalf("fill form: %v", err)
	case outcome.State != submission.StateSuccess:
		log.Fatalf("form ended in state %s", outcome.State)
	}

	payload, err := renderer.Payload(view)
	if err != nil {
		log.Fatalf("serialize answers: %v", err)
	}
	if *output != "" {
		if err := os.WriteFile(*output, payload, 0o644); err != nil {
			log.Fatalf("write output: %v", err)
		}
		fmt.Printf("Answers written to %s\n", *output)
		return
	}
	fmt.Println(string(payload))
}

// resolve loads the form from a file or the backend and picks where the
// answers go. Local files submit to an in-memory backend unless a remote one
// is configured.
func resolve(ctx context.Context, cfg config.Config, source, formID, backendURL string) (schema.Form, submission.Submitter, error) {
	source = strings.TrimSpace(source)
	backendURL = strings.TrimSpace(backendURL)

	var remote *client.Service
	if backendURL != "" {
		svc, err := formfill.NewHTTPService(backendURL,
			[]client.HTTPOption{client.WithTimeout(cfg.Timeout)},
			client.WithServiceID(cfg.ServiceID),
		)
		if err != nil {
			return schema.Form{}, nil, err
		}
		remote = svc
	}

	switch {
	case source != "":
		form, err := formfill.LoadForm(source)
		if err != nil {
			return schema.Form{}, nil, err
		}
		if remote != nil {
			return form, remote, nil
		}
		catalog, err := schema.NewCatalog(form)
		if err != nil {
			return schema.Form{}, nil, err
		}
		svc, _ := formfill.NewMemoryService(catalog)
		return form, svc, nil
	case formID != "" && remote != nil:
		form, err := remote.PublicForm(ctx, formID)
		if err != nil {
			return schema.Form{}, nil, err
		}
		return form, remote, nil
	default:
		return schema.Form{}, nil, errors.New("either -form or -id with -backend is required")
	}
}
