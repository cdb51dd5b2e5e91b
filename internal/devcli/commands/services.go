package commands

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"strings"

	"github.com/birdiecloud/birdie-gateway-go/birdie"
	"github.com/birdiecloud/birdie-gateway-go/internal/devcli"
)

// ErrUsage marks errors caused by bad invocation rather than a failed request.
var ErrUsage = errors.New("usage")

func usagef(format string, a ...any) error {
	return fmt.Errorf("%w: %s", ErrUsage, fmt.Sprintf(format, a...))
}

// RunServices dispatches to list|show|create|update|delete subcommands.
func RunServices(args []string) error {
	if len(args) == 0 {
		return usagef("birdiectl services <list|show|create|update|delete> [flags]")
	}
	switch args[0] {
	case "list":
		return runServicesList(args[1:])
	case "show":
		return runServicesShow(args[1:])
	case "create":
		return runServicesCreate(args[1:])
	case "update":
		return runServicesUpdate(args[1:])
	case "delete":
		return runServicesDelete(args[1:])
	default:
		return usagef("unknown services subcommand %q; use list|show|create|update|delete", args[0])
	}
}

// queryFlag collects repeated -q key=value pairs.
type queryFlag map[string]string

func (q queryFlag) String() string {
	parts := make([]string, 0, len(q))
	for k, v := range q {
		parts = append(parts, k+"="+v)
	}
	return strings.Join(parts, ",")
}

func (q queryFlag) Set(s string) error {
	k, v, ok := strings.Cut(s, "=")
	if !ok || k == "" {
		return fmt.Errorf("expected key=value, got %q", s)
	}
	q[k] = v
	return nil
}

// parseData decodes a -data argument into resource attributes.
func parseData(raw string) (birdie.Resource, error) {
	var attrs birdie.Resource
	if err := json.Unmarshal([]byte(raw), &attrs); err != nil {
		return nil, usagef("-data must be a JSON object: %v", err)
	}
	return attrs, nil
}

// run parses global flags, validates required values and executes fn against
// a connected client, printing its result.
func run(fs *flag.FlagSet, args []string, required func(), fn func(context.Context, *birdie.Client) (any, error)) error {
	g, err := devcli.ParseGlobalFlagsArgs(fs, args)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}

	defer func() {
		if r := recover(); r != nil {
			devcli.Panicf("missing required flag: %v", r)
		}
	}()
	required()

	cl, logger, err := devcli.NewClient(g)
	if err != nil {
		if errors.Is(err, birdie.ErrUnsupportedVersion) {
			return fmt.Errorf("%w: %v", ErrUsage, err)
		}
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := devcli.Ctx(g)
	defer cancel()

	out, err := fn(ctx, cl)
	if err != nil {
		return err
	}
	if out != nil {
		devcli.PrintJSON(out)
	}
	return nil
}

func runServicesList(args []string) error {
	fs := flag.NewFlagSet("services list", flag.ContinueOnError)
	detail := fs.Bool("detail", false, "Request the detailed view")
	query := queryFlag{}
	fs.Var(query, "q", "Search filter key=value (repeatable)")
	limit := fs.Int("limit", 0, "Page size; when set, all pages are fetched with limit/marker")

	return run(fs, args, func() {}, func(ctx context.Context, cl *birdie.Client) (any, error) {
		if *limit <= 0 {
			return cl.VServices.ListServices(ctx, *detail, query)
		}
		p := &birdie.Pager{Services: cl.VServices, Detailed: *detail, Search: query, Limit: *limit}
		all := []birdie.Resource{}
		for !p.Done {
			page, err := p.Next(ctx)
			if err != nil {
				return nil, err
			}
			all = append(all, page...)
		}
		return all, nil
	})
}

func runServicesShow(args []string) error {
	fs := flag.NewFlagSet("services show", flag.ContinueOnError)
	id := fs.String("id", "", "Service ID")

	return run(fs, args, func() { devcli.MustNonEmpty(*id, "-id") },
		func(ctx context.Context, cl *birdie.Client) (any, error) {
			return cl.VServices.GetService(ctx, *id)
		})
}

func runServicesCreate(args []string) error {
	fs := flag.NewFlagSet("services create", flag.ContinueOnError)
	data := fs.String("data", "", "Service attributes as a JSON object")

	return run(fs, args, func() { devcli.MustNonEmpty(*data, "-data") },
		func(ctx context.Context, cl *birdie.Client) (any, error) {
			attrs, err := parseData(*data)
			if err != nil {
				return nil, err
			}
			return cl.VServices.CreateService(ctx, attrs)
		})
}

func runServicesUpdate(args []string) error {
	fs := flag.NewFlagSet("services update", flag.ContinueOnError)
	id := fs.String("id", "", "Service ID")
	data := fs.String("data", "", "Changed attributes as a JSON object")

	return run(fs, args, func() {
		devcli.MustNonEmpty(*id, "-id")
		devcli.MustNonEmpty(*data, "-data")
	}, func(ctx context.Context, cl *birdie.Client) (any, error) {
		attrs, err := parseData(*data)
		if err != nil {
			return nil, err
		}
		out, err := cl.VServices.UpdateService(ctx, *id, attrs)
		if err != nil || out == nil {
			return nil, err
		}
		return out, nil
	})
}

func runServicesDelete(args []string) error {
	fs := flag.NewFlagSet("services delete", flag.ContinueOnError)
	id := fs.String("id", "", "Service ID")

	return run(fs, args, func() { devcli.MustNonEmpty(*id, "-id") },
		func(ctx context.Context, cl *birdie.Client) (any, error) {
			if err := cl.VServices.DeleteService(ctx, *id); err != nil {
				return nil, err
			}
			return map[string]any{"deleted": *id}, nil
		})
}
