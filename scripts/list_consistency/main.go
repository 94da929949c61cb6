package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/noah-isme/coursework-api/internal/client"
	"github.com/noah-isme/coursework-api/internal/models"
	"github.com/noah-isme/coursework-api/pkg/listing"
)

type target struct {
	Resource string `json:"resource"`
	Query    string `json:"query"`
	Critical bool   `json:"critical"`
}

type config struct {
	Targets []target `json:"targets"`
}

type comparison struct {
	Target       target
	ServerTotal  int
	LocalTotal   int
	MembersMatch bool
	OrderMatch   bool
	Error        error
	Duration     time.Duration
}

func main() {
	var (
		base        string
		token       string
		targetsPath string
		timeout     time.Duration
	)

	flag.StringVar(&base, "base", "http://localhost:8080/api/v1", "API base URL")
	flag.StringVar(&token, "token", os.Getenv("COURSEWORK_TOKEN"), "Bearer token used for every request")
	flag.StringVar(&targetsPath, "targets", filepath.Join("scripts", "list_consistency", "targets.json"), "Path to JSON targets file")
	flag.DurationVar(&timeout, "timeout", 30*time.Second, "Per-target timeout")
	flag.Parse()

	targets, err := loadTargets(targetsPath)
	if err != nil {
		log.Fatalf("failed to load targets: %v", err)
	}

	api := client.New(base, client.WithToken(token))
	var (
		comparisons  []comparison
		breaking     int
		optionalDiff int
	)

	for _, t := range targets {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		comp := compareTarget(ctx, api, t)
		cancel()

		switch {
		case comp.Error != nil || comp.ServerTotal != comp.LocalTotal || !comp.MembersMatch:
			if t.Critical {
				breaking++
			} else {
				optionalDiff++
			}
		case !comp.OrderMatch:
			// ties between equal sort keys may legitimately differ
			optionalDiff++
		}
		comparisons = append(comparisons, comp)
	}

	printReport(comparisons)

	fmt.Printf("Breaking diffs: %d, Optional diffs: %d\n", breaking, optionalDiff)
	if breaking > 0 {
		os.Exit(1)
	}
}

func loadTargets(path string) ([]target, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	if len(cfg.Targets) == 0 {
		return nil, fmt.Errorf("no targets defined in %s", path)
	}
	return cfg.Targets, nil
}

func compareTarget(ctx context.Context, api *client.Client, tgt target) comparison {
	comp := comparison{Target: tgt}
	values, err := url.ParseQuery(tgt.Query)
	if err != nil {
		comp.Error = fmt.Errorf("parse query: %w", err)
		return comp
	}

	start := time.Now()
	switch tgt.Resource {
	case "assignments":
		q, err := listing.DecodeAssignmentQuery(values, listing.DefaultPageSize)
		if err != nil {
			comp.Error = err
			return comp
		}
		fetch := func(ctx context.Context, q listing.Query) (listing.Result[models.Assignment], error) {
			return api.ListAssignments(ctx, q)
		}
		comp = compareListing(ctx, comp, q, fetch, func(a models.Assignment) string { return a.ID })
	case "submissions":
		q, opts, err := listing.DecodeSubmissionQuery(values, listing.DefaultPageSize)
		if err != nil {
			comp.Error = err
			return comp
		}
		opts.IncludeVideoURLs = false
		fetch := func(ctx context.Context, q listing.Query) (listing.Result[models.Submission], error) {
			return api.ListSubmissions(ctx, q, opts)
		}
		comp = compareListing(ctx, comp, q, fetch, func(s models.Submission) string { return s.ID })
	default:
		comp.Error = fmt.Errorf("unknown resource %q", tgt.Resource)
	}
	comp.Duration = time.Since(start)
	return comp
}

// compareListing fetches the server's page for q, then rebuilds the same page
// locally from every record in scope.
func compareListing[T listing.Recorder](
	ctx context.Context,
	comp comparison,
	q listing.Query,
	fetch client.Fetcher[T],
	id func(T) string,
) comparison {
	served, err := fetch(ctx, q)
	if err != nil {
		comp.Error = fmt.Errorf("server listing: %w", err)
		return comp
	}

	all, err := fetchScope(ctx, q, fetch)
	if err != nil {
		comp.Error = fmt.Errorf("scope listing: %w", err)
		return comp
	}
	local := listing.Apply(all, q)

	comp.ServerTotal = served.TotalCount
	comp.LocalTotal = local.TotalCount

	serverIDs := ids(served.Items, id)
	localIDs := ids(local.Items, id)
	comp.OrderMatch = slices.Equal(serverIDs, localIDs)
	slices.Sort(serverIDs)
	slices.Sort(localIDs)
	comp.MembersMatch = slices.Equal(serverIDs, localIDs)
	return comp
}

// fetchScope pages through everything in the query's course and assignment scope.
func fetchScope[T any](ctx context.Context, q listing.Query, fetch client.Fetcher[T]) ([]T, error) {
	scope := listing.NewQuery(listing.MaxPageSize)
	scope.Filter.CourseID = q.Filter.CourseID
	scope.Filter.AssignmentID = q.Filter.AssignmentID

	var all []T
	for {
		res, err := fetch(ctx, scope)
		if err != nil {
			return nil, err
		}
		all = append(all, res.Items...)
		if scope.Page >= res.TotalPages || len(res.Items) == 0 {
			return all, nil
		}
		scope = scope.Update(listing.SetPage{Page: scope.Page + 1})
	}
}

func ids[T any](items []T, id func(T) string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, id(item))
	}
	return out
}

func printReport(results []comparison) {
	fmt.Println("List Consistency Report")
	fmt.Println("=======================")
	for _, res := range results {
		status := "OK"
		if res.Error != nil {
			status = "ERROR"
		} else if res.ServerTotal != res.LocalTotal || !res.MembersMatch || !res.OrderMatch {
			status = "DIFF"
		}
		fmt.Printf("[%s] %s ?%s (%s)\n", status, res.Target.Resource, res.Target.Query, res.Duration)
		if res.Error != nil {
			fmt.Printf("  Error: %v\n", res.Error)
			continue
		}
		fmt.Printf("  Total server/local: %d/%d\n", res.ServerTotal, res.LocalTotal)
		fmt.Printf("  Members match: %t | Order match: %t | Critical: %t\n", res.MembersMatch, res.OrderMatch, res.Target.Critical)
	}
}
