package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/goccy/go-json"

	"github.com/okian/skillmatch/internal/client"
	"github.com/okian/skillmatch/internal/domain/model"
	"github.com/okian/skillmatch/internal/domain/types"
	"github.com/okian/skillmatch/pkg/logger"
)

// Default configuration constants.
const (
	defaultTopN    = 10
	defaultWorkers = 4
	defaultTimeout = 30 * time.Second
)

func main() {
	var (
		baseURL = flag.String("url", "http://localhost:9080", "Base URL of the service")
		task    = flag.String("task", "", "Comma separated task skills, e.g. \"python, sql\"")
		topN    = flag.Int("top", defaultTopN, "Number of recommendations")
		async   = flag.Bool("async", false, "Submit as a job and wait for the result")
		jobID   = flag.String("job-id", "", "Job id for -async (generated when empty)")
		batch   = flag.String("batch", "", "File with one task per line; - reads stdin")
		workers = flag.Int("workers", defaultWorkers, "Concurrent requests for -batch")
		timeout = flag.Duration("timeout", defaultTimeout, "Overall timeout")
		asJSON  = flag.Bool("json", false, "Print JSON instead of a table")
		verbose = flag.Bool("verbose", false, "Enable debug logging")
	)
	flag.Usage = usage
	flag.Parse()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	if *verbose {
		_ = logger.SetLevelString("debug")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	c := client.New(*baseURL, client.WithTimeout(*timeout))
	out := os.Stdout

	var err error
	switch {
	case *batch != "":
		err = runBatch(ctx, c, *batch, *topN, *workers, *async, *asJSON, out)
	case *task != "":
		err = runSingle(ctx, c, model.JobRequest{JobID: *jobID, TaskSkills: *task, TopN: *topN}, *async, *asJSON, out)
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		logger.Get().Error(ctx, "recommend failed", logger.Error(err))
		cancel()
		os.Exit(1)
	}
}

func runSingle(ctx context.Context, c *client.Client, req model.JobRequest, async, asJSON bool, out io.Writer) error {
	log := logger.Get()
	var recs []types.Recommendation
	if async {
		job, created, err := c.SubmitJob(ctx, req)
		if err != nil {
			return err
		}
		log.Debug(ctx, "job submitted", logger.String("job_id", job.ID), logger.Bool("created", created))
		job, err = c.WaitJob(ctx, job.ID)
		if err != nil {
			return err
		}
		if job.Status == types.JobFailed {
			return fmt.Errorf("job %s failed: %s", job.ID, job.Error)
		}
		recs = job.Results
	} else {
		var err error
		if recs, err = c.Recommend(ctx, req.TaskSkills, req.TopN); err != nil {
			return err
		}
	}

	if asJSON {
		return json.NewEncoder(out).Encode(recs)
	}
	return client.WriteTable(out, recs)
}

func runBatch(ctx context.Context, c *client.Client, path string, topN, workers int, async, asJSON bool, out io.Writer) error {
	tasks, err := readTasks(path)
	if err != nil {
		return err
	}

	results, stats, err := client.NewBatch(c, workers, topN, async).Run(ctx, tasks)
	if err != nil {
		return err
	}
	logger.Get().Info(ctx, "batch completed",
		logger.Int("submitted", stats.Submitted),
		logger.Int("succeeded", stats.Succeeded),
		logger.Int("duplicate", stats.Duplicate),
		logger.Int("failed", stats.Failed),
		logger.Duration("duration", stats.Duration))

	if asJSON {
		return json.NewEncoder(out).Encode(results)
	}
	for _, r := range results {
		fmt.Fprintf(out, "\n== %s\n", r.Task)
		if r.Err != nil {
			fmt.Fprintf(out, "error: %v\n", r.Err)
			continue
		}
		if err := client.WriteTable(out, r.Recommendations); err != nil {
			return err
		}
	}
	return nil
}

// readTasks reads non-empty, non-comment lines.
func readTasks(path string) ([]string, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer func() { _ = f.Close() }()
		r = f
	}

	var tasks []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		tasks = append(tasks, line)
	}
	return tasks, sc.Err()
}

func usage() {
	os.Stderr.WriteString(`Skillmatch recommend tool

Usage:
  recommend -task "python, sql" [-top 5] [-async] [-json]
  recommend -batch tasks.txt [-workers 8] [-async]

Options:
`)
	flag.PrintDefaults()
}
