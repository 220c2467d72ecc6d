package scan

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/google/subcommands"
	"github.com/nrtkbb/dupescan/app"
	"github.com/nrtkbb/dupescan/db"
	"github.com/nrtkbb/dupescan/dedup"
	"github.com/nrtkbb/dupescan/models"
	"github.com/nrtkbb/dupescan/report"
	"github.com/nrtkbb/dupescan/walker"
)

const defaultLogFilename = "dupescan.log"

// multiFlag collects a repeatable string flag.
type multiFlag []string

func (m *multiFlag) String() string { return strings.Join(*m, ",") }

func (m *multiFlag) Set(value string) error {
	*m = append(*m, value)
	return nil
}

type Command struct {
	roots         multiFlag
	output        string
	dbPath        string
	logPath       string
	workers       int
	quickBytes    int64
	skipEmpty     bool
	skipHardlinks bool
}

func (*Command) Name() string     { return "scan" }
func (*Command) Synopsis() string { return "Scan directories for duplicate files" }
func (*Command) Usage() string {
	return `scan [-root <directory>]... [-output <file|dir>] [-db <database>] [-workers <n>] [-quick-bytes <n>] [-skip-empty] [-skip-hardlinks]:
  Scan one or more directories recursively, group files with identical content,
  and write a duplicate report. With -db the report is also stored in SQLite.
`
}

func (c *Command) SetFlags(f *flag.FlagSet) {
	f.Var(&c.roots, "root", "directory to scan (repeatable; default: current directory)")
	f.StringVar(&c.output, "output", "", "report file or directory (default: "+report.DefaultFilename+")")
	f.StringVar(&c.dbPath, "db", "", "also store the report in this SQLite database")
	f.StringVar(&c.logPath, "log", defaultLogFilename, "log file path")
	f.IntVar(&c.workers, "workers", 0, "hashing workers (default: logical CPU count)")
	f.Int64Var(&c.quickBytes, "quick-bytes", 0, "quick hash read budget in bytes (default: 8192)")
	f.BoolVar(&c.skipEmpty, "skip-empty", false, "exclude zero-byte files instead of grouping them")
	f.BoolVar(&c.skipHardlinks, "skip-hardlinks", false, "count hardlinked paths only once")
}

func (c *Command) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	appCtx := app.NewAppContext(ctx)
	defer appCtx.PerformCleanup()

	setupSignalHandling(appCtx)
	c.setupLogging(appCtx)

	roots := c.resolveRoots()
	if err := walker.ValidateRoots(roots); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		log.Printf("Error: %v", err)
		return subcommands.ExitFailure
	}

	if len(roots) == 1 {
		log.Printf("Starting scan of %s", roots[0])
	} else {
		log.Printf("Starting scan of %d directories", len(roots))
	}

	entries, err := walker.Collect(appCtx.Context, roots, walker.Options{
		SkipHardlinks: c.skipHardlinks,
	})
	if err != nil && err != context.Canceled {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		log.Printf("Error: %v", err)
		return subcommands.ExitFailure
	}
	log.Printf("%d files identified across %d directories", len(entries), len(roots))

	grouper := dedup.NewGrouper(dedup.Config{
		Workers:    c.workers,
		QuickBytes: c.quickBytes,
		SkipEmpty:  c.skipEmpty,
	}, dedup.LogNotifier{}, appCtx.Stats)

	rep := grouper.Run(appCtx.Context, roots, entries)

	if len(rep.Groups) == 0 {
		fmt.Println("No duplicate files found.")
		log.Println("No duplicate files found.")
	} else {
		outputPath := report.ResolvePath(c.output)
		if err := report.WriteFile(outputPath, &rep); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing report: %v\n", err)
			log.Printf("Error writing report: %v", err)
			return subcommands.ExitFailure
		}
		fmt.Printf("Duplicate file report saved to %s\n", outputPath)
		log.Printf("Duplicate file report saved to %s", outputPath)
	}

	if c.dbPath != "" {
		c.storeReport(appCtx, &rep)
	}

	// Log final statistics
	elapsed := time.Since(appCtx.Stats.StartTime)
	discovered := atomic.LoadInt64(&appCtx.Stats.DiscoveredFiles)
	hashedBytes := atomic.LoadInt64(&appCtx.Stats.HashedBytes)

	log.Printf("Scan completed in %v", elapsed)
	log.Printf("Examined %d files, hashed %.2f GB, found %d duplicate groups",
		discovered,
		float64(hashedBytes)/(1024*1024*1024),
		len(rep.Groups),
	)

	return subcommands.ExitSuccess
}

// resolveRoots turns the -root flags into absolute paths, defaulting to the
// current directory when none is given.
func (c *Command) resolveRoots() []string {
	roots := []string(c.roots)
	if len(roots) == 0 {
		if cwd, err := os.Getwd(); err == nil {
			roots = []string{cwd}
		}
	}
	for i, root := range roots {
		if abs, err := filepath.Abs(root); err == nil {
			roots[i] = abs
		}
	}
	return roots
}

// setupLogging tees the standard logger into the log file so warnings stay
// visible after the run without cluttering the console report output.
func (c *Command) setupLogging(appCtx *app.AppContext) {
	file, err := os.OpenFile(c.logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		log.Printf("Warning: Cannot open log file %s: %v", c.logPath, err)
		return
	}
	appCtx.LogFile = file
	log.SetOutput(io.MultiWriter(os.Stderr, file))
}

// storeReport persists the report when -db is given. A storage failure does
// not invalidate the report that was already written.
func (c *Command) storeReport(appCtx *app.AppContext, rep *models.Report) {
	database, err := db.SetupDatabase(c.dbPath)
	if err != nil {
		log.Printf("Warning: Failed to open report database: %v", err)
		return
	}
	appCtx.DB = database

	discovered := atomic.LoadInt64(&appCtx.Stats.DiscoveredFiles)
	scanID, err := db.SaveReport(database, rep, discovered)
	if err != nil {
		log.Printf("Warning: Failed to store report: %v", err)
		return
	}
	log.Printf("Report stored in %s (scan id %d)", c.dbPath, scanID)
}

func setupSignalHandling(app *app.AppContext) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Force quit flag
	var forceQuit atomic.Bool

	go func() {
		for sig := range sigChan {
			log.Printf("Received signal: %v", sig)
			if forceQuit.Load() {
				log.Println("Forcing immediate shutdown...")
				os.Exit(1)
			}

			forceQuit.Store(true)
			log.Println("Press Ctrl+C again to force quit. Wait for normal shutdown to complete...")
			app.Cancel() // Cancel context to notify goroutines

			// Reset forceQuit flag after 5 seconds
			go func() {
				time.Sleep(5 * time.Second)
				forceQuit.Store(false)
			}()
		}
	}()
}
