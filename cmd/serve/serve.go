package serve

import (
	"context"
	"flag"
	"log"
	"net/http"

	"github.com/google/subcommands"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/nrtkbb/dupescan/api"
	"github.com/nrtkbb/dupescan/db"
)

type Command struct {
	dbPath string
	port   string
}

func (*Command) Name() string     { return "serve" }
func (*Command) Synopsis() string { return "Start HTTP server to serve stored duplicate reports" }
func (*Command) Usage() string {
	return `serve -db <database> [-port <port>]:
  Start an HTTP server that provides REST API access to stored scan reports.
`
}

func (c *Command) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.dbPath, "db", "", "database file path (required)")
	f.StringVar(&c.port, "port", "8080", "port to listen on")
}

func (c *Command) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.dbPath == "" {
		f.Usage()
		return subcommands.ExitUsageError
	}

	// Set up database connection
	database, err := db.SetupDatabase(c.dbPath)
	if err != nil {
		log.Printf("Failed to setup database: %v", err)
		return subcommands.ExitFailure
	}
	defer database.Close()

	// Create Echo instance
	e := echo.New()

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	// Create handler
	h := api.NewHandler(database)

	// Routes
	e.GET("/api/scans", h.ListScans)
	e.GET("/api/scans/:id", h.GetScan)
	e.GET("/api/scans/:id/groups", h.ListScanGroups)
	e.GET("/api/stats", h.GetStats)

	// Start server
	log.Printf("Starting server on port %s...", c.port)
	if err := e.Start(":" + c.port); err != nil && err != http.ErrServerClosed {
		log.Printf("Failed to start server: %v", err)
		return subcommands.ExitFailure
	}

	return subcommands.ExitSuccess
}
