package app

import (
	"context"
	"database/sql"
	"log"
	"sync"
	"time"

	"github.com/nrtkbb/dupescan/models"
)

// AppContext carries the shared state of one scan run: the optional report
// database, progress counters, and the cancellation plumbing used by signal
// handling.
type AppContext struct {
	DB      *sql.DB
	Wg      *sync.WaitGroup
	Stats   *models.ProgressStats
	Context context.Context
	Cancel  context.CancelFunc
	Cleanup sync.Once
	LogFile interface{ Close() error }
}

func NewAppContext(parentCtx context.Context) *AppContext {
	ctx, cancel := context.WithCancel(parentCtx)
	return &AppContext{
		Context: ctx,
		Wg:      &sync.WaitGroup{},
		Cancel:  cancel,
		Stats:   NewProgressStats(),
	}
}

func NewProgressStats() *models.ProgressStats {
	return &models.ProgressStats{StartTime: time.Now()}
}

func (app *AppContext) PerformCleanup() {
	app.Cleanup.Do(func() {
		log.Println("Starting shutdown...")

		if app.Wg != nil {
			log.Println("Waiting for pending operations to complete...")
			app.Wg.Wait()
		}

		if app.DB != nil {
			log.Println("Cleaning up database...")

			// Force WAL checkpoint before closing
			if _, err := app.DB.Exec("PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
				log.Printf("Error executing WAL checkpoint: %v", err)
			}

			if err := app.DB.Close(); err != nil {
				log.Printf("Error closing database: %v", err)
			}
		}

		if app.LogFile != nil {
			app.LogFile.Close()
		}

		log.Println("Graceful shutdown completed")
	})
}
