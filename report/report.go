// Package report renders a duplicate scan into the plain-text report file.
// The engine only emits raw byte counts and paths; human-readable size
// formatting and serialization live here.
package report

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"os/user"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/nrtkbb/dupescan/models"
)

// DefaultFilename is used when no output path is given, or when the given
// path is a directory.
const DefaultFilename = "dupescan_report.txt"

const timeLayout = "20060102 15:04:05"

// ResolvePath turns the user-supplied -output value into a concrete file
// path.
func ResolvePath(output string) string {
	if output == "" {
		return DefaultFilename
	}
	if info, err := os.Stat(output); err == nil && info.IsDir() {
		return filepath.Join(output, DefaultFilename)
	}
	return output
}

// WriteFile writes the report to path, creating or truncating it.
func WriteFile(path string, rep *models.Report) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating report file %s: %w", path, err)
	}
	defer file.Close()

	w := bufio.NewWriter(file)
	if err := Write(w, rep); err != nil {
		return err
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("writing report file %s: %w", path, err)
	}
	return nil
}

// Write renders the report: a header with the generating user, run times and
// scanned roots, the total potential space savings, then one block per
// duplicate group with its size and member paths. Groups arrive from the
// engine already sorted descending by size.
func Write(w io.Writer, rep *models.Report) error {
	username := "unknown"
	if u, err := user.Current(); err == nil {
		username = u.Username
	}

	fmt.Fprintln(w, "Duplicate File Finder Report")
	fmt.Fprintf(w, "Generated by: %s\n", username)
	fmt.Fprintf(w, "Start Time: %s\n", rep.Started.Format(timeLayout))
	fmt.Fprintf(w, "End Time: %s\n", rep.Finished.Format(timeLayout))
	if len(rep.Roots) == 1 {
		fmt.Fprintf(w, "Base Directory: %s\n", rep.Roots[0])
	} else {
		fmt.Fprintln(w, "Base Directories:")
		for _, root := range rep.Roots {
			fmt.Fprintf(w, " - %s\n", root)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Total Potential Space Savings: %s\n", humanize.IBytes(rep.PotentialSavings()))
	fmt.Fprintln(w)

	for i := range rep.Groups {
		group := &rep.Groups[i]
		fmt.Fprintf(w, "Size: %s\n", humanize.IBytes(group.SizeBytes))
		for _, path := range group.Paths {
			fmt.Fprintln(w, path)
		}
		fmt.Fprintln(w)
	}

	return nil
}
