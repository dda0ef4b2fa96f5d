package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"gopkg.in/yaml.v3"

	"github.com/sdejongh/cpverify/pkg/models"
)

// Report formats
const (
	FormatHuman = "human"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

// ValidReportFormat reports whether format is supported
func ValidReportFormat(format string) bool {
	switch format {
	case FormatHuman, FormatJSON, FormatYAML:
		return true
	}
	return false
}

// WriteReportFile writes the verification report to path in the given format.
// The file is written even when every file matched.
func WriteReportFile(report *models.VerifyReport, path, format string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}

	if err := WriteReport(file, report, format); err != nil {
		file.Close()
		return err
	}

	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close report file: %w", err)
	}
	return nil
}

// WriteReport writes the report to w
func WriteReport(w io.Writer, report *models.VerifyReport, format string) error {
	switch format {
	case FormatJSON:
		return writeReportJSON(report, w)
	case FormatYAML:
		return writeReportYAML(report, w)
	default:
		return writeReportHuman(report, w)
	}
}

// writeReportHuman writes the report in human-readable format
func writeReportHuman(report *models.VerifyReport, w io.Writer) error {
	fmt.Fprintf(w, "Verification Report\n")
	fmt.Fprintf(w, "===================\n\n")
	fmt.Fprintf(w, "Run ID:      %s\n", report.RunID)
	fmt.Fprintf(w, "Generated:   %s\n", report.EndTime.Format(time.RFC3339))
	fmt.Fprintf(w, "Sources:     %s\n", strings.Join(report.Sources, ", "))
	fmt.Fprintf(w, "Destination: %s\n", report.Destination)
	fmt.Fprintf(w, "Algorithm:   %s\n", report.Algorithm)
	fmt.Fprintf(w, "Duration:    %s\n\n", report.Duration.Round(time.Millisecond))

	fmt.Fprintf(w, "Files resolved:   %d\n", report.Stats.FilesResolved)
	fmt.Fprintf(w, "Files copied:     %d\n", report.Stats.FilesCopied)
	fmt.Fprintf(w, "Files verified:   %d\n", report.Stats.FilesVerified)
	fmt.Fprintf(w, "Files mismatched: %d\n", report.Stats.FilesMismatched)
	fmt.Fprintf(w, "Data copied:      %s\n\n", humanize.IBytes(uint64(report.Stats.BytesCopied)))

	fmt.Fprintf(w, "Status: %s\n", report.Status)

	if len(report.Mismatches) == 0 {
		return nil
	}

	label := fmt.Sprintf("Hash Mismatches (%d files)", len(report.Mismatches))
	fmt.Fprintf(w, "\n%s\n%s\n", label, strings.Repeat("-", len(label)))
	for _, m := range report.Mismatches {
		fmt.Fprintf(w, "  %s\n", m.Name)
		fmt.Fprintf(w, "    Source: %s\n", shortHash(m.SourceHash))
		fmt.Fprintf(w, "    Dest:   %s\n", shortHash(m.DestHash))
	}

	return nil
}

// writeReportJSON writes the report in JSON format
func writeReportJSON(report *models.VerifyReport, w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(report)
}

// writeReportYAML writes the report in YAML format
func writeReportYAML(report *models.VerifyReport, w io.Writer) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(report); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return encoder.Close()
}

func shortHash(h string) string {
	if len(h) > 16 {
		return h[:16]
	}
	return h
}
