// Package report renders validation results for humans and machines, and
// computes a stable fingerprint of a change set so CI integrations can
// deduplicate identical check outcomes.
package report

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"

	"github.com/goccy/go-json"

	"github.com/roach88/gqlcheck/internal/validate"
)

// fingerprintDomain separates result fingerprints from any other sha256 use.
// Version suffix enables future algorithm migration.
const fingerprintDomain = "gqlcheck/result/v1"

// Response is the machine-readable payload for one check run.
type Response struct {
	CheckID     string           `json:"check_id,omitempty"`
	Fingerprint string           `json:"fingerprint"`
	Result      *validate.Result `json:"result"`
}

// RenderJSON writes the response as indented JSON.
func RenderJSON(w io.Writer, resp Response) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(resp)
}

// RenderText writes a human-readable report: one line per change, then a
// summary and the verdict.
func RenderText(w io.Writer, result *validate.Result) {
	counts := map[string]int{}
	for _, c := range result.Changes {
		counts[string(c.Severity)]++
		fmt.Fprintf(w, "%-7s %-24s %s\n", c.Severity, c.Code, c.Description)
	}

	if len(result.Changes) == 0 {
		fmt.Fprintln(w, "no changes detected")
	} else {
		fmt.Fprintf(w, "\n%d changes: %d failures, %d warnings, %d notices\n",
			len(result.Changes), counts["FAILURE"], counts["WARNING"], counts["NOTICE"])
	}

	if result.UsageDataAvailable {
		fmt.Fprintln(w, "usage data: available")
	} else {
		fmt.Fprintln(w, "usage data: unavailable")
	}

	if result.Passed {
		fmt.Fprintln(w, "verdict: PASSED")
	} else {
		fmt.Fprintln(w, "verdict: FAILED")
	}
}

// Fingerprint returns a sha256 hex digest of the canonical encoding of the
// change set and verdict. Identical comparisons always fingerprint
// identically; ordering is already fixed by the aggregator.
func Fingerprint(result *validate.Result) (string, error) {
	changes := make([]any, len(result.Changes))
	for i, c := range result.Changes {
		changes[i] = map[string]any{
			"code":        string(c.Code),
			"category":    string(c.Category),
			"path":        string(c.Path),
			"description": c.Description,
			"severity":    string(c.Severity),
		}
	}

	payload, err := marshalCanonical(map[string]any{
		"changes":              changes,
		"overall_severity":     string(result.OverallSeverity),
		"usage_data_available": result.UsageDataAvailable,
		"passed":               result.Passed,
	})
	if err != nil {
		return "", fmt.Errorf("fingerprint result: %w", err)
	}

	h := sha256.New()
	h.Write([]byte(fingerprintDomain))
	h.Write([]byte{0x00})
	h.Write(payload)
	return hex.EncodeToString(h.Sum(nil)), nil
}
