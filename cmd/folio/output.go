package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Constants for output formatting.
const (
	DefaultSearchLimit = 50 // Default limit for search

	TitleMaxLen = 70 // Title truncation in listings
)

// outputJSON writes a value as formatted JSON to stdout.
func outputJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputJSONCompact writes a value as compact JSON to stdout.
func outputJSONCompact(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	return enc.Encode(v)
}

// exitWithError outputs an error in the appropriate format (human or JSON) and exits.
func exitWithError(code int, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if humanOutput {
		fmt.Fprintf(os.Stderr, "error: %s\n", msg)
	} else {
		outputJSON(ErrorResponse{Error: msg})
	}
	os.Exit(code)
}

// StatusResponse is a generic response for commands that return status.
type StatusResponse struct {
	Status string `json:"status"`
	Path   string `json:"path,omitempty"`
}

// UpdateResponse is the response for config set commands.
type UpdateResponse struct {
	Status string `json:"status"`
	Key    string `json:"key"`
	Value  string `json:"value"`
}

// ErrorResponse is a JSON error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// PublicationResult is one publication in command output.
type PublicationResult struct {
	Key     string `json:"key"`
	Type    string `json:"type"`
	Year    string `json:"year"`
	Title   string `json:"title"`
	Authors string `json:"authors,omitempty"`
	Venue   string `json:"venue,omitempty"`
	Link    string `json:"link,omitempty"`
}

// printPublication prints one publication in human-readable format.
func printPublication(num int, p PublicationResult) {
	fmt.Printf("[%d] %s\n", num, p.Key)
	fmt.Printf("    %s\n", truncateString(p.Title, TitleMaxLen))
	if p.Authors != "" {
		fmt.Printf("    %s\n", p.Authors)
	}
	if p.Venue != "" {
		fmt.Printf("    %s (%s)\n", p.Venue, p.Year)
	} else {
		fmt.Printf("    (%s)\n", p.Year)
	}
	fmt.Println()
}

// truncateString truncates a string to maxLen runes, adding "..." if truncated.
func truncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}

// formatList formats a list of keys as a comma-separated string.
func formatList(items []string) string {
	return strings.Join(items, ", ")
}
