package ideas

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/yuin/goldmark"
)

// Format selects how results are rendered.
type Format string

const (
	FormatText     Format = "text"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
)

// ParseFormat accepts text, json, markdown (or md) and html, case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "html":
		return FormatHTML, nil
	}
	return "", fmt.Errorf("%w: unknown format %q (want text, json, markdown or html)", ErrInvalidInput, s)
}

const resultSeparator = "\n════════════════════════════════════════\n\n"

// Render formats results in order.
func Render(results []AnalysisResult, format Format) (string, error) {
	switch format {
	case FormatText:
		return renderText(results), nil
	case FormatJSON:
		return renderJSON(results)
	case FormatMarkdown:
		return renderMarkdown(results), nil
	case FormatHTML:
		return renderHTML(results)
	}
	return "", fmt.Errorf("%w: unknown format %q", ErrInvalidInput, format)
}

func renderText(results []AnalysisResult) string {
	var sb strings.Builder
	for i, r := range results {
		if i > 0 {
			sb.WriteString(resultSeparator)
		}
		sb.WriteString(fmt.Sprintf("URL: %s\n", r.URL))
		sb.WriteString(fmt.Sprintf("Title: %s\n\n", r.Title))
		sb.WriteString(fmt.Sprintf("Ideas:\n%s\n", r.IdeasText))
	}
	return sb.String()
}

func renderJSON(results []AnalysisResult) (string, error) {
	if results == nil {
		results = []AnalysisResult{}
	}
	b, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func renderMarkdown(results []AnalysisResult) string {
	var sb strings.Builder
	sb.WriteString("# Reddit Startup Analysis\n\n")
	for i, r := range results {
		if i > 0 {
			sb.WriteString("---\n\n")
		}
		sb.WriteString(fmt.Sprintf("## Post %d\n\n", i+1))
		sb.WriteString(fmt.Sprintf("**URL:** %s\n\n", r.URL))
		sb.WriteString(fmt.Sprintf("**Title:** %s\n\n", r.Title))
		sb.WriteString("### Ideas\n\n")
		if len(r.Ideas) == 0 {
			sb.WriteString(r.IdeasText + "\n\n")
			continue
		}
		for _, idea := range r.Ideas {
			sb.WriteString(fmt.Sprintf("#### %s\n\n", idea.ProductName))
			sb.WriteString(fmt.Sprintf("- **Target user:** %s\n", idea.TargetUser))
			sb.WriteString(fmt.Sprintf("- **Core problem:** %s\n", idea.CoreProblem))
			sb.WriteString("- **MVP features:**\n")
			for _, f := range idea.MVPFeatures {
				sb.WriteString(fmt.Sprintf("  - %s\n", f))
			}
			sb.WriteString(fmt.Sprintf("- **Monetization:** %s\n", idea.Monetization))
			sb.WriteString(fmt.Sprintf("- **Feasibility:** %s\n\n", idea.Feasibility))
		}
	}
	return sb.String()
}

func renderHTML(results []AnalysisResult) (string, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(renderMarkdown(results)), &buf); err != nil {
		return "", fmt.Errorf("render html: %w", err)
	}
	return buf.String(), nil
}

// Emit renders results to w and, when savePath is set, writes the same text
// to that file. A save failure is returned after w has been written.
func Emit(w io.Writer, results []AnalysisResult, format Format, savePath string) error {
	text, err := Render(results, format)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, text); err != nil {
		return fmt.Errorf("%w: write output: %v", ErrIO, err)
	}
	if savePath == "" {
		return nil
	}
	if err := os.WriteFile(savePath, []byte(text), 0o644); err != nil {
		return fmt.Errorf("%w: failed to write %s: %v", ErrIO, savePath, err)
	}
	return nil
}
