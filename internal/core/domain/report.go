package domain

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	ReportViewType    = "runs"
	ReportWidthFluid  = "fluid"
	ComparisonTitle   = "Run comparison"
	ComparisonRunSet  = "Run comparison"
	reportSpecVersion = 5
)

var nonWord = regexp.MustCompile(`[^\p{L}\p{N}_]+`)

// Report is a saved W&B report view.
type Report struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Entity      string      `json:"entity"`
	Project     string      `json:"project"`
	Width       string      `json:"width"`
	Spec        *ReportSpec `json:"spec"`
}

// URL returns the browser URL of a saved report.
func (r *Report) URL(appURL string) (string, error) {
	if r.ID == "" {
		return "", ErrReportNotSaved
	}
	slug := nonWord.ReplaceAllString(r.Title, "-")
	id := strings.ReplaceAll(r.ID, "=", "")
	return fmt.Sprintf("%s/%s/%s/reports/%s--%s",
		strings.TrimRight(appURL, "/"), r.Entity, r.Project, url.PathEscape(slug), id), nil
}

// ComparisonDescription renders the description shown under the report title.
func ComparisonDescription(tag string, base, latest *Run) string {
	return fmt.Sprintf("New run: %s\n'%s' run: %s", latest.Name, Capitalize(tag), base.Name)
}

// Capitalize upper-cases the first letter and lower-cases the rest.
func Capitalize(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}
