// Package extractor streams article records out of the raw Wikipedia XML
// dump. It is line-oriented and never parses page bodies: it finds
// <page>...</page> blocks, applies the title filters, and hands each
// surviving page's text to the caller in document order.
package extractor

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strings"
)

// Page is one extracted record: the canonical title plus the raw page text
// (original casing, empty lines stripped, XML envelope excluded).
type Page struct {
	Title string
	Text  string
}

// Options controls which pages are emitted.
type Options struct {
	// Categories permits "Category:" titled pages (dropped by default).
	Categories bool
	// Redirects flips the extractor into redirects-only mode: ONLY pages
	// carrying a <redirect title=.../> marker are emitted.
	Redirects bool
	// Limit stops after emitting this many records; 0 means unlimited.
	Limit int
}

var titleLineRegexp = regexp.MustCompile(`< *title *>(.*?)< */ *title`)

// ErrStop may be returned by the visit callback to end the scan early
// without reporting an error.
var ErrStop = fmt.Errorf("extraction stopped")

// Extract scans the dump sequentially and invokes visit for every record
// that passes the filters. A malformed page is skipped; an I/O error from
// the underlying reader is returned and is fatal for the phase.
func Extract(r io.Reader, opts Options, visit func(Page) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 1<<20), 64<<20)

	var (
		sb          strings.Builder
		title       string
		inPage      bool
		invalidPage bool
		redirect    bool
		emitted     int
	)

	reset := func() {
		sb.Reset()
		title = ""
		invalidPage = false
		redirect = false
	}

	for scanner.Scan() {
		line := scanner.Text()

		if strings.Contains(line, "<page>") {
			inPage = true
			reset()
			continue
		}

		if !inPage {
			continue
		}

		if strings.Contains(line, "</page>") {
			inPage = false

			emit := false
			if opts.Redirects {
				emit = redirect
			} else {
				emit = !invalidPage
			}
			// A block with no parsable <title> line is malformed; skip it.
			if emit && title != "" {
				if err := visit(Page{Title: title, Text: sb.String()}); err != nil {
					if err == ErrStop {
						return nil
					}
					return err
				}
				emitted++
				if opts.Limit > 0 && emitted == opts.Limit {
					return nil
				}
			}
			continue
		}

		if strings.Contains(line, "<title>") {
			if invalid := invalidTitleLine(line, opts.Categories); invalid {
				invalidPage = true
			} else if m := titleLineRegexp.FindStringSubmatch(line); m != nil {
				title = CanonicalTitle(m[1])
			}
		}

		if strings.Contains(line, "<redirect title") {
			redirect = true
			if !opts.Redirects {
				invalidPage = true
			}
		}

		if invalidPage {
			continue
		}

		if line == "" {
			continue
		}

		sb.WriteString(line)
		sb.WriteByte('\n')
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading wiki dump: %w", err)
	}
	return nil
}

// invalidTitleLine applies the title-only filters: internal wiki
// namespaces, disambiguation pages, and "List of" pages.
func invalidTitleLine(line string, categories bool) bool {
	lower := strings.ToLower(line)

	if strings.Contains(lower, "wikipedia:") || strings.Contains(lower, "file:") ||
		strings.Contains(lower, "portal:") || strings.Contains(lower, "template:") ||
		(strings.Contains(lower, "category:") && !categories) {
		return true
	}

	stripped := strings.Join(strings.Fields(lower), "")
	if strings.HasSuffix(stripped, "(disambiguation)</title>") {
		return true
	}
	if strings.HasPrefix(stripped, "<title>listof") {
		return true
	}
	return false
}

// CanonicalTitle normalises a free-text title to the canonical wiki form:
// trimmed, spaces replaced by underscores, standard HTML entities decoded.
func CanonicalTitle(title string) string {
	title = strings.TrimSpace(title)
	title = strings.ReplaceAll(title, " ", "_")
	title = strings.ReplaceAll(title, "&quot;", "\"")
	title = strings.ReplaceAll(title, "&amp;", "&")
	return title
}
