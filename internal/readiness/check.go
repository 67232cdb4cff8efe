// Package readiness checks that a built site directory has everything a
// deployment needs.
package readiness

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// DefaultProductionHost is the order service host the bundled script must
// point at in production.
const DefaultProductionHost = "makxsensi-api.onrender.com"

var recommendations = []string{
	"Ensure all console.log statements are removed for production",
	"Verify Razorpay integration keys are production keys",
	"Check all API endpoints use HTTPS",
	"Verify all external resources use HTTPS",
	"Test modal on different screen sizes",
}

type Check struct {
	Name    string
	Passed  bool
	Present string
	Missing string
}

type Report struct {
	Checks   []Check
	Notes    []string
	Warnings []string
}

func (r Report) AllPassed() bool {
	for _, c := range r.Checks {
		if !c.Passed {
			return false
		}
	}
	return true
}

func (r Report) Print(w io.Writer) {
	fmt.Fprintln(w, "\n=== Production Readiness Check ===")
	fmt.Fprintln(w)
	for _, c := range r.Checks {
		state := c.Missing
		if c.Passed {
			state = c.Present
		}
		fmt.Fprintf(w, "✓ %s: %s\n", c.Name, state)
	}
	for _, n := range r.Notes {
		fmt.Fprintf(w, "✓ %s\n", n)
	}
	for _, warn := range r.Warnings {
		fmt.Fprintf(w, "⚠ %s\n", warn)
	}

	fmt.Fprintln(w, "\nRecommendations:")
	for i, rec := range recommendations {
		fmt.Fprintf(w, "%d. %s\n", i+1, rec)
	}
	fmt.Fprintln(w)
}

type Options struct {
	ProductionHost string
}

// Run inspects the site rooted at root. Missing files fail checks; only
// unreadable files are returned as errors.
func Run(root string, opts Options) (Report, error) {
	if opts.ProductionHost == "" {
		opts.ProductionHost = DefaultProductionHost
	}
	var r Report

	cssOK := exists(root, "css", "style.css") && exists(root, "css", "themes.css")
	jsOK := exists(root, "js", "main.js")
	indexOK := exists(root, "index.html")
	assetsOK := isDir(root, "assets")

	r.Checks = []Check{
		{Name: "CSS files", Passed: cssOK, Present: "Present", Missing: "Missing"},
		{Name: "JavaScript files", Passed: jsOK, Present: "Present", Missing: "Missing"},
		{Name: "Index file", Passed: indexOK, Present: "Present", Missing: "Missing"},
		{Name: "Assets folder", Passed: assetsOK, Present: "Present", Missing: "Missing"},
	}

	if jsOK {
		src, err := os.ReadFile(filepath.Join(root, "js", "main.js"))
		if err != nil {
			return Report{}, fmt.Errorf("read main.js: %w", err)
		}
		if strings.Contains(string(src), opts.ProductionHost) {
			r.Notes = append(r.Notes, "API URL: Production URL configured")
		} else {
			r.Warnings = append(r.Warnings, "API URL: Warning - Check production API URL configuration")
		}
	}

	maps, err := hasSourceMaps(filepath.Join(root, "css"))
	if err != nil {
		return Report{}, err
	}
	if maps {
		r.Warnings = append(r.Warnings, "Warning: Source maps found in CSS directory")
	}

	if indexOK {
		html, err := os.ReadFile(filepath.Join(root, "index.html"))
		if err != nil {
			return Report{}, fmt.Errorf("read index.html: %w", err)
		}
		if strings.Contains(string(html), "console.log") {
			r.Warnings = append(r.Warnings, "Warning: console.log statements found in HTML")
		}
	}

	return r, nil
}

func exists(root string, parts ...string) bool {
	fi, err := os.Stat(filepath.Join(append([]string{root}, parts...)...))
	return err == nil && !fi.IsDir()
}

func isDir(root, name string) bool {
	fi, err := os.Stat(filepath.Join(root, name))
	return err == nil && fi.IsDir()
}

func hasSourceMaps(dir string) (bool, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read css dir: %w", err)
	}
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".map") {
			return true, nil
		}
	}
	return false, nil
}
