//go:build mage

package main

import (
	"fmt"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

var fixtureDir = filepath.Join("internal", "scrape", "testdata")

// Smoke builds the CLI and runs it against the saved result pages.
// Nothing is fetched: citation depth stays at zero.
func Smoke() error {
	mg.Deps(Build)
	bin := filepath.Join(binDir, binName)

	if err := sh.RunV(bin, "search", "--search-html", filepath.Join(fixtureDir, "search.html")); err != nil {
		return fmt.Errorf("search fixture: %w", err)
	}
	if err := sh.RunV(bin, "cites", "--cite-html", filepath.Join(fixtureDir, "cites.html"), "--depth", "1", "--json"); err != nil {
		return fmt.Errorf("cites fixture: %w", err)
	}
	return nil
}
