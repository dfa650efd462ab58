// Package render turns view pages and enriched entries into text and HTML.
package render

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"unicode"
	"unicode/utf8"

	"Pokedex/internal/domain"
	"Pokedex/internal/view"
)

// MaxStat is the base-stat value that fills a whole bar.
const MaxStat = 160

const barWidth = 32

// Page writes the visible entries as a table followed by a pager line.
func Page(w io.Writer, page view.Page) error {
	if page.Loading {
		_, err := fmt.Fprintln(w, "Loading...")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NO.\tNAME\tTYPE")
	for _, p := range page.Entries {
		typ := "-"
		if d, ok := p.Detail(); ok && d.PrimaryType() != "" {
			typ = d.PrimaryType()
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", p.Number(), displayName(p.Name), typ)
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("flush table: %w", err)
	}

	footer := fmt.Sprintf("page %d of %d", page.Number, page.TotalPages)
	if page.SearchTerm != "" {
		footer += fmt.Sprintf(" (search %q)", page.SearchTerm)
	}
	if len(page.Entries) == 0 {
		footer = "no matches"
		if page.SearchTerm != "" {
			footer += fmt.Sprintf(" for %q", page.SearchTerm)
		}
	}
	_, err := fmt.Fprintln(w, footer)
	return err
}

// Detail writes the full record of an enriched entry.
func Detail(w io.Writer, p domain.Pokemon) error {
	d, ok := p.Detail()
	if !ok {
		return fmt.Errorf("pokemon %s has no detail", p.ID)
	}

	fmt.Fprintf(w, "%s %s\n", p.Number(), displayName(p.Name))
	fmt.Fprintf(w, "Types:  %s\n", strings.Join(d.Types, ", "))
	fmt.Fprintf(w, "Height: %.1f m\n", d.HeightMeters())
	fmt.Fprintf(w, "Weight: %.1f kg\n", d.WeightKilograms())
	if image := artwork(p); image != "" {
		fmt.Fprintf(w, "Image:  %s\n", image)
	}

	tw := tabwriter.NewWriter(w, 0, 4, 1, ' ', 0)
	for _, s := range d.Stats {
		fmt.Fprintf(tw, "%s\t%d\t%s\n", displayName(s.Name), s.Value, Bar(s.Value))
	}
	return tw.Flush()
}

// Bar draws value as a fixed-width bar scaled to MaxStat.
func Bar(value int) string {
	filled := StatPercent(value) * barWidth / 100
	return strings.Repeat("#", filled) + strings.Repeat(".", barWidth-filled)
}

// StatPercent scales value to 0..100 against MaxStat.
func StatPercent(value int) int {
	switch {
	case value <= 0:
		return 0
	case value >= MaxStat:
		return 100
	}
	return value * 100 / MaxStat
}

func displayName(name string) string {
	if name == "" {
		return name
	}
	r, size := utf8.DecodeRuneInString(name)
	return string(unicode.ToUpper(r)) + name[size:]
}

func artwork(p domain.Pokemon) string {
	if p.ImageURL != "" {
		return p.ImageURL
	}
	if d, ok := p.Detail(); ok {
		return d.ArtworkURL
	}
	return ""
}
