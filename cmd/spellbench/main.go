// Package main provides a one-shot command line analyzer: it reads a spell
// collection file, analyzes it with the given parameter assignment, and
// prints the results as a table with per-spell histograms on request.
package main

import (
	"flag"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/cory-johannsen/spellbench/internal/spell/analyzer"
	"github.com/cory-johannsen/spellbench/internal/spell/dist"
)

// paramFlags collects repeated -p name=value flags into an assignment.
type paramFlags map[string]int

func (p paramFlags) String() string {
	parts := make([]string, 0, len(p))
	for k, v := range p {
		parts = append(parts, fmt.Sprintf("%s=%d", k, v))
	}
	sort.Strings(parts)
	return strings.Join(parts, ",")
}

func (p paramFlags) Set(s string) error {
	name, value, ok := strings.Cut(s, "=")
	if !ok {
		return fmt.Errorf("want name=value, got %q", s)
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("value of %q: %w", name, err)
	}
	p[name] = n
	return nil
}

func main() {
	params := make(paramFlags)
	flag.Var(params, "p", "parameter assignment as name=value; repeatable")
	histogram := flag.String("hist", "", "print a histogram for the named spell")
	roll := flag.String("roll", "", "draw one concrete roll for the named spell")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: spellbench [-p name=value]... [-hist spell] [-roll spell] <file>")
		os.Exit(1)
	}

	source, err := os.ReadFile(flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	res := analyzer.Analyze(string(source), params)

	printGroups(res, params)
	printSpells(res)
	for _, msg := range res.Errors {
		fmt.Fprintf(os.Stderr, "error: %s\n", msg)
	}

	if *histogram != "" {
		if err := printHistogram(res, *histogram); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
	}
	if *roll != "" {
		sa, ok := res.Find(*roll)
		if !ok {
			fmt.Fprintf(os.Stderr, "error: no analysis for spell %q\n", *roll)
			os.Exit(1)
		}
		fmt.Printf("\n%s rolled: %d\n", sa.Name, sa.Dist.Sample(dist.NewCryptoSource()))
	}

	if len(res.Errors) > 0 {
		os.Exit(1)
	}
}

// printGroups shows the discovered parameters and the values in effect.
func printGroups(res analyzer.Analysis, assign map[string]int) {
	for _, g := range res.Groups {
		fmt.Printf("%s:", g.Name)
		for _, d := range g.Params {
			value := d.Default
			if v, ok := assign[d.ID]; ok {
				value = v
			}
			fmt.Printf(" %s=%d", d.ID, value)
		}
		fmt.Println()
	}
	if len(res.Groups) > 0 {
		fmt.Println()
	}
}

func printSpells(res analyzer.Analysis) {
	if len(res.Spells) == 0 {
		return
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SPELL\tLEVEL\tCAST AT\tMEAN\tSTDDEV\tMAX")
	for _, s := range res.Spells {
		level := "-"
		if s.Level > 0 {
			level = strconv.Itoa(s.Level)
		}
		castAt := strconv.Itoa(s.CastAt)
		if s.BelowMinimum {
			castAt += " (below minimum)"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2f\t%.2f\t%d\n",
			s.Name, level, castAt, s.Mean, s.StdDev, s.Max)
	}
	w.Flush()
}

// printHistogram renders the exact distribution of one spell as bars scaled
// to the most likely outcome.
func printHistogram(res analyzer.Analysis, name string) error {
	sa, ok := res.Find(name)
	if !ok {
		return fmt.Errorf("no analysis for spell %q", name)
	}

	outcomes := sa.Dist.Outcomes()
	peak := 0.0
	for _, o := range outcomes {
		if o.P > peak {
			peak = o.P
		}
	}

	const width = 50
	fmt.Printf("\n%s (%s)\n", sa.Name, sa.Expr)
	for _, o := range outcomes {
		bar := strings.Repeat("#", int(o.P/peak*width+0.5))
		fmt.Printf("%5d %7.3f%% %s\n", o.Value, o.P*100, bar)
	}
	return nil
}
