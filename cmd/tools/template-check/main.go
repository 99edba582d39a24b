// cmd/tools/template-check/main.go
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"economics-agent/pkg/templates"
)

// template-check verifies a templates directory before deployment: every
// category present, non-empty, and carrying the expected section headers.
func main() {
	dir := flag.String("dir", "", "Templates directory to check (empty checks the embedded set)")
	flag.Parse()

	registry, err := templates.Load(*dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	problems := 0
	for _, category := range templates.Required {
		body, ok := registry.Get(category)
		if !ok {
			fmt.Printf("MISSING  %s\n", category)
			problems++
			continue
		}

		var notes []string
		// The general fallback has its own free-form structure.
		if category != "general" && !strings.Contains(body, "**Problem Identification:**") {
			notes = append(notes, "no Problem Identification section")
		}
		if strings.TrimSpace(body) == "" {
			notes = append(notes, "empty body")
		}

		if len(notes) > 0 {
			fmt.Printf("WARN     %s: %s\n", category, strings.Join(notes, ", "))
			problems++
		} else {
			fmt.Printf("OK       %s (%d bytes)\n", category, len(body))
		}
	}

	if problems > 0 {
		fmt.Printf("\n%d problem(s) found\n", problems)
		os.Exit(1)
	}
	fmt.Println("\nAll templates look good")
}
