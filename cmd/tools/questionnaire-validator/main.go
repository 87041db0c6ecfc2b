// cmd/tools/questionnaire-validator/main.go

// questionnaire-validator checks questionnaire definition files against the
// schema the service enforces at load time, so broken definitions are caught
// in CI instead of at startup.
//
// Usage:
//
//	questionnaire-validator file1.json [file2.json ...]
//	questionnaire-validator -dir configs/questionnaires
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"assessment-service/internal/questionnaire"
)

func main() {
	dir := flag.String("dir", "", "Directory of questionnaire definition files to validate")
	flag.Parse()

	paths := flag.Args()
	if *dir != "" {
		entries, err := os.ReadDir(*dir)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading directory %s: %v\n", *dir, err)
			os.Exit(1)
		}
		for _, entry := range entries {
			if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
				continue
			}
			paths = append(paths, filepath.Join(*dir, entry.Name()))
		}
	}

	if len(paths) == 0 {
		fmt.Fprintln(os.Stderr, "No definition files given. Pass files as arguments or use -dir.")
		flag.Usage()
		os.Exit(1)
	}

	failed := 0
	for _, path := range paths {
		registry := questionnaire.NewRegistry()
		assessmentType, err := registry.LoadFile(path)
		if err != nil {
			fmt.Printf("FAIL  %s\n      %v\n", path, err)
			failed++
			continue
		}
		q := registry.Lookup(assessmentType)
		fmt.Printf("OK    %s (type=%s, steps=%d)\n", path, assessmentType, q.TotalSteps())
	}

	fmt.Printf("\n%d of %d definitions valid\n", len(paths)-failed, len(paths))
	if failed > 0 {
		os.Exit(1)
	}
}
