// Package main - scenario-runner
// Executable to run the behavioral scenario suite.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/MRamiBalles/epicurves/internal/platform/logger"
	"github.com/MRamiBalles/epicurves/internal/validation"
)

func main() {
	asJSON := flag.Bool("json", false, "print results as JSON")
	logLevel := flag.String("log-level", "warn", "debug, info, warn or error")
	flag.Parse()

	suite := validation.NewSuite(logger.New(os.Stderr, *logLevel))
	results := suite.Run(context.Background())
	passed, failed := suite.Summary()

	if *asJSON {
		json.NewEncoder(os.Stdout).Encode(map[string]interface{}{
			"passed":  passed,
			"failed":  failed,
			"results": results,
		})
	} else {
		fmt.Println("EPICURVES - SCENARIO SUITE")
		fmt.Println(strings.Repeat("=", 60))
		for _, r := range results {
			status := "PASS"
			if !r.Passed {
				status = "FAIL"
			}
			fmt.Printf("[%s] %-38s %s\n", status, r.ScenarioName, r.Actual)
			if !r.Passed {
				fmt.Printf("       expected: %s\n       reason:   %s\n", r.Expected, r.Reason)
			}
		}
		fmt.Println(strings.Repeat("=", 60))
		fmt.Printf("Passed: %d\n", passed)
		fmt.Printf("Failed: %d\n", failed)
	}

	if failed > 0 {
		os.Exit(1)
	}
}
