// --- START OF FINAL REVISED FILE cmd/template-auditor/main.go ---
package main

import "os"

// main is the entry point for the template-auditor application.
// Cobra prints the error; the exit code is set here.
func main() {
	if err := Execute(); err != nil {
		os.Exit(1)
	}
}

// --- END OF FINAL REVISED FILE cmd/template-auditor/main.go ---
