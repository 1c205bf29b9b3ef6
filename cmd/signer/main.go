// Package main provides the signer tool that verifies or re-signs sheetreport markdown previews.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"sheetreport/internal/formatter"
	"sheetreport/pkg/metadata"
)

var errSourceChanged = errors.New("source workbook changed since the preview was generated")

func main() {
	inputPath := flag.String("input", "", "Path to a preview file (e.g., preview.md)")
	sourcePath := flag.String("source", "", "Optional workbook the preview was generated from")
	resign := flag.Bool("sign", false, "Re-align tables and re-sign the preview in place")
	flag.Parse()

	if *inputPath == "" {
		fmt.Println("Usage: signer -input <preview.md> [-source <report.xlsx>] [-sign]")
		flag.PrintDefaults()
		os.Exit(1)
	}

	contentBytes, err := os.ReadFile(*inputPath)
	if err != nil {
		log.Fatalf("Error reading file: %v\n", err)
	}

	content := string(contentBytes)
	fmt.Printf("📂 Reading: %s (%d bytes)\n", *inputPath, len(content))

	if *resign {
		if err := sign(*inputPath, content, *sourcePath); err != nil {
			log.Fatalf("❌ %v\n", err)
		}

		fmt.Printf("✅ Signed and saved to: %s\n", *inputPath)

		return
	}

	if err := verify(content, *sourcePath); err != nil {
		log.Fatalf("❌ Verification failed: %v\n", err)
	}

	fmt.Println("✅ Preview is intact")
}

func verify(content, sourcePath string) error {
	if _, err := metadata.Verify(content); err != nil {
		return err
	}

	if sourcePath == "" {
		return nil
	}

	meta, _ := metadata.Extract(content)

	hash, err := metadata.HashFile(sourcePath)
	if err != nil {
		return err
	}

	if meta.SourceHash != hash {
		return fmt.Errorf("%w: %s", errSourceChanged, sourcePath)
	}

	return nil
}

// sign keeps the previous provenance fields and refreshes the hash over the re-aligned body.
func sign(path, content, sourcePath string) error {
	meta, body := metadata.Extract(content)

	next := metadata.Metadata{}
	if meta != nil {
		next.Source = meta.Source
		next.SourceHash = meta.SourceHash
		next.Validation = meta.Validation
	}

	if sourcePath != "" {
		hash, err := metadata.HashFile(sourcePath)
		if err != nil {
			return err
		}

		next.SourceHash = hash
	}

	signed := metadata.Sign(formatter.FormatMarkdown(body), next)

	if err := os.WriteFile(path, []byte(signed+"\n"), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	return nil
}
