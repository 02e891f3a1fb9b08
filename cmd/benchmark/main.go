package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"fngroup/config"
	"fngroup/internal/adapter/codegen"
	"fngroup/internal/adapter/fs"
	"fngroup/internal/adapter/memstore"
	"fngroup/internal/adapter/parser"
	"fngroup/internal/adapter/store"
	"fngroup/internal/port"
	"fngroup/internal/usecase"
)

func main() {
	files := flag.Int("files", 200, "Number of synthetic .fng files")
	groups := flag.Int("groups", 10, "Function groups per file")
	variants := flag.Int("variants", 4, "Variants per group (at most 8)")
	workers := flag.Int("workers", 4, "Files expanded concurrently")
	keep := flag.Bool("keep", false, "Keep the generated corpus")
	flag.Parse()

	if *variants < 1 || *variants > 8 {
		fmt.Fprintln(os.Stderr, "Usage: go run ./cmd/benchmark -files 200 -groups 10 -variants 4")
		os.Exit(1)
	}

	dir, err := os.MkdirTemp("", "fngroup-bench")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating corpus dir: %v\n", err)
		os.Exit(1)
	}
	if !*keep {
		defer os.RemoveAll(dir)
	}

	if err := writeCorpus(dir, *files, *groups, *variants); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing corpus: %v\n", err)
		os.Exit(1)
	}

	cfg := config.DefaultConfig()
	cfg.Generate.Workers = *workers
	if err := config.EnsureDir(dir); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating cache dir: %v\n", err)
		os.Exit(1)
	}
	st, err := store.NewBoltStore(cfg.CacheDBPath(dir))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening cache: %v\n", err)
		os.Exit(1)
	}
	defer st.Close()

	fmt.Println("EXPANSION BENCHMARK")
	fmt.Println(strings.Repeat("=", 70))
	fmt.Printf("Corpus:   %s\n", dir)
	fmt.Printf("Files:    %d x %d groups x %d variants\n", *files, *groups, *variants)
	fmt.Printf("Workers:  %d\n", *workers)
	fmt.Println(strings.Repeat("-", 70))

	mem := memstore.NewMemoryCache()
	runs := []struct {
		name  string
		cache port.GenCache
	}{
		{"cold (no cache)", nil},
		{"warm (bolt populated)", st},
		{"incremental (bolt hit)", st},
		{"warm (memory populated)", mem},
		{"incremental (memory hit)", mem},
	}
	for _, run := range runs {
		uc := usecase.NewGenerateUseCase(
			parser.NewParser(),
			codegen.NewGenerator(codegen.Options{
				TuplePackage:   cfg.Generate.TuplePackage,
				LineDirectives: cfg.Generate.LineDirectives,
			}),
			fs.NewWalker(cfg.Generate.Includes, cfg.Generate.Excludes),
			fs.Reader{},
			run.cache,
			cfg.OutputPath,
			nil,
		)

		start := time.Now()
		result, err := uc.Generate(context.Background(), dir, usecase.GenerateOptions{Workers: *workers}, nil)
		elapsed := time.Since(start)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Generation error: %v\n", err)
			os.Exit(1)
		}
		if len(result.Errors) > 0 {
			fmt.Fprintf(os.Stderr, "Generation error: %s\n", result.Errors[0])
			os.Exit(1)
		}

		perFile := time.Duration(0)
		if *files > 0 {
			perFile = elapsed / time.Duration(*files)
		}
		fmt.Printf("%-26s %10s  %8s/file  generated=%d skipped=%d groups=%d\n",
			run.name, elapsed.Round(time.Microsecond), perFile.Round(time.Microsecond),
			result.FilesGenerated, result.FilesSkipped, result.GroupsEmitted)
	}
}

var argTypes = []string{"int", "string", "float64", "bool", "[]byte", "rune", "uint", "int64"}

func writeCorpus(dir string, files, groups, variants int) error {
	for f := 0; f < files; f++ {
		pkg := fmt.Sprintf("p%03d", f/50)
		var b strings.Builder
		fmt.Fprintf(&b, "package %s\n\n", pkg)
		for g := 0; g < groups; g++ {
			fmt.Fprintf(&b, "function_group! {\n\tpub fn op_%d_%d -> int {\n", f, g)
			for v := 0; v < variants; v++ {
				var params []string
				for a := 0; a <= v; a++ {
					params = append(params, fmt.Sprintf("a%d: %s", a, argTypes[(a+g)%len(argTypes)]))
				}
				fmt.Fprintf(&b, "\t\t(%s) {\n\t\t\treturn %d\n\t\t}\n", strings.Join(params, ", "), v)
			}
			b.WriteString("\t}\n}\n\n")
		}

		path := filepath.Join(dir, pkg, fmt.Sprintf("f%04d.fng", f))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return err
		}
		if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
			return err
		}
	}
	return nil
}
