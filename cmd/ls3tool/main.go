// ls3tool is a CLI utility for working with Zusi landscape files.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/zusitools/go-ls3/internal/config"
	"github.com/zusitools/go-ls3/internal/logger"
	"github.com/zusitools/go-ls3/pkg/ls3"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "info":
		cmdInfo(args)
	case "links":
		cmdLinks(args)
	case "optimize":
		cmdOptimize(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`ls3tool - Zusi landscape file utility

Usage:
  ls3tool <command> [options]

Commands:
  info <file.ls3>                 Show subsets, animations and counts
  links <file.ls3>                List linked files and their state
  optimize <file.ls3> <out.ls3>   Re-export with vertex welding

Examples:
  ls3tool info signal.ls3
  ls3tool links station.ls3
  ls3tool optimize raw.ls3 welded.ls3`)
}

func loadConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

func importFile(path string, cfg *config.Config) *ls3.ImportResult {
	res, err := ls3.ImportFile(path, ls3.ImportOptions{DataDir: cfg.Data.DataDir})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return res
}

func cmdInfo(args []string) {
	fs := flag.NewFlagSet("info", flag.ExitOnError)
	fs.Parse(args)
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: ls3tool info <file.ls3>")
		os.Exit(1)
	}

	cfg := loadConfig()
	res := importFile(fs.Arg(0), cfg)
	doc := res.Doc

	fmt.Printf("File:     %s\n", fs.Arg(0))
	fmt.Printf("Type:     %s %s\n", doc.Info.FileType, doc.Info.Version)
	fmt.Printf("Subsets:  %d\n", len(doc.Landscape.Subsets))
	fmt.Printf("Links:    %d\n", len(doc.Landscape.Links))
	fmt.Printf("Anchors:  %d\n", len(doc.Landscape.Anchors))
	fmt.Println()

	var verts, faces int
	for _, sm := range doc.Landscape.Subsets {
		verts += sm.VertexCount
		faces += sm.IndexCount / 3
		name := sm.Name
		if name == "" {
			name = "(unnamed)"
		}
		fmt.Printf("  %-24s %6d vertices %6d faces\n", name, sm.VertexCount, sm.IndexCount/3)
	}
	fmt.Printf("\nTotal: %d vertices, %d faces\n", verts, faces)

	if len(doc.Landscape.Animations) > 0 {
		fmt.Println("\nAnimations:")
		for _, a := range doc.Landscape.Animations {
			fmt.Printf("  [%d] %-20s %d target(s)\n", a.ID, a.Description, len(a.Targets))
		}
	}

	printWarnings(res.Warnings)
}

func cmdLinks(args []string) {
	fs := flag.NewFlagSet("links", flag.ExitOnError)
	fs.Parse(args)
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: ls3tool links <file.ls3>")
		os.Exit(1)
	}

	cfg := loadConfig()
	res := importFile(fs.Arg(0), cfg)

	if len(res.Doc.Landscape.Links) == 0 {
		fmt.Println("No linked files.")
		return
	}
	for _, lf := range res.Doc.Landscape.Links {
		fmt.Printf("  %-48s r=%.1f", lf.File.FileName, lf.BoundingRadius)
		if lf.GroupName != "" {
			fmt.Printf(" group=%s", lf.GroupName)
		}
		if lf.VisibleFrom != 0 || lf.VisibleTo != 0 {
			fmt.Printf(" visible=%.0f..%.0f", lf.VisibleFrom, lf.VisibleTo)
		}
		fmt.Println()
	}

	printWarnings(res.Warnings)
}

func cmdOptimize(args []string) {
	fs := flag.NewFlagSet("optimize", flag.ExitOnError)
	coord := fs.Float64("coord", 0.001, "Coordinate tolerance")
	uv := fs.Float64("uv", 0.002, "Texture coordinate tolerance")
	normal := fs.Float64("normal", 0.017, "Normal angle tolerance in radians")
	fs.Parse(args)
	if fs.NArg() < 2 {
		fmt.Fprintln(os.Stderr, "Usage: ls3tool optimize <file.ls3> <out.ls3>")
		os.Exit(1)
	}

	cfg := loadConfig()
	res := importFile(fs.Arg(0), cfg)

	opts := ls3.ExportOptions{
		OutputPath:       fs.Arg(1),
		DataDir:          cfg.Data.DataDir,
		Scope:            ls3.ScopeAll,
		ExportAnimations: cfg.Export.Animations,
		EmitTranslation:  true,
		Optimize:         true,
		Tolerances: ls3.Tolerances{
			Coord:       float32(*coord),
			UV:          float32(*uv),
			NormalAngle: float32(*normal),
		},
		Anchors: res.Anchors,
	}
	if cfg.Export.AuthorName != "" {
		opts.Authors = []ls3.AuthorInfo{{Name: cfg.Export.AuthorName, ID: cfg.Export.AuthorID}}
	}

	exp, err := ls3.NewExporter(res.Scene, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	warnings, err := exp.Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	printWarnings(warnings)
	fmt.Printf("Wrote %s\n", fs.Arg(1))
}

func printWarnings(warnings ls3.WarningList) {
	for _, w := range warnings {
		fmt.Fprintf(os.Stderr, "Warning: %s\n", w)
	}
}
