package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/halfbit-systems/masm16/asmerr"
	"github.com/halfbit-systems/masm16/assembler"
	"github.com/halfbit-systems/masm16/config"
	"github.com/halfbit-systems/masm16/mnemonic"
)

// Version information - can be overridden at build time with:
// go build -ldflags "-X main.Version=v1.2.3"
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

func main() {
	var (
		outPath     = flag.String("o", "", "Output file path (default: input with .com extension)")
		verbose     = flag.Bool("v", false, "Verbose: print per-phase statistics")
		showHelp    = flag.Bool("help", false, "Show help information")
		showVersion = flag.Bool("version", false, "Show version information")
		configPath  = flag.String("config", "", "Path to a config.toml file (default: platform config dir)")
	)
	flag.BoolVar(showHelp, "h", false, "Show help information")

	flag.Parse()

	if *showVersion {
		fmt.Printf("masm16 %s\n", Version)
		if Commit != "unknown" {
			fmt.Printf("Commit: %s\n", Commit)
		}
		if Date != "unknown" {
			fmt.Printf("Built: %s\n", Date)
		}
		os.Exit(0)
	}

	if *showHelp {
		printHelp()
		os.Exit(0)
	}

	if flag.NArg() != 1 {
		printHelp()
		os.Exit(1)
	}
	srcPath := flag.Arg(0)

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "masm16: %v\n", err)
		os.Exit(1)
	}

	mt, err := loadMnemonics(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "masm16: %v\n", err)
		os.Exit(1)
	}

	src, err := os.ReadFile(srcPath) // #nosec G304 -- user-supplied source path, the whole point of this CLI
	if err != nil {
		fmt.Fprintf(os.Stderr, "masm16: %v\n", err)
		os.Exit(1)
	}

	errs := asmerr.New(os.Stderr)
	code, stats, asmErr := assembler.Assemble(string(src), mt, errs, cfg.Assembly.DefaultOrigin)
	if asmErr != nil || errs.HasFailed() {
		os.Exit(1)
	}

	dest := *outPath
	if dest == "" {
		dest = defaultOutputPath(srcPath, cfg.Output.Extension)
	}
	if err := os.WriteFile(dest, code, 0644); err != nil {
		fmt.Fprintf(os.Stderr, "masm16: %v\n", err)
		os.Exit(1)
	}

	if *verbose {
		printStats(stats)
	}

	os.Exit(0)
}

func loadConfig(explicitPath string) (*config.Config, error) {
	path := explicitPath
	if path == "" {
		path = os.Getenv("MASM16_CONFIG")
	}
	if path == "" {
		return config.Load()
	}
	return config.LoadFrom(path)
}

func loadMnemonics(cfg *config.Config) (*mnemonic.Table, error) {
	if cfg.Mnemonics.OverridePath == "" {
		return mnemonic.Default(), nil
	}
	return mnemonic.LoadOverrides(cfg.Mnemonics.OverridePath)
}

// defaultOutputPath replaces srcPath's extension with ext, or appends
// ext if srcPath has none, per the driver's external interface.
func defaultOutputPath(srcPath, ext string) string {
	trimmed := strings.TrimSuffix(srcPath, filepath.Ext(srcPath))
	return trimmed + ext
}

func printStats(s assembler.Stats) {
	fmt.Printf("lexed %d tokens\n", s.Tokens)
	fmt.Printf("pass one: %d instructions, %d symbols\n", s.Instructions, s.Symbols)
	fmt.Printf("pass two: %d bytes, %d relocations patched\n", s.ImageBytes, s.Relocations)
}

func printHelp() {
	fmt.Println("Usage: masm16 [-o PATH] [-v] [-h|--help] [--version] [-config PATH] SOURCE")
	fmt.Println()
	fmt.Println("Translates a masm16 assembly source file into a flat binary image.")
	fmt.Println()
	flag.PrintDefaults()
}
