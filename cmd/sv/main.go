package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	json "github.com/goccy/go-json"

	"github.com/vanderheijden86/stackview/pkg/analysis"
	"github.com/vanderheijden86/stackview/pkg/export"
	"github.com/vanderheijden86/stackview/pkg/loader"
	"github.com/vanderheijden86/stackview/pkg/topology"
	"github.com/vanderheijden86/stackview/pkg/ui"
	"github.com/vanderheijden86/stackview/pkg/version"
	"github.com/vanderheijden86/stackview/pkg/watcher"
	"github.com/vanderheijden86/stackview/pkg/workspace"
)

const defaultExportPath = ".sv/threads.jsonl"

func main() {
	help := flag.Bool("help", false, "Show help")
	versionFlag := flag.Bool("version", false, "Show version")
	exportFile := flag.String("export-md", "", "Export the thread forest to a Markdown file (e.g., report.md)")
	robotHelp := flag.Bool("robot-help", false, "Show AI agent help")
	robotTopology := flag.Bool("robot-topology", false, "Output the built thread topology as JSON for AI agents")
	robotInsights := flag.Bool("robot-insights", false, "Output topology metrics as JSON for AI agents")
	workspaceConfig := flag.String("workspace", "", "Load threads from workspace config file (.sv/workspace.yaml)")
	noWatch := flag.Bool("no-watch", false, "Disable live reload on file changes")
	flag.Parse()

	if *help {
		fmt.Println("Usage: sv [options] [export-file]")
		fmt.Println("\nA TUI viewer for agent conversation threads and their handoff stacks.")
		flag.PrintDefaults()
		os.Exit(0)
	}

	if *robotHelp {
		printRobotHelp()
		os.Exit(0)
	}

	if *versionFlag {
		fmt.Printf("sv %s\n", version.Version)
		os.Exit(0)
	}

	sources, err := resolveSources(*workspaceConfig, flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error resolving sources: %v\n", err)
		os.Exit(1)
	}
	if len(sources) == 0 {
		fmt.Fprintln(os.Stderr, "No thread sources found.")
		fmt.Fprintf(os.Stderr, "Expected %s, a workspace config, or an explicit file argument.\n", defaultExportPath)
		os.Exit(1)
	}

	threads, err := loader.LoadAll(context.Background(), sources)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading threads: %v\n", err)
		os.Exit(1)
	}

	entries := topology.Build(threads)

	if *robotTopology {
		emitJSON(struct {
			Entries []topology.Entry `json:"entries"`
			Count   int              `json:"count"`
		}{Entries: entries, Count: len(entries)})
		os.Exit(0)
	}

	if *robotInsights {
		emitJSON(analysis.Summarize(entries))
		os.Exit(0)
	}

	if *exportFile != "" {
		fmt.Printf("Exporting to %s...\n", *exportFile)
		if err := export.SaveMarkdownToFile(entries, "Thread Report", *exportFile); err != nil {
			fmt.Fprintf(os.Stderr, "Error exporting: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Done!")
		os.Exit(0)
	}

	if len(threads) == 0 {
		fmt.Println("No threads found.")
		os.Exit(0)
	}

	m := ui.NewModel(threads)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())

	if !*noWatch {
		w, err := startWatcher(sources, p)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: live reload disabled: %v\n", err)
		} else {
			defer w.Stop()
		}
	}

	if _, err := p.Run(); err != nil {
		fmt.Printf("Error running stack viewer: %v\n", err)
		os.Exit(1)
	}
}

// resolveSources decides where threads come from, in order of
// preference: explicit file argument, explicit --workspace config, a
// workspace config found by walking up from the working directory, and
// finally the default export path.
func resolveSources(workspacePath, fileArg string) ([]loader.Source, error) {
	if fileArg != "" {
		return []loader.Source{fileSource(fileArg)}, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	if workspacePath == "" {
		if found, err := workspace.FindConfig(cwd); err == nil {
			workspacePath = found
		}
	}
	if workspacePath != "" {
		cfg, err := workspace.LoadConfig(workspacePath)
		if err != nil {
			return nil, err
		}
		return cfg.LoaderSources(filepath.Dir(filepath.Dir(workspacePath))), nil
	}

	fallback := filepath.Join(cwd, defaultExportPath)
	if _, err := os.Stat(fallback); err != nil {
		return nil, nil
	}
	return []loader.Source{fileSource(fallback)}, nil
}

func fileSource(path string) loader.Source {
	kind := loader.KindJSONL
	switch filepath.Ext(path) {
	case ".db", ".sqlite", ".sqlite3":
		kind = loader.KindSQLite
	}
	return loader.Source{Name: filepath.Base(path), Path: path, Kind: kind}
}

// startWatcher reloads all sources when any of them changes and pushes
// the fresh thread list into the running program.
func startWatcher(sources []loader.Source, p *tea.Program) (*watcher.Watcher, error) {
	paths := make([]string, 0, len(sources))
	for _, src := range sources {
		paths = append(paths, src.Path)
	}
	w, err := watcher.New(paths, watcher.DefaultDebounce, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		threads, err := loader.LoadAll(ctx, sources)
		if err != nil {
			return // keep showing the last good state
		}
		p.Send(ui.ThreadsReloadedMsg{Threads: threads})
	})
	if err != nil {
		return nil, err
	}
	w.Start()
	return w, nil
}

func emitJSON(v interface{}) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding JSON: %v\n", err)
		os.Exit(1)
	}
}

func printRobotHelp() {
	fmt.Println("sv (Stack Viewer) AI Agent Interface")
	fmt.Println("====================================")
	fmt.Println("This tool groups agent conversation threads into handoff stacks.")
	fmt.Println("Use these commands to understand thread state without parsing raw JSONL.")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  --robot-topology")
	fmt.Println("      Outputs the built forest as JSON, sorted by recency.")
	fmt.Println("      Key fields per entry:")
	fmt.Println("      - kind: 'thread' for a bare thread, 'stack' for a handoff chain")
	fmt.Println("      - head: the structural root thread of the entry")
	fmt.Println("      - descendants: remaining stack members in tree order")
	fmt.Println("      - topology: parent/child maps restricted to the stack")
	fmt.Println("")
	fmt.Println("  --robot-insights")
	fmt.Println("      Outputs topology metrics as JSON.")
	fmt.Println("      Key metrics explained:")
	fmt.Println("      - max_depth: longest handoff chain below any head")
	fmt.Println("      - max_fan_out: most children handed off from one thread")
	fmt.Println("      - depth_histogram: thread count per nesting level")
	fmt.Println("      - central_threads: PageRank over handoff edges; high score =")
	fmt.Println("        a thread many handoffs trace back to")
	fmt.Println("")
	fmt.Println("  --export-md <file>")
	fmt.Println("      Generates a readable status report with Mermaid.js visualizations.")
	fmt.Println("")
	fmt.Println("  --workspace CONFIG")
	fmt.Println("      Load threads from a workspace configuration file.")
	fmt.Println("      Path: typically .sv/workspace.yaml")
	fmt.Println("      Aggregates threads from multiple sources; first source wins on ID clashes.")
}
