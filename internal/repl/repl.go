// Package repl provides an interactive REPL (Read-Eval-Print Loop) for the
// catalogue CLI.
//
// On Windows, go-prompt and additional signal handlers can race and panic with
// "close of closed channel". Exit handling is therefore guarded by a mutex and
// uses os.Exit() rather than panic().
package repl

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"sync"

	prompt "github.com/c-bata/go-prompt"

	"nlb-mcp/internal/command"
)

var (
	// Global flag to track if we're in the exit process
	exiting   = false
	exitMutex sync.Mutex
)

// Start runs the prompt loop until the user exits.
func Start(handler *command.Handler) {
	if handler.State == nil {
		handler.State = &command.ReplState{}
	}

	fmt.Println("Welcome to nlb-cli, the NLB library catalogue shell.")
	fmt.Println("Type 'help' for available commands, 'exit' or 'quit' to exit.")

	p := prompt.New(
		func(in string) {
			if !handler.Execute(in) {
				if !beginExit() {
					return
				}
				fmt.Println("Bye.")
				// Only fix terminal on WSL
				if isWSL() {
					fixWSLTerminal()
				}
				os.Exit(0)
			}
		},
		completer,
		prompt.OptionLivePrefix(func() (string, bool) {
			return livePrefix(handler.State), true
		}),
		prompt.OptionTitle("nlb-cli"),
	)

	p.Run()
}

// beginExit reports whether the caller is the first to start exiting.
func beginExit() bool {
	exitMutex.Lock()
	defer exitMutex.Unlock()
	if exiting {
		return false
	}
	exiting = true
	return true
}

func livePrefix(state *command.ReplState) string {
	flags := ""
	if state.Pretty {
		flags += "[pretty]"
	}
	if state.NextOffset != nil {
		flags += "[more]"
	}
	return fmt.Sprintf("nlb%s> ", flags)
}

// isWSL checks if we're running in Windows Subsystem for Linux
func isWSL() bool {
	return os.Getenv("WSL_DISTRO_NAME") != "" || os.Getenv("WSLENV") != ""
}

// isWindows checks if we're running on Windows
func isWindows() bool {
	return runtime.GOOS == "windows"
}

// fixWSLTerminal restores terminal input visibility for WSL
func fixWSLTerminal() {
	_ = exec.Command("reset").Run()
	_ = exec.Command("stty", "echo").Run()

	fmt.Print("\033[?25h") // Show cursor
	fmt.Print("\033[0m")   // Reset attributes
}

var suggestions = []prompt.Suggest{
	{Text: "search", Description: "search <keywords> [--limit=N] [--sort=F] [--source=S] Keyword search"},
	{Text: "advanced", Description: "advanced [--title=] [--author=] [--subject=] [--isbn=] [--offset=N] Fielded search"},
	{Text: "next", Description: "Next page of the last advanced search"},
	{Text: "avail", Description: "avail [<bib_id>] [--isbn=] [--control=] [--branch=CODE] Item availability"},
	{Text: "branches", Description: "branches [filter] List branch codes"},
	{Text: "health", Description: "Show configuration status"},
	{Text: "pretty", Description: "pretty [on|off] Toggle indented JSON"},
	{Text: "help", Description: "Show help with all available commands"},
	{Text: "exit", Description: "Exit"},
	{Text: "quit", Description: "Exit"},
}

func completer(d prompt.Document) []prompt.Suggest {
	// only the command word is completed
	if d.TextBeforeCursor() != d.GetWordBeforeCursor() {
		return nil
	}
	return prompt.FilterHasPrefix(suggestions, d.GetWordBeforeCursor(), true)
}
