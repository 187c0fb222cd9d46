package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/illarion/applock/cmd"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "init":
		runSimple(ctx, "init", os.Args[2:], cmd.Init)
	case "unlock":
		runSimple(ctx, "unlock", os.Args[2:], cmd.Unlock)
	case "lock":
		runSimple(ctx, "lock", os.Args[2:], cmd.Lock)
	case "touch":
		runSimple(ctx, "touch", os.Args[2:], cmd.Touch)
	case "status":
		runSimple(ctx, "status", os.Args[2:], cmd.Status)
	case "passwd":
		runSimple(ctx, "passwd", os.Args[2:], cmd.Passwd)
	case "compact":
		runSimple(ctx, "compact", os.Args[2:], cmd.Compact)
	case "reset":
		runReset(ctx, os.Args[2:])
	case "biometric":
		runBiometric(ctx, os.Args[2:])
	case "completion":
		runCompletion(ctx, os.Args[2:])
	case "help", "-h", "--help":
		if len(os.Args) <= 2 {
			printUsage()
			return
		}
		printCommandHelp(os.Args[2])
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

// runSimple parses a command that takes no flags
func runSimple(ctx context.Context, name string, args []string, run func(context.Context)) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}

	run(ctx)
}

func runReset(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("reset", flag.ExitOnError)
	force := fs.Bool("force", false, "Reset without confirmation")
	keepConfig := fs.Bool("keep-config", false, "Keep failure and activity counters")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}

	cmd.Reset(ctx, *keepConfig, *force)
}

func runBiometric(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("biometric", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}

	cmd.Biometric(ctx, fs.Arg(0))
}

func runCompletion(_ context.Context, args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: applock completion <bash|zsh|fish>")
		os.Exit(1)
	}
	cmd.Completion(args[0])
}

func printUsage() {
	fmt.Println("applock - PIN app lock with lockout and auto-lock")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  applock <command> [arguments]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  init        Set a PIN and enable app lock")
	fmt.Println("  unlock      Unlock with the PIN")
	fmt.Println("  lock        Lock immediately")
	fmt.Println("  touch       Record activity to postpone auto-lock")
	fmt.Println("  status      Show lock state")
	fmt.Println("  passwd      Change the PIN")
	fmt.Println("  reset       Remove the PIN and disable app lock")
	fmt.Println("  biometric   Enable, disable or show biometric unlock")
	fmt.Println("  compact     Compact the settings database")
	fmt.Println("  completion  Generate shell completions")
	fmt.Println("  help        Show help for a command")
	fmt.Println()
	fmt.Println("Environment:")
	fmt.Println("  APPLOCK_CONFIG  Config file path (default applock.yaml)")
	fmt.Println("  APPLOCK_PIN     PIN to use instead of prompting")
	fmt.Println()
	fmt.Println("Use 'applock help <command>' for more information about a command.")
}

func printCommandHelp(command string) {
	switch command {
	case "init":
		fmt.Println("applock init")
		fmt.Println()
		fmt.Println("Prompts for a new PIN and enables app lock.")
		fmt.Println("The PIN is stored as a salted PBKDF2 hash in the OS keyring.")
	case "unlock":
		fmt.Println("applock unlock")
		fmt.Println()
		fmt.Println("Prompts for the PIN and unlocks.")
		fmt.Println("Each wrong PIN uses one attempt. When no attempts remain, unlocking")
		fmt.Println("is refused until the lockout expires, even with the correct PIN.")
	case "lock":
		fmt.Println("applock lock")
		fmt.Println()
		fmt.Println("Locks immediately. Does nothing if already locked.")
	case "touch":
		fmt.Println("applock touch")
		fmt.Println()
		fmt.Println("Records activity. An unlocked app locks itself once the")
		fmt.Println("auto-lock timeout passes without activity.")
	case "status":
		fmt.Println("applock status")
		fmt.Println()
		fmt.Println("Shows lock state, failed attempts and any remaining lockout.")
		fmt.Println("Does not require a PIN.")
	case "passwd":
		fmt.Println("applock passwd")
		fmt.Println()
		fmt.Println("Changes the PIN. Requires the app to be unlocked and the current PIN.")
	case "reset":
		fmt.Println("applock reset [--force] [--keep-config]")
		fmt.Println()
		fmt.Println("Removes the PIN and the biometric setting and disables app lock.")
		fmt.Println("If the app is locked, the PIN is asked for first.")
		fmt.Println()
		fmt.Println("Flags:")
		fmt.Println("  --force         Reset without confirmation")
		fmt.Println("  --keep-config   Keep failure and activity counters")
	case "biometric":
		fmt.Println("applock biometric <enable|disable|status>")
		fmt.Println()
		fmt.Println("Enabling requires one successful biometric check.")
	case "compact":
		fmt.Println("applock compact")
		fmt.Println()
		fmt.Println("Compacts the settings database to reclaim unused disk space.")
		fmt.Println("This is done automatically by 'reset'.")
	case "completion":
		fmt.Println("applock completion <bash|zsh|fish>")
		fmt.Println()
		fmt.Println("Outputs shell completion script for the specified shell.")
		fmt.Println()
		fmt.Println("Setup:")
		fmt.Println("  # Bash - add to ~/.bashrc")
		fmt.Println("  eval \"$(applock completion bash)\"")
		fmt.Println()
		fmt.Println("  # Zsh - add to ~/.zshrc")
		fmt.Println("  eval \"$(applock completion zsh)\"")
		fmt.Println()
		fmt.Println("  # Fish - add to ~/.config/fish/config.fish")
		fmt.Println("  applock completion fish | source")
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
	}
}
