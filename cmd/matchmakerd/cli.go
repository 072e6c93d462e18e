package main

import (
	"fmt"
	"os"

	"matchmaker/internal/denylist"
)

// Version is set at build time via -ldflags, matching the teacher's
// versioning convention.
var Version = "dev"

// runCLI handles admin subcommands that do not start the server. Returns
// true if a subcommand was handled.
func runCLI(args []string, dbPath string) bool {
	if len(args) == 0 {
		return false
	}

	switch args[0] {
	case "version":
		fmt.Printf("matchmakerd %s\n", Version)
		return true
	case "denylist":
		return runDenylistCLI(args[1:], dbPath)
	default:
		return false
	}
}

func runDenylistCLI(args []string, dbPath string) bool {
	store, err := denylist.Open(dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error opening denylist database: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	if len(args) == 0 || args[0] == "list" {
		entries, err := store.List()
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		if len(entries) == 0 {
			fmt.Println("No banned IPs.")
			return true
		}
		for _, e := range entries {
			fmt.Printf("  %s  %s  (%s)\n", e.IP, e.Reason, e.CreatedAt.Format("2006-01-02 15:04:05"))
		}
		return true
	}

	if args[0] == "add" && len(args) > 1 {
		ip := args[1]
		reason := ""
		if len(args) > 2 {
			reason = args[2]
		}
		if err := store.Add(ip, reason); err != nil {
			fmt.Fprintf(os.Stderr, "error banning %s: %v\n", ip, err)
			os.Exit(1)
		}
		fmt.Printf("Banned %s\n", ip)
		return true
	}

	if args[0] == "remove" && len(args) > 1 {
		ip := args[1]
		if err := store.Remove(ip); err != nil {
			fmt.Fprintf(os.Stderr, "error unbanning %s: %v\n", ip, err)
			os.Exit(1)
		}
		fmt.Printf("Unbanned %s\n", ip)
		return true
	}

	fmt.Fprintf(os.Stderr, "Usage: matchmakerd denylist [list|add <ip> [reason]|remove <ip>]\n")
	os.Exit(1)
	return true
}
