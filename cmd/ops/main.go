package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/lukelpg/board-game-creator/internal/logging"
	"github.com/lukelpg/board-game-creator/internal/ops"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(2)
	}

	cmds := map[string]func([]string) error{
		"backup":  cmdBackup,
		"restore": cmdRestore,
		"drill":   cmdDrill,
		"migrate": cmdMigrate,
	}
	run, ok := cmds[os.Args[1]]
	if !ok {
		printUsage()
		os.Exit(2)
	}
	if err := run(os.Args[2:]); err != nil {
		fmt.Fprintf(os.Stderr, "%s failed: %v\n", os.Args[1], err)
		os.Exit(1)
	}
}

func stamp() string {
	return time.Now().UTC().Format("20060102T150405Z")
}

func cmdBackup(args []string) error {
	fs := flag.NewFlagSet("backup", flag.ContinueOnError)
	dataDir := fs.String("data-dir", "data", "path to data directory")
	out := fs.String("out", "", "output archive path (.tar.gz)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *out == "" {
		*out = filepath.Join("backups", "tabletop-"+stamp()+".tar.gz")
	}
	if err := ops.BackupDataDir(*dataDir, *out); err != nil {
		return err
	}
	fmt.Println(*out)
	return nil
}

func cmdRestore(args []string) error {
	fs := flag.NewFlagSet("restore", flag.ContinueOnError)
	archive := fs.String("archive", "", "input backup archive (.tar.gz)")
	target := fs.String("target-dir", "data-restored", "restore target directory")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *archive == "" {
		return fmt.Errorf("archive is required")
	}
	return ops.RestoreDataDir(*archive, *target)
}

func cmdDrill(args []string) error {
	fs := flag.NewFlagSet("drill", flag.ContinueOnError)
	dataDir := fs.String("data-dir", "data", "path to data directory")
	workDir := fs.String("work-dir", os.TempDir(), "temporary workspace for drill artifacts")
	if err := fs.Parse(args); err != nil {
		return err
	}

	rep, err := ops.Drill(*dataDir, *workDir, stamp())
	if err != nil {
		return err
	}
	fmt.Println("backup:", rep.Archive)
	fmt.Println("restored:", rep.RestoreDir)
	fmt.Println("digest:", rep.Digest)
	return nil
}

func cmdMigrate(args []string) error {
	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	gamesDir := fs.String("games-dir", filepath.Join("data", "games"), "directory of game files")
	verbose := fs.Bool("v", false, "log every file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	level := "warn"
	if *verbose {
		level = "info"
	}
	log, err := logging.New(level, true)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	results, err := ops.MigrateGames(context.Background(), *gamesDir, log)
	if err != nil {
		return err
	}
	var changed, failed int
	for _, r := range results {
		switch {
		case r.Err != nil:
			failed++
			fmt.Printf("%s: %v\n", r.Name, r.Err)
		case r.Changed:
			changed++
			fmt.Printf("%s: rewritten\n", r.Name)
		}
	}
	fmt.Printf("%d games, %d rewritten, %d failed\n", len(results), changed, failed)
	if failed > 0 {
		return fmt.Errorf("%d games could not be migrated", failed)
	}
	return nil
}

func printUsage() {
	fmt.Println("usage:")
	fmt.Println("  tabletop-ops backup  --data-dir data --out backups/backup.tar.gz")
	fmt.Println("  tabletop-ops restore --archive backups/backup.tar.gz --target-dir data-restored")
	fmt.Println("  tabletop-ops drill   --data-dir data --work-dir /tmp")
	fmt.Println("  tabletop-ops migrate --games-dir data/games [-v]")
}
