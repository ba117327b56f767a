package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"blogapi/app/config"
	"blogapi/app/repositories"
	"blogapi/app/repositories/mongostore"
)

// DefaultBackupDir is where backup writes when no directory is given.
const DefaultBackupDir = "data/backups"

// HandleCommand runs a CLI subcommand and returns its exit code.
func HandleCommand(args []string) int {
	if len(args) < 1 {
		printHelp()
		return 1
	}

	cmd := args[0]
	switch cmd {
	case "serve":
		return RunAppServer(args[1:])
	case "invoke":
		path := ""
		if len(args) > 1 {
			path = args[1]
		}
		return invoke(path)
	case "clean":
		return clean(loadConfig())
	case "init":
		return initDb(loadConfig())
	case "backup":
		dir := DefaultBackupDir
		if len(args) > 1 {
			dir = args[1]
		}
		return backup(loadConfig(), dir)
	case "restore":
		if len(args) < 2 {
			fmt.Println("Error: backup file path required for restore")
			return 1
		}
		return restore(loadConfig(), args[1])
	case "help":
		printHelp()
		return 0
	default:
		fmt.Printf("Unknown command: %s\n\n", cmd)
		printHelp()
		return 1
	}
}

func printHelp() {
	helpText := `Usage: blogapi <command>

Commands:
  serve [addr]          Run the HTTP API (default addr from BLOG_ADDR or PORT)
  invoke [file]         Dispatch one gateway event read from file or stdin
  clean                 Remove the local database
  init                  Initialize the configured storage
  backup [dir]          Write a backup of the local database
  restore <file>        Restore the local database from a backup
  version               Print the version
  help                  Display this help message
`
	fmt.Println(helpText)
}

func requireBadger(cfg config.Config) bool {
	if cfg.Storage.Mode != config.StorageBadger {
		fmt.Printf("Command requires %s storage, configured storage is %s\n", config.StorageBadger, cfg.Storage.Mode)
		return false
	}
	return true
}

func openStore(cfg config.Config) (*repositories.Store, error) {
	return repositories.Open(repositories.Options{
		Path:          cfg.Storage.DBPath,
		PostsTable:    cfg.Storage.PostsTable,
		CommentsTable: cfg.Storage.CommentsTable,
	})
}

// clean removes the database.
func clean(cfg config.Config) int {
	if !requireBadger(cfg) {
		return 1
	}
	dbPath := cfg.Storage.DBPath
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		fmt.Println("Database is already clean (does not exist)")
		return 0
	}

	if !confirm("Are you sure you want to clean the database? This cannot be undone.") {
		fmt.Println("Operation cancelled")
		return 1
	}

	if err := os.RemoveAll(dbPath); err != nil {
		fmt.Printf("Failed to clean database: %v\n", err)
		return 1
	}
	fmt.Println("Database cleaned successfully")
	return 0
}

// initDb prepares the configured storage: it creates the local database, or
// ensures the indexes of the mongo collections.
func initDb(cfg config.Config) int {
	switch cfg.Storage.Mode {
	case config.StorageMemory:
		fmt.Println("Memory storage needs no initialization")
		return 0
	case config.StorageMongo:
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		store, err := mongostore.Connect(ctx, mongostore.Options{
			URL:                cfg.Storage.MongoURL,
			Database:           cfg.Storage.MongoDBName,
			PostsCollection:    cfg.Storage.PostsTable,
			CommentsCollection: cfg.Storage.CommentsTable,
		})
		if err != nil {
			fmt.Printf("Failed to initialize database: %v\n", err)
			return 1
		}
		defer store.Close(ctx)
		fmt.Println("Database indexes ensured")
		return 0
	}

	dbPath := cfg.Storage.DBPath
	if _, err := os.Stat(dbPath); err == nil {
		fmt.Println("Database already exists. Use 'clean' first if you want to reinitialize.")
		return 0
	}
	if err := os.MkdirAll(dbPath, 0755); err != nil {
		fmt.Printf("Failed to create database directory: %v\n", err)
		return 1
	}

	store, err := openStore(cfg)
	if err != nil {
		fmt.Printf("Failed to initialize database: %v\n", err)
		return 1
	}
	defer store.Close()

	fmt.Println("Database initialized successfully")
	return 0
}

// backup writes a full backup of the database into backupDir.
func backup(cfg config.Config, backupDir string) int {
	if !requireBadger(cfg) {
		return 1
	}
	if _, err := os.Stat(cfg.Storage.DBPath); os.IsNotExist(err) {
		fmt.Println("No database exists to backup")
		return 1
	}
	if err := os.MkdirAll(backupDir, 0755); err != nil {
		fmt.Printf("Failed to create backup directory: %v\n", err)
		return 1
	}

	store, err := openStore(cfg)
	if err != nil {
		fmt.Printf("Failed to open database: %v\n", err)
		return 1
	}
	defer store.Close()

	backupFile := filepath.Join(backupDir, fmt.Sprintf("backup_%d.db", time.Now().Unix()))
	f, err := os.Create(backupFile)
	if err != nil {
		fmt.Printf("Failed to create backup file: %v\n", err)
		return 1
	}
	defer f.Close()

	if err := store.Backup(f); err != nil {
		fmt.Printf("Failed to backup database: %v\n", err)
		return 1
	}

	fmt.Printf("Database backed up successfully to %s\n", backupFile)
	return 0
}

// restore replaces the database with the contents of backupFile.
func restore(cfg config.Config, backupFile string) int {
	if !requireBadger(cfg) {
		return 1
	}
	fi, err := os.Stat(backupFile)
	if os.IsNotExist(err) {
		fmt.Printf("Backup file does not exist: %s\n", backupFile)
		return 1
	}
	if err == nil && fi.Size() == 0 {
		fmt.Printf("Backup file is empty: %s\n", backupFile)
		return 1
	}

	dbPath := cfg.Storage.DBPath
	if _, err := os.Stat(dbPath); err == nil {
		if !confirm("Existing database found. Do you want to replace it?") {
			fmt.Println("Operation cancelled")
			return 1
		}
		if err := os.RemoveAll(dbPath); err != nil {
			fmt.Printf("Failed to remove existing database: %v\n", err)
			return 1
		}
	}
	if err := os.MkdirAll(dbPath, 0755); err != nil {
		fmt.Printf("Failed to create database directory: %v\n", err)
		return 1
	}

	f, err := os.Open(backupFile)
	if err != nil {
		fmt.Printf("Failed to open backup file: %v\n", err)
		return 1
	}
	defer f.Close()

	store, err := openStore(cfg)
	if err != nil {
		fmt.Printf("Failed to open database: %v\n", err)
		return 1
	}
	defer store.Close()

	err = func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("panic occurred during restore: %v", r)
			}
		}()
		return store.Restore(f)
	}()
	if err != nil {
		fmt.Printf("Failed to restore database: %v\n", err)
		return 1
	}

	fmt.Println("Database restored successfully")
	return 0
}
