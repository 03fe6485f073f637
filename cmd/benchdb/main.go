// File path: cmd/benchdb/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/snvbench/benchdb/internal/api"
	"github.com/snvbench/benchdb/internal/auth"
	"github.com/snvbench/benchdb/internal/common"
	"github.com/snvbench/benchdb/internal/files"
	"github.com/snvbench/benchdb/internal/ingest"
	"github.com/snvbench/benchdb/internal/mirror"
	"github.com/snvbench/benchdb/internal/sqlite"
)

func main() {
	logger := common.Logger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := godotenv.Load(); err != nil {
		logger.Warn("benchdb: .env file not loaded", "error", err)
	} else {
		logger.Info("benchdb: environment loaded from .env")
	}

	addr := flag.String("addr", ":8080", "listen address")
	dataDir := flag.String("data", defaultDataDir(), "data directory for result files and the CSV mirror")
	dbPath := flag.String("db", defaultDBPath(), "path to the SQLite catalog database")
	admins := flag.String("admins", os.Getenv("BENCHDB_ADMINS"), "comma-separated admin usernames")

	partitionDefault := true
	if env := strings.TrimSpace(os.Getenv("BENCHDB_PARTITION_IDS")); env != "" {
		if parsed, err := strconv.ParseBool(env); err == nil {
			partitionDefault = parsed
		}
	}
	partitionIDs := flag.Bool("partition-ids", partitionDefault, "keep public experiment ids in 1-999 and private ids at 1000+")
	rebuildMirror := flag.Bool("rebuild-mirror", false, "regenerate the CSV mirror from the database and exit")

	flag.Parse()

	logger.Info("benchdb: startup initiated", "addr", *addr, "data", *dataDir, "db", *dbPath)

	store, err := sqlite.Open(*dbPath)
	if err != nil {
		logger.Error("benchdb: catalog open failed", "error", err)
		fmt.Println("catalog error:", err)
		os.Exit(1)
	}
	defer store.Close()

	fileManager, err := files.NewManager(*dataDir)
	if err != nil {
		logger.Error("benchdb: data directory setup failed", "error", err)
		fmt.Println("data directory error:", err)
		os.Exit(1)
	}

	csvMirror, err := mirror.New(fileManager.Root(), fileManager.DeletedDir())
	if err != nil {
		logger.Error("benchdb: mirror setup failed", "error", err)
		fmt.Println("mirror error:", err)
		os.Exit(1)
	}

	if *rebuildMirror {
		if err := csvMirror.Rebuild(ctx, store); err != nil {
			logger.Error("benchdb: mirror rebuild failed", "error", err)
			fmt.Println("mirror rebuild error:", err)
			os.Exit(1)
		}
		logger.Info("benchdb: mirror rebuilt", "path", csvMirror.Path())
		return
	}

	policy := auth.NewPolicy(strings.Split(*admins, ","))
	orch := ingest.New(ingest.Options{
		Store:        store,
		Files:        fileManager,
		Mirror:       csvMirror,
		Policy:       policy,
		PartitionIDs: *partitionIDs,
	})

	server := api.NewServer(store, orch, policy)
	logger.Info("benchdb: listening", "addr", *addr)
	if err := http.ListenAndServe(*addr, server); err != nil {
		logger.Error("benchdb: server stopped", "error", err)
		fmt.Println("server error:", err)
		os.Exit(1)
	}
}

func defaultDataDir() string {
	if env := strings.TrimSpace(os.Getenv("BENCHDB_DATA_DIR")); env != "" {
		return env
	}
	return "data"
}

func defaultDBPath() string {
	if env := strings.TrimSpace(os.Getenv("BENCHDB_SQLITE_PATH")); env != "" {
		return env
	}
	return filepath.Join(defaultDataDir(), "benchdb.sqlite")
}
