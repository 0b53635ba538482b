package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	database "cloud.google.com/go/spanner/admin/database/apiv1"
	"cloud.google.com/go/spanner/admin/database/apiv1/databasepb"
	instance "cloud.google.com/go/spanner/admin/instance/apiv1"
	"cloud.google.com/go/spanner/admin/instance/apiv1/instancepb"
	"github.com/charmbracelet/log"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/light-bringer/changeproxy/internal/pkg/config"
	"github.com/light-bringer/changeproxy/internal/pkg/logging"
)

var (
	configFile = flag.String("config", "", "Optional YAML config file")
	migrateDir = flag.String("migrations", "migrations", "Directory containing migration SQL files")
)

// target is a parsed projects/P/instances/I/databases/D path.
type target struct {
	project  string
	instance string
	database string
}

func (t target) instancePath() string {
	return fmt.Sprintf("projects/%s/instances/%s", t.project, t.instance)
}

func (t target) databasePath() string {
	return fmt.Sprintf("%s/databases/%s", t.instancePath(), t.database)
}

func parseTarget(path string) (target, error) {
	parts := strings.Split(path, "/")
	if len(parts) != 6 || parts[0] != "projects" || parts[2] != "instances" || parts[4] != "databases" {
		return target{}, fmt.Errorf("invalid database path %q", path)
	}
	return target{project: parts[1], instance: parts[3], database: parts[5]}, nil
}

func main() {
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatal("loading config", "err", err)
	}
	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatal("creating logger", "err", err)
	}
	logging.SetDefault(logger)

	tgt, err := parseTarget(cfg.SpannerDatabase)
	if err != nil {
		logger.Fatal("migration failed", "err", err)
	}
	if host := os.Getenv("SPANNER_EMULATOR_HOST"); host != "" {
		logger.Info("using spanner emulator", "host", host)
	}

	if err := run(context.Background(), logger, tgt); err != nil {
		logger.Fatal("migration failed", "err", err)
	}
	logger.Info("migrations completed", "database", tgt.databasePath())
}

func run(ctx context.Context, logger *log.Logger, tgt target) error {
	if err := ensureInstance(ctx, logger, tgt); err != nil {
		return fmt.Errorf("failed to ensure instance: %w", err)
	}
	if err := ensureDatabase(ctx, logger, tgt); err != nil {
		return fmt.Errorf("failed to ensure database: %w", err)
	}
	if err := applyMigrations(ctx, logger, tgt); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}

func ensureInstance(ctx context.Context, logger *log.Logger, tgt target) error {
	admin, err := instance.NewInstanceAdminClient(ctx)
	if err != nil {
		return fmt.Errorf("failed to create instance admin client: %w", err)
	}
	defer admin.Close()

	_, err = admin.GetInstance(ctx, &instancepb.GetInstanceRequest{Name: tgt.instancePath()})
	if err == nil {
		logger.Debug("instance exists", "instance", tgt.instance)
		return nil
	}
	if status.Code(err) != codes.NotFound {
		logger.Warn("unexpected error checking instance", "err", err)
		return nil
	}

	logger.Info("creating instance", "instance", tgt.instance)
	op, err := admin.CreateInstance(ctx, &instancepb.CreateInstanceRequest{
		Parent:     "projects/" + tgt.project,
		InstanceId: tgt.instance,
		Instance: &instancepb.Instance{
			Config:      fmt.Sprintf("projects/%s/instanceConfigs/emulator-config", tgt.project),
			DisplayName: "Development Instance",
			NodeCount:   1,
		},
	})
	if err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return nil
		}
		return fmt.Errorf("failed to create instance: %w", err)
	}
	if _, err := op.Wait(ctx); err != nil && status.Code(err) != codes.AlreadyExists {
		logger.Warn("waiting for instance", "err", err)
	}
	return nil
}

func ensureDatabase(ctx context.Context, logger *log.Logger, tgt target) error {
	admin, err := database.NewDatabaseAdminClient(ctx)
	if err != nil {
		return fmt.Errorf("failed to create admin client: %w", err)
	}
	defer admin.Close()

	_, err = admin.GetDatabase(ctx, &databasepb.GetDatabaseRequest{Name: tgt.databasePath()})
	if err == nil {
		logger.Debug("database exists", "database", tgt.database)
		return nil
	}
	if status.Code(err) != codes.NotFound {
		if os.Getenv("SPANNER_EMULATOR_HOST") != "" {
			logger.Warn("proceeding with database in emulator mode", "err", err)
			return nil
		}
		return fmt.Errorf("failed to check database: %w", err)
	}

	logger.Info("creating database", "database", tgt.database)
	op, err := admin.CreateDatabase(ctx, &databasepb.CreateDatabaseRequest{
		Parent:          tgt.instancePath(),
		CreateStatement: fmt.Sprintf("CREATE DATABASE `%s`", tgt.database),
	})
	if err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return nil
		}
		return fmt.Errorf("failed to create database: %w", err)
	}
	if _, err := op.Wait(ctx); err != nil {
		return fmt.Errorf("failed to wait for database creation: %w", err)
	}
	return nil
}

func applyMigrations(ctx context.Context, logger *log.Logger, tgt target) error {
	files, err := filepath.Glob(filepath.Join(*migrateDir, "*.sql"))
	if err != nil {
		return fmt.Errorf("failed to list migration files: %w", err)
	}
	if len(files) == 0 {
		logger.Warn("no migration files found", "dir", *migrateDir)
		return nil
	}

	admin, err := database.NewDatabaseAdminClient(ctx)
	if err != nil {
		return fmt.Errorf("failed to create admin client: %w", err)
	}
	defer admin.Close()

	for _, file := range files {
		name := filepath.Base(file)
		content, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("failed to read migration file %s: %w", file, err)
		}

		op, err := admin.UpdateDatabaseDdl(ctx, &databasepb.UpdateDatabaseDdlRequest{
			Database:   tgt.databasePath(),
			Statements: splitDDL(string(content)),
		})
		if err != nil {
			return fmt.Errorf("failed to start DDL update for %s: %w", name, err)
		}
		if err := op.Wait(ctx); err != nil {
			return fmt.Errorf("failed to apply DDL for %s: %w", name, err)
		}
		logger.Info("applied migration", "file", name)
	}
	return nil
}

// splitDDL drops comment lines and splits the rest on semicolons.
func splitDDL(content string) []string {
	var kept []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "--") {
			continue
		}
		kept = append(kept, line)
	}

	var stmts []string
	for _, stmt := range strings.Split(strings.Join(kept, "\n"), ";") {
		if stmt = strings.TrimSpace(stmt); stmt != "" {
			stmts = append(stmts, stmt)
		}
	}
	return stmts
}
