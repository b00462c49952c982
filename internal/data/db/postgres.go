package db

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/yungbote/neurobridge-trust/internal/domain/community"
	"github.com/yungbote/neurobridge-trust/internal/domain/learning"
	"github.com/yungbote/neurobridge-trust/internal/domain/trust"
	"github.com/yungbote/neurobridge-trust/internal/domain/user"
	"github.com/yungbote/neurobridge-trust/internal/pkg/logger"
	"github.com/yungbote/neurobridge-trust/internal/platform/envutil"
)

type PostgresService struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPostgresService(log *logger.Logger) (*PostgresService, error) {
	serviceLog := log.With("service", "PostgresService")

	host := envutil.String("POSTGRES_HOST", "localhost")
	port := envutil.String("POSTGRES_PORT", "5432")
	dbUser := envutil.String("POSTGRES_USER", "postgres")
	password := envutil.String("POSTGRES_PASSWORD", "")
	name := envutil.String("POSTGRES_NAME", "neurobridge_trust")

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", dbUser, password, host, port, name)

	serviceLog.Info("Connecting to Postgres...", "host", host, "db", name)
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	if err := gdb.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`).Error; err != nil {
		return nil, fmt.Errorf("enable uuid-ossp extension: %w", err)
	}

	return &PostgresService{db: gdb, log: serviceLog}, nil
}

func (s *PostgresService) DB() *gorm.DB { return s.db }

func (s *PostgresService) AutoMigrateAll() error {
	s.log.Info("Auto migrating postgres tables...")
	return s.db.AutoMigrate(
		&user.User{},
		&community.VoteRecord{},
		&community.Answer{},
		&community.ActivityLogEntry{},
		&learning.MasteryRecord{},
		&learning.FactCheckResult{},
		&trust.ContentFingerprint{},
		&trust.AbuseFlag{},
		&trust.TrustSnapshot{},
	)
}
