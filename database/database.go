package database

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/rpupo63/portfolio-cms/config"
	"github.com/rpupo63/portfolio-cms/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/dbresolver"
)

type Database struct {
	db                 *gorm.DB
	projectRepo        *ProjectRepo
	certificateRepo    *CertificateRepo
	techStackRepo      *TechStackRepo
	workExperienceRepo *WorkExperienceRepo
	educationRepo      *EducationRepo
	aboutRepo          *AboutRepo
	userRepo           *UserRepo
}

// New initializes a new Database struct with each repository using a shared GORM database instance
func New(db *gorm.DB) Database {
	return Database{
		db:                 db,
		projectRepo:        NewProjectRepo(db),
		certificateRepo:    NewCertificateRepo(db),
		techStackRepo:      NewTechStackRepo(db),
		workExperienceRepo: NewWorkExperienceRepo(db),
		educationRepo:      NewEducationRepo(db),
		aboutRepo:          NewAboutRepo(db),
		userRepo:           NewUserRepo(db),
	}
}

// Open connects to postgres and sizes the connection pool. The returned handle is
// shared by every request for the life of the process; call Close on shutdown.
func Open(settings config.Settings) (Database, error) {
	if settings.DatabaseURL == "" {
		return Database{}, errors.New("DATABASE_URL is not set")
	}

	gormLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             2 * time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  settings.DatabaseURL,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		PrepareStmt:    false,
		Logger:         gormLogger,
		TranslateError: true,
	})
	if err != nil {
		return Database{}, fmt.Errorf("connect to database: %w", err)
	}

	if settings.DatabaseReplicaURL != "" {
		err := db.Use(dbresolver.Register(dbresolver.Config{
			Replicas: []gorm.Dialector{postgres.New(postgres.Config{
				DSN:                  settings.DatabaseReplicaURL,
				PreferSimpleProtocol: true,
			})},
			Policy: dbresolver.RandomPolicy{},
		}).
			SetMaxOpenConns(settings.MaxOpenConns).
			SetMaxIdleConns(settings.MaxIdleConns).
			SetConnMaxLifetime(settings.ConnMaxLifetime))
		if err != nil {
			return Database{}, fmt.Errorf("register read replica: %w", err)
		}
	}

	sqlDB, err := db.DB()
	if err != nil {
		return Database{}, fmt.Errorf("get sql handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(settings.MaxOpenConns)
	sqlDB.SetMaxIdleConns(settings.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(settings.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)

	return New(db), nil
}

// Accessor methods for each repository

func (d Database) DB() *gorm.DB {
	return d.db
}

func (d Database) ProjectRepo() *ProjectRepo {
	return d.projectRepo
}

func (d Database) CertificateRepo() *CertificateRepo {
	return d.certificateRepo
}

func (d Database) TechStackRepo() *TechStackRepo {
	return d.techStackRepo
}

func (d Database) WorkExperienceRepo() *WorkExperienceRepo {
	return d.workExperienceRepo
}

func (d Database) EducationRepo() *EducationRepo {
	return d.educationRepo
}

func (d Database) AboutRepo() *AboutRepo {
	return d.aboutRepo
}

func (d Database) UserRepo() *UserRepo {
	return d.userRepo
}

// Ping checks that a pooled connection can reach the server
func (d Database) Ping(ctx context.Context) error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Migrate creates or alters every table to match the models
func (d Database) Migrate(ctx context.Context) error {
	db := d.db.WithContext(ctx)
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "pgcrypto"`).Error; err != nil {
		return fmt.Errorf("enable pgcrypto: %w", err)
	}
	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

// Close releases the pool
func (d Database) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
