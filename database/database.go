package database

import (
	"context"

	"gorm.io/gorm"
)

// Database is the postgres backed Store. Every repository shares one GORM handle, which is
// either the root connection pool or an open transaction.
type Database struct {
	db                *gorm.DB
	userRepo          *UserRepo
	projectRepo       *ProjectRepo
	followRepo        *FollowRepo
	handleRepo        *HandleRepo
	mediaCleanupRepo  *MediaCleanupRepo
	insideTransaction bool
}

var _ Store = (*Database)(nil)

// New initializes a new Database struct with each repository using a shared GORM database instance
func New(db *gorm.DB) *Database {
	return &Database{
		db:               db,
		userRepo:         NewUserRepo(db),
		projectRepo:      NewProjectRepo(db),
		followRepo:       NewFollowRepo(db),
		handleRepo:       NewHandleRepo(db),
		mediaCleanupRepo: NewMediaCleanupRepo(db),
	}
}

// Accessor methods for each repository

func (d *Database) Users() UserRepository {
	return d.userRepo
}

func (d *Database) Projects() ProjectRepository {
	return d.projectRepo
}

func (d *Database) Follows() FollowRepository {
	return d.followRepo
}

func (d *Database) Handles() HandleRepository {
	return d.handleRepo
}

func (d *Database) MediaCleanups() MediaCleanupRepository {
	return d.mediaCleanupRepo
}

// Transaction commits every write made through tx atomically
func (d *Database) Transaction(ctx context.Context, fn func(tx Store) error) error {
	if d.insideTransaction {
		return fn(d)
	}
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txStore := New(tx)
		txStore.insideTransaction = true
		return fn(txStore)
	})
}

// Ping checks that the database answers
func (d *Database) Ping(ctx context.Context) error {
	var result int
	return d.db.WithContext(ctx).Raw("SELECT 1").Scan(&result).Error
}
