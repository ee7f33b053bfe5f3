package database

import (
	"calorie-tracker/models"
	"calorie-tracker/structs"
	"database/sql"
	"fmt"
	"time"

	"github.com/jinzhu/gorm"
	_ "github.com/jinzhu/gorm/dialects/mysql"
	_ "github.com/jinzhu/gorm/dialects/postgres"
	_ "modernc.org/sqlite"
)

// DB is the process-wide connection pool opened by InitDatabasePool.
var DB *gorm.DB

func InitDatabasePool(config structs.EnviromentModel) error {
	db, err := Open(config)
	if err != nil {
		return err
	}
	if err := Migrate(db); err != nil {
		db.Close()
		return err
	}
	DB = db
	return nil
}

// Open connects with the dialect named by database.client.
func Open(config structs.EnviromentModel) (*gorm.DB, error) {
	dbConfig := config.Database
	var (
		db  *gorm.DB
		err error
	)
	switch dbConfig.Client {
	case "mysql":
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?%s",
			dbConfig.User, dbConfig.Password, dbConfig.Host, dbConfig.Port, dbConfig.Db, mysqlParams(dbConfig.Params))
		db, err = gorm.Open("mysql", dsn)
	case "postgres":
		dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s %s",
			dbConfig.Host, dbConfig.Port, dbConfig.User, dbConfig.Password, dbConfig.Db, dbConfig.Params)
		db, err = gorm.Open("postgres", dsn)
	case "sqlite", "":
		db, err = OpenSQLite(dbConfig.Db)
	default:
		return nil, fmt.Errorf("unsupported database client %q", dbConfig.Client)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", dbConfig.Client, err)
	}

	if dbConfig.Client != "sqlite" && dbConfig.Client != "" {
		db.DB().SetMaxIdleConns(int(dbConfig.MaxIdle))
		db.DB().SetMaxOpenConns(int(dbConfig.MaxOpenConn))
		if lifeTime, err := time.ParseDuration(dbConfig.MaxLifeTime); err == nil {
			db.DB().SetConnMaxLifetime(lifeTime)
		}
	}
	db.LogMode(dbConfig.LogEnable == 1)
	return db, nil
}

// OpenSQLite opens a pure-Go SQLite database through gorm's sqlite3 dialect.
// ":memory:" gives every caller its own empty database.
func OpenSQLite(path string) (*gorm.DB, error) {
	if path == "" {
		path = ":memory:"
	}
	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// one connection: in-memory databases are per connection and sqlite
	// serializes writers anyway
	sqlDB.SetMaxOpenConns(1)
	if _, err := sqlDB.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		sqlDB.Close()
		return nil, err
	}
	db, err := gorm.Open("sqlite3", sqlDB)
	if err != nil {
		sqlDB.Close()
		return nil, err
	}
	return db, nil
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.Meal{}, &models.ActivityLog{}).Error; err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

func Close() {
	if DB != nil {
		DB.Close()
	}
}

func mysqlParams(params string) string {
	if params == "" {
		return "charset=utf8mb4&parseTime=True&loc=Local"
	}
	return params
}
