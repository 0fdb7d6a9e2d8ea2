package repo

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/driver/postgres"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	_ "modernc.org/sqlite"

	"github.com/award28/toolshed/internal/model"
)

// ErrNotFound возвращается репозиториями, когда запись отсутствует.
var ErrNotFound = errors.New("record not found")

// DB — явно открываемое и закрываемое подключение к хранилищу.
// Движок (встроенный SQLite или сетевой PostgreSQL) выбирается по DSN;
// дальше весь код работает через одни и те же репозитории.
type DB struct {
	gorm     *gorm.DB
	searcher searcher
}

// Open подключается к базе, прогоняет миграции моделей и
// движко-специфичную миграцию поискового индекса.
func Open(dsn string) (*DB, error) {
	dial, search := selectEngine(dsn)

	gdb, err := gorm.Open(dial, &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := gdb.AutoMigrate(&model.Location{}, &model.Tool{}); err != nil {
		return nil, fmt.Errorf("migrate models: %w", err)
	}
	if err := search.migrate(gdb); err != nil {
		return nil, fmt.Errorf("migrate search index: %w", err)
	}

	return &DB{gorm: gdb, searcher: search}, nil
}

// Close закрывает пул соединений базы.
func (d *DB) Close() error {
	sqlDB, err := d.gorm.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// selectEngine выбирает диалект и поисковый движок по форме DSN.
// Всё, что похоже на PostgreSQL-DSN, уходит в сетевой движок;
// остальное трактуется как путь к файлу SQLite (modernc, без CGO).
func selectEngine(dsn string) (gorm.Dialector, searcher) {
	if strings.HasPrefix(dsn, "postgres://") ||
		strings.HasPrefix(dsn, "postgresql://") ||
		strings.Contains(dsn, "host=") {
		return postgres.Open(dsn), &postgresSearch{}
	}
	return gormsqlite.Dialector{DriverName: "sqlite", DSN: dsn}, &sqliteSearch{}
}
