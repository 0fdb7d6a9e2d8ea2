// Package assets — файловое хранилище загруженных изображений инструментов.
package assets

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	// ErrInvalidName — имя файла содержит разделитель пути или «..»;
	// отклоняется до какого-либо обращения к файловой системе.
	ErrInvalidName = errors.New("invalid asset filename")
	// ErrNotFound — файла нет в хранилище.
	ErrNotFound = errors.New("asset not found")
)

// URLPrefix — префикс ссылочных путей, сохраняемых в tools.image_path.
const URLPrefix = "/uploads/"

var contentTypes = map[string]string{
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"gif":  "image/gif",
	"webp": "image/webp",
	"svg":  "image/svg+xml",
}

// Store кладёт байты изображений в один каталог под уникальными именами.
// Строка tools владеет ссылкой на файл; Store владеет только байтами.
type Store struct {
	dir string
	log *zap.SugaredLogger
}

// NewStore создаёт хранилище с корнем dir. Каталог создаётся лениво
// при первом сохранении.
func NewStore(dir string, log *zap.SugaredLogger) *Store {
	return &Store{dir: dir, log: log}
}

// Save записывает данные под новым уникальным именем, сохраняя расширение
// исходного файла (jpg по умолчанию), и возвращает ссылочный путь
// для image_path.
func (s *Store) Save(data []byte, originalName string) (string, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(originalName), "."))
	if ext == "" {
		ext = "jpg"
	}
	name := uuid.NewString() + "." + ext

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0o644); err != nil {
		return "", err
	}
	return URLPrefix + name, nil
}

// Delete убирает файл по ссылочному пути. Лучшее из возможного:
// отсутствие файла — не ошибка, прочие сбои логируются и не всплывают,
// чтобы не блокировать операцию, ради которой чистится файл.
func (s *Store) Delete(path string) {
	name := strings.TrimPrefix(path, URLPrefix)
	if !validName(name) {
		return
	}
	if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !errors.Is(err, os.ErrNotExist) {
		s.log.Warnw("failed to remove asset", "path", path, "error", err)
	}
}

// Open читает файл по имени строго внутри корня хранилища и возвращает
// байты вместе с content-type по расширению.
func (s *Store) Open(filename string) ([]byte, string, error) {
	if !validName(filename) {
		return nil, "", ErrInvalidName
	}
	data, err := os.ReadFile(filepath.Join(s.dir, filename))
	if errors.Is(err, os.ErrNotExist) {
		return nil, "", ErrNotFound
	}
	if err != nil {
		return nil, "", err
	}

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	ct, ok := contentTypes[ext]
	if !ok {
		ct = "application/octet-stream"
	}
	return data, ct, nil
}

func validName(name string) bool {
	return name != "" &&
		!strings.ContainsAny(name, `/\`) &&
		!strings.Contains(name, "..")
}
