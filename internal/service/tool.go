package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/award28/toolshed/internal/model"
	"github.com/award28/toolshed/internal/repo"
)

// AssetStore — нужная сервису часть хранилища изображений.
type AssetStore interface {
	Save(data []byte, originalName string) (string, error)
	Delete(path string)
}

// ImageUpload — уже распарсенная загрузка изображения.
type ImageUpload struct {
	Data     []byte
	Filename string
}

// ToolWriteRequest — нормализованный запрос записи инструмента.
// HTTP-слой приводит к нему и JSON, и multipart; сервис на кодировку
// транспорта не смотрит. Семантика частичная: поле без указателя
// (или без Set-флага) не трогается.
type ToolWriteRequest struct {
	Label          *string
	Description    *string
	SetDescription bool
	Notes          *string
	SetNotes       bool
	LocationID     *int64
	SetLocation    bool
	IsBorrowed     *bool
	BorrowedBy     *string
	SetBorrowedBy  bool
	Image          *ImageUpload
	RemoveImage    bool
}

// ToolListQuery — параметры списка инструментов; фильтры комбинируются
// конъюнктивно.
type ToolListQuery struct {
	Query      string
	LocationID *int64
	Borrowed   *bool
}

// ToolService оркестрирует репозиторий, иерархию и хранилище изображений.
type ToolService struct {
	tools     repo.ToolRepository
	locations *LocationService
	assets    AssetStore
	log       *zap.SugaredLogger
}

func NewToolService(tools repo.ToolRepository, locations *LocationService, assets AssetStore, log *zap.SugaredLogger) *ToolService {
	return &ToolService{tools: tools, locations: locations, assets: assets, log: log}
}

// Create сохраняет изображение (если есть) до вставки строки. Если вставка
// после этого падает, файл остаётся сиротой — это принятый компромисс,
// сирота только логируется.
func (s *ToolService) Create(ctx context.Context, req ToolWriteRequest) (*model.Tool, error) {
	if req.Label == nil {
		return nil, ErrLabelRequired
	}
	label := strings.TrimSpace(*req.Label)
	if label == "" {
		return nil, ErrLabelRequired
	}

	var imagePath *string
	if req.Image != nil && len(req.Image.Data) > 0 {
		p, err := s.assets.Save(req.Image.Data, req.Image.Filename)
		if err != nil {
			return nil, fmt.Errorf("save image: %w", err)
		}
		imagePath = &p
		s.log.Debugw("image saved", "path", p, "size", len(req.Image.Data))
	}

	tool := &model.Tool{
		Label:       label,
		Description: normalizeOptional(req.Description),
		Notes:       normalizeOptional(req.Notes),
		ImagePath:   imagePath,
		LocationID:  req.LocationID,
	}
	if err := s.tools.Create(ctx, tool); err != nil {
		if imagePath != nil {
			s.log.Warnw("tool insert failed, uploaded image orphaned", "path", *imagePath, "error", err)
		}
		return nil, err
	}

	s.log.Infow("tool created", "tool_id", tool.ID, "label", tool.Label)
	return tool, nil
}

func (s *ToolService) Get(ctx context.Context, id int64) (*model.Tool, error) {
	tool, err := s.tools.GetByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrNotFound
	}
	return tool, err
}

// List применяет фильтры конъюнктивно. Фильтр по локации расширяется
// до всех её потомков; непустой поиск без совпадений отвечает пустым
// списком, не трогая реляционный фильтр.
func (s *ToolService) List(ctx context.Context, q ToolListQuery) ([]model.Tool, error) {
	f := repo.ToolFilter{Borrowed: q.Borrowed}

	if q.LocationID != nil {
		ids, err := s.locations.DescendantIDs(ctx, *q.LocationID)
		if err != nil {
			return nil, err
		}
		f.LocationIDs = ids
	}

	if query := strings.TrimSpace(q.Query); query != "" {
		ids, err := s.tools.Search(ctx, query)
		if err != nil {
			return nil, err
		}
		if len(ids) == 0 {
			return []model.Tool{}, nil
		}
		f.MatchingIDs = ids
	}

	return s.tools.ListFiltered(ctx, f)
}

// Update мержит только явно присланные поля и держит инварианты выдачи:
// borrowed_at ставится ровно при переходе в isBorrowed=true и чистится
// вместе с borrowed_by при переходе в false; borrowed_by не пишется,
// пока инструмент не выдан. Новое изображение записывается и фиксируется
// в строке раньше, чем удаляется старое, чтобы строка никогда не
// указывала на удалённый файл.
func (s *ToolService) Update(ctx context.Context, id int64, req ToolWriteRequest) (*model.Tool, error) {
	current, err := s.tools.GetByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	updates := map[string]any{"updated_at": time.Now().UTC()}

	if req.Label != nil {
		label := strings.TrimSpace(*req.Label)
		if label == "" {
			return nil, ErrLabelRequired
		}
		updates["label"] = label
	}
	if req.SetDescription {
		updates["description"] = normalizeOptional(req.Description)
	}
	if req.SetNotes {
		updates["notes"] = normalizeOptional(req.Notes)
	}
	if req.SetLocation {
		updates["location_id"] = req.LocationID
	}

	borrowed := current.IsBorrowed
	if req.IsBorrowed != nil {
		borrowed = *req.IsBorrowed
		updates["is_borrowed"] = borrowed
		if borrowed && !current.IsBorrowed {
			updates["borrowed_at"] = time.Now().UTC()
		}
		if !borrowed {
			updates["borrowed_at"] = nil
			updates["borrowed_by"] = nil
		}
	}
	if req.SetBorrowedBy && borrowed {
		updates["borrowed_by"] = normalizeOptional(req.BorrowedBy)
	}

	var oldImage string
	if req.Image != nil && len(req.Image.Data) > 0 {
		p, err := s.assets.Save(req.Image.Data, req.Image.Filename)
		if err != nil {
			return nil, fmt.Errorf("save image: %w", err)
		}
		updates["image_path"] = p
		if current.ImagePath != nil {
			oldImage = *current.ImagePath
		}
	} else if req.RemoveImage {
		updates["image_path"] = nil
		if current.ImagePath != nil {
			oldImage = *current.ImagePath
		}
	}

	tool, err := s.tools.Update(ctx, id, updates)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		if p, ok := updates["image_path"].(string); ok {
			s.log.Warnw("tool update failed, uploaded image orphaned", "path", p, "error", err)
		}
		return nil, err
	}

	// старый файл удаляется только после фиксации строки
	if oldImage != "" {
		s.assets.Delete(oldImage)
	}

	s.log.Infow("tool updated", "tool_id", id)
	return tool, nil
}

// Delete убирает изображение (лучшее из возможного) и удаляет строку.
func (s *ToolService) Delete(ctx context.Context, id int64) error {
	current, err := s.tools.GetByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}

	if current.ImagePath != nil {
		s.assets.Delete(*current.ImagePath)
	}

	if err := s.tools.Delete(ctx, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	s.log.Infow("tool deleted", "tool_id", id, "label", current.Label)
	return nil
}
