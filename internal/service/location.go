package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/award28/toolshed/internal/hierarchy"
	"github.com/award28/toolshed/internal/model"
	"github.com/award28/toolshed/internal/repo"
)

// LocationService — операции над иерархией локаций.
type LocationService struct {
	repo repo.LocationRepository
	log  *zap.SugaredLogger
}

func NewLocationService(r repo.LocationRepository, log *zap.SugaredLogger) *LocationService {
	return &LocationService{repo: r, log: log}
}

// LocationUpdate — частичное обновление: nil-указатель при выставленном
// Set-флаге означает «записать NULL», отсутствие флага — «не трогать».
// Name без флага: nil — не менять.
type LocationUpdate struct {
	Name           *string
	Description    *string
	SetDescription bool
	ParentID       *int64
	SetParent      bool
}

// LocationWithCount — локация с числом напрямую размещённых инструментов.
type LocationWithCount struct {
	model.Location
	ToolCount int64 `json:"toolCount"`
}

func (s *LocationService) Create(ctx context.Context, name string, description *string, parentID *int64) (*model.Location, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrNameRequired
	}

	loc := &model.Location{
		Name:        name,
		Description: normalizeOptional(description),
		ParentID:    parentID,
	}
	if err := s.repo.Create(ctx, loc); err != nil {
		return nil, err
	}
	s.log.Infow("location created", "location_id", loc.ID, "name", loc.Name)
	return loc, nil
}

func (s *LocationService) Get(ctx context.Context, id int64) (*model.Location, error) {
	loc, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrNotFound
	}
	return loc, err
}

// List возвращает либо плоский список всех локаций (flat),
// либо прямых потомков parentID (nil — корневые).
func (s *LocationService) List(ctx context.Context, parentID *int64, flat bool) ([]model.Location, error) {
	if flat {
		return s.repo.ListAll(ctx)
	}
	return s.repo.ListByParent(ctx, parentID)
}

// ListWithToolCounts — все локации с числом инструментов в каждой.
func (s *LocationService) ListWithToolCounts(ctx context.Context) ([]LocationWithCount, error) {
	locs, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	counts, err := s.repo.CountToolsPerLocation(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]LocationWithCount, 0, len(locs))
	for _, loc := range locs {
		out = append(out, LocationWithCount{Location: loc, ToolCount: counts[loc.ID]})
	}
	return out, nil
}

func (s *LocationService) Update(ctx context.Context, id int64, upd LocationUpdate) (*model.Location, error) {
	// самородительство — конфликт целостности, строка не меняется.
	// Более глубокие циклы (A -> B -> A) на записи не ловятся: это
	// документированное поведение, чтение защищено visited-обходом.
	if upd.SetParent && upd.ParentID != nil && *upd.ParentID == id {
		s.log.Warnw("location cannot be its own parent", "location_id", id)
		return nil, ErrSelfParent
	}

	updates := map[string]any{"updated_at": time.Now().UTC()}
	if upd.Name != nil {
		name := strings.TrimSpace(*upd.Name)
		if name == "" {
			return nil, ErrNameRequired
		}
		updates["name"] = name
	}
	if upd.SetDescription {
		updates["description"] = normalizeOptional(upd.Description)
	}
	if upd.SetParent {
		updates["parent_id"] = upd.ParentID
	}

	loc, err := s.repo.Update(ctx, id, updates)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	s.log.Infow("location updated", "location_id", id)
	return loc, nil
}

// Delete удаляет локацию; потомки и инструменты не удаляются,
// а лишь теряют ссылку на неё (см. repo.LocationRepository.Delete).
func (s *LocationService) Delete(ctx context.Context, id int64) error {
	err := s.repo.Delete(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	s.log.Infow("location deleted", "location_id", id)
	return nil
}

// DescendantIDs — замкнутое множество: сама локация плюс все потомки.
// Строится по свежему полному срезу локаций; снапшот может отставать
// от конкурентной мутации, чего для фильтрации достаточно.
func (s *LocationService) DescendantIDs(ctx context.Context, id int64) ([]int64, error) {
	all, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return hierarchy.DescendantIDs(all, id), nil
}

// normalizeOptional обрезает пробелы; пустая строка становится NULL.
func normalizeOptional(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	if t == "" {
		return nil
	}
	return &t
}
