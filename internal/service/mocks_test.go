package service

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/award28/toolshed/internal/model"
	"github.com/award28/toolshed/internal/repo"
)

// моки для repo.LocationRepository и repo.ToolRepository

type mockLocationRepo struct{ mock.Mock }

func (m *mockLocationRepo) Create(ctx context.Context, loc *model.Location) error {
	args := m.Called(ctx, loc)
	return args.Error(0)
}

func (m *mockLocationRepo) GetByID(ctx context.Context, id int64) (*model.Location, error) {
	args := m.Called(ctx, id)
	if l, ok := args.Get(0).(*model.Location); ok {
		return l, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockLocationRepo) ListAll(ctx context.Context) ([]model.Location, error) {
	args := m.Called(ctx)
	if l, ok := args.Get(0).([]model.Location); ok {
		return l, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockLocationRepo) ListByParent(ctx context.Context, parentID *int64) ([]model.Location, error) {
	args := m.Called(ctx, parentID)
	if l, ok := args.Get(0).([]model.Location); ok {
		return l, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockLocationRepo) Update(ctx context.Context, id int64, updates map[string]any) (*model.Location, error) {
	args := m.Called(ctx, id, updates)
	if l, ok := args.Get(0).(*model.Location); ok {
		return l, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockLocationRepo) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockLocationRepo) CountToolsPerLocation(ctx context.Context) (map[int64]int64, error) {
	args := m.Called(ctx)
	if c, ok := args.Get(0).(map[int64]int64); ok {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

var _ repo.LocationRepository = (*mockLocationRepo)(nil)

type mockToolRepo struct{ mock.Mock }

func (m *mockToolRepo) Create(ctx context.Context, tool *model.Tool) error {
	args := m.Called(ctx, tool)
	return args.Error(0)
}

func (m *mockToolRepo) GetByID(ctx context.Context, id int64) (*model.Tool, error) {
	args := m.Called(ctx, id)
	if t, ok := args.Get(0).(*model.Tool); ok {
		return t, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockToolRepo) ListFiltered(ctx context.Context, f repo.ToolFilter) ([]model.Tool, error) {
	args := m.Called(ctx, f)
	if t, ok := args.Get(0).([]model.Tool); ok {
		return t, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockToolRepo) Update(ctx context.Context, id int64, updates map[string]any) (*model.Tool, error) {
	args := m.Called(ctx, id, updates)
	if t, ok := args.Get(0).(*model.Tool); ok {
		return t, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockToolRepo) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockToolRepo) Search(ctx context.Context, query string) ([]int64, error) {
	args := m.Called(ctx, query)
	if ids, ok := args.Get(0).([]int64); ok {
		return ids, args.Error(1)
	}
	return nil, args.Error(1)
}

var _ repo.ToolRepository = (*mockToolRepo)(nil)

// fakeAssetStore пишет операции в журнал, чтобы проверять их порядок.
type fakeAssetStore struct {
	ops     []string
	saveErr error
	nextID  int
}

func (f *fakeAssetStore) Save(data []byte, originalName string) (string, error) {
	if f.saveErr != nil {
		return "", f.saveErr
	}
	f.nextID++
	path := "/uploads/fake-" + string(rune('0'+f.nextID)) + ".jpg"
	f.ops = append(f.ops, "save:"+path)
	return path, nil
}

func (f *fakeAssetStore) Delete(path string) {
	f.ops = append(f.ops, "delete:"+path)
}

var _ AssetStore = (*fakeAssetStore)(nil)

func ptr[T any](v T) *T { return &v }
