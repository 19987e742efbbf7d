package settings_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/shopbot/internal/domain"
	"github.com/vladislavdragonenkov/shopbot/internal/service/settings"
	"github.com/vladislavdragonenkov/shopbot/internal/storage/file"
)

func newService(t *testing.T) *settings.Service {
	t.Helper()
	store, err := file.New(filepath.Join(t.TempDir(), "shop.json"), nil)
	require.NoError(t, err)
	return settings.NewService(store, nil)
}

func TestSettings_DefaultsPresent(t *testing.T) {
	svc := newService(t)

	cfg, err := svc.Get()
	require.NoError(t, err)
	require.Equal(t, domain.DefaultCategories, cfg.Categories)
	require.Equal(t, domain.DefaultMenuRows, cfg.MenuRows)
}

func TestSettings_SetCategoriesAllowsEmpty(t *testing.T) {
	svc := newService(t)

	require.NoError(t, svc.SetCategories([]string{"Yangi"}))
	cfg, err := svc.Get()
	require.NoError(t, err)
	require.Equal(t, []string{"Yangi"}, cfg.Categories)

	require.NoError(t, svc.SetCategories(nil))
	cfg, err = svc.Get()
	require.NoError(t, err)
	require.Empty(t, cfg.Categories)
	// Меню не тронуто: категории и раскладка меняются независимо.
	require.Equal(t, domain.DefaultMenuRows, cfg.MenuRows)
}

func TestSettings_SetMenuRowsNormalizes(t *testing.T) {
	svc := newService(t)

	require.NoError(t, svc.SetMenuRows([][]string{
		{"A", ""},
		{},
		{"B", "C"},
	}))
	cfg, err := svc.Get()
	require.NoError(t, err)
	require.Equal(t, [][]string{{"A"}, {"B", "C"}}, cfg.MenuRows)
}

func TestSettings_EmptyMenuRowsRestoreDefaults(t *testing.T) {
	svc := newService(t)

	require.NoError(t, svc.SetMenuRows([][]string{{"A"}}))
	require.NoError(t, svc.SetMenuRows([][]string{{""}, {}}))

	cfg, err := svc.Get()
	require.NoError(t, err)
	require.Equal(t, domain.DefaultMenuRows, cfg.MenuRows)
}
