package themeController

import (
	"context"
	"testing"

	"musicbot/config"
	. "musicbot/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockThemeService struct {
	mock.Mock
}

func (m *MockThemeService) GetUserTheme(ctx context.Context, telegramID int64) *UserTheme {
	return m.Called(ctx, telegramID).Get(0).(*UserTheme)
}

func (m *MockThemeService) SetUserTheme(ctx context.Context, telegramID int64, name string) (*UserTheme, error) {
	args := m.Called(ctx, telegramID, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*UserTheme), args.Error(1)
}

func (m *MockThemeService) UpdateThemeSettings(ctx context.Context, telegramID int64, settings ThemeSettings) (*UserTheme, error) {
	args := m.Called(ctx, telegramID, settings)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*UserTheme), args.Error(1)
}

func TestThemeController_Apply(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		request ApplyThemeRequest
		wantErr bool
	}{
		{name: "valid preset", request: ApplyThemeRequest{TelegramID: 42, Theme: "ocean"}},
		{name: "unknown preset", request: ApplyThemeRequest{TelegramID: 42, Theme: "neon"}, wantErr: true},
		{name: "missing user", request: ApplyThemeRequest{Theme: "ocean"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			themes := new(MockThemeService)
			themes.On("SetUserTheme", ctx, tt.request.TelegramID, tt.request.Theme).
				Return(&UserTheme{ThemeName: tt.request.Theme}, nil).Maybe()

			theme, err := NewWithService(themes, config.Config{}).Apply(ctx, &tt.request)

			if tt.wantErr {
				assert.ErrorIs(t, err, ErrValidation)
				themes.AssertNotCalled(t, "SetUserTheme", mock.Anything, mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "ocean", theme.ThemeName)
		})
	}
}

func TestThemeController_Customize(t *testing.T) {
	ctx := context.Background()
	bad := "not-a-color"
	good := "#ABCDEF"

	themes := new(MockThemeService)
	themes.On("UpdateThemeSettings", ctx, int64(42), mock.Anything).
		Return(&UserTheme{ThemeName: CustomThemeName, AccentColor: good}, nil)
	controller := NewWithService(themes, config.Config{})

	_, err := controller.Customize(ctx, &CustomThemeRequest{TelegramID: 42, ThemeSettings: ThemeSettings{AccentColor: &bad}})
	assert.ErrorIs(t, err, ErrValidation)

	theme, err := controller.Customize(ctx, &CustomThemeRequest{TelegramID: 42, ThemeSettings: ThemeSettings{AccentColor: &good}})
	require.NoError(t, err)
	assert.Equal(t, CustomThemeName, theme.ThemeName)
}

func TestThemeController_Presets(t *testing.T) {
	presets := NewWithService(new(MockThemeService), config.Config{}).Presets()
	assert.Len(t, presets, 5)
}

func (m *MockThemeService) FormatMessage(ctx context.Context, message string, telegramID int64) string {
	return m.Called(ctx, message, telegramID).String(0)
}

func TestThemeController_Format(t *testing.T) {
	ctx := context.Background()
	svc := new(MockThemeService)
	svc.On("FormatMessage", ctx, "{emoji:success} Done", int64(7)).Return("✓ Done")

	controller := NewWithService(svc, config.Config{})

	assert.Equal(t, "✓ Done", controller.Format(ctx, 7, "{emoji:success} Done"))
	svc.AssertExpectations(t)
}
