package archivey

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nabbar/archivey/archivereader"
)

func TestConfig_Defaults(t *testing.T) {
	cfg := NewConfig()
	require.Equal(t, archivereader.Overwrite, cfg.Overwrite())
	require.False(t, cfg.UseRarStream())
	require.False(t, cfg.UseLibarchive())
	require.True(t, cfg.TarCheckIntegrity())
	require.Nil(t, cfg.Logger())
}

func TestConfig_Options(t *testing.T) {
	cfg := NewConfig(
		WithRarStream(),
		WithLibarchive(),
		WithOverwrite(archivereader.Skip),
		WithPassword("secret"),
		WithTarCheckIntegrity(false),
		WithStoredMetadata(),
	)
	require.True(t, cfg.UseRarStream())
	require.True(t, cfg.UseLibarchive())
	require.Equal(t, archivereader.Skip, cfg.Overwrite())
	require.Equal(t, "secret", cfg.Password())
	require.False(t, cfg.TarCheckIntegrity())
	require.True(t, cfg.UseStoredMetadata())
}

func TestWithConfig_FromContext(t *testing.T) {
	cfg := NewConfig(WithPassword("hunter2"))
	ctx := WithConfig(context.Background(), cfg)

	got, ok := FromContext(ctx)
	require.True(t, ok)
	require.Equal(t, "hunter2", got.Password())

	_, ok = FromContext(context.Background())
	require.False(t, ok)
}

func TestConfigFromContext_DefaultsWithoutAmbient(t *testing.T) {
	cfg := ConfigFromContext(context.Background(), WithOverwrite(archivereader.Error))
	require.Equal(t, archivereader.Error, cfg.Overwrite())
}

func TestConfigFromContext_OverridesAmbient(t *testing.T) {
	ambient := NewConfig(WithOverwrite(archivereader.Skip))
	ctx := WithConfig(context.Background(), ambient)

	cfg := ConfigFromContext(ctx, WithOverwrite(archivereader.Error))
	require.Equal(t, archivereader.Error, cfg.Overwrite())
}
