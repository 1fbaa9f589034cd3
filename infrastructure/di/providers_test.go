package di

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"titlechain/application/commands"
	"titlechain/application/dto"
	"titlechain/application/queries"
	"titlechain/domain/core/entities"
	"titlechain/infrastructure/config"
	"titlechain/infrastructure/messaging"
)

func memoryConfig(t *testing.T) *config.Config {
	t.Helper()

	path := filepath.Join(t.TempDir(), "acts.json")
	require.NoError(t, os.WriteFile(path, []byte(`[
		{"id": "r100", "numero_acte": "100", "numeros_actes_anterieurs": ["50"], "acheteurs": ["Tremblay"], "vendeurs": ["Gagnon"]},
		{"id": "r50", "numero_acte": "50", "acheteurs": ["Gagnon"], "vendeurs": ["Roy"]}
	]`), 0o644))

	return &config.Config{
		Environment:         "test",
		AWSRegion:           "ca-central-1",
		ActsSource:          config.ActsSourceMemory,
		ActsFile:            path,
		ActCacheTTL:         time.Minute,
		CanvasSweepInterval: 0,
		LogLevel:            "error",
		MetricsNamespace:    "TitleChain",
	}
}

func TestInitializeContainer_MemorySource(t *testing.T) {
	container, cleanup, err := InitializeContainer(context.Background(), memoryConfig(t))
	require.NoError(t, err)
	defer cleanup()

	ctx := context.Background()
	result, err := container.CommandBus.Send(ctx, commands.CreateCanvasCommand{})
	require.NoError(t, err)
	canvasID := result.(*dto.CanvasUpdate).Canvas.ID

	result, err = container.CommandBus.Send(ctx, commands.PlaceActCommand{CanvasID: canvasID, NumeroActe: "100"})
	require.NoError(t, err)
	assert.Len(t, result.(*dto.CanvasUpdate).Canvas.Nodes, 2)

	result, err = container.QueryBus.Ask(ctx, queries.ListActsQuery{Query: "gagnon"})
	require.NoError(t, err)
	assert.Len(t, result.([]entities.Act), 2)

	assert.Equal(t, 1, container.Store.Len())
	assert.NotNil(t, container.Router.Setup())
}

func TestInitializeContainer_BadActsFile(t *testing.T) {
	cfg := memoryConfig(t)
	cfg.ActsFile = filepath.Join(t.TempDir(), "missing.json")

	_, _, err := InitializeContainer(context.Background(), cfg)
	assert.Error(t, err)
}

func TestProvideLogger_RejectsUnknownLevel(t *testing.T) {
	_, err := ProvideLogger(&config.Config{LogLevel: "chatty"})
	assert.Error(t, err)
}

func TestProvideLayoutSource_FallsBackToEnvironmentDefault(t *testing.T) {
	layout := ProvideLayoutSource(nil, &config.Config{Environment: "development"})
	assert.Equal(t, 5000, layout.Current().MaxNodesPerCanvas)
}

func TestProvideEventPublisher_DisabledLogs(t *testing.T) {
	logger, err := ProvideLogger(&config.Config{LogLevel: "error"})
	require.NoError(t, err)

	publisher := ProvideEventPublisher(&config.Config{EnableEvents: false}, nil, logger)
	assert.IsType(t, &messaging.LogPublisher{}, publisher)
}
