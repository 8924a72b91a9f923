package di

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theoboldt/juvem-sub001/internal/messaging"
	"github.com/theoboldt/juvem-sub001/internal/repository"
	"github.com/theoboldt/juvem-sub001/pkg/config"
	"github.com/theoboldt/juvem-sub001/pkg/logger"
)

func TestNewContainer_Defaults(t *testing.T) {
	c, err := NewContainer(&ContainerConfig{
		Repos:  repository.NewMemoryRepositories(),
		Logger: logger.NewNop(),
	})
	require.NoError(t, err)
	defer c.Close()

	assert.IsType(t, &messaging.NoopPublisher{}, c.Publisher)
	assert.NotNil(t, c.Store)
	assert.NotNil(t, c.Converter)
	assert.NotNil(t, c.MigrationService)
	require.NotNil(t, c.Handlers)
	assert.NotNil(t, c.Handlers.Participation)
	assert.NotNil(t, c.Handlers.Exports)
}

func TestNewContainer_RequiresRepositories(t *testing.T) {
	_, err := NewContainer(&ContainerConfig{})
	assert.Error(t, err)
}

func TestOpenRepositories_Memory(t *testing.T) {
	repos, db, err := OpenRepositories(context.Background(), config.DatabaseConfig{Driver: "memory"}, logger.NewNop())
	require.NoError(t, err)
	assert.Nil(t, db)
	assert.NotNil(t, repos.Events)
}

func TestOpenDisabledInfrastructure(t *testing.T) {
	client, err := OpenRedis(context.Background(), config.RedisConfig{}, logger.NewNop())
	require.NoError(t, err)
	assert.Nil(t, client)

	publisher, err := OpenPublisher(context.Background(), config.KafkaConfig{}, logger.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &messaging.NoopPublisher{}, publisher)
}
