package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gluesql-go/gluesql/storage/memory"
	"github.com/gluesql-go/gluesql/store"
)

func TestGoldenScenariosAgainstMemoryStorage(t *testing.T) {
	scenarios, err := ReadScenarios("testdata/scenarios.yaml")
	require.NoError(t, err)
	require.NotEmpty(t, scenarios)

	RunScenarios(t, scenarios, func() store.Store { return memory.New() })
}
