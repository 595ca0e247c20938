package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitProdWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := initTo(&buf, "api-server", "prod")

	logger.Info().Str("doctor_id", "d1").Msg("doctor created")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "api-server", entry["service"])
	assert.Equal(t, "d1", entry["doctor_id"])
	assert.Equal(t, "doctor created", entry["message"])
	assert.Contains(t, entry, "caller")
}

func TestInitProdDropsDebug(t *testing.T) {
	var buf bytes.Buffer
	logger := initTo(&buf, "api-server", "prod")

	logger.Debug().Msg("noise")
	assert.Zero(t, buf.Len())
}

func TestInitDevIsHumanReadable(t *testing.T) {
	var buf bytes.Buffer
	logger := initTo(&buf, "seed", "dev")

	logger.Debug().Msg("seeding")
	assert.Contains(t, buf.String(), "seeding")
	assert.False(t, json.Valid(buf.Bytes()))
}
