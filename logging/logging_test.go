package logging_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/pylon-protocol/deployer/logging"
)

func TestComponentLogger(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)

	var buf bytes.Buffer
	require.NoError(t, logging.Setup(logging.Config{Level: "warn", JSON: true, Out: &buf}))

	log := logging.NewComponentLogger("submitter")
	log.Info().Msg("dropped")
	log.Warn().Str("tx_hash", "AB").Msg("kept")

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	require.Equal(t, "submitter", line["component"])
	require.Equal(t, "kept", line["message"])
	require.Equal(t, "AB", line["tx_hash"])
	require.Equal(t, "warn", line["level"])
}

func TestSetupInvalidLevel(t *testing.T) {
	require.Error(t, logging.Setup(logging.Config{Level: "loud"}))
}
