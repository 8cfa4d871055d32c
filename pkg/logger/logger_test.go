package logger_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/surrealdb/surrealdb.go/contrib/personapi/pkg/logger"
)

func TestLog(t *testing.T) {
	buff := bytes.NewBuffer([]byte{})
	templogger, err := logger.New().FromBuffer(buff).Make()
	require.NoError(t, err)
	require.NotNil(t, templogger)
	// Get Stats Before
	require.Equal(t, buff.Len(), 0)
	templogger.Logger.Info().Msg("Test")
	// Get Stats After
	require.Contains(t, buff.String(), `"message":"Test"`)
	require.Contains(t, buff.String(), `"level":"info"`)
}

func TestLogLevel(t *testing.T) {
	buff := bytes.NewBuffer([]byte{})
	templogger, err := logger.New().FromBuffer(buff).WithLevel("warn").Make()
	require.NoError(t, err)

	templogger.Logger.Info().Msg("quiet")
	require.Equal(t, 0, buff.Len())
	templogger.Logger.Warn().Msg("loud")
	require.Contains(t, buff.String(), "loud")

	_, err = logger.New().WithLevel("chatty").Make()
	require.Error(t, err)
}

func TestLogConsole(t *testing.T) {
	buff := bytes.NewBuffer([]byte{})
	templogger, err := logger.New().FromBuffer(buff).WithFormat(logger.FormatConsole).Make()
	require.NoError(t, err)

	templogger.Logger.Info().Str("route", "/query-chain").Msg("hello")
	require.Contains(t, buff.String(), "hello")
	require.Contains(t, buff.String(), "route=")
	require.NotContains(t, buff.String(), `"message"`)

	_, err = logger.New().WithFormat("xml").Make()
	require.Error(t, err)
}

func TestLogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "personapi.log")
	templogger, err := logger.New().FromPath(path).Make()
	require.NoError(t, err)
	require.NotNil(t, templogger.LogFile)

	templogger.Logger.Error().Msg("written")
	require.NoError(t, templogger.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "written")
}
