package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestInitLoggerCreatesDatedFiles(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	defer os.Chdir(wd)

	require.NoError(t, InitLogger())
	LogInfo("startup check")

	day := time.Now().Format("2006-01-02")
	for _, level := range []string{"info", "error", "debug"} {
		_, err := os.Stat(filepath.Join(logsDir, fmt.Sprintf("moria-%s-%s.log", level, day)))
		require.NoError(t, err)
	}
}
