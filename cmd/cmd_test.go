package cmd

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"csv-stream-printer/common"
	"csv-stream-printer/printer"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestPrintCmd(t *testing.T) {
	path := writeFile(t, "cars.csv", "YEAR,MAKE\n2020,\"MITSU,BISHI\"\n2021,NISSAN\n")

	stdout, stderr, err := run(t, "print", path)
	require.NoError(t, err)
	assert.Empty(t, stderr)
	assert.Equal(t, "{YEAR=2020, MAKE=\"MITSU,BISHI\"}\n{YEAR=2021, MAKE=NISSAN}\n", stdout)
}

func TestPrintCmd_Delimiter(t *testing.T) {
	path := writeFile(t, "cars.txt", "YEAR|MAKE\n2020|MITSUBISHI\n")

	stdout, _, err := run(t, "print", "--delimiter", "|", "--workers", "1", path)
	require.NoError(t, err)
	assert.Equal(t, "{YEAR=2020, MAKE=MITSUBISHI}\n", stdout)

	_, _, err = run(t, "print", "--delimiter", "||", path)
	assert.ErrorContains(t, err, "--delimiter")
}

func TestPrintCmd_Errors(t *testing.T) {
	_, stderr, err := run(t, "print", "")
	assert.ErrorIs(t, err, errReported)
	assert.Equal(t, printer.MsgEmptyPath+"\n", stderr)

	_, stderr, err = run(t, "print")
	assert.ErrorIs(t, err, errReported)
	assert.Equal(t, printer.MsgEmptyPath+"\n", stderr)

	_, stderr, err = run(t, "print", filepath.Join(t.TempDir(), "nonexistent.csv"))
	assert.ErrorIs(t, err, errReported)
	assert.Equal(t, printer.MsgCannotOpen+"\n", stderr)
}

func TestPrintCmd_ConfigFile(t *testing.T) {
	cfg := writeFile(t, "config.toml", "delimiter = \";\"\n")
	path := writeFile(t, "cars.csv", "YEAR;MAKE\n2020;NISSAN\n")

	stdout, _, err := run(t, "--config", cfg, "print", path)
	require.NoError(t, err)
	assert.Equal(t, "{YEAR=2020, MAKE=NISSAN}\n", stdout)
}

func TestTokenCmd(t *testing.T) {
	t.Setenv("CSVSTREAM_JWT_SECRET", "")
	_, _, err := run(t, "token")
	assert.ErrorContains(t, err, "no jwt secret configured")

	t.Setenv("CSVSTREAM_JWT_SECRET", "s3cret")
	stdout, _, err := run(t, "token", "--subject", "ci")
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(strings.TrimSpace(stdout), "."), "Should print a JWT")
}

func TestVersionCmd(t *testing.T) {
	stdout, _, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "csvstream dev\n", stdout)
}

func TestNewRouter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	common.TestDBInit()

	cfg := common.DefaultConfig()
	cfg.JWTSecret = "s3cret"
	r := NewRouter(cfg)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/imports/any", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	valid, err := common.IssueToken(cfg.JWTSecret, "test", time.Minute)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/imports/any", nil)
	req.Header.Set("Authorization", "Bearer "+valid)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)

	var metrics int64
	require.NoError(t, common.GetDB().Model(&common.ApiMetric{}).Count(&metrics).Error)
	assert.Equal(t, int64(3), metrics)
}
