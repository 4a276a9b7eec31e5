package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeDoc(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "doc.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestAnalyzeCmd_Use(t *testing.T) {
	assert.Equal(t, "analyze <file...>", analyzeCmd.Use)
}

func TestAnalyzeCmd_RequiresArgs(t *testing.T) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"analyze"})
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()

	assert.Error(t, err)
}

func TestAnalyzeCmd_HasFlags(t *testing.T) {
	flag := analyzeCmd.Flags().Lookup("language")
	require.NotNil(t, flag)
	assert.Equal(t, "l", flag.Shorthand)
	assert.Equal(t, "eng+mal", flag.DefValue)

	require.NotNil(t, analyzeCmd.Flags().Lookup("classification"))
	require.NotNil(t, analyzeCmd.Flags().Lookup("json"))
}

func TestAnalyzeCmd_Executes(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	path := writeDoc(t, "SAFETY MANUAL\n\nHazard and risk procedures for emergency response.")

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"analyze", path})
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()

	require.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, "Summary:")
	assert.Contains(t, out, "Classification:")
	assert.Contains(t, out, "Safety Manual")
	assert.Contains(t, out, "fallback")
}

func TestAnalyzeCmd_JSONOutput(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	path := writeDoc(t, "Routine track inspection notes.")

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"analyze", "--json", path})
	defer func() {
		rootCmd.SetArgs(nil)
		analyzeJSON = false
	}()

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "\"summary\"")
	assert.Contains(t, buf.String(), "\"processing_mode\"")
}

func TestAnalyzeCmd_MissingFile(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"analyze", "/nonexistent/doc.txt"})
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "reading input")
}

func TestAnalyzeCmd_ServiceNotConfigured(t *testing.T) {
	old := analysisService
	analysisService = nil
	defer func() { analysisService = old }()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"analyze", "whatever.txt"})
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")
}
