package nescient

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPackFileUnpackFileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	inPath := filepath.Join(dir, "input.txt")
	plaintext := []byte("contents to pack and unpack")
	require.NoError(t, os.WriteFile(inPath, plaintext, 0o644))

	packedPath := filepath.Join(dir, "input.txt.nesc")
	ctx := context.Background()
	require.NoError(t, PackFile(ctx, inPath, packedPath, []byte("hunter2"), Default, false))

	unpackedPath := filepath.Join(dir, "output.txt")
	require.NoError(t, UnpackFile(ctx, packedPath, unpackedPath, []byte("hunter2"), false))

	got, err := os.ReadFile(unpackedPath)
	require.NoError(t, err)
	assert.Equal(t, plaintext, got)
}

func TestPackFileRefusesToOverwriteWithoutFlag(t *testing.T) {
	dir := t.TempDir()
	inPath := filepath.Join(dir, "input.txt")
	require.NoError(t, os.WriteFile(inPath, []byte("data"), 0o644))
	outPath := filepath.Join(dir, "input.txt.nesc")
	require.NoError(t, os.WriteFile(outPath, []byte("existing"), 0o644))

	ctx := context.Background()
	err := PackFile(ctx, inPath, outPath, []byte("hunter2"), Default, false)
	assert.Error(t, err, "expected error when output exists and overwrite is false")

	assert.NoError(t, PackFile(ctx, inPath, outPath, []byte("hunter2"), Default, true))
}

func TestUnpackFileWrongPasswordFails(t *testing.T) {
	dir := t.TempDir()
	inPath := filepath.Join(dir, "input.txt")
	require.NoError(t, os.WriteFile(inPath, []byte("secret contents"), 0o644))
	packedPath := filepath.Join(dir, "input.txt.nesc")
	ctx := context.Background()
	require.NoError(t, PackFile(ctx, inPath, packedPath, []byte("correct"), Default, false))

	outPath := filepath.Join(dir, "output.txt")
	err := UnpackFile(ctx, packedPath, outPath, []byte("wrong"), false)
	require.Error(t, err)
	assert.IsType(t, &AuthError{}, err)
}

func TestDefaultOutputPath(t *testing.T) {
	assert.Equal(t, "file.txt.nesc", DefaultOutputPath("file.txt", true))
	assert.Equal(t, "file.txt", DefaultOutputPath("file.txt.nesc", false))
	assert.Equal(t, "file.txt.out", DefaultOutputPath("file.txt", false))
}
