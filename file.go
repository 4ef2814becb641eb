package nescient

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/aarant/nescient/internal/lock"
	"github.com/aarant/nescient/internal/repository"
)

// defaultLockTTL bounds how long a file-level pack/unpack operation may
// hold the output-path lock before it is considered abandoned.
const defaultLockTTL = 5 * time.Minute

// outputLocker serializes concurrent PackFile/UnpackFile calls that target
// the same output path, grounded on the atomic-write pattern of a
// filesystem object store that guards concurrent writers with a sharded
// lock. A single process-wide instance is enough: nescient has no
// networked, multi-process coordination story, so cross-process races are
// out of scope (same as the source, which is a single-process tool).
var outputLocker repository.Locker = lock.NewMemoryLocker()

// PackFile reads the file at inPath, packs it under triple and password,
// and atomically writes the result to outPath (via a temp file in the same
// directory, renamed into place, mirroring the teacher storage layer's
// create-temp/copy/rename pattern so a crash never leaves a partial
// output). If overwrite is false and outPath already exists, PackFile
// fails without touching it.
func PackFile(ctx context.Context, inPath, outPath string, password []byte, triple Triple, overwrite bool) error {
	acquired, err := outputLocker.AcquireWithRetry(ctx, outPath, defaultLockTTL, 3, 50*time.Millisecond)
	if err != nil {
		return &IOError{Op: "acquire output lock", Err: err}
	}
	if !acquired {
		return &IOError{Op: "acquire output lock", Err: fmt.Errorf("another operation is writing %s", outPath)}
	}
	defer outputLocker.Release(ctx, outPath)

	if !overwrite {
		if _, err := os.Stat(outPath); err == nil {
			return &ParamError{Message: fmt.Sprintf("output path %s already exists", outPath)}
		}
	}

	plaintext, err := os.ReadFile(inPath)
	if err != nil {
		return &IOError{Op: "read input file", Err: err}
	}

	packer, err := NewPacker(password, triple)
	if err != nil {
		return err
	}
	container, err := packer.Pack(plaintext)
	if err != nil {
		return err
	}

	if err := writeFileAtomic(outPath, container); err != nil {
		return &IOError{Op: "write output file", Err: err}
	}

	log.Info().Str("in", inPath).Str("out", outPath).Int("bytes", len(container)).Msg("packed file")
	return nil
}

// UnpackFile reads the container at inPath, verifies and decrypts it under
// password, and atomically writes the plaintext to outPath.
func UnpackFile(ctx context.Context, inPath, outPath string, password []byte, overwrite bool) error {
	acquired, err := outputLocker.AcquireWithRetry(ctx, outPath, defaultLockTTL, 3, 50*time.Millisecond)
	if err != nil {
		return &IOError{Op: "acquire output lock", Err: err}
	}
	if !acquired {
		return &IOError{Op: "acquire output lock", Err: fmt.Errorf("another operation is writing %s", outPath)}
	}
	defer outputLocker.Release(ctx, outPath)

	if !overwrite {
		if _, err := os.Stat(outPath); err == nil {
			return &ParamError{Message: fmt.Sprintf("output path %s already exists", outPath)}
		}
	}

	container, err := os.ReadFile(inPath)
	if err != nil {
		return &IOError{Op: "read input file", Err: err}
	}

	header, err := ParseHeader(container)
	if err != nil {
		return err
	}
	packer, err := NewPacker(password, header.Triple)
	if err != nil {
		return err
	}
	plaintext, err := packer.Unpack(container)
	if err != nil {
		return err
	}

	if err := writeFileAtomic(outPath, plaintext); err != nil {
		return &IOError{Op: "write output file", Err: err}
	}

	log.Info().Str("in", inPath).Str("out", outPath).Int("bytes", len(plaintext)).Msg("unpacked file")
	return nil
}

// writeFileAtomic writes data to a temp file in the same directory as
// path, syncs it, and renames it into place, so a crash mid-write never
// leaves a truncated or partially-written file at path.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".nescient-tmp-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return copyAndRemove(tmpPath, path)
	}
	return nil
}

// copyAndRemove is the cross-device fallback for os.Rename, used when tmp
// and path live on different filesystems (e.g. outPath points across a
// bind mount).
func copyAndRemove(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Remove(src)
}

// DefaultOutputPath resolves the default destination for a pack or unpack
// operation when the caller did not specify one, mirroring the source's
// fix_out_path: packing appends ".nesc" to the input name; unpacking
// strips a trailing ".nesc" suffix, or appends ".out" if the input has no
// such suffix.
func DefaultOutputPath(inPath string, packing bool) string {
	if packing {
		return inPath + ".nesc"
	}
	if strings.HasSuffix(inPath, ".nesc") {
		return strings.TrimSuffix(inPath, ".nesc")
	}
	return inPath + ".out"
}
