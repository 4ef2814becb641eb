package main

import (
	"bufio"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/term"

	"github.com/aarant/nescient"
)

// expandPaths resolves a list of glob patterns to existing regular files. If
// recursive is true, a pattern that names a directory is walked for every
// regular file beneath it; otherwise directories are silently skipped, same
// as the source's glob-based path resolution.
func expandPaths(patterns []string, recursive bool) ([]string, error) {
	var out []string
	seen := map[string]bool{}
	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("bad path pattern %q: %w", pattern, err)
		}
		for _, m := range matches {
			info, err := os.Stat(m)
			if err != nil {
				continue
			}
			if info.IsDir() {
				if !recursive {
					continue
				}
				err := filepath.WalkDir(m, func(path string, d fs.DirEntry, err error) error {
					if err != nil {
						return err
					}
					if !d.IsDir() && !seen[path] {
						seen[path] = true
						out = append(out, path)
					}
					return nil
				})
				if err != nil {
					return nil, err
				}
				continue
			}
			if !seen[m] {
				seen[m] = true
				out = append(out, m)
			}
		}
	}
	return out, nil
}

// resolveOutPath mirrors the source's fix_out_path: when outDir is empty,
// each file gets its DefaultOutputPath sibling; when outDir names an
// existing directory, the output keeps the input's base name inside it
// (still suffixed/stripped per DefaultOutputPath); a single input file may
// instead target outDir as an exact output filename.
func resolveOutPath(inPath, outDir string, packing bool, multiple bool) (string, error) {
	defaultName := filepath.Base(nescient.DefaultOutputPath(inPath, packing))
	if outDir == "" {
		return nescient.DefaultOutputPath(inPath, packing), nil
	}
	info, err := os.Stat(outDir)
	if err == nil && info.IsDir() {
		return filepath.Join(outDir, defaultName), nil
	}
	if multiple {
		return "", fmt.Errorf("output path %q must be a directory when multiple input files are given", outDir)
	}
	return outDir, nil
}

// promptPassword reads a password from the controlling terminal with input
// hidden. When confirm is true it is entered twice and must match, matching
// the source's pack-time confirmation; unpack never confirms, since a wrong
// password is simply rejected by the authentication tag. If stdin is not a
// terminal, a single line is read from it directly regardless of confirm,
// matching the source's STDIN-pipe behavior.
func promptPassword(confirm bool) ([]byte, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		reader := bufio.NewReader(os.Stdin)
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return nil, fmt.Errorf("reading password from stdin: %w", err)
		}
		return []byte(strings.TrimRight(line, "\r\n")), nil
	}

	fmt.Fprint(os.Stderr, "Password: ")
	pw1, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return nil, fmt.Errorf("reading password: %w", err)
	}
	if !confirm {
		return pw1, nil
	}

	fmt.Fprint(os.Stderr, "Confirm password: ")
	pw2, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return nil, fmt.Errorf("reading password confirmation: %w", err)
	}
	if string(pw1) != string(pw2) {
		return nil, fmt.Errorf("passwords do not match")
	}
	return pw1, nil
}

// openPrefixBytes reads just the fixed-size PrefixSize header prefix of a
// container, enough for ParseHeader without touching the ciphertext body.
func openPrefixBytes(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	buf := make([]byte, nescient.PrefixSize)
	n, err := f.Read(buf)
	if err != nil {
		return nil, err
	}
	return buf[:n], nil
}
