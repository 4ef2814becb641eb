package nescient

import (
	"archive/zip"
	"io"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
)

// Member describes one logical entry exposed by an Archive: either a true
// ZIP member, or the single synthetic member of a SingleFileArchive
// fallback.
type Member struct {
	Name string
	Size int64
	Open func() (io.ReadCloser, error)
}

// Archive presents the decrypted plaintext of a container as a list of
// named, independently openable members. When the plaintext is a valid
// ZIP, each ZIP entry is a member; otherwise the whole plaintext is a
// single member, named after the container file with its ".nesc" suffix
// stripped, mirroring the source's SingleFileArchive fallback.
type Archive struct {
	reader  *Reader
	members []Member
}

// OpenArchive opens path as a container under password and composes its
// decrypted plaintext with a ZIP reader. If the plaintext is not a valid
// ZIP, it falls back to presenting the whole plaintext as one member.
func OpenArchive(path string, password []byte) (*Archive, error) {
	r, err := OpenReader(path, password)
	if err != nil {
		return nil, err
	}

	zr, err := zip.NewReader(readerAtAdapter{r}, r.Size())
	if err == nil {
		members := make([]Member, 0, len(zr.File))
		for _, f := range zr.File {
			f := f
			members = append(members, Member{
				Name: f.Name,
				Size: int64(f.UncompressedSize64),
				Open: func() (io.ReadCloser, error) { return f.Open() },
			})
		}
		return &Archive{reader: r, members: members}, nil
	}

	log.Debug().Str("path", path).Err(err).Msg("plaintext is not a valid zip, falling back to single-file archive")

	name := strings.TrimSuffix(filepath.Base(path), ".nesc")
	members := []Member{{
		Name: name,
		Size: r.Size(),
		Open: func() (io.ReadCloser, error) {
			if _, err := r.Seek(0, io.SeekStart); err != nil {
				return nil, err
			}
			return io.NopCloser(r), nil
		},
	}}
	return &Archive{reader: r, members: members}, nil
}

// Members returns the archive's logical entries.
func (a *Archive) Members() []Member {
	return a.members
}

// Close releases the underlying container file handle.
func (a *Archive) Close() error {
	return a.reader.Close()
}
