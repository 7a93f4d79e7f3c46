package archive

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/klauspost/compress/zip"
)

// ErrFinalized is the panic value raised when an entry is appended after
// Finalize or Abort.
var ErrFinalized = errors.New("archive: append after finalize")

type entry struct {
	name string
	text string
	src  string // empty for literal text entries
}

// Builder accumulates archive entries and writes them on Finalize.
type Builder struct {
	path     string
	modified time.Time
	entries  []entry
	closed   bool
}

// Create returns a Builder that will write the archive to outPath. Nothing
// is written until Finalize.
func Create(outPath string) *Builder {
	return &Builder{path: outPath, modified: time.Now()}
}

// Path returns the final location of the archive.
func (b *Builder) Path() string { return b.path }

// Len returns the number of queued entries.
func (b *Builder) Len() int { return len(b.entries) }

// AppendText queues an entry whose content is content.
func (b *Builder) AppendText(name, content string) {
	b.append(entry{name: name, text: content})
}

// AppendFile queues an entry whose content is read from srcPath at Finalize.
func (b *Builder) AppendFile(name, srcPath string) {
	b.append(entry{name: name, src: srcPath})
}

func (b *Builder) append(e entry) {
	if b.closed {
		panic(ErrFinalized)
	}
	e.name = entryName(e.name)
	b.entries = append(b.entries, e)
}

// Finalize writes every queued entry, in order, to a temporary file next to
// the archive path, closes it and renames it into place. No further entries
// may be appended afterwards. On error no file is left at the archive path.
func (b *Builder) Finalize() (err error) {
	if b.closed {
		panic(ErrFinalized)
	}
	b.closed = true

	if err := os.MkdirAll(filepath.Dir(b.path), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(b.path), "."+filepath.Base(b.path)+".tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	zw := zip.NewWriter(tmp)
	for _, e := range b.entries {
		if err = b.write(zw, e); err != nil {
			return fmt.Errorf("failed to add '%s' to archive: %w", e.name, err)
		}
	}
	if err = zw.Close(); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), b.path)
}

// Abort discards the queued entries without writing the archive.
func (b *Builder) Abort() {
	b.closed = true
	b.entries = nil
}

func (b *Builder) write(zw *zip.Writer, e entry) error {
	hdr := &zip.FileHeader{
		Name:     e.name,
		Method:   zip.Store,
		Modified: b.modified,
	}
	if e.src == "" {
		w, err := zw.CreateHeader(hdr)
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, e.text)
		return err
	}

	f, err := os.Open(e.src)
	if err != nil {
		return err
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return err
	}
	hdr.Modified = info.ModTime()
	hdr.SetMode(info.Mode())
	w, err := zw.CreateHeader(hdr)
	if err != nil {
		return err
	}
	_, err = io.Copy(w, f)
	return err
}

// entryName normalizes an archive-relative name to forward slashes without
// a leading "./" or "/".
func entryName(name string) string {
	name = path.Clean(strings.ReplaceAll(name, `\`, "/"))
	return strings.TrimLeft(strings.TrimPrefix(name, "./"), "/")
}
