package archive

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// ErrEmptyArchive marks an archive request with zero input files. It is a
// nothing-to-do outcome for the caller to report, not a run failure.
var ErrEmptyArchive = errors.New("no files to archive")

// Build packages the given files into a zip archive at destPath, one entry
// per file named by its base name. Entries keep the input order. Name
// collisions are a caller error and are not deduplicated.
func Build(destPath string, files []string) error {
	if len(files) == 0 {
		return ErrEmptyArchive
	}

	out, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("create archive: %w", err)
	}
	writer := zip.NewWriter(out)

	for _, file := range files {
		if err := addEntry(writer, file); err != nil {
			writer.Close()
			out.Close()
			_ = os.Remove(destPath)
			return err
		}
	}

	if err := writer.Close(); err != nil {
		out.Close()
		_ = os.Remove(destPath)
		return fmt.Errorf("finalize archive: %w", err)
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(destPath)
		return fmt.Errorf("close archive: %w", err)
	}
	return nil
}

func addEntry(writer *zip.Writer, path string) error {
	src, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("archive entry %s: %w", path, err)
	}
	defer src.Close()

	entry, err := writer.CreateHeader(&zip.FileHeader{
		Name:   filepath.Base(path),
		Method: zip.Deflate,
	})
	if err != nil {
		return fmt.Errorf("archive entry %s: %w", path, err)
	}
	if _, err := io.Copy(entry, src); err != nil {
		return fmt.Errorf("archive entry %s: %w", path, err)
	}
	return nil
}
