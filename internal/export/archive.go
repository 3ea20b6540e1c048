package export

import (
	"archive/zip"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

const MetadataFileName = "metadata.csv"

// WriteArchive упаковывает все файлы contentDir и CSV с метаданными в один ZIP
func WriteArchive(w io.Writer, contentDir string, csvData []byte) error {
	zw := zip.NewWriter(w)

	err := filepath.WalkDir(contentDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(contentDir, path)
		if err != nil {
			return err
		}
		return addFile(zw, path, filepath.ToSlash(rel))
	})
	if err != nil {
		_ = zw.Close()
		return fmt.Errorf("failed to pack content dir: %w", err)
	}

	mw, err := zw.CreateHeader(&zip.FileHeader{Name: MetadataFileName, Method: zip.Deflate})
	if err != nil {
		_ = zw.Close()
		return fmt.Errorf("failed to add %s: %w", MetadataFileName, err)
	}
	if _, err := mw.Write(csvData); err != nil {
		_ = zw.Close()
		return fmt.Errorf("failed to write %s: %w", MetadataFileName, err)
	}

	return zw.Close()
}

func addFile(zw *zip.Writer, path, name string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return err
	}

	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}
	header.Name = name
	header.Method = zip.Deflate

	w, err := zw.CreateHeader(header)
	if err != nil {
		return err
	}
	_, err = io.Copy(w, f)
	return err
}
