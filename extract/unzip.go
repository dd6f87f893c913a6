package extract

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// UnzipToDir extracts every file in the zip archive into destDir and returns
// the names of the extracted files. Nested directories inside the archive are
// flattened; Kaggle dataset archives are flat in practice.
func UnzipToDir(zipData []byte, destDir string) ([]string, error) {
	zipReader, err := zip.NewReader(bytes.NewReader(zipData), int64(len(zipData)))
	if err != nil {
		return nil, fmt.Errorf("failed to create zip reader: %w", err)
	}

	if len(zipReader.File) == 0 {
		return nil, fmt.Errorf("zip archive contains no files")
	}

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", destDir, err)
	}

	var names []string
	for _, file := range zipReader.File {
		if file.FileInfo().IsDir() {
			continue
		}

		name := filepath.Base(file.Name)
		// Zip entries are attacker-controlled paths; only plain names are accepted.
		if name == "." || name == ".." || strings.Contains(name, string(os.PathSeparator)) {
			return nil, fmt.Errorf("unexpected file name in zip archive: %s", file.Name)
		}

		if err := extractFile(file, filepath.Join(destDir, name)); err != nil {
			return nil, err
		}
		names = append(names, name)
	}

	return names, nil
}

func extractFile(file *zip.File, destPath string) error {
	f, err := file.Open()
	if err != nil {
		return fmt.Errorf("failed to open file %s: %w", file.Name, err)
	}
	defer f.Close()

	out, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("failed to create file %s: %w", destPath, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, f); err != nil {
		return fmt.Errorf("failed to write file %s: %w", destPath, err)
	}

	return nil
}

// VerifyFiles checks that every expected file exists in dir and returns the
// names of any that are missing.
func VerifyFiles(dir string, expected []string) []string {
	var missing []string
	for _, name := range expected {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			missing = append(missing, name)
		}
	}
	return missing
}
