package persistence

import (
	"os"
	"path/filepath"
)

// writeFileAtomic writes through a temp file and renames it into place, so a
// crash never leaves a truncated file under the final name. Every call gets
// its own temp file; concurrent writers of one name race only on the rename.
func writeFileAtomic(fileName string, data []byte) error {
	dir := filepath.Dir(fileName)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	file, err := os.CreateTemp(dir, filepath.Base(fileName)+".*.tmp")
	if err != nil {
		return err
	}
	tmpFile := file.Name()

	fail := func(err error) error {
		file.Close()
		os.Remove(tmpFile)
		return err
	}

	if _, err = file.Write(data); err != nil {
		return fail(err)
	}
	if err = file.Chmod(0644); err != nil {
		return fail(err)
	}
	if err = file.Sync(); err != nil {
		return fail(err)
	}
	if err = file.Close(); err != nil {
		os.Remove(tmpFile)
		return err
	}

	if err = os.Rename(tmpFile, fileName); err != nil {
		os.Remove(tmpFile)
		return err
	}
	return nil
}
