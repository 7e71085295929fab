package loader

import (
	"path/filepath"
)

func (l *Loader) readFile(path string) ([]byte, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	file, err := l.files.Open(abs)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return readLimited(file, l.limit)
}
