package loader

import "errors"

func (l *Loader) readFS(name string) ([]byte, error) {
	if l.fsys == nil {
		return nil, errors.New("no fs.FS configured")
	}
	file, err := l.fsys.Open(name)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return readLimited(file, l.limit)
}
