package platformversion

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

const (
	slotDirPerm  = 0o700
	slotFilePerm = 0o600
)

// FileStore keeps the identifier as a single line in <dir>/stable_device_id.
//
// First-run creation is atomic across processes: the value is written to a temporary
// file and hard-linked into place, which fails if the slot already exists. Overwrites of
// an unusable slot go through a temporary file and a rename so readers never observe
// partial content.
type FileStore struct {
	dir  string
	name string
}

// NewFileStore 在指定目录下创建文件槽位；相对路径转换为绝对路径，保证同一文件只有一个 Location
func NewFileStore(dir string) *FileStore {
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	return &FileStore{dir: dir, name: slotName}
}

// DefaultFileStore returns the slot at <user-config-dir>/platform_version/stable_device_id,
// falling back to the working directory when no configuration directory is known.
func DefaultFileStore() *FileStore {
	base, err := os.UserConfigDir()
	if err != nil || base == "" {
		base = "."
	}
	return NewFileStore(filepath.Join(base, slotNamespace))
}

// Path 返回槽位文件路径
func (f *FileStore) Path() string {
	return filepath.Join(f.dir, f.name)
}

func (f *FileStore) Location() string {
	return f.Path()
}

func (f *FileStore) Read() ReadResult {
	file, err := os.Open(f.Path())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return NotFoundResult()
		}
		return IOErrorResult(fmt.Errorf("open %s: %w", f.Path(), err))
	}
	defer file.Close()

	value, err := slotValue(file)
	if err != nil {
		return IOErrorResult(fmt.Errorf("read %s: %w", f.Path(), err))
	}
	if value == "" {
		return NotFoundResult()
	}
	return FoundResult(value)
}

// Write replaces the slot content atomically. When the directory refuses new files but
// the slot file itself is writable, the content is truncated and rewritten in place.
func (f *FileStore) Write(value string) error {
	f.ensureDir()

	tmpName, err := f.writeTemp(value)
	if err != nil {
		if errors.Is(err, fs.ErrPermission) {
			if ierr := f.writeInPlace(value); ierr == nil {
				return nil
			}
		}
		return err
	}
	if err := os.Rename(tmpName, f.Path()); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename temp to %s: %w", f.Path(), err)
	}
	return nil
}

// CreateExclusive creates the slot only when it does not exist yet.
func (f *FileStore) CreateExclusive(value string) error {
	f.ensureDir()

	tmpName, err := f.writeTemp(value)
	if err != nil {
		// 目录只读：已存在的槽位交给调用方重新读取，必要时走 Write 的原地覆盖
		if errors.Is(err, fs.ErrPermission) {
			if _, serr := os.Lstat(f.Path()); serr == nil {
				return ErrSlotExists
			}
		}
		return err
	}
	defer os.Remove(tmpName)

	err = os.Link(tmpName, f.Path())
	switch {
	case err == nil:
		return nil
	case errors.Is(err, fs.ErrExist):
		return ErrSlotExists
	}

	// 文件系统不支持硬链接时退化为 O_EXCL 创建
	return f.createExcl(value)
}

func (f *FileStore) createExcl(value string) error {
	file, err := os.OpenFile(f.Path(), os.O_WRONLY|os.O_CREATE|os.O_EXCL, slotFilePerm)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return ErrSlotExists
		}
		return fmt.Errorf("create %s: %w", f.Path(), err)
	}

	_, werr := file.WriteString(value)
	serr := file.Sync()
	cerr := file.Close()
	if err := errors.Join(werr, serr, cerr); err != nil {
		os.Remove(f.Path())
		return fmt.Errorf("write %s: %w", f.Path(), err)
	}
	return nil
}

// writeInPlace 截断并重写已存在的槽位文件，不创建新文件
func (f *FileStore) writeInPlace(value string) error {
	file, err := os.OpenFile(f.Path(), os.O_WRONLY|os.O_TRUNC, slotFilePerm)
	if err != nil {
		return fmt.Errorf("open %s: %w", f.Path(), err)
	}

	_, werr := file.WriteString(value)
	serr := file.Sync()
	cerr := file.Close()
	if err := errors.Join(werr, serr, cerr); err != nil {
		return fmt.Errorf("write %s: %w", f.Path(), err)
	}
	return nil
}

// writeTemp 在槽位目录中写入完整内容的临时文件，CreateTemp 已保证 0600
func (f *FileStore) writeTemp(value string) (string, error) {
	tmp, err := os.CreateTemp(f.dir, f.name+"-*.tmp")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.WriteString(value); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("close temp file: %w", err)
	}
	return tmpName, nil
}

// ensureDir 创建槽位目录；失败不致命，后续写入会返回真正的错误
func (f *FileStore) ensureDir() {
	_ = os.MkdirAll(f.dir, slotDirPerm)
}
