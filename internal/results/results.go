// 包 results：切分结果文件的落盘、读取与过期清理
package results

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"polysplit/internal/logger"
)

const suffix = ".geojson"

// ErrNotFound：结果不存在或已过期清理
var ErrNotFound = errors.New("result not found")

// ErrBadID：结果编号包含非法字符
var ErrBadID = errors.New("bad result id")

// Dir：以目录为后端的结果存储，文件名为 <id>.geojson
type Dir struct {
	root string
}

// Open：确保目录存在并返回存储
func Open(root string) (*Dir, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}
	return &Dir{root: root}, nil
}

func (d *Dir) Root() string { return d.root }

// validID：只接受十六进制编号，避免路径穿越
func validID(id string) bool {
	if id == "" || len(id) > 128 {
		return false
	}
	for i := 0; i < len(id); i++ {
		c := id[i]
		if !(c >= '0' && c <= '9' || c >= 'a' && c <= 'f') {
			return false
		}
	}
	return true
}

func (d *Dir) path(id string) string { return filepath.Join(d.root, id+suffix) }

// Save：先写临时文件再改名，读者不会看到半截内容
func (d *Dir) Save(id string, data []byte) error {
	if !validID(id) {
		return ErrBadID
	}
	tmp, err := os.CreateTemp(d.root, id+".*.tmp")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), d.path(id))
}

// Load：读取结果
func (d *Dir) Load(id string) ([]byte, error) {
	if !validID(id) {
		return nil, ErrBadID
	}
	b, err := os.ReadFile(d.path(id))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	return b, err
}

// Sweep：删除修改时间早于 now-ttl 的结果文件及残留临时文件，返回删除数量
func (d *Dir) Sweep(now time.Time, ttl time.Duration) (int, error) {
	entries, err := os.ReadDir(d.root)
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, ent := range entries {
		name := ent.Name()
		if ent.IsDir() || !(strings.HasSuffix(name, suffix) || strings.HasSuffix(name, ".tmp")) {
			continue
		}
		info, err := ent.Info()
		if err != nil {
			continue
		}
		if now.Sub(info.ModTime()) < ttl {
			continue
		}
		if err := os.Remove(filepath.Join(d.root, name)); err == nil {
			removed++
		}
	}
	return removed, nil
}

// StartJanitor：后台周期清理过期结果，ctx 取消时退出
func (d *Dir) StartJanitor(ctx context.Context, ttl, every time.Duration) {
	l := logger.L()
	t := time.NewTicker(every)
	go func() {
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-t.C:
				n, err := d.Sweep(now, ttl)
				if err != nil {
					l.Error("results_sweep_error", "dir", d.root, "err", err)
					continue
				}
				if n > 0 {
					l.Info("results_sweep_done", "removed", n)
				}
			}
		}
	}()
}
