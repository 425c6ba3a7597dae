package app

import (
	"bytes"
	"fmt"
	"net/url"
	"path"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

var (
	ctrMu sync.Mutex
	ctrs  = make(map[string]FileLoaderCtr)
)

// RegisterFileLoader registers a FileLoader for the specified scheme.
func RegisterFileLoader(scheme string, ctr FileLoaderCtr) {
	ctrMu.Lock()
	defer ctrMu.Unlock()

	_, exists := ctrs[scheme]
	if exists {
		panic(fmt.Sprintf("FileLoader already registered for scheme '%s'", scheme))
	}

	ctrs[scheme] = ctr
}

// FileLoaderCtr constructs a FileLoader.
type FileLoaderCtr func() (FileLoader, error)

// FileLoader loads files at a specified URL.
type FileLoader interface {
	Load(url *url.URL) ([]byte, error)
}

// ErrFileNotFound is wrapped by loaders when the file does not exist.
var ErrFileNotFound = errors.New("file not found")

// LoadFile loads the file at fileURL with the loader registered for its
// scheme. URLs without a scheme are local paths.
func LoadFile(fileURL string) ([]byte, error) {
	u, err := url.Parse(fileURL)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid file url %s", fileURL)
	}

	ctrMu.Lock()
	ctr, exists := ctrs[u.Scheme]
	ctrMu.Unlock()
	if !exists {
		return nil, errors.Errorf("no file loader for %s", u.Scheme)
	}

	l, err := ctr()
	if err != nil {
		return nil, errors.Wrapf(err, "failed get loader for '%s'", fileURL)
	}

	return l.Load(u)
}

// ReadConfig loads the file at fileURL and merges it into v. The config type
// is derived from the file extension. A missing file is not an error when
// optional is set.
func ReadConfig(v *viper.Viper, fileURL string, optional bool) error {
	contents, err := LoadFile(fileURL)
	if optional && errors.Is(err, ErrFileNotFound) {
		return nil
	} else if err != nil {
		return err
	}

	u, err := url.Parse(fileURL)
	if err != nil {
		return errors.Wrapf(err, "invalid file url %s", fileURL)
	}

	ext := strings.TrimPrefix(path.Ext(u.Path), ".")
	if ext == "" {
		ext = "yaml"
	}
	v.SetConfigType(ext)

	if err := v.MergeConfig(bytes.NewReader(contents)); err != nil {
		return errors.Wrapf(err, "failed to parse %s", fileURL)
	}
	return nil
}
