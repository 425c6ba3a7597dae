package app

import (
	"io/ioutil"
	"net/url"
	"os"

	"github.com/pkg/errors"
)

// LocalLoader loads files from the local filesystem.
type LocalLoader struct{}

// Load implements FileLoader.Load. A missing file yields an error wrapping
// ErrFileNotFound.
func (LocalLoader) Load(u *url.URL) ([]byte, error) {
	b, err := ioutil.ReadFile(u.Path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(ErrFileNotFound, u.Path)
	}
	return b, err
}

func init() {
	local := func() (FileLoader, error) { return LocalLoader{}, nil }
	RegisterFileLoader("", local)
	RegisterFileLoader("file", local)
}
