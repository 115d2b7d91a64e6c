package localfs

import (
	"fmt"

	"github.com/spf13/pflag"

	"xdao.co/wfledger/storage"
	"xdao.co/wfledger/storage/registry"
)

var flagLocalDir string

func init() {
	registry.MustRegister(registry.Backend{
		Name:        "localfs",
		Description: "Local filesystem state (directory)",
		RegisterFlags: func(fs *pflag.FlagSet) {
			fs.StringVar(&flagLocalDir, "localfs-dir", "", "state directory (for --state=localfs)")
		},
		Open: func() (storage.State, func() error, error) {
			if flagLocalDir == "" {
				return nil, nil, fmt.Errorf("missing --localfs-dir")
			}
			st, err := New(flagLocalDir)
			return st, nil, err
		},
	})
}
