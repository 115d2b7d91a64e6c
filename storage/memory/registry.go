package memory

import (
	"github.com/spf13/pflag"

	"xdao.co/wfledger/storage"
	"xdao.co/wfledger/storage/registry"
)

func init() {
	registry.MustRegister(registry.Backend{
		Name:          "memory",
		Description:   "In-memory state (lost on exit)",
		RegisterFlags: func(*pflag.FlagSet) {},
		Open: func() (storage.State, func() error, error) {
			return New(), nil, nil
		},
	})
}
