package tablekit

import (
	"github.com/bigmb/tablekit/pkg/version"
)

// Version is the current tablekit library version.
var Version string

func init() {
	Version = version.Get()
}
