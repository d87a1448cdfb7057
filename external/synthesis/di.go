package synthesis

import (
	"github.com/foxseedlab/tsuyaku/internal/synthesis"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (synthesis.VendorFactory, error) {
		return NewVendor, nil
	})
}
