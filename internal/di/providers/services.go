package providers

import (
	"github.com/samber/do/v2"

	"github.com/listenupapp/listenup-library/internal/config"
	"github.com/listenupapp/listenup-library/internal/logger"
	"github.com/listenupapp/listenup-library/internal/service"
	"github.com/listenupapp/listenup-library/internal/validation"
)

// ProvideValidator provides the request validator shared by services.
func ProvideValidator(i do.Injector) (*validation.Validator, error) {
	return validation.New(), nil
}

func serviceOptions(cfg *config.Config) service.Options {
	return service.Options{
		IgnorePrefix: cfg.Sorting.IgnorePrefix,
		ShelfLimit:   cfg.Shelves.Limit,
	}
}

// ProvideLibraryItemService provides the library listing service.
func ProvideLibraryItemService(i do.Injector) (*service.LibraryItemService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	v := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewLibraryItemService(storeHandle.Store, v, serviceOptions(cfg), log.Logger), nil
}

// ProvideShelfService provides the personalized shelf service.
func ProvideShelfService(i do.Injector) (*service.ShelfService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	v := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewShelfService(storeHandle.Store, v, serviceOptions(cfg), log.Logger), nil
}
