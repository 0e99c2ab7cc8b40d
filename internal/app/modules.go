package app

import (
	"context"

	"github.com/specialistvlad/gobatis/internal/binding"
)

// Module contributes Go-side definitions to an App: type aliases on the
// registry's configuration and mapper structs through binding.AddMapper.
// Modules run after the configuration file is loaded and before the final
// resolution pass, so mappers may refer to elements declared in files and
// the other way around.
type Module interface {
	Register(ctx context.Context, mappers *binding.Registry) error
}

// ModuleFunc adapts a function to Module.
type ModuleFunc func(ctx context.Context, mappers *binding.Registry) error

// Register implements Module.
func (f ModuleFunc) Register(ctx context.Context, mappers *binding.Registry) error {
	return f(ctx, mappers)
}
