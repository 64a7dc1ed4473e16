package app

import (
	"github.com/vk/checkgrid/internal/registry"
	"github.com/vk/checkgrid/modules/editorconfig"
	"github.com/vk/checkgrid/modules/mypy"
	"github.com/vk/checkgrid/modules/pipreqs"
	"github.com/vk/checkgrid/modules/prettier"
	"github.com/vk/checkgrid/modules/reqdiff"
	"github.com/vk/checkgrid/modules/ruff"
	"github.com/vk/checkgrid/modules/shell"
	"github.com/vk/checkgrid/modules/webhook"
)

// coreModules is the definitive list of all runner modules compiled into
// the checkgrid binary.
var coreModules = []registry.Module{
	&shell.Module{},
	&ruff.Module{},
	&mypy.Module{},
	&pipreqs.Module{},
	&reqdiff.Module{},
	&prettier.Module{},
	&editorconfig.Module{},
	&webhook.Module{},
}
