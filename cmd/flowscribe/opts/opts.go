package opts

import (
	"github.com/flowscribe/flowscribe/pkg/config"
	"github.com/flowscribe/flowscribe/pkg/repository"
)

// RootOpts contains shared options used by all commands. It is populated
// once by the root command before any subcommand runs.
type RootOpts struct {
	Config     *config.Config
	Repository *repository.Repository
}
