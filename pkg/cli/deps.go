package cli

import (
	"github.com/idreset/idreset/internal/appdir"
	"github.com/idreset/idreset/internal/elevation"
	"github.com/idreset/idreset/pkg/identitystore"
	"github.com/idreset/idreset/pkg/proc"
)

// System collaborators, replaced in tests.
var (
	appEnv         appdir.Environment = appdir.OS()
	checkElevation elevation.Checker  = elevation.IsElevated
	processTable   proc.Table         = proc.SystemTable{}
	platformStore                     = identitystore.Platform
)
