package fixturegen

import (
	"github.com/kaspanet/scriptfuzz/infrastructure/logger"
)

var log, _ = logger.Get(logger.SubsystemTags.FGEN)
