package main

import (
	"github.com/kaspanet/scriptfuzz/infrastructure/logger"
)

var log, _ = logger.Get(logger.SubsystemTags.DIFF)
