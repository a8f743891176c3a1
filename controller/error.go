package controller

import (
	"github.com/oblivisheee/aum-engine/lib"
)

func ErrStartup(err error) lib.ErrorI {
	return lib.WrapError(lib.CodeUnknown, lib.MainModule, "Engine failed to start: %s", err)
}
