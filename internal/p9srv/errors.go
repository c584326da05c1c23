package p9srv

import "errors"

var (
	ErrVersion       = errors.New("9P version not supported")
	ErrNoVersion     = errors.New("version not negotiated")
	ErrNoFunction    = errors.New("function not supported")
	ErrNoFid         = errors.New("fid not found")
	ErrFidInUse      = errors.New("fid in use")
	ErrFidOpen       = errors.New("fid is open")
	ErrFidNotOpen    = errors.New("fid not open")
	ErrTooManyNames  = errors.New("too many names")
	ErrBadMode       = errors.New("mode not supported")
	ErrCountTooSmall = errors.New("count too small")
	ErrAddressInUse  = errors.New("address in use")
	ErrBadAddress    = errors.New("bad address")
)
