package wm

import "errors"

var (
	ErrBadValue   = errors.New("bad value")
	ErrBadColor   = errors.New("wrong color format")
	ErrBadMode    = errors.New("invalid area mode")
	ErrPermission = errors.New("permission denied")
	ErrNotFound   = errors.New("file not found")
	ErrExists     = errors.New("file exists")
)
