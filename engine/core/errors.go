package core

import (
	"errors"
)

var (
	ErrShaderCompile     = errors.New("shader program failed to compile, link or validate")
	ErrRefcountUnderflow = errors.New("resource released more times than it was acquired")
	ErrUnknownChunkType  = errors.New("unknown chunk type")
	ErrDeviceLost        = errors.New("graphics device context lost")
	ErrConfig            = errors.New("invalid configuration")
	ErrBufferTooShort    = errors.New("buffer too short")
	ErrUnknown           = errors.New("unknown")
)
