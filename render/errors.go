package render

import "errors"

var (
	ErrFieldNotDefined        = errors.New("render: no field defined")
	ErrUpsampleNotSupported   = errors.New("render: importance upsampling is not supported on the single-pass path")
	ErrBackgroundNotSupported = errors.New("render: background model shading is not supported on the single-pass path")
	ErrMarchingNotSupported   = errors.New("render: native marching kernels are not available")
	ErrInvalidPose            = errors.New("render: pose must be a rigid 4x4 camera-to-world transform")
	ErrBatchMismatch          = errors.New("render: origins, directions and direction norms must have equal lengths")
	ErrStateMismatch          = errors.New("render: snapshot dimensions do not match this renderer")
)
