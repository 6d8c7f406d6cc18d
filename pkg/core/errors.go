package core

// Error types attached to errors returned by the index packages. Use
// errors.Type or errors.IsType from go-tooling to inspect them.
const (
	ErrTypeInvalidConfig    = "invalid-config"
	ErrTypeInvalidPrimitive = "invalid-primitive"
	ErrTypeInvalidRay       = "invalid-ray"
	ErrTypeInvalidSphere    = "invalid-sphere"
	ErrTypeInvalidStartNode = "invalid-start-node"
	ErrTypeDepthOverflow    = "depth-overflow"
)
