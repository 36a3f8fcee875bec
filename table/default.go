package table

import "sync"

const (
	vectorSuffixes = "ivf"
	matrixSuffixes = "df"
)

// Warnings attached to renames whose behaviour changed between versions.
const (
	WarnNormalize = "HMM_Norm* uses a fast inverse square root and offers lower precision than HMM_Normalize*"
	WarnCombine   = "HMM_LinearCombineV4M4 takes an HMM_Vec4 and no longer requires checking for HANDMADE_MATH__USE_SSE"
	WarnAngle     = "angles are now given in radians by default; the degree argument is wrapped in HMM_AngleDeg"
)

var defaultEntries = []Entry{
	{Find: "hmm_", Replace: "HMM_", Group: PrefixType},
	{Find: "HMM_", Replace: "HMM_", Group: PrefixFunction},

	{Find: "vec2", Replace: "Vec2", Group: TypeName},
	{Find: "vec3", Replace: "Vec3", Group: TypeName},
	{Find: "vec4", Replace: "Vec4", Group: TypeName},
	{Find: "mat2", Replace: "Mat2", Group: TypeName},
	{Find: "mat3", Replace: "Mat3", Group: TypeName},
	{Find: "mat4", Replace: "Mat4", Group: TypeName},
	{Find: "quaternion", Replace: "Quat", Group: TypeName},
	{Find: "bool", Replace: "Bool", Group: TypeName},
	{Find: "v2", Replace: "Vec2", Group: TypeName},
	{Find: "v3", Replace: "Vec3", Group: TypeName},
	{Find: "v4", Replace: "Vec4", Group: TypeName},
	{Find: "m4", Replace: "Mat4", Group: TypeName},

	{Find: "Vec2", Replace: "V2", Group: FunctionType, Suffixes: vectorSuffixes},
	{Find: "Vec3", Replace: "V3", Group: FunctionType, Suffixes: vectorSuffixes},
	{Find: "Vec4", Replace: "V4", Group: FunctionType, Suffixes: vectorSuffixes},
	{Find: "Mat2", Replace: "M2", Group: FunctionType, Suffixes: matrixSuffixes},
	{Find: "Mat3", Replace: "M3", Group: FunctionType, Suffixes: matrixSuffixes},
	{Find: "Mat4", Replace: "M4", Group: FunctionType, Suffixes: matrixSuffixes},
	{Find: "Quaternion", Replace: "Q", Group: FunctionType},

	{Find: "Subtract", Replace: "Sub", Group: FunctionVerb},
	{Find: "Multiply", Replace: "Mul", Group: FunctionVerb},
	{Find: "Divide", Replace: "Div", Group: FunctionVerb},
	{Find: "Equals", Replace: "Eq", Group: FunctionVerb},
	{Find: "Length", Replace: "Len", Group: FunctionVerb},
	// LengthSquared commits Length first, this finishes it as LenSqr.
	{Find: "Squared", Replace: "Sqr", Group: FunctionVerb},
	// FastNormalize and Normalize end on the same byte; the longer one must win.
	{Find: "FastNormalize", Replace: "Norm", Group: FunctionVerb},
	{Find: "Normalize", Replace: "Norm", Group: FunctionVerb, Warning: WarnNormalize},
	{Find: "RSquareRoot", Replace: "InvSqrt", Group: FunctionVerb},
	{Find: "SquareRoot", Replace: "Sqrt", Group: FunctionVerb},
	{Find: "Inverse", Replace: "Inv", Group: FunctionVerb},
	{Find: "ToRadians", Replace: "ToRad", Group: FunctionVerb},
	{Find: "LinearCombineSSE", Replace: "LinearCombineV4M4", Group: FunctionVerb, Warning: WarnCombine},

	{Find: "Perspective", Replace: "Perspective", Group: Handedness, WrapAngle: true, Warning: WarnAngle},
	{Find: "Rotate", Replace: "Rotate", Group: Handedness, WrapAngle: true, Warning: WarnAngle},
	{Find: "Orthographic", Replace: "Orthographic", Group: Handedness},
	{Find: "LookAt", Replace: "LookAt", Group: Handedness},
	{Find: "FromAxisAngle", Replace: "FromAxisAngle", Group: Handedness},
	{Find: "ToQuaternion", Replace: "ToQ", Group: Handedness},
}

// Default returns the built-in 1.x to 2.x table.
var Default = sync.OnceValue(func() *Table {
	return MustNew(defaultEntries...)
})
