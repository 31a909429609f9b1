package hd

// Token names an attribute or concept on a scene prim.
type Token string

// Attribute and prim-type tokens understood by the adapters.
const (
	TokenPoints         Token = "points"
	TokenNormals        Token = "normals"
	TokenWidths         Token = "widths"
	TokenVelocities     Token = "velocities"
	TokenAccelerations  Token = "accelerations"
	TokenDisplayColor   Token = "displayColor"
	TokenDisplayOpacity Token = "displayOpacity"
	TokenTransform      Token = "transform"
	TokenVisibility     Token = "visibility"
	TokenMaterial       Token = "material"
	TokenInstancer      Token = "instancer"

	// Prim types.
	PrimTypePoints Token = "points"
)

// Roles tag the semantic kind of a primvar.
const (
	RoleNone   Token = ""
	RolePoint  Token = "point"
	RoleNormal Token = "normal"
	RoleVector Token = "vector"
	RoleColor  Token = "color"
)
