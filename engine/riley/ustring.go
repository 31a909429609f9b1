package riley

// UString is an interned renderer string.
type UString string

func (u UString) String() string { return string(u) }

func (u UString) Empty() bool { return u == "" }

// RixStr holds the predefined renderer strings.
var RixStr = struct {
	K_Ri_Points      UString
	K_Ri_PolygonMesh UString
	K_P              UString
	K_N              UString
	K_width          UString
	K_constantwidth  UString
	K_Cs             UString
	K_Os             UString
	K_velocity       UString
}{
	K_Ri_Points:      "Ri:Points",
	K_Ri_PolygonMesh: "Ri:PolygonMesh",
	K_P:              "P",
	K_N:              "N",
	K_width:          "width",
	K_constantwidth:  "constantwidth",
	K_Cs:             "Cs",
	K_Os:             "Os",
	K_velocity:       "velocity",
}
