package chem

// element describes one entry of the periodic table as far as SMILES
// handling needs it.
type element struct {
	Number int
	Weight float64
	// Valences lists the default valences of organic-subset elements in
	// ascending order.  Empty for every other element.
	Valences []int
}

// hydrogenWeight is used for implicit and bracket hydrogens.
const hydrogenWeight = 1.008

// elements holds IUPAC standard atomic weights (abridged to the conventional
// values).  Elements without a stable isotope carry the mass number of their
// longest-lived isotope.
var elements = map[string]element{
	"*":  {Number: 0, Weight: 0},
	"H":  {Number: 1, Weight: 1.008},
	"He": {Number: 2, Weight: 4.0026},
	"Li": {Number: 3, Weight: 6.94},
	"Be": {Number: 4, Weight: 9.0122},
	"B":  {Number: 5, Weight: 10.81, Valences: []int{3}},
	"C":  {Number: 6, Weight: 12.011, Valences: []int{4}},
	"N":  {Number: 7, Weight: 14.007, Valences: []int{3, 5}},
	"O":  {Number: 8, Weight: 15.999, Valences: []int{2}},
	"F":  {Number: 9, Weight: 18.998, Valences: []int{1}},
	"Ne": {Number: 10, Weight: 20.180},
	"Na": {Number: 11, Weight: 22.990},
	"Mg": {Number: 12, Weight: 24.305},
	"Al": {Number: 13, Weight: 26.982},
	"Si": {Number: 14, Weight: 28.085},
	"P":  {Number: 15, Weight: 30.974, Valences: []int{3, 5}},
	"S":  {Number: 16, Weight: 32.06, Valences: []int{2, 4, 6}},
	"Cl": {Number: 17, Weight: 35.45, Valences: []int{1}},
	"Ar": {Number: 18, Weight: 39.948},
	"K":  {Number: 19, Weight: 39.098},
	"Ca": {Number: 20, Weight: 40.078},
	"Sc": {Number: 21, Weight: 44.956},
	"Ti": {Number: 22, Weight: 47.867},
	"V":  {Number: 23, Weight: 50.942},
	"Cr": {Number: 24, Weight: 51.996},
	"Mn": {Number: 25, Weight: 54.938},
	"Fe": {Number: 26, Weight: 55.845},
	"Co": {Number: 27, Weight: 58.933},
	"Ni": {Number: 28, Weight: 58.693},
	"Cu": {Number: 29, Weight: 63.546},
	"Zn": {Number: 30, Weight: 65.38},
	"Ga": {Number: 31, Weight: 69.723},
	"Ge": {Number: 32, Weight: 72.630},
	"As": {Number: 33, Weight: 74.922},
	"Se": {Number: 34, Weight: 78.971},
	"Br": {Number: 35, Weight: 79.904, Valences: []int{1}},
	"Kr": {Number: 36, Weight: 83.798},
	"Rb": {Number: 37, Weight: 85.468},
	"Sr": {Number: 38, Weight: 87.62},
	"Y":  {Number: 39, Weight: 88.906},
	"Zr": {Number: 40, Weight: 91.224},
	"Nb": {Number: 41, Weight: 92.906},
	"Mo": {Number: 42, Weight: 95.95},
	"Tc": {Number: 43, Weight: 97},
	"Ru": {Number: 44, Weight: 101.07},
	"Rh": {Number: 45, Weight: 102.91},
	"Pd": {Number: 46, Weight: 106.42},
	"Ag": {Number: 47, Weight: 107.87},
	"Cd": {Number: 48, Weight: 112.41},
	"In": {Number: 49, Weight: 114.82},
	"Sn": {Number: 50, Weight: 118.71},
	"Sb": {Number: 51, Weight: 121.76},
	"Te": {Number: 52, Weight: 127.60},
	"I":  {Number: 53, Weight: 126.90, Valences: []int{1}},
	"Xe": {Number: 54, Weight: 131.29},
	"Cs": {Number: 55, Weight: 132.91},
	"Ba": {Number: 56, Weight: 137.33},
	"La": {Number: 57, Weight: 138.91},
	"Ce": {Number: 58, Weight: 140.12},
	"Pr": {Number: 59, Weight: 140.91},
	"Nd": {Number: 60, Weight: 144.24},
	"Pm": {Number: 61, Weight: 145},
	"Sm": {Number: 62, Weight: 150.36},
	"Eu": {Number: 63, Weight: 151.96},
	"Gd": {Number: 64, Weight: 157.25},
	"Tb": {Number: 65, Weight: 158.93},
	"Dy": {Number: 66, Weight: 162.50},
	"Ho": {Number: 67, Weight: 164.93},
	"Er": {Number: 68, Weight: 167.26},
	"Tm": {Number: 69, Weight: 168.93},
	"Yb": {Number: 70, Weight: 173.05},
	"Lu": {Number: 71, Weight: 174.97},
	"Hf": {Number: 72, Weight: 178.49},
	"Ta": {Number: 73, Weight: 180.95},
	"W":  {Number: 74, Weight: 183.84},
	"Re": {Number: 75, Weight: 186.21},
	"Os": {Number: 76, Weight: 190.23},
	"Ir": {Number: 77, Weight: 192.22},
	"Pt": {Number: 78, Weight: 195.08},
	"Au": {Number: 79, Weight: 196.97},
	"Hg": {Number: 80, Weight: 200.59},
	"Tl": {Number: 81, Weight: 204.38},
	"Pb": {Number: 82, Weight: 207.2},
	"Bi": {Number: 83, Weight: 208.98},
	"Po": {Number: 84, Weight: 209},
	"At": {Number: 85, Weight: 210},
	"Rn": {Number: 86, Weight: 222},
	"Fr": {Number: 87, Weight: 223},
	"Ra": {Number: 88, Weight: 226},
	"Ac": {Number: 89, Weight: 227},
	"Th": {Number: 90, Weight: 232.04},
	"Pa": {Number: 91, Weight: 231.04},
	"U":  {Number: 92, Weight: 238.03},
	"Np": {Number: 93, Weight: 237},
	"Pu": {Number: 94, Weight: 244},
	"Am": {Number: 95, Weight: 243},
	"Cm": {Number: 96, Weight: 247},
	"Bk": {Number: 97, Weight: 247},
	"Cf": {Number: 98, Weight: 251},
	"Es": {Number: 99, Weight: 252},
	"Fm": {Number: 100, Weight: 257},
	"Md": {Number: 101, Weight: 258},
	"No": {Number: 102, Weight: 259},
	"Lr": {Number: 103, Weight: 266},
	"Rf": {Number: 104, Weight: 267},
	"Db": {Number: 105, Weight: 268},
	"Sg": {Number: 106, Weight: 269},
	"Bh": {Number: 107, Weight: 270},
	"Hs": {Number: 108, Weight: 277},
	"Mt": {Number: 109, Weight: 278},
	"Ds": {Number: 110, Weight: 281},
	"Rg": {Number: 111, Weight: 282},
	"Cn": {Number: 112, Weight: 285},
	"Nh": {Number: 113, Weight: 286},
	"Fl": {Number: 114, Weight: 289},
	"Mc": {Number: 115, Weight: 290},
	"Lv": {Number: 116, Weight: 293},
	"Ts": {Number: 117, Weight: 294},
	"Og": {Number: 118, Weight: 294},
}

// aromaticSymbols maps the lower-case aromatic spellings allowed by SMILES
// to their element symbol.  Only b, c, n, o, p and s may appear outside
// brackets.
var aromaticSymbols = map[string]string{
	"b":  "B",
	"c":  "C",
	"n":  "N",
	"o":  "O",
	"p":  "P",
	"s":  "S",
	"se": "Se",
	"as": "As",
	"te": "Te",
}

func lookupElement(symbol string) (element, bool) {
	e, ok := elements[symbol]
	return e, ok
}

//Personal.AI order the ending
