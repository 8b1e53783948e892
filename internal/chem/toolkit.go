package chem

// Matcher is the chemistry surface the molecule service depends on.
type Matcher interface {
	// Parse returns the molecular graph for smiles or a *ParseError.
	Parse(smiles string) (*Molecule, error)
	// Valid reports whether smiles parses.
	Valid(smiles string) bool
}

// Toolkit is the default Matcher backed by this package's parser.
type Toolkit struct{}

// NewToolkit returns the default Matcher.
func NewToolkit() *Toolkit { return &Toolkit{} }

func (*Toolkit) Parse(smiles string) (*Molecule, error) { return Parse(smiles) }

func (*Toolkit) Valid(smiles string) bool { return Valid(smiles) }

// MassOf parses smiles and returns its average mass.
func MassOf(smiles string) (float64, error) {
	m, err := Parse(smiles)
	if err != nil {
		return 0, err
	}
	return m.AverageMass(), nil
}

var _ Matcher = (*Toolkit)(nil)

//Personal.AI order the ending
