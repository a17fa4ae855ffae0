package structure

// Selection is the single composable predicate deciding which atoms survive
// cleaning.  It is shared by the structured cleaner and the text-based
// fallback so that both strategies accept and reject exactly the same
// residues on equivalent input.
type Selection struct {
	// KeepChain restricts output to a single chain id.  Empty keeps all
	// chains.  Records with an empty chain id are never rejected by this
	// rule, so chainless atoms survive even when a chain is requested.
	KeepChain string

	// RemoveWater drops residues whose name is in the water set.
	RemoveWater bool

	// RemoveHetero drops HETATM records and any residue outside the
	// standard set (ligands, cofactors, ions).
	RemoveHetero bool
}

// KeepEverything is the no-op selection: all chains, waters, and
// heteroatoms are retained.
var KeepEverything = Selection{}

// AcceptChain applies only the chain-level rule, used by the structured
// cleaner at chain granularity.
func (s Selection) AcceptChain(chainID string) bool {
	return s.KeepChain == "" || chainID == "" || chainID == s.KeepChain
}

// Accept decides whether a record with the given chain id, residue name, and
// heteroatom flag survives the selection.
func (s Selection) Accept(chainID, resName string, hetero bool) bool {
	if !s.AcceptChain(chainID) {
		return false
	}
	if s.RemoveWater && IsWaterResidue(resName) {
		return false
	}
	if s.RemoveHetero && (hetero || !IsStandardResidue(resName)) {
		return false
	}
	return true
}

// AcceptRecord is shorthand for Accept over a parsed AtomRecord.
func (s Selection) AcceptRecord(rec *AtomRecord) bool {
	return s.Accept(rec.ChainID, rec.ResName, rec.Hetero)
}
