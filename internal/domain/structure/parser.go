package structure

import (
	"bufio"
	"os"
	"strconv"
	"strings"

	"github.com/arqgene/dockprep/pkg/errors"
)

// Parser turns a structural file into the model->chain->residue->atom
// hierarchy.  A Parser rejecting its input is the signal for the cleaning
// pipeline to fall through to the text-based cleaner; it must return an
// error carrying ErrCodeParseFailure in that case.
type Parser interface {
	Parse(path string) (*Structure, error)
}

// structureBuilder accumulates atoms into the hierarchy, opening a new chain
// or residue whenever the identifying columns change.
type structureBuilder struct {
	st      *Structure
	model   *Model
	chain   *Chain
	residue *Residue
}

func newStructureBuilder() *structureBuilder {
	b := &structureBuilder{st: &Structure{}}
	b.openModel(0)
	return b
}

func (b *structureBuilder) openModel(serial int) {
	b.model = &Model{Serial: serial}
	b.st.Models = append(b.st.Models, b.model)
	b.chain = nil
	b.residue = nil
}

func (b *structureBuilder) add(rec *AtomRecord) {
	if b.chain == nil || b.chain.ID != rec.ChainID {
		b.chain = &Chain{ID: rec.ChainID}
		b.model.Chains = append(b.model.Chains, b.chain)
		b.residue = nil
	}
	if b.residue == nil || b.residue.Name != rec.ResName || b.residue.Seq != rec.ResSeq {
		b.residue = &Residue{Name: rec.ResName, Seq: rec.ResSeq, Hetero: rec.Hetero}
		b.chain.Residues = append(b.chain.Residues, b.residue)
	}
	// A residue containing any HETATM record is heteroatomic as a whole.
	if rec.Hetero {
		b.residue.Hetero = true
	}
	b.residue.Atoms = append(b.residue.Atoms, rec)
}

// build finalizes the structure, dropping the implicit leading model when
// the file declared its own MODEL records.
func (b *structureBuilder) build() *Structure {
	if len(b.st.Models) > 1 && len(b.st.Models[0].Chains) == 0 {
		b.st.Models = b.st.Models[1:]
	}
	return b.st
}

// PDBParser parses fixed-column PDB text permissively: malformed per-field
// values are tolerated, and only a file with no parseable atom record at all
// is rejected.
type PDBParser struct{}

// Parse reads the PDB file at path into a Structure.
func (PDBParser) Parse(path string) (*Structure, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeStructureNotFound, "cannot open structure file").
			WithDetail("path=" + path)
	}
	defer f.Close()

	b := newStructureBuilder()
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "MODEL"):
			serial, _ := strconv.Atoi(column(line, 6, len(line)))
			b.openModel(serial)
		case IsAtomLine(line):
			if rec, ok := ParseAtomLine(line); ok {
				b.add(rec)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeParseFailure, "reading structure file failed")
	}

	st := b.build()
	if st.AtomCount() == 0 {
		return nil, errors.New(errors.ErrCodeParseFailure, "no parseable atom records in PDB input").
			WithDetail("path=" + path)
	}
	return st, nil
}

// MMCIFParser extracts atom_site records from an mmCIF loop_ block.  It
// implements only the subset needed to rebuild the atom hierarchy: the
// group_PDB keyword, atom and residue identifiers, chain id, and Cartesian
// coordinates.  Everything else in the file is ignored.
type MMCIFParser struct{}

// atom_site tags consumed by the parser.  auth_* variants take precedence
// over label_* when both are present, matching how deposited structures
// number their chains and residues.
const (
	tagGroup    = "_atom_site.group_pdb"
	tagID       = "_atom_site.id"
	tagAtomName = "_atom_site.label_atom_id"
	tagComp     = "_atom_site.label_comp_id"
	tagAsym     = "_atom_site.label_asym_id"
	tagAuthAsym = "_atom_site.auth_asym_id"
	tagSeq      = "_atom_site.label_seq_id"
	tagAuthSeq  = "_atom_site.auth_seq_id"
	tagX        = "_atom_site.cartn_x"
	tagY        = "_atom_site.cartn_y"
	tagZ        = "_atom_site.cartn_z"
	tagSymbol   = "_atom_site.type_symbol"
)

// Parse reads the mmCIF file at path into a Structure.
func (MMCIFParser) Parse(path string) (*Structure, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeStructureNotFound, "cannot open structure file").
			WithDetail("path=" + path)
	}
	defer f.Close()

	var (
		inLoop  bool
		inAtoms bool
		tags    []string
		b       = newStructureBuilder()
	)

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "loop_":
			inLoop = true
			inAtoms = false
			tags = nil
		case inLoop && strings.HasPrefix(line, "_"):
			tag := strings.ToLower(strings.Fields(line)[0])
			tags = append(tags, tag)
			if strings.HasPrefix(tag, "_atom_site.") {
				inAtoms = true
			}
		case inLoop && inAtoms && line != "" && !strings.HasPrefix(line, "#"):
			fields := strings.Fields(line)
			if len(fields) < len(tags) {
				// Tolerate short rows the same way malformed PDB
				// fields are tolerated: skip the row, keep the file.
				continue
			}
			if rec, ok := atomSiteRecord(tags, fields); ok {
				b.add(rec)
			}
		case line == "#" || line == "":
			inLoop = false
			inAtoms = false
		default:
			if inLoop && !inAtoms {
				// Data rows of a loop we do not consume.
				continue
			}
			inLoop = false
			inAtoms = false
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeParseFailure, "reading mmCIF file failed")
	}

	st := b.build()
	if st.AtomCount() == 0 {
		return nil, errors.New(errors.ErrCodeParseFailure, "no atom_site records in mmCIF input").
			WithDetail("path=" + path)
	}
	return st, nil
}

// atomSiteRecord assembles one AtomRecord from a tag-ordered mmCIF data row.
func atomSiteRecord(tags, fields []string) (*AtomRecord, bool) {
	get := func(want string) string {
		for i, tag := range tags {
			if tag == want && i < len(fields) {
				v := fields[i]
				if v == "." || v == "?" {
					return ""
				}
				return v
			}
		}
		return ""
	}

	group := strings.ToUpper(get(tagGroup))
	if group != "ATOM" && group != "HETATM" {
		return nil, false
	}

	rec := &AtomRecord{
		Name:     strings.Trim(get(tagAtomName), `"`),
		ResName:  get(tagComp),
		AtomType: get(tagSymbol),
		Hetero:   group == "HETATM",
	}
	if rec.ChainID = get(tagAuthAsym); rec.ChainID == "" {
		rec.ChainID = get(tagAsym)
	}
	seq := get(tagAuthSeq)
	if seq == "" {
		seq = get(tagSeq)
	}
	if v, err := strconv.Atoi(seq); err == nil {
		rec.ResSeq = v
	}
	if v, err := strconv.Atoi(get(tagID)); err == nil {
		rec.Serial = v
	}

	x, errX := strconv.ParseFloat(get(tagX), 64)
	y, errY := strconv.ParseFloat(get(tagY), 64)
	z, errZ := strconv.ParseFloat(get(tagZ), 64)
	if errX == nil && errY == nil && errZ == nil {
		rec.Coord = &Coord{X: x, Y: y, Z: z}
	}
	return rec, true
}
