package chain

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ParseOptions mirrors the structure-file-parsing flags of spec.md §6:
// -ter, -split, -het, -atom, -mol, -chain, -model.
type ParseOptions struct {
	Ter   int    // 0..3, chain-termination policy; accepted, but grouping is decided by Split alone
	Split int    // 0..2, chain-splitting policy
	Het   bool   // include HETATM residues
	Atom  string // 4-char atom name, "" = molecule-type default
	Mol   string // "auto", "protein", "RNA"

	Chains []string // -chain filter, empty = all
	Models []string // -model filter, empty = all
}

type pdbAtom struct {
	model   int
	chainID string
	resSeq  int
	resName string
	x, y, z float64
	het     bool
}

// SniffMolType scans all of r for ATOM/HETATM residue names, ignoring any
// atom-name filter, and returns the molecule type DetectMolType would
// settle on. Used under "-mol auto" to pick -atom's default before the real
// atom-name filter is known. Unlike DetectFormat it has no line limit.
func SniffMolType(r io.Reader) int {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var nucVotes, protVotes int
	for sc.Scan() {
		line := sc.Text()
		if len(line) < 20 {
			continue
		}
		tag := line
		if len(tag) > 6 {
			tag = tag[:6]
		}
		switch strings.TrimRight(tag, " ") {
		case "ATOM", "HETATM":
			resName := strings.TrimSpace(line[17:20])
			if _, isNuc := ResidueCode(resName); isNuc {
				nucVotes++
			} else {
				protVotes++
			}
		}
	}
	return DetectMolType(nucVotes, protVotes)
}

// ReadPDB scans a (possibly multi-model, multi-chain) PDB file into a set
// of flat chain records, grounded on TuftsBCB-io/pdb/pdb.go's ATOM/TER/
// ENDMDL scanning loop but flattened directly into chain.Record instead of
// an intermediate annotated Entry/Chain/Model tree, since this engine only
// ever needs coordinates plus per-residue codes.
//
// This is a deliberately narrow scanner: it understands ATOM, HETATM,
// TER, MODEL, ENDMDL and END records and the fixed-width coordinate
// columns of the PDB format, and nothing else (spec.md §1(i) places full
// structure-file parsing out of the engine's scope).
func ReadPDB(r io.Reader, opts ParseOptions) ([]*Record, error) {
	atomName := opts.Atom
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var atoms []pdbAtom
	model := 1
	chainEnded := false

	for sc.Scan() {
		line := sc.Text()
		if len(line) < 3 {
			continue
		}
		tag := line
		if len(tag) > 6 {
			tag = tag[:6]
		}
		switch strings.TrimRight(tag, " ") {
		case "MODEL":
			model++
			if len(line) > 6 {
				if n, err := strconv.Atoi(strings.TrimSpace(line[6:])); err == nil {
					model = n
				}
			}
			chainEnded = false
		case "ENDMDL":
			if opts.Ter >= 1 {
				chainEnded = true
			}
		case "END":
			goto done
		case "TER":
			if opts.Ter >= 3 {
				chainEnded = true
			}
		case "ATOM", "HETATM":
			isHet := tag == "HETATM"
			if isHet && !opts.Het {
				continue
			}
			if len(line) < 54 {
				continue
			}
			name := line[12:16]
			if atomName != "" && name != atomName {
				continue
			}
			altLoc := line[16]
			if altLoc != ' ' && altLoc != 'A' {
				continue
			}
			resName := strings.TrimSpace(line[17:20])
			chainID := strings.TrimSpace(line[21:22])
			if chainID == "" {
				chainID = "_"
			}
			resSeqStr := strings.TrimSpace(line[22:26])
			resSeq, err := strconv.Atoi(resSeqStr)
			if err != nil {
				continue
			}
			x, err1 := strconv.ParseFloat(strings.TrimSpace(line[30:38]), 64)
			y, err2 := strconv.ParseFloat(strings.TrimSpace(line[38:46]), 64)
			z, err3 := strconv.ParseFloat(strings.TrimSpace(line[46:54]), 64)
			if err1 != nil || err2 != nil || err3 != nil {
				continue
			}

			if opts.Ter == 2 && chainEnded {
				chainEnded = false
			}
			if len(atoms) > 0 {
				last := atoms[len(atoms)-1]
				if opts.Ter >= 2 && last.chainID != chainID {
					chainEnded = true
				}
			}

			atoms = append(atoms, pdbAtom{
				model: model, chainID: chainID, resSeq: resSeq,
				resName: resName, x: x, y: y, z: z, het: isHet,
			})
		}
	}
done:
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "scanning PDB")
	}
	if len(atoms) == 0 {
		return nil, nil
	}

	return groupAtoms(atoms, opts), nil
}

// groupAtoms applies the -split policy to decide how the flat atom list
// becomes one or more chain records.
func groupAtoms(atoms []pdbAtom, opts ParseOptions) []*Record {
	type key struct {
		model   int
		chainID string
	}
	groups := map[key][]pdbAtom{}
	var order []key

	keyOf := func(a pdbAtom) key {
		switch opts.Split {
		case 1: // each MODEL is a separate chain
			return key{model: a.model}
		case 2: // each chain ID is a separate chain
			return key{chainID: a.chainID}
		default: // 0: whole structure is a single chain
			return key{}
		}
	}

	for _, a := range atoms {
		if !filterAllowed(opts.Chains, a.chainID) {
			continue
		}
		if !filterAllowed(opts.Models, strconv.Itoa(a.model)) {
			continue
		}
		k := keyOf(a)
		if _, ok := groups[k]; !ok {
			order = append(order, k)
		}
		groups[k] = append(groups[k], a)
	}

	recs := make([]*Record, 0, len(order))
	for _, k := range order {
		as := groups[k]
		rec := &Record{Label: labelFor(opts.Split, k.model, k.chainID)}
		coords := make([]Point3, len(as))
		rec.SeqCodes = make([]byte, len(as)+1)

		var nucVotes, protVotes int
		for i, a := range as {
			coords[i] = Point3{X: a.x, Y: a.y, Z: a.z}
			code, isNuc := ResidueCode(a.resName)
			rec.SeqCodes[i] = code
			if isNuc {
				nucVotes++
			} else {
				protVotes++
			}
		}
		rec.SeqCodes[len(as)] = 0
		rec.SetCoords(coords)

		switch opts.Mol {
		case "RNA":
			rec.MolType = MolNucleic
		case "protein":
			rec.MolType = MolProtein
		default:
			rec.MolType = DetectMolType(nucVotes, protVotes)
		}
		rec.SecCodes = AssignSecondaryStructure(rec.Coords)
		recs = append(recs, rec)
	}
	return recs
}

func labelFor(split, model int, chainID string) string {
	switch split {
	case 1:
		return fmt.Sprintf("model%d", model)
	case 2:
		return fmt.Sprintf("chain%s", chainID)
	default:
		return ""
	}
}

func filterAllowed(filter []string, value string) bool {
	if len(filter) == 0 {
		return true
	}
	for _, f := range filter {
		if f == value {
			return true
		}
	}
	return false
}
