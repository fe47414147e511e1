package cmd

import (
	"fmt"

	humanize "github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	prettytable "github.com/tatsushid/go-prettytable"
	yaml "gopkg.in/yaml.v2"

	"github.com/bioclust/tmclust/chain"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Print per-chain summary statistics for a structure-file set",
	Long: `Print per-chain summary statistics for a structure-file set

Parses every input file the same way "cluster" would and reports, per
chain: label, residue count, and detected molecule type. Useful for
sanity-checking inputs before committing to a long clustering run.

`,
	Run: func(cmd *cobra.Command, args []string) {
		opt := getOptions(cmd)

		ter := getFlagInt(cmd, "ter")
		split := getFlagInt(cmd, "split")
		infmt := getFlagInt(cmd, "infmt")
		atom := getFlagString(cmd, "atom")
		mol := getFlagString(cmd, "mol")
		het := getFlagBool(cmd, "het")
		summaryOut := getFlagString(cmd, "summary-out")

		popts := chain.ParseOptions{Ter: ter, Split: split, Het: het, Atom: atom, Mol: mol}

		files := getFileListFromArgsAndFile(cmd, args, true, "infile-list", true)
		if opt.Verbose {
			log.Infof("%d input file(s) given", len(files))
		}

		type chainInfo struct {
			File    string `yaml:"file"`
			Label   string `yaml:"label"`
			Length  int    `yaml:"length"`
			MolType string `yaml:"mol_type"`
		}

		var infos []chainInfo
		var nProtein, nNucleic, nUnknown int
		for _, f := range files {
			filePopts := popts
			if atom == "" {
				m := chain.MolUnknown
				switch mol {
				case "protein":
					m = chain.MolProtein
				case "RNA":
					m = chain.MolNucleic
				default:
					if sniffed, err := chain.SniffMolTypeFile(f); err == nil {
						m = sniffed
					}
				}
				filePopts.Atom = chain.DefaultAtomName(m)
			}
			recs, err := chain.ReadByFormat(f, infmt, filePopts)
			if err != nil {
				log.Warningf("skipping %s: %s", f, err)
				continue
			}
			for _, rec := range recs {
				molStr := "unknown"
				switch {
				case rec.MolType < 0:
					molStr = "protein"
					nProtein++
				case rec.MolType > 0:
					molStr = "nucleic-acid"
					nNucleic++
				default:
					nUnknown++
				}
				infos = append(infos, chainInfo{File: f, Label: rec.Label, Length: rec.Length(), MolType: molStr})
			}
		}

		columns := []prettytable.Column{
			{Header: "file"},
			{Header: "label"},
			{Header: "length", AlignRight: true},
			{Header: "mol-type", AlignRight: true},
		}
		tbl, err := prettytable.NewTable(columns...)
		checkError(err)
		tbl.Separator = "  "
		for _, info := range infos {
			tbl.AddRow(info.File, info.Label, info.Length, info.MolType)
		}
		fmt.Print(string(tbl.Bytes()))

		if opt.Verbose {
			log.Infof("%s chains total (%s protein, %s nucleic acid, %s unknown)",
				humanize.Comma(int64(len(infos))), humanize.Comma(int64(nProtein)),
				humanize.Comma(int64(nNucleic)), humanize.Comma(int64(nUnknown)))
		}

		if summaryOut != "" {
			data, err := yaml.Marshal(infos)
			checkError(err)
			outfh, closer, err := chain.Create(summaryOut, false, -1)
			checkError(err)
			defer func() {
				outfh.Flush()
				closer.Close()
			}()
			outfh.Write(data)
		}
	},
}

func init() {
	RootCmd.AddCommand(infoCmd)

	infoCmd.Flags().IntP("ter", "", 3, formatFlagUsage("chain-termination parsing policy, 0-3"))
	infoCmd.Flags().IntP("split", "", 0, formatFlagUsage("chain-splitting policy, 0-2"))
	infoCmd.Flags().IntP("infmt", "", -1, formatFlagUsage("input format, -1 (auto), 0 (PDB), 1 (SPICKER), 2 (xyz), 3 (mmCIF)"))
	infoCmd.Flags().StringP("atom", "", "", formatFlagUsage("4-char atom name; default keyed by molecule type"))
	infoCmd.Flags().StringP("mol", "", "auto", formatFlagUsage("molecule-type override: auto, protein, RNA"))
	infoCmd.Flags().BoolP("het", "", false, formatFlagUsage("include HETATM residues"))
	infoCmd.Flags().StringP("summary-out", "", "", formatFlagUsage("optional YAML sidecar file to write the per-chain summary to"))
}
