package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/vbauerster/mpb/v5"
	"github.com/vbauerster/mpb/v5/decor"

	"github.com/bioclust/tmclust/chain"
	"github.com/bioclust/tmclust/cluster"
)

var clusterCmd = &cobra.Command{
	Use:   "cluster",
	Short: "Greedily cluster chains by TM-score structural similarity",
	Long: `Greedily cluster chains by TM-score structural similarity

Chains are processed longest-first. Each chain either joins an existing
cluster, by HITting one of its representatives under the Length-Bound
Pruner / Ranker / Confirmer pipeline, or founds a new one.

`,
	Run: func(cmd *cobra.Command, args []string) {
		opt := getOptions(cmd)

		timeStart := time.Now()
		defer func() {
			fmt.Fprintf(os.Stderr, "#Total CPU time is %.2f seconds\n", time.Since(timeStart).Seconds())
		}()

		for _, unimpl := range []string{"u", "d", "a", "byresi"} {
			if cmd.Flags().Changed(unimpl) {
				checkError(fmt.Errorf("flag -%s is recognised but not implemented", unimpl))
			}
		}

		tmCut := getFlagFloat64(cmd, "TMcut")
		if tmCut < 0.45 || tmCut >= 1 {
			checkError(fmt.Errorf("-TMcut must be in [0.45, 1), got %g", tmCut))
		}
		mode := getFlagInt(cmd, "s")
		if mode < 1 || mode > 6 {
			checkError(fmt.Errorf("-s must be in 1..6, got %d", mode))
		}
		fast := getFlagBool(cmd, "fast")

		ter := getFlagInt(cmd, "ter")
		if ter < 0 || ter > 3 {
			checkError(fmt.Errorf("-ter must be in 0..3, got %d", ter))
		}
		split := getFlagInt(cmd, "split")
		if split < 0 || split > 2 {
			checkError(fmt.Errorf("-split must be in 0..2, got %d", split))
		}
		if split == 1 && ter != 0 {
			checkError(fmt.Errorf("-split 1 requires -ter 0"))
		}
		if split == 2 && ter > 1 {
			checkError(fmt.Errorf("-split 2 requires -ter <= 1"))
		}

		infmt := getFlagInt(cmd, "infmt")
		if infmt < -1 || infmt > 3 {
			checkError(fmt.Errorf("-infmt must be in -1..3, got %d", infmt))
		}
		atom := getFlagString(cmd, "atom")
		if atom != "" && len(atom) != 4 {
			checkError(fmt.Errorf("-atom must be exactly 4 characters, got %q", atom))
		}
		mol := getFlagString(cmd, "mol")
		switch mol {
		case "auto", "protein", "RNA":
		default:
			checkError(fmt.Errorf("-mol must be auto, protein or RNA, got %q", mol))
		}
		het := getFlagBool(cmd, "het")

		chains := getFlagStringSlice(cmd, "chain")
		models := getFlagStringSlice(cmd, "model")

		outFile := expandPath(getFlagString(cmd, "o"))
		dir := expandPath(getFlagString(cmd, "dir"))
		suffix := getFlagString(cmd, "suffix")
		initFile := expandPath(getFlagString(cmd, "init"))
		cachePath := expandPath(getFlagString(cmd, "cache"))

		popts := chain.ParseOptions{
			Ter: ter, Split: split, Het: het, Atom: atom, Mol: mol,
			Chains: chains, Models: models,
		}

		// ---------------------------------------------------------------
		// resolve input file list: -dir names a folder plus a list file
		// (the positional arg, or -i/--infile-list) whose lines are chain
		// file names under that folder (section 6); otherwise the
		// positional args / -i file list name chain files directly.
		var files []string
		if dir != "" {
			listFile := ""
			if len(args) > 0 {
				listFile = args[0]
			}
			if listFile == "" {
				listFile = getFlagString(cmd, "infile-list")
			}
			if listFile == "" {
				checkError(fmt.Errorf("-dir requires a list-file argument (or -i/--infile-list)"))
			}
			listed, err := resolveDirFiles(listFile, dir, suffix)
			checkError(err)
			files = listed
		} else {
			files = getFileListFromArgsAndFile(cmd, args, true, "infile-list", true)
		}
		if len(files) == 0 {
			checkError(fmt.Errorf("no input chain files given"))
		}
		if opt.Verbose {
			log.Infof("%d input file(s) given", len(files))
		}

		// ---------------------------------------------------------------
		// molConst pins the molecule type used to resolve -atom's default
		// when -mol names a fixed type; "auto" instead sniffs each file.
		molConst := chain.MolUnknown
		switch mol {
		case "protein":
			molConst = chain.MolProtein
		case "RNA":
			molConst = chain.MolNucleic
		}

		// parse every file into the chain table, assigning ids by load
		// order (spec.md section 3: ids are stable array indices), unless a
		// cache from a prior run can be reused instead.
		var table chain.Table
		loadedFromCache := false
		if cachePath != "" {
			if cf, err := chain.OpenCache(cachePath); err == nil {
				for i := 0; i < cf.NumChains(); i++ {
					rec, err := cf.Chain(i)
					checkError(err)
					table = append(table, rec)
				}
				cf.Close()
				loadedFromCache = true
				if opt.Verbose {
					log.Infof("%d chains loaded from cache %s", len(table), cachePath)
				}
			}
		}

		if !loadedFromCache {
			var pbs *mpb.Progress
			var loadBar *mpb.Bar
			if opt.Verbose {
				pbs = mpb.New(mpb.WithWidth(64))
				loadBar = pbs.AddBar(int64(len(files)),
					mpb.PrependDecorators(
						decor.Name("parsing structure files", decor.WC{W: 24, C: decor.DidentRight}),
						decor.CountersNoUnit("%d / %d", decor.WCSyncWidth),
					),
					mpb.AppendDecorators(decor.EwmaETA(decor.ET_STYLE_GO, 60)),
				)
			}
			for _, f := range files {
				filePopts := popts
				if atom == "" {
					m := molConst
					if mol == "auto" {
						if sniffed, err := chain.SniffMolTypeFile(f); err == nil {
							m = sniffed
						}
					}
					filePopts.Atom = chain.DefaultAtomName(m)
				}
				recs, err := chain.ReadByFormat(f, infmt, filePopts)
				if err != nil {
					log.Warningf("skipping %s: %s", f, err)
					if loadBar != nil {
						loadBar.IncrBy(1)
					}
					continue
				}
				if len(recs) == 0 {
					log.Warningf("%s: no chains parsed, skipping", f)
					if loadBar != nil {
						loadBar.IncrBy(1)
					}
					continue
				}
				for _, rec := range recs {
					rec.Id = len(table)
					if rec.Label == "" {
						rec.Label = f
					} else {
						rec.Label = f + ":" + rec.Label
					}
					table = append(table, rec)
				}
				if loadBar != nil {
					loadBar.IncrBy(1)
				}
			}
			if pbs != nil {
				pbs.Wait()
			}
			if cachePath != "" && len(table) > 0 {
				checkError(chain.WriteCache(cachePath, table))
				if opt.Verbose {
					log.Infof("wrote cache %s", cachePath)
				}
			}
		}
		if len(table) == 0 {
			checkError(fmt.Errorf("no chains parsed from any input file"))
		}
		if opt.Verbose {
			log.Infof("%d chains loaded", len(table))
		}

		// ---------------------------------------------------------------
		// tentative-cluster hints
		var hints cluster.HintSet
		if initFile != "" {
			h, err := cluster.ReadHints(initFile)
			checkError(err)
			hints = h
		}

		workers := getFlagNonNegativeInt(cmd, "t")
		if workers == 0 {
			workers = opt.NumCPUs
		}
		params := cluster.Params{Cutoff: tmCut, Mode: mode, Fast: fast, Workers: workers}

		var runBar *mpb.Bar
		var runPbs *mpb.Progress
		if opt.Verbose {
			runPbs = mpb.New(mpb.WithWidth(64))
			runBar = runPbs.AddBar(int64(len(table)),
				mpb.PrependDecorators(
					decor.Name("clustering", decor.WC{W: 24, C: decor.DidentRight}),
					decor.CountersNoUnit("%d / %d", decor.WCSyncWidth),
				),
				mpb.AppendDecorators(decor.EwmaETA(decor.ET_STYLE_GO, 60)),
			)
		}
		progress := func(label string, length int, fracDone float64, numCandidates, numReps int) {
			if runBar != nil {
				runBar.SetCurrent(int64(fracDone * float64(len(table))))
			}
		}

		result, err := cluster.Run(context.Background(), table, params, hints, progress)
		checkError(err)
		if runPbs != nil {
			runPbs.Wait()
		}

		// ---------------------------------------------------------------
		// output: one cluster per line, representative first.
		outfh, closer, err := chain.Create(outFile, strings.HasSuffix(strings.ToLower(outFile), ".gz"), -1)
		checkError(err)
		defer func() {
			outfh.Flush()
			closer.Close()
		}()

		members := make([][]int, len(result.Representatives))
		for id, idx := range result.Membership {
			members[idx] = append(members[idx], id)
		}
		for idx, rep := range result.Representatives {
			line := table.ById(rep).Label
			for _, id := range members[idx] {
				if id == rep {
					continue
				}
				line += "\t" + table.ById(id).Label
			}
			outfh.WriteString(line + "\n")
		}

		if opt.Verbose {
			log.Infof("%d clusters found from %d chains", len(result.Representatives), len(table))
		}
	},
}

func init() {
	RootCmd.AddCommand(clusterCmd)

	clusterCmd.Flags().Float64P("TMcut", "", 0.5, formatFlagUsage("TM-score cutoff, in [0.45, 1)"))
	clusterCmd.Flags().IntP("t", "t", 0, formatFlagUsage("worker count; 0 = hardware parallelism (use -j/--threads instead)"))
	clusterCmd.Flags().IntP("s", "s", 2, formatFlagUsage("scoring mode, 1-6"))
	clusterCmd.Flags().StringP("o", "o", "-", formatFlagUsage(`output cluster file ("-" for stdout)`))
	clusterCmd.Flags().StringP("dir", "", "", formatFlagUsage("folder to join with the positional list-file argument's chain names"))
	clusterCmd.Flags().StringP("suffix", "", "", formatFlagUsage("suffix appended to each -dir list-file entry"))
	clusterCmd.Flags().StringP("cache", "", "", formatFlagUsage("binary chain cache path; reused if present, (re)written otherwise"))
	clusterCmd.Flags().IntP("ter", "", 3, formatFlagUsage("chain-termination parsing policy, 0-3"))
	clusterCmd.Flags().IntP("split", "", 0, formatFlagUsage("chain-splitting policy, 0-2"))
	clusterCmd.Flags().IntP("infmt", "", -1, formatFlagUsage("input format, -1 (auto), 0 (PDB), 1 (SPICKER), 2 (xyz), 3 (mmCIF)"))
	clusterCmd.Flags().StringP("atom", "", "", formatFlagUsage("4-char atom name; default keyed by molecule type"))
	clusterCmd.Flags().StringP("mol", "", "auto", formatFlagUsage("molecule-type override: auto, protein, RNA"))
	clusterCmd.Flags().BoolP("het", "", false, formatFlagUsage("include HETATM residues"))
	clusterCmd.Flags().BoolP("fast", "", false, formatFlagUsage("force fast TM-align in the first tier (scores between the fast-tier lower bound and the cutoff are still refined)"))
	clusterCmd.Flags().StringP("init", "", "", formatFlagUsage("tentative-cluster hint file"))
	clusterCmd.Flags().StringP("chain", "", "", formatFlagUsage("comma-separated chain-id filter"))
	clusterCmd.Flags().StringP("model", "", "", formatFlagUsage("comma-separated model-number filter"))

	clusterCmd.Flags().BoolP("u", "u", false, formatFlagUsage("not implemented"))
	clusterCmd.Flags().BoolP("d", "d", false, formatFlagUsage("not implemented"))
	clusterCmd.Flags().BoolP("a", "a", false, formatFlagUsage("not implemented"))
	clusterCmd.Flags().BoolP("byresi", "", false, formatFlagUsage("not implemented"))
}
