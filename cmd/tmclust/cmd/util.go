package cmd

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
	"github.com/shenwei356/util/pathutil"
	"github.com/spf13/cobra"

	"github.com/bioclust/tmclust/chain"
)

// Options holds the global flags, the same shape as the teacher's
// Options (util.go) minus the k-mer-sketch-specific fields this engine
// has no use for.
type Options struct {
	NumCPUs int
	Verbose bool
}

func getOptions(cmd *cobra.Command) *Options {
	threads := getFlagNonNegativeInt(cmd, "threads")
	if threads == 0 {
		threads = runtime.NumCPU()
	}

	chain.SetSortThreads(threads)
	runtime.GOMAXPROCS(threads)

	return &Options{
		NumCPUs: threads,
		Verbose: !getFlagBool(cmd, "quiet"),
	}
}

// makeOutDir prepares outDir for writing, verbatim teacher idiom
// (util.go): refuses a non-empty existing directory unless force is set.
func makeOutDir(outDir string, force bool) {
	pwd, _ := os.Getwd()
	if outDir == "./" || outDir == "." || pwd == filepath.Clean(outDir) {
		return
	}
	existed, err := pathutil.DirExists(outDir)
	checkError(errors.Wrap(err, outDir))
	if existed {
		empty, err := pathutil.IsEmpty(outDir)
		checkError(errors.Wrap(err, outDir))
		if !empty {
			if force {
				log.Infof("removing old output directory: %s", outDir)
				checkError(os.RemoveAll(outDir))
			} else {
				checkError(fmt.Errorf("out-dir not empty: %s, use --force to overwrite", outDir))
			}
		} else {
			checkError(os.RemoveAll(outDir))
		}
	}
	checkError(os.MkdirAll(outDir, 0777))
}

// readChainListFile reads a -dir-mode list file: one chain file name per
// line, blank lines skipped. Grounded on original_source/qTMclust+.cpp's
// "dir_opt.size()==0 ? chain_list.push_back(xname) : file2chainlist(...)"
// branch (§6 CLI surface: "-dir | folder | list mode: each line of the
// positional arg is a chain file under this folder") — the positional
// argument names a list file, not a scan root.
func readChainListFile(path string) ([]string, error) {
	br, closer, err := chain.Open(path)
	if err != nil {
		return nil, err
	}
	defer closer.Close()

	var names []string
	sc := bufio.NewScanner(br)
	for sc.Scan() {
		name := strings.TrimSpace(sc.Text())
		if name == "" {
			continue
		}
		names = append(names, name)
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrapf(err, "reading chain list %s", path)
	}
	return names, nil
}

// resolveDirFiles joins every name in the list file named by listFile with
// dir and suffix, per -dir's §6 semantics.
func resolveDirFiles(listFile, dir, suffix string) ([]string, error) {
	names, err := readChainListFile(listFile)
	if err != nil {
		return nil, err
	}
	files := make([]string, len(names))
	for i, name := range names {
		files[i] = filepath.Join(dir, name+suffix)
	}
	return files, nil
}

// expandPath resolves a leading ~ to the user's home directory, for
// -dir/-init/-o paths (go-homedir, otherwise left unwired in the
// teacher's own dependency set).
func expandPath(path string) string {
	if path == "" || path == "-" {
		return path
	}
	expanded, err := homedir.Expand(path)
	if err != nil {
		return path
	}
	return expanded
}
