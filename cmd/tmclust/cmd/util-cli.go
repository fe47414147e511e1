package cmd

import (
	"os"

	"github.com/mattn/go-colorable"
	"github.com/shenwei356/go-logging"
	"github.com/shenwei356/util/cliutil"
	"github.com/spf13/cobra"
)

var log = logging.MustGetLogger("tmclust")

func init() {
	logging.SetFormatter(logging.MustStringFormatter(`%{color}[%{level:.4s}]%{color:reset} %{message}`))
	backend := logging.NewLogBackend(colorable.NewColorableStderr(), "", 0)
	logging.SetBackend(backend)
}

func checkError(err error) {
	if err != nil {
		log.Error(err)
		os.Exit(-1)
	}
}

func isStdin(file string) bool {
	return file == "-"
}

// getFileListFromArgsAndFile merges positional file args with the
// -i/--infile-list file, verbatim teacher idiom (util-cli.go).
func getFileListFromArgsAndFile(cmd *cobra.Command, args []string, checkFileFromArgs bool, flag string, checkFileFromFile bool) []string {
	infileList := cliutil.GetFlagString(cmd, flag)
	files := cliutil.GetFileList(args, checkFileFromArgs)
	if infileList != "" {
		extra, err := cliutil.GetFileListFromFile(infileList, checkFileFromFile)
		checkError(err)
		if len(extra) == 0 {
			log.Warningf("no files found in file list: %s", infileList)
			return files
		}
		if len(files) == 1 && isStdin(files[0]) {
			return extra
		}
		files = append(files, extra...)
	}
	return files
}
