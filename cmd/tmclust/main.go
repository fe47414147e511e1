// Command tmclust greedily clusters structural chains by TM-score similarity.
package main

import "github.com/bioclust/tmclust/cmd/tmclust/cmd"

func main() {
	cmd.Execute()
}
