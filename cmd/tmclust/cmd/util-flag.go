package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// getFlagString and friends wrap cobra's typed flag getters with
// checkError, the shape used unqualified throughout the teacher's cmd
// package (compute.go, index-info.go, unik-info.go) even though the
// defining file itself wasn't part of the retrieval pack; reconstructed
// here directly from those call sites.

func getFlagString(cmd *cobra.Command, flag string) string {
	v, err := cmd.Flags().GetString(flag)
	checkError(err)
	return v
}

func getFlagBool(cmd *cobra.Command, flag string) bool {
	v, err := cmd.Flags().GetBool(flag)
	checkError(err)
	return v
}

func getFlagInt(cmd *cobra.Command, flag string) int {
	v, err := cmd.Flags().GetInt(flag)
	checkError(err)
	return v
}

func getFlagPositiveInt(cmd *cobra.Command, flag string) int {
	v := getFlagInt(cmd, flag)
	if v <= 0 {
		checkError(fmt.Errorf("value of flag --%s should be positive: %d", flag, v))
	}
	return v
}

func getFlagNonNegativeInt(cmd *cobra.Command, flag string) int {
	v := getFlagInt(cmd, flag)
	if v < 0 {
		checkError(fmt.Errorf("value of flag --%s should be non-negative: %d", flag, v))
	}
	return v
}

func getFlagFloat64(cmd *cobra.Command, flag string) float64 {
	v, err := cmd.Flags().GetFloat64(flag)
	checkError(err)
	return v
}

func getFlagStringSlice(cmd *cobra.Command, flag string) []string {
	v := getFlagString(cmd, flag)
	if v == "" {
		return nil
	}
	fields := strings.Split(v, ",")
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}

func formatFlagUsage(s string) string {
	return s
}
