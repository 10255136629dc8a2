// Command rosterctl works on a roster workbook from the shell: listing,
// searching, adding and removing students and validating batch files
// before they are merged.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
