/*
Package cmd provides functionality shared by lastquery's commands.
*/
package cmd

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

// PrintError writes the error to w, prefixed with a red "Error:".
func PrintError(w io.Writer, err error) {
	fmt.Fprintf(w, "%s %s\n", color.HiRedString("Error:"), err.Error())
}
