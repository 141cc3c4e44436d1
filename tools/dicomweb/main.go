package main

import (
	"github.com/spf13/cobra"

	"github.com/zostay/go-dicomweb/tools/dicomweb/cmd"
)

func main() {
	err := cmd.Execute()
	cobra.CheckErr(err)
}
