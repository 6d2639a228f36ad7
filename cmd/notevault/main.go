package main

import (
	"context"
	"os"

	"github.com/dwirx/notevault/clierror"
	"github.com/dwirx/notevault/cli"
	"github.com/dwirx/notevault/genericclioptions"
)

func main() {
	iostreams := genericclioptions.NewDefaultIOStreams()

	root := cli.NewDefaultNotevaultCommand(iostreams, os.Args[1:])

	if err := root.ExecuteContext(context.Background()); err != nil {
		clierror.Check(err)
	}
}
