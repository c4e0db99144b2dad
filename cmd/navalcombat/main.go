package main

import "github.com/mcoot/navalcombat/internal/cli"

func main() {
	cli.Execute()
}
