package main

import "github.com/oblivisheee/aum-engine/cmd/cli"

func main() {
	cli.Execute()
}
