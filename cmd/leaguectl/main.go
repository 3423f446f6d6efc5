package main

import "github.com/mcoot/pokerleague/internal/cli"

func main() {
	cli.Execute()
}
