package main

import "github.com/kbukum/apiclient/internal/cli"

func main() {
	cli.Execute()
}
