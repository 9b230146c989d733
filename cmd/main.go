package main

import "hotissue/cli"

func main() {
	cli.Execute()
}
