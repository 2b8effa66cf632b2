package main

import "github.com/chimio/inxlocker/cmd"

func main() {
	cmd.Execute()
}
