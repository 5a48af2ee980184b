package main

import "github.com/blacktop/go-termpix/cmd/termpix/cmd"

func main() {
	cmd.Execute()
}
