package main

import "github.com/eventra/notify/cmd"

func main() {
	cmd.Execute()
}
