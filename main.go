package main

import "marinews/cmd"

func main() {
	cmd.Execute()
}
