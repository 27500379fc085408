package main

import "github.com/Tiliavir/sa3aty/cmd"

func main() {
	cmd.Execute()
}
